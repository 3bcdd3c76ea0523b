package middleware

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/escolafin/EscolaFin/app/repository"
)

// InstitutionLocalKey is the fiber locals key carrying the resolved tenant.
const InstitutionLocalKey = "institution_id"

// InstitutionHeader names the header set by the upstream tenant-resolution
// layer. The core never infers the institution on its own.
const InstitutionHeader = "X-Institution-ID"

// InstitutionMiddleware resolves the tenant header to a known institution
// and stores its id in the request locals. Every billing route sits behind
// this middleware.
func InstitutionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get(InstitutionHeader)
		if raw == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Missing " + InstitutionHeader + " header"})
		}
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid " + InstitutionHeader + " header"})
		}

		repo := repository.GetGlobalFactory().GetInstitutionRepository()
		if _, err := repo.GetByID(uint(id)); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Unknown institution"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Institution lookup failed"})
		}

		c.Locals(InstitutionLocalKey, uint(id))
		return c.Next()
	}
}

// InstitutionID reads the tenant id stored by InstitutionMiddleware.
func InstitutionID(c *fiber.Ctx) uint {
	if v := c.Locals(InstitutionLocalKey); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
