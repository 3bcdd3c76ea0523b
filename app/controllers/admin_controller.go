package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/escolafin/EscolaFin/internal/pkg/middleware"
	"github.com/escolafin/EscolaFin/internal/pkg/statistics"
)

// HandleAdminSweep runs the overdue sweep for one institution on demand,
// outside the periodic schedule.
func HandleAdminSweep(c *fiber.Ctx) error {
	institutionID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid institution id")
	}
	result, err := tuitionService.RunSweep(institutionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Unknown institution"})
		}
		return tuitionError(c, err)
	}
	return c.JSON(result)
}

// HandleAdminStats returns cross-tenant platform totals.
func HandleAdminStats(c *fiber.Ctx) error {
	return c.JSON(statistics.GetPlatformStats())
}

// HandleInstitutionStats returns the calling institution's collection
// numbers.
func HandleInstitutionStats(c *fiber.Ctx) error {
	stats, err := statistics.GetInstitutionStats(middleware.InstitutionID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Statistics lookup failed"})
	}
	return c.JSON(stats)
}
