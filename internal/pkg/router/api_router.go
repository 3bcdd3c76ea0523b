package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/escolafin/EscolaFin/app/controllers"
	"github.com/escolafin/EscolaFin/internal/pkg/constants"
	"github.com/escolafin/EscolaFin/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group(constants.APIRoute, limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// Operator routes, key-protected and outside the tenant scope. They
	// register first so /v1/admin is matched before the tenant group's
	// middleware.
	admin := api.Group(constants.AdminRoute, middleware.AdminAPIKeyMiddleware())
	admin.Post(constants.AdminSweepRoute, controllers.HandleAdminSweep)
	admin.Get(constants.AdminStatsRoute, controllers.HandleAdminStats)

	// API v1 routes, all tenant-scoped
	v1 := api.Group("/v1", middleware.InstitutionMiddleware())

	v1.Post(constants.GenerateRoute, controllers.HandleGenerateInstallments)
	v1.Get(constants.InstallmentsRoute, controllers.HandleListByPeriod)
	v1.Get(constants.ExportRoute, controllers.HandleExportPeriod)
	v1.Post(constants.PaymentsRoute, controllers.HandleApplyPayment)
	v1.Post(constants.CancelRoute, controllers.HandleCancelInstallment)

	v1.Post(constants.CancelEnrollRoute, controllers.HandleCancelEnrollment)

	v1.Get(constants.SituationRoute, controllers.HandleFinancialSituation)
	v1.Get(constants.EligibilityRoute, controllers.HandleEnrollmentEligibility)

	v1.Get(constants.InstitutionStatsRoute, controllers.HandleInstitutionStats)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
