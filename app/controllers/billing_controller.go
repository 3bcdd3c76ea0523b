package controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/escolafin/EscolaFin/internal/pkg/export"
	"github.com/escolafin/EscolaFin/internal/pkg/metrics/counter"
	"github.com/escolafin/EscolaFin/internal/pkg/middleware"
	"github.com/escolafin/EscolaFin/internal/pkg/tuition"
)

var validate = validator.New()

// tuitionService is injected at router install time so tests can swap it.
var tuitionService *tuition.Service

// SetTuitionService wires the tuition engine into the billing handlers.
func SetTuitionService(s *tuition.Service) {
	tuitionService = s
}

// GenerateRequest is the payload for a period generation run.
type GenerateRequest struct {
	Month   int    `json:"month" validate:"required,min=1,max=12"`
	Year    int    `json:"year" validate:"required,min=2000,max=2200"`
	DueDate string `json:"due_date" validate:"required,datetime=2006-01-02"`
}

// PaymentRequest is the payload for recording one payment.
type PaymentRequest struct {
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
	Method      string `json:"method" validate:"required,oneof=cash transfer card mobile"`
	Note        string `json:"note" validate:"max=255"`
}

// HandleGenerateInstallments runs the installment generator for one period.
func HandleGenerateInstallments(c *fiber.Ctx) error {
	var req GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON body")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return badRequest(c, "Invalid due_date")
	}

	result, err := tuitionService.Generate(c.Context(), middleware.InstitutionID(c), req.Month, req.Year, dueDate)
	if err != nil {
		return tuitionError(c, err)
	}
	if err := counter.AddInstallmentsCreated(middleware.InstitutionID(c), result.Created); err != nil {
		log.Warnf("billing: installment counter update failed: %v", err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// HandleApplyPayment records a payment against an installment.
func HandleApplyPayment(c *fiber.Ctx) error {
	installmentID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid installment id")
	}
	var req PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON body")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	installment, err := tuitionService.ApplyPayment(c.Context(), middleware.InstitutionID(c), installmentID, req.AmountCents, req.Method, req.Note)
	if err != nil {
		return tuitionError(c, err)
	}
	if err := counter.AddPaymentRecorded(middleware.InstitutionID(c)); err != nil {
		log.Warnf("billing: payment counter update failed: %v", err)
	}
	return c.Status(fiber.StatusCreated).JSON(installment)
}

// HandleCancelInstallment cancels one unpaid installment.
func HandleCancelInstallment(c *fiber.Ctx) error {
	installmentID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid installment id")
	}
	installment, err := tuitionService.Cancel(c.Context(), middleware.InstitutionID(c), installmentID)
	if err != nil {
		return tuitionError(c, err)
	}
	return c.JSON(installment)
}

// HandleCancelEnrollment cancels an enrollment and cascades into its
// unpaid installments.
func HandleCancelEnrollment(c *fiber.Ctx) error {
	enrollmentID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid enrollment id")
	}
	cancelled, err := tuitionService.CancelEnrollment(c.Context(), middleware.InstitutionID(c), enrollmentID)
	if err != nil {
		return tuitionError(c, err)
	}
	return c.JSON(fiber.Map{"cancelled_installments": cancelled})
}

// HandleListByPeriod lists the installments of one billing period.
func HandleListByPeriod(c *fiber.Ctx) error {
	month, year, err := periodQuery(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	installments, err := tuitionService.ListByPeriod(c.Context(), middleware.InstitutionID(c), month, year)
	if err != nil {
		return tuitionError(c, err)
	}
	return c.JSON(fiber.Map{"installments": installments, "count": len(installments)})
}

// HandleFinancialSituation returns the aggregated ledger of one student.
func HandleFinancialSituation(c *fiber.Ctx) error {
	studentID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid student id")
	}
	situation, err := tuitionService.FinancialSituation(c.Context(), middleware.InstitutionID(c), studentID)
	if err != nil {
		return tuitionError(c, err)
	}
	return c.JSON(situation)
}

// HandleEnrollmentEligibility answers whether a student may enroll given
// the institution's overdue-blocking policy.
func HandleEnrollmentEligibility(c *fiber.Ctx) error {
	studentID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid student id")
	}
	eligible, err := tuitionService.CanEnroll(c.Context(), middleware.InstitutionID(c), studentID)
	if err != nil {
		return tuitionError(c, err)
	}
	return c.JSON(fiber.Map{"eligible": eligible})
}

// HandleExportPeriod serves the period report as an XLSX download.
func HandleExportPeriod(c *fiber.Ctx) error {
	month, year, err := periodQuery(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	installments, err := tuitionService.ListByPeriod(c.Context(), middleware.InstitutionID(c), month, year)
	if err != nil {
		return tuitionError(c, err)
	}

	buf, fileName, err := export.PeriodReport(installments, month, year)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Export failed"})
	}
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	return c.Send(buf.Bytes())
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

func periodQuery(c *fiber.Ctx) (int, int, error) {
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, errors.New("month must be between 1 and 12")
	}
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 2000 {
		return 0, 0, errors.New("year must be 2000 or later")
	}
	return month, year, nil
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": message})
}

// tuitionError maps engine errors to HTTP responses. Validation problems
// are client errors; anything unknown is a 500.
func tuitionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, tuition.ErrInstallmentNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": err.Error()})
	case errors.Is(err, tuition.ErrTenantMismatch):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": err.Error()})
	case errors.Is(err, tuition.ErrInstallmentNotPayable),
		errors.Is(err, tuition.ErrOverpayment),
		errors.Is(err, tuition.ErrCannotCancelPaid),
		errors.Is(err, tuition.ErrInvalidAmount),
		errors.Is(err, tuition.ErrInvalidPeriod),
		errors.Is(err, tuition.ErrPlanNotConfigured):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "unprocessable_entity", "message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Unexpected error"})
	}
}
