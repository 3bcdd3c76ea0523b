package constants

// Static route constants
const (
	APIRoute   = "/api"
	APIv1Route = "/api/v1"

	GenerateRoute         = "/installments/generate"
	InstallmentsRoute     = "/installments"
	ExportRoute           = "/installments/export"
	PaymentsRoute         = "/installments/:id/payments"
	CancelRoute           = "/installments/:id/cancel"
	CancelEnrollRoute     = "/enrollments/:id/cancel"
	SituationRoute        = "/students/:id/financial-situation"
	EligibilityRoute      = "/students/:id/enrollment-eligibility"
	AdminRoute            = "/v1/admin"
	AdminSweepRoute       = "/institutions/:id/sweep"
	AdminStatsRoute       = "/stats"
	InstitutionStatsRoute = "/stats"
)
