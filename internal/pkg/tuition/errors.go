package tuition

import "errors"

// Sentinel errors returned by the tuition engine. Validation failures are
// reported to the caller as-is; everything else bubbles up untouched.
var (
	// ErrPlanNotConfigured means the student's placement has no owning
	// class/course row to read a tuition amount from.
	ErrPlanNotConfigured = errors.New("tuition plan not configured for student")

	// ErrInstallmentNotFound means no installment exists with the given id.
	ErrInstallmentNotFound = errors.New("installment not found")

	// ErrInstallmentNotPayable means the installment is already paid or
	// cancelled and cannot accept payments.
	ErrInstallmentNotPayable = errors.New("installment is not payable")

	// ErrInvalidAmount means a non-positive payment amount was supplied.
	ErrInvalidAmount = errors.New("payment amount must be positive")

	// ErrOverpayment means the payment would push the paid total past the
	// amount due. The ledger rejects instead of clamping.
	ErrOverpayment = errors.New("payment exceeds remaining amount due")

	// ErrCannotCancelPaid means the installment has recorded payments and
	// cancellation would lose money; refunds are out of scope.
	ErrCannotCancelPaid = errors.New("installment with payments cannot be cancelled")

	// ErrTenantMismatch means the caller addressed a row of another
	// institution. Always surfaced, never silently filtered.
	ErrTenantMismatch = errors.New("record belongs to another institution")

	// ErrInvalidPeriod means month/year are outside the billable range.
	ErrInvalidPeriod = errors.New("invalid billing period")
)
