package models

import "time"

// Installment lifecycle states. Paid and Cancelled are terminal.
const (
	InstallmentStatusPending   = "pending"
	InstallmentStatusPartial   = "partial"
	InstallmentStatusPaid      = "paid"
	InstallmentStatusLate      = "late"
	InstallmentStatusCancelled = "cancelled"
)

// Installment is one billing-period obligation for one student.
//
// The unique index covers (institution, student, year, month, active).
// Active is true for live rows and NULL for cancelled ones; MySQL skips
// NULLs in unique indexes, so a cancelled installment does not block
// regeneration of the same period while at most one live row can exist.
type Installment struct {
	ID            uint  `gorm:"primaryKey" json:"id"`
	InstitutionID uint  `gorm:"not null;index:ux_installments_period,unique,priority:1" json:"institution_id"`
	StudentID     uint  `gorm:"not null;index:ux_installments_period,unique,priority:2" json:"student_id"`
	EnrollmentID  *uint `gorm:"index" json:"enrollment_id,omitempty"`

	PeriodYear  int `gorm:"not null;index:ux_installments_period,unique,priority:3" json:"period_year"`
	PeriodMonth int `gorm:"not null;index:ux_installments_period,unique,priority:4" json:"period_month"`

	BaseCents     int64 `gorm:"not null" json:"base_cents"`
	DiscountCents int64 `gorm:"not null;default:0" json:"discount_cents"`
	FineCents     int64 `gorm:"not null;default:0" json:"fine_cents"`

	DueDate       time.Time  `gorm:"not null;index" json:"due_date"`
	Status        string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Active        *bool      `gorm:"index:ux_installments_period,unique,priority:5" json:"-"`
	FineAppliedAt *time.Time `gorm:"type:timestamp;default:null" json:"fine_applied_at,omitempty"`

	Payments []Payment `gorm:"foreignKey:InstallmentID" json:"payments,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// AmountDueCents derives the amount owed for this installment. The
// discount is clamped to the base amount so the result is never negative.
func (i *Installment) AmountDueCents() int64 {
	discount := i.DiscountCents
	if discount > i.BaseCents {
		discount = i.BaseCents
	}
	return i.BaseCents - discount + i.FineCents
}

// TotalPaidCents sums the loaded payments.
func (i *Installment) TotalPaidCents() int64 {
	var total int64
	for _, p := range i.Payments {
		total += p.AmountCents
	}
	return total
}

// IsTerminal reports whether the installment can no longer change.
func (i *Installment) IsTerminal() bool {
	return i.Status == InstallmentStatusPaid || i.Status == InstallmentStatusCancelled
}

// Overdue reports whether the due date has passed at the given instant.
func (i *Installment) Overdue(now time.Time) bool {
	return i.DueDate.Before(now)
}
