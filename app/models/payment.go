package models

import "time"

// Payment methods accepted by the ledger.
const (
	PaymentMethodCash     = "cash"
	PaymentMethodTransfer = "transfer"
	PaymentMethodCard     = "card"
	PaymentMethodMobile   = "mobile"
)

// Payment is an immutable record of money applied to one installment.
// Rows are only ever inserted; corrections happen through new entries.
type Payment struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	InstallmentID uint   `gorm:"not null;index" json:"installment_id"`
	InstitutionID uint   `gorm:"not null;index" json:"institution_id"`
	Reference     string `gorm:"type:varchar(36);not null;uniqueIndex" json:"reference"`
	AmountCents   int64  `gorm:"not null" json:"amount_cents"`
	Method        string `gorm:"type:varchar(20);not null" json:"method"`
	Note          string `gorm:"type:varchar(255);default:''" json:"note"`

	RecordedAt time.Time `gorm:"not null" json:"recorded_at"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
