package models

import "time"

// Academic type decides which entity owns the tuition plan: classes for
// secondary schools, courses for higher education.
const (
	AcademicTypeSecondary = "secondary"
	AcademicTypeHigher    = "higher"
)

// Fine policy kinds applied to overdue installments.
const (
	FinePolicyNone    = "none"
	FinePolicyFlat    = "flat"
	FinePolicyPercent = "percent"
)

// Institution is the tenant boundary. Every other entity is scoped by
// InstitutionID; the core never infers the institution on its own.
type Institution struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"type:varchar(200);not null" json:"name"`
	AcademicType string `gorm:"type:varchar(20);not null;default:'secondary'" json:"academic_type"`

	// ContactEmail receives sweep summaries when set.
	ContactEmail string `gorm:"type:varchar(255);default:''" json:"contact_email,omitempty"`

	// Fine policy applied by the overdue sweep. Percent is expressed in
	// basis points of the installment base amount (250 = 2.5%).
	FinePolicyKind  string `gorm:"type:varchar(16);not null;default:'none'" json:"fine_policy_kind"`
	FineFlatCents   int64  `gorm:"not null;default:0" json:"fine_flat_cents"`
	FinePercentBps  int64  `gorm:"not null;default:0" json:"fine_percent_bps"`
	BlockOnOverdue  bool   `gorm:"not null;default:true" json:"block_on_overdue"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// FineCentsFor computes the fine this institution charges on an overdue
// installment with the given base amount.
func (i *Institution) FineCentsFor(baseCents int64) int64 {
	switch i.FinePolicyKind {
	case FinePolicyFlat:
		return i.FineFlatCents
	case FinePolicyPercent:
		return baseCents * i.FinePercentBps / 10000
	default:
		return 0
	}
}
