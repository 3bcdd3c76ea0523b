package models

import "time"

const (
	EnrollmentStatusActive    = "active"
	EnrollmentStatusCancelled = "cancelled"
)

// Enrollment marks a student as billable. Generation enumerates active
// enrollments; cancelling one cascades into installment cancellation.
type Enrollment struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	InstitutionID uint       `gorm:"not null;index:idx_enrollments_institution_status,priority:1" json:"institution_id"`
	StudentID     uint       `gorm:"not null;index" json:"student_id"`
	Status        string     `gorm:"type:varchar(20);not null;default:'active';index:idx_enrollments_institution_status,priority:2" json:"status"`
	EnrolledAt    time.Time  `gorm:"not null" json:"enrolled_at"`
	CancelledAt   *time.Time `gorm:"type:timestamp;default:null" json:"cancelled_at,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
