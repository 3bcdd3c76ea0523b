package models

import "time"

// Course owns the tuition plan for higher-education institutions.
type Course struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	InstitutionID   uint      `gorm:"not null;index" json:"institution_id"`
	Name            string    `gorm:"type:varchar(150);not null" json:"name"`
	MonthlyFeeCents int64     `gorm:"not null;default:0" json:"monthly_fee_cents"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
