package models

import "time"

// DailyBillingStat accumulates per-institution billing activity for one
// day. Rows are upserted by the counter flush; Day is a date string in
// YYYY-MM-DD so the unique key stays timezone-stable.
type DailyBillingStat struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	InstitutionID uint   `gorm:"not null;index:ux_daily_billing_stats_day,unique,priority:1" json:"institution_id"`
	Day           string `gorm:"type:varchar(10);not null;index:ux_daily_billing_stats_day,unique,priority:2" json:"day"`

	InstallmentsCreated int64 `gorm:"not null;default:0" json:"installments_created"`
	PaymentsRecorded    int64 `gorm:"not null;default:0" json:"payments_recorded"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
