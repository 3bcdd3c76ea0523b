package models

import "time"

// Student carries the academic placement the plan resolver reads: ClassID
// for secondary institutions, CourseID for higher education. Only the one
// matching the institution's academic type is consulted.
type Student struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	InstitutionID uint      `gorm:"not null;index" json:"institution_id"`
	Name          string    `gorm:"type:varchar(200);not null" json:"name"`
	ClassID       *uint     `gorm:"index" json:"class_id,omitempty"`
	CourseID      *uint     `gorm:"index" json:"course_id,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
