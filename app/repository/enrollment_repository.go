package repository

import (
	"github.com/escolafin/EscolaFin/app/models"
	"gorm.io/gorm"
)

// enrollmentRepository implements the EnrollmentRepository interface
type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository creates a new enrollment repository instance
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) GetByID(institutionID, id uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := r.db.Where("institution_id = ?", institutionID).First(&enrollment, id).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepository) GetActiveByStudent(institutionID, studentID uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := r.db.
		Where("institution_id = ? AND student_id = ? AND status = ?", institutionID, studentID, models.EnrollmentStatusActive).
		First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepository) Save(enrollment *models.Enrollment) error {
	return r.db.Save(enrollment).Error
}

func (r *enrollmentRepository) Create(enrollment *models.Enrollment) error {
	return r.db.Create(enrollment).Error
}
