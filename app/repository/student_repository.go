package repository

import (
	"github.com/escolafin/EscolaFin/app/models"
	"gorm.io/gorm"
)

// studentRepository implements the StudentRepository interface
type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository creates a new student repository instance
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) GetByID(institutionID, id uint) (*models.Student, error) {
	var student models.Student
	err := r.db.Where("institution_id = ?", institutionID).First(&student, id).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// ListActive returns all students of the institution that currently hold an
// active enrollment.
func (r *studentRepository) ListActive(institutionID uint) ([]models.Student, error) {
	var students []models.Student
	err := r.db.
		Joins("JOIN enrollments ON enrollments.student_id = students.id AND enrollments.status = ?", models.EnrollmentStatusActive).
		Where("students.institution_id = ?", institutionID).
		Order("students.id").
		Find(&students).Error
	return students, err
}

func (r *studentRepository) GetClass(institutionID, classID uint) (*models.Class, error) {
	var class models.Class
	err := r.db.Where("institution_id = ?", institutionID).First(&class, classID).Error
	if err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *studentRepository) GetCourse(institutionID, courseID uint) (*models.Course, error) {
	var course models.Course
	err := r.db.Where("institution_id = ?", institutionID).First(&course, courseID).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *studentRepository) Create(student *models.Student) error {
	return r.db.Create(student).Error
}
