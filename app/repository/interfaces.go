package repository

import (
	"time"

	"github.com/escolafin/EscolaFin/app/models"
	"gorm.io/gorm"
)

// InstitutionRepository defines the interface for institution (tenant) lookups
type InstitutionRepository interface {
	GetByID(id uint) (*models.Institution, error)
	List() ([]models.Institution, error)
	Save(inst *models.Institution) error
}

// StudentRepository defines the interface for student-related database operations
type StudentRepository interface {
	GetByID(institutionID, id uint) (*models.Student, error)
	ListActive(institutionID uint) ([]models.Student, error)
	GetClass(institutionID, classID uint) (*models.Class, error)
	GetCourse(institutionID, courseID uint) (*models.Course, error)
	Create(student *models.Student) error
}

// EnrollmentRepository defines the interface for enrollment-related database operations
type EnrollmentRepository interface {
	GetByID(institutionID, id uint) (*models.Enrollment, error)
	GetActiveByStudent(institutionID, studentID uint) (*models.Enrollment, error)
	Save(enrollment *models.Enrollment) error
	Create(enrollment *models.Enrollment) error
}

// InstallmentRepository defines the interface for installment-related database
// operations. Mutations that must serialize against concurrent payments run
// inside Transaction with a row lock taken through InstallmentTx.
type InstallmentRepository interface {
	Create(inst *models.Installment) error
	GetByID(institutionID, id uint) (*models.Installment, error)
	Save(inst *models.Installment) error
	ExistsForPeriod(institutionID, studentID uint, year, month int) (bool, error)
	ListByPeriod(institutionID uint, year, month int) ([]models.Installment, error)
	ListByStudent(institutionID, studentID uint) ([]models.Installment, error)
	ListByEnrollment(institutionID, enrollmentID uint) ([]models.Installment, error)
	ListOverdue(institutionID uint, now time.Time) ([]models.Installment, error)
	Transaction(fn func(tx InstallmentTx) error) error
}

// InstallmentTx is the transactional view used while an installment row is
// locked. GetForUpdate must be called before any dependent read or write.
type InstallmentTx interface {
	GetForUpdate(id uint) (*models.Installment, error)
	ListPayments(installmentID uint) ([]models.Payment, error)
	CreatePayment(p *models.Payment) error
	Save(inst *models.Installment) error
}

// PaymentRepository defines the interface for read-side payment queries
type PaymentRepository interface {
	ListByInstallment(institutionID, installmentID uint) ([]models.Payment, error)
	GetByReference(institutionID uint, reference string) (*models.Payment, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	Institution InstitutionRepository
	Student     StudentRepository
	Enrollment  EnrollmentRepository
	Installment InstallmentRepository
	Payment     PaymentRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Institution: NewInstitutionRepository(db),
		Student:     NewStudentRepository(db),
		Enrollment:  NewEnrollmentRepository(db),
		Installment: NewInstallmentRepository(db),
		Payment:     NewPaymentRepository(db),
	}
}
