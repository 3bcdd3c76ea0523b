package repository

import (
	"time"

	"github.com/escolafin/EscolaFin/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// installmentRepository implements the InstallmentRepository interface
type installmentRepository struct {
	db *gorm.DB
}

// NewInstallmentRepository creates a new installment repository instance
func NewInstallmentRepository(db *gorm.DB) InstallmentRepository {
	return &installmentRepository{db: db}
}

func (r *installmentRepository) Create(inst *models.Installment) error {
	return r.db.Create(inst).Error
}

func (r *installmentRepository) GetByID(institutionID, id uint) (*models.Installment, error) {
	var inst models.Installment
	err := r.db.Preload("Payments").Where("institution_id = ?", institutionID).First(&inst, id).Error
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

func (r *installmentRepository) Save(inst *models.Installment) error {
	return r.db.Save(inst).Error
}

func (r *installmentRepository) ExistsForPeriod(institutionID, studentID uint, year, month int) (bool, error) {
	var count int64
	err := r.db.Model(&models.Installment{}).
		Where("institution_id = ? AND student_id = ? AND period_year = ? AND period_month = ? AND status <> ?",
			institutionID, studentID, year, month, models.InstallmentStatusCancelled).
		Count(&count).Error
	return count > 0, err
}

func (r *installmentRepository) ListByPeriod(institutionID uint, year, month int) ([]models.Installment, error) {
	var insts []models.Installment
	err := r.db.Preload("Payments").
		Where("institution_id = ? AND period_year = ? AND period_month = ?", institutionID, year, month).
		Order("student_id").
		Find(&insts).Error
	return insts, err
}

func (r *installmentRepository) ListByStudent(institutionID, studentID uint) ([]models.Installment, error) {
	var insts []models.Installment
	err := r.db.Preload("Payments").
		Where("institution_id = ? AND student_id = ?", institutionID, studentID).
		Order("period_year, period_month").
		Find(&insts).Error
	return insts, err
}

func (r *installmentRepository) ListByEnrollment(institutionID, enrollmentID uint) ([]models.Installment, error) {
	var insts []models.Installment
	err := r.db.Preload("Payments").
		Where("institution_id = ? AND enrollment_id = ?", institutionID, enrollmentID).
		Find(&insts).Error
	return insts, err
}

// ListOverdue returns non-terminal installments whose due date has passed.
func (r *installmentRepository) ListOverdue(institutionID uint, now time.Time) ([]models.Installment, error) {
	var insts []models.Installment
	err := r.db.Preload("Payments").
		Where("institution_id = ? AND due_date < ? AND status IN ?",
			institutionID, now, []string{models.InstallmentStatusPending, models.InstallmentStatusPartial}).
		Order("due_date").
		Find(&insts).Error
	return insts, err
}

func (r *installmentRepository) Transaction(fn func(tx InstallmentTx) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&installmentTx{tx: tx})
	})
}

// installmentTx implements InstallmentTx over an open gorm transaction.
type installmentTx struct {
	tx *gorm.DB
}

// GetForUpdate locks the installment row for the remainder of the
// transaction so concurrent payments serialize.
func (t *installmentTx) GetForUpdate(id uint) (*models.Installment, error) {
	var inst models.Installment
	err := t.tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&inst, id).Error
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

func (t *installmentTx) ListPayments(installmentID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := t.tx.Where("installment_id = ?", installmentID).Find(&payments).Error
	return payments, err
}

func (t *installmentTx) CreatePayment(p *models.Payment) error {
	return t.tx.Create(p).Error
}

func (t *installmentTx) Save(inst *models.Installment) error {
	return t.tx.Save(inst).Error
}
