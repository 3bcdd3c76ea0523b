package repository

import (
	"github.com/escolafin/EscolaFin/app/models"
	"gorm.io/gorm"
)

// paymentRepository implements the PaymentRepository interface
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository instance
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) ListByInstallment(institutionID, installmentID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.
		Where("institution_id = ? AND installment_id = ?", institutionID, installmentID).
		Order("recorded_at").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) GetByReference(institutionID uint, reference string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.
		Where("institution_id = ? AND reference = ?", institutionID, reference).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}
