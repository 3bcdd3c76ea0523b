package repository

import (
	"github.com/escolafin/EscolaFin/app/models"
	"gorm.io/gorm"
)

// institutionRepository implements the InstitutionRepository interface
type institutionRepository struct {
	db *gorm.DB
}

// NewInstitutionRepository creates a new institution repository instance
func NewInstitutionRepository(db *gorm.DB) InstitutionRepository {
	return &institutionRepository{db: db}
}

func (r *institutionRepository) GetByID(id uint) (*models.Institution, error) {
	var inst models.Institution
	if err := r.db.First(&inst, id).Error; err != nil {
		return nil, err
	}
	return &inst, nil
}

func (r *institutionRepository) List() ([]models.Institution, error) {
	var insts []models.Institution
	err := r.db.Order("id").Find(&insts).Error
	return insts, err
}

func (r *institutionRepository) Save(inst *models.Institution) error {
	return r.db.Save(inst).Error
}
