package repository

import (
	"errors"
	"strings"

	"clinic-front-desk/internal/domain/entity"
	domainRepo "clinic-front-desk/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type patientRepository struct{}

func NewPatientRepository() domainRepo.PatientRepository {
	return &patientRepository{}
}

func (r *patientRepository) Create(db *gorm.DB, patient *entity.Patient) error {
	return db.Create(patient).Error
}

func (r *patientRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Patient, error) {
	var patient entity.Patient
	err := db.Where("id = ?", id).First(&patient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &patient, nil
}

// FindAll combines the supplied search clauses: name is a case-insensitive
// substring match, phone and email must match exactly.
func (r *patientRepository) FindAll(db *gorm.DB, filter *entity.PatientFilter) ([]entity.Patient, error) {
	var patients []entity.Patient
	query := db
	if filter != nil {
		if filter.Name != "" {
			query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.Name)+"%")
		}
		if filter.Phone != "" {
			query = query.Where("phone = ?", filter.Phone)
		}
		if filter.Email != "" {
			query = query.Where("email = ?", filter.Email)
		}
	}

	err := query.Order("name ASC").Find(&patients).Error
	if err != nil {
		return nil, err
	}
	return patients, nil
}

func (r *patientRepository) Count(db *gorm.DB) (int64, error) {
	var total int64
	err := db.Model(&entity.Patient{}).Count(&total).Error
	return total, err
}

func (r *patientRepository) Update(db *gorm.DB, patient *entity.Patient) error {
	return db.Save(patient).Error
}

func (r *patientRepository) Delete(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Where("id = ?", id).Delete(&entity.Patient{})
	return result.RowsAffected, result.Error
}
