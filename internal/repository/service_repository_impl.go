package repository

import (
	"errors"

	"marketplace-booking/internal/domain/entity"
	domainRepo "marketplace-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type serviceRepository struct{}

func NewServiceRepository() domainRepo.ServiceRepository {
	return &serviceRepository{}
}

func (r *serviceRepository) FindByID(db *gorm.DB, id int64) (*entity.Service, error) {
	var service entity.Service
	err := db.Preload("Contractor").Where("id = ?", id).First(&service).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &service, nil
}

type contractorRepository struct{}

func NewContractorRepository() domainRepo.ContractorRepository {
	return &contractorRepository{}
}

func (r *contractorRepository) FindByID(db *gorm.DB, id int64) (*entity.Contractor, error) {
	var contractor entity.Contractor
	err := db.Where("id = ?", id).First(&contractor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &contractor, nil
}

func (r *contractorRepository) FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.Contractor, error) {
	var contractor entity.Contractor
	err := db.Where("user_id = ?", userID).First(&contractor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &contractor, nil
}
