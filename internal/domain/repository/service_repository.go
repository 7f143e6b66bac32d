package repository

import (
	"marketplace-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ServiceRepository interface {
	FindByID(db *gorm.DB, id int64) (*entity.Service, error)
}

type ContractorRepository interface {
	FindByID(db *gorm.DB, id int64) (*entity.Contractor, error)
	FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.Contractor, error)
}
