package repository

import (
	"marketplace-booking/internal/domain/entity"
	domainRepo "marketplace-booking/internal/domain/repository"

	"gorm.io/gorm"
)

type availabilityRepository struct{}

func NewAvailabilityRepository() domainRepo.AvailabilityRepository {
	return &availabilityRepository{}
}

func (r *availabilityRepository) FindByContractorID(db *gorm.DB, contractorID int64) ([]entity.WeeklyAvailability, error) {
	var rows []entity.WeeklyAvailability
	err := db.Where("contractor_id = ?", contractorID).Order("day_of_week ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *availabilityRepository) Replace(db *gorm.DB, contractorID int64, rows []entity.WeeklyAvailability) error {
	if err := db.Where("contractor_id = ?", contractorID).Delete(&entity.WeeklyAvailability{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		rows[i].ContractorID = contractorID
	}
	return db.Create(&rows).Error
}
