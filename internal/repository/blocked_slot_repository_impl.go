package repository

import (
	"errors"
	"time"

	"marketplace-booking/internal/domain/entity"
	domainRepo "marketplace-booking/internal/domain/repository"

	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type blockedSlotRepository struct{}

func NewBlockedSlotRepository() domainRepo.BlockedSlotRepository {
	return &blockedSlotRepository{}
}

func (r *blockedSlotRepository) Create(db *gorm.DB, slot *entity.BlockedSlot) error {
	return db.Create(slot).Error
}

func (r *blockedSlotRepository) FindByID(db *gorm.DB, id int64) (*entity.BlockedSlot, error) {
	var slot entity.BlockedSlot
	err := db.Where("id = ?", id).First(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &slot, nil
}

// Dates are compared as plain calendar strings so the server's zone never
// shifts a DATE column by a day.
func (r *blockedSlotRepository) FindByContractorAndDate(db *gorm.DB, contractorID int64, date time.Time) ([]entity.BlockedSlot, error) {
	var slots []entity.BlockedSlot
	err := db.Where("contractor_id = ? AND date = ?", contractorID, date.Format(dateLayout)).
		Order("start_time ASC").
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *blockedSlotRepository) FindByContractorInRange(db *gorm.DB, contractorID int64, from, to time.Time) ([]entity.BlockedSlot, error) {
	var slots []entity.BlockedSlot
	err := db.Where("contractor_id = ? AND date >= ? AND date <= ?", contractorID, from.Format(dateLayout), to.Format(dateLayout)).
		Order("date ASC, start_time ASC").
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *blockedSlotRepository) FindByContractorFrom(db *gorm.DB, contractorID int64, from time.Time) ([]entity.BlockedSlot, error) {
	var slots []entity.BlockedSlot
	err := db.Where("contractor_id = ? AND date >= ?", contractorID, from.Format(dateLayout)).
		Order("date ASC, start_time ASC").
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *blockedSlotRepository) Delete(db *gorm.DB, id int64) (int64, error) {
	result := db.Where("id = ?", id).Delete(&entity.BlockedSlot{})
	return result.RowsAffected, result.Error
}
