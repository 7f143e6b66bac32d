package repository

import (
	"time"

	"marketplace-booking/internal/domain/entity"

	"gorm.io/gorm"
)

type AvailabilityRepository interface {
	FindByContractorID(db *gorm.DB, contractorID int64) ([]entity.WeeklyAvailability, error)
	// Replace deletes every row of the contractor and inserts rows.
	Replace(db *gorm.DB, contractorID int64, rows []entity.WeeklyAvailability) error
}

type BlockedSlotRepository interface {
	Create(db *gorm.DB, slot *entity.BlockedSlot) error
	FindByID(db *gorm.DB, id int64) (*entity.BlockedSlot, error)
	FindByContractorAndDate(db *gorm.DB, contractorID int64, date time.Time) ([]entity.BlockedSlot, error)
	// FindByContractorInRange returns slots dated from..to inclusive, ordered by date and start.
	FindByContractorInRange(db *gorm.DB, contractorID int64, from, to time.Time) ([]entity.BlockedSlot, error)
	FindByContractorFrom(db *gorm.DB, contractorID int64, from time.Time) ([]entity.BlockedSlot, error)
	Delete(db *gorm.DB, id int64) (int64, error)
}
