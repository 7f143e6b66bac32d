package entity

import "time"

// BlockedSlot is a one-off exclusion of [StartTime, EndTime) on Date.
// Date carries only the calendar day; times are HH:mm in server-local time.
type BlockedSlot struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ContractorID int64     `gorm:"not null;index:idx_blocked_contractor_date" json:"contractor_id"`
	Date         time.Time `gorm:"type:date;not null;index:idx_blocked_contractor_date" json:"date"`
	StartTime    string    `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime      string    `gorm:"type:varchar(5);not null" json:"end_time"`
	Reason       *string   `gorm:"type:text" json:"reason,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (BlockedSlot) TableName() string {
	return "blocked_slots"
}

// Day returns Date as midnight in loc. The store hands dates back at UTC
// midnight, so only the calendar fields are kept.
func (b *BlockedSlot) Day(loc *time.Location) time.Time {
	y, m, d := b.Date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
