package entity

import "time"

// WeeklyAvailability is one recurring working-hours row. DayOfWeek follows
// time.Weekday: 0 = Sunday ... 6 = Saturday. At most one row per contractor and day.
type WeeklyAvailability struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ContractorID int64     `gorm:"not null;uniqueIndex:idx_availability_contractor_day" json:"contractor_id"`
	DayOfWeek    int       `gorm:"not null;uniqueIndex:idx_availability_contractor_day" json:"day_of_week"`
	StartTime    string    `gorm:"type:varchar(5);not null" json:"start_time"` // HH:mm
	EndTime      string    `gorm:"type:varchar(5);not null" json:"end_time"`   // HH:mm
	IsAvailable  bool      `gorm:"not null;default:true" json:"is_available"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WeeklyAvailability) TableName() string {
	return "contractor_availability"
}
