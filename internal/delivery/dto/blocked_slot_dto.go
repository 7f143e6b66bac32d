package dto

import "time"

// Request DTOs

type CreateBlockedSlotRequest struct {
	Date      string  `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string  `json:"start_time" validate:"required,hhmm"`
	EndTime   string  `json:"end_time" validate:"required,hhmm"`
	Reason    *string `json:"reason,omitempty" validate:"omitempty,max=255"`
}

// Response DTOs

type BlockedSlotResponse struct {
	ID        int64     `json:"id"`
	Date      string    `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Reason    *string   `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type BlockedSlotListResponse struct {
	BlockedSlots []BlockedSlotResponse `json:"blocked_slots"`
	Total        int                   `json:"total"`
}

// BlockedSlotConflict is an existing blocked range hit by a new one.
type BlockedSlotConflict struct {
	ID        int64   `json:"id"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	Reason    *string `json:"reason,omitempty"`
}
