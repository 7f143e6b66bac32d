package dto

import "time"

// Request DTOs

type AvailabilityDayRequest struct {
	DayOfWeek   *int   `json:"day_of_week" validate:"required,gte=0,lte=6"`
	StartTime   string `json:"start_time" validate:"required,hhmm"`
	EndTime     string `json:"end_time" validate:"required,hhmm"`
	IsAvailable *bool  `json:"is_available"`
}

// SetAvailabilityRequest replaces every weekly row of the contractor.
type SetAvailabilityRequest struct {
	Availability []AvailabilityDayRequest `json:"availability" validate:"max=7,dive"`
}

// Response DTOs

type AvailabilityDayResponse struct {
	DayOfWeek   int    `json:"day_of_week"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	IsAvailable bool   `json:"is_available"`
}

type AvailabilityResponse struct {
	Availability []AvailabilityDayResponse `json:"availability"`
	IsDefault    bool                      `json:"is_default"`
}

type SlotResponse struct {
	Date     string    `json:"date"`
	Time     string    `json:"time"`
	DateTime time.Time `json:"datetime"`
}

type AvailableSlotsResponse struct {
	ServiceID         int64          `json:"service_id"`
	DurationMinutes   int            `json:"duration_minutes"`
	AvailableSlots    []SlotResponse `json:"available_slots"`
	NextAvailableSlot *SlotResponse  `json:"next_available_slot"`
}
