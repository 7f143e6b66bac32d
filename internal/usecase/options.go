package usecase

import (
	"time"

	"marketplace-booking/config"
	"marketplace-booking/internal/domain/scheduling"
)

// SchedulingOptions carries the booking policy and the clock shared by the
// scheduling usecases.
type SchedulingOptions struct {
	Rules             scheduling.Rules
	Generator         scheduling.Generator
	MaxActiveBookings int
	SlotLimit         int
	Location          *time.Location
	Now               func() time.Time
}

func NewSchedulingOptions(cfg *config.Config, loc *time.Location) SchedulingOptions {
	return SchedulingOptions{
		Rules: scheduling.Rules{
			LeadTime:     cfg.Booking.LeadTime,
			CancelCutoff: cfg.Booking.CancelCutoff,
		},
		Generator: scheduling.Generator{
			Quantum:     cfg.Slots.Quantum,
			HorizonDays: cfg.Slots.HorizonDays,
			LeadTime:    cfg.Booking.LeadTime,
			Location:    loc,
		},
		MaxActiveBookings: cfg.Booking.MaxActive,
		SlotLimit:         cfg.Slots.Limit,
		Location:          loc,
		Now:               time.Now,
	}
}

func (o SchedulingOptions) now() time.Time {
	if o.Now == nil {
		return time.Now().In(o.location())
	}
	return o.Now().In(o.location())
}

func (o SchedulingOptions) location() *time.Location {
	if o.Location == nil {
		return time.Local
	}
	return o.Location
}
