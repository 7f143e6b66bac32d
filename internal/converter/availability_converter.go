package converter

import (
	"marketplace-booking/internal/delivery/dto"
	"marketplace-booking/internal/domain/scheduling"
)

// WeekToResponse lists the resolved week from Sunday to Saturday.
func WeekToResponse(week scheduling.Week, isDefault bool) *dto.AvailabilityResponse {
	days := make([]dto.AvailabilityDayResponse, len(week))
	for i, w := range week {
		days[i] = dto.AvailabilityDayResponse{
			DayOfWeek:   int(w.Day),
			StartTime:   w.Start.String(),
			EndTime:     w.End.String(),
			IsAvailable: w.Open,
		}
	}
	return &dto.AvailabilityResponse{Availability: days, IsDefault: isDefault}
}

func SlotToResponse(slot scheduling.Slot) dto.SlotResponse {
	return dto.SlotResponse{Date: slot.Date, Time: slot.Time, DateTime: slot.Instant}
}

func SlotsToResponses(slots []scheduling.Slot) []dto.SlotResponse {
	responses := make([]dto.SlotResponse, len(slots))
	for i, s := range slots {
		responses[i] = SlotToResponse(s)
	}
	return responses
}

// ConflictsToResponse flattens checker output for the caller.
func ConflictsToResponse(c scheduling.Conflicts) []dto.ScheduleConflict {
	out := make([]dto.ScheduleConflict, 0, len(c.Bookings)+len(c.Blocked))
	for _, b := range c.Bookings {
		out = append(out, dto.ScheduleConflict{
			Type:      "booking",
			ID:        b.BookingID,
			StartTime: b.Start,
			EndTime:   b.End,
		})
	}
	for _, b := range c.Blocked {
		out = append(out, dto.ScheduleConflict{
			Type:      "blocked_slot",
			ID:        b.Slot.ID,
			StartTime: b.Start,
			EndTime:   b.End,
			Reason:    b.Slot.Reason,
		})
	}
	return out
}
