package scheduling

import (
	"time"

	"marketplace-booking/internal/domain/entity"
)

var (
	defaultOpen  = MustClock("09:00")
	defaultClose = MustClock("17:00")
)

// DayWindow is the resolved working window of one weekday.
type DayWindow struct {
	Day   time.Weekday
	Start Clock
	End   Clock
	Open  bool
}

// Week is indexed by time.Weekday (0 = Sunday).
type Week [7]DayWindow

// DefaultWeek is used for contractors that never configured availability:
// Monday to Friday 09:00-17:00, weekend closed.
func DefaultWeek() Week {
	var w Week
	for d := range w {
		day := time.Weekday(d)
		w[d] = DayWindow{
			Day:   day,
			Start: defaultOpen,
			End:   defaultClose,
			Open:  day != time.Saturday && day != time.Sunday,
		}
	}
	return w
}

// ResolveWeek turns sparse availability rows into a full week. Without rows
// the default week applies; with rows only the covered days can be open and
// every other day is closed. Rows with an unusable window resolve to closed.
func ResolveWeek(rows []entity.WeeklyAvailability) Week {
	w := DefaultWeek()
	if len(rows) == 0 {
		return w
	}
	for d := range w {
		w[d].Open = false
	}

	for _, row := range rows {
		if row.DayOfWeek < 0 || row.DayOfWeek > 6 {
			continue
		}
		start, err := ParseClock(row.StartTime)
		if err != nil {
			continue
		}
		end, err := ParseClock(row.EndTime)
		if err != nil || end <= start {
			continue
		}
		w[row.DayOfWeek] = DayWindow{
			Day:   time.Weekday(row.DayOfWeek),
			Start: start,
			End:   end,
			Open:  row.IsAvailable,
		}
	}
	return w
}

// For returns the window of day's weekday.
func (w Week) For(day time.Time) DayWindow {
	return w[day.Weekday()]
}
