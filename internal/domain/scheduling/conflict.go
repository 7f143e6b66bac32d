package scheduling

import (
	"fmt"
	"time"

	"marketplace-booking/internal/domain/entity"
)

// Occupied is an active booking's interval.
type Occupied struct {
	BookingID int64
	Interval
}

// Blocked is a blocked slot materialized as absolute instants.
type Blocked struct {
	Slot entity.BlockedSlot
	Interval
}

// Conflicts lists everything that prevents a booking from being placed.
type Conflicts struct {
	Bookings []Occupied
	Blocked  []Blocked
}

func (c Conflicts) Empty() bool {
	return len(c.Bookings) == 0 && len(c.Blocked) == 0
}

// BlockedInterval resolves a blocked slot to [date+start, date+end) in loc.
func BlockedInterval(slot entity.BlockedSlot, loc *time.Location) (Interval, error) {
	start, err := ParseClock(slot.StartTime)
	if err != nil {
		return Interval{}, err
	}
	end, err := ParseClock(slot.EndTime)
	if err != nil {
		return Interval{}, err
	}
	if end <= start {
		return Interval{}, fmt.Errorf("blocked slot %d ends before it starts", slot.ID)
	}
	day := slot.Day(loc)
	return Interval{Start: start.On(day), End: end.On(day)}, nil
}

// SlotsNeeded is the number of quanta a booking of duration covers,
// rounded up so a partial quantum still counts.
func SlotsNeeded(duration, quantum time.Duration) int {
	if duration <= 0 || quantum <= 0 {
		return 0
	}
	return int((duration + quantum - 1) / quantum)
}

// Quanta splits [start, start+duration) into consecutive quantum-sized
// pieces. The last piece is clipped to the booking end.
func Quanta(start time.Time, duration, quantum time.Duration) []Interval {
	n := SlotsNeeded(duration, quantum)
	end := start.Add(duration)
	out := make([]Interval, 0, n)
	for i := 0; i < n; i++ {
		qs := start.Add(time.Duration(i) * quantum)
		qe := qs.Add(quantum)
		if qe.After(end) {
			qe = end
		}
		out = append(out, Interval{Start: qs, End: qe})
	}
	return out
}

// Checker answers "does [S, S+D) collide with anything?" against a fixed
// snapshot of a contractor's active bookings and blocked slots. It is
// read-only after construction and safe for concurrent use.
type Checker struct {
	quantum  time.Duration
	occupied []Occupied
	blocked  []Blocked
	exclude  int64
}

// NewChecker snapshots bookings and blocked slots. Bookings that are not
// PENDING or CONFIRMED are ignored; blocked slots with unusable times are
// skipped. A non-positive quantum falls back to DefaultQuantum.
func NewChecker(quantum time.Duration, bookings []entity.Booking, slots []entity.BlockedSlot, loc *time.Location) *Checker {
	if quantum <= 0 {
		quantum = DefaultQuantum
	}
	c := &Checker{quantum: quantum}
	for i := range bookings {
		b := &bookings[i]
		if !b.IsActive() {
			continue
		}
		end := b.EndsAt
		if end.IsZero() {
			end = b.ScheduledAt.Add(b.Duration())
		}
		c.occupied = append(c.occupied, Occupied{
			BookingID: b.ID,
			Interval:  Interval{Start: b.ScheduledAt, End: end},
		})
	}
	for _, s := range slots {
		iv, err := BlockedInterval(s, loc)
		if err != nil {
			continue
		}
		c.blocked = append(c.blocked, Blocked{Slot: s, Interval: iv})
	}
	return c
}

// Excluding returns a copy of c that ignores the given booking, used when
// a booking is moved and must not conflict with its own old position.
func (c *Checker) Excluding(bookingID int64) *Checker {
	cp := *c
	cp.exclude = bookingID
	return &cp
}

// Check returns every booking and blocked slot overlapping any quantum of
// [start, start+duration). Each offender is reported once.
func (c *Checker) Check(start time.Time, duration time.Duration) Conflicts {
	var out Conflicts
	seenBooking := make(map[int64]bool)
	seenBlocked := make(map[int]bool)

	for _, q := range Quanta(start, duration, c.quantum) {
		for _, o := range c.occupied {
			if o.BookingID == c.exclude || seenBooking[o.BookingID] {
				continue
			}
			if q.Overlaps(o.Interval) {
				seenBooking[o.BookingID] = true
				out.Bookings = append(out.Bookings, o)
			}
		}
		for i, b := range c.blocked {
			if seenBlocked[i] {
				continue
			}
			if q.Overlaps(b.Interval) {
				seenBlocked[i] = true
				out.Blocked = append(out.Blocked, b)
			}
		}
	}
	return out
}

// Accepts reports whether [start, start+duration) is free. It stops at
// the first conflict.
func (c *Checker) Accepts(start time.Time, duration time.Duration) bool {
	for _, q := range Quanta(start, duration, c.quantum) {
		for _, o := range c.occupied {
			if o.BookingID != c.exclude && q.Overlaps(o.Interval) {
				return false
			}
		}
		for _, b := range c.blocked {
			if q.Overlaps(b.Interval) {
				return false
			}
		}
	}
	return true
}
