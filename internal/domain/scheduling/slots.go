package scheduling

import (
	"context"
	"iter"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultQuantum     = 30 * time.Minute
	DefaultHorizonDays = 14
	DefaultLeadTime    = 2 * time.Hour
)

// Slot is one bookable start instant.
type Slot struct {
	Date    string    // yyyy-MM-dd
	Time    string    // HH:mm
	Instant time.Time
}

func newSlot(t time.Time) Slot {
	return Slot{Date: t.Format("2006-01-02"), Time: t.Format("15:04"), Instant: t}
}

// Generator enumerates candidate start instants on a fixed quantum grid
// anchored at each day's opening time.
type Generator struct {
	Quantum     time.Duration
	HorizonDays int
	LeadTime    time.Duration
	Location    *time.Location
}

func (g Generator) location() *time.Location {
	if g.Location == nil {
		return time.Local
	}
	return g.Location
}

func (g Generator) quantum() time.Duration {
	if g.Quantum <= 0 {
		return DefaultQuantum
	}
	return g.Quantum
}

// Days returns midnight of today through today+HorizonDays, inclusive.
func (g Generator) Days(now time.Time) []time.Time {
	today := StartOfDay(now, g.location())
	days := make([]time.Time, 0, g.HorizonDays+1)
	for i := 0; i <= g.HorizonDays; i++ {
		days = append(days, today.AddDate(0, 0, i))
	}
	return days
}

// Day yields the candidates of a single day: grid points t with
// t+duration inside the day's window, later than now and no earlier than
// now+LeadTime.
func (g Generator) Day(week Week, day time.Time, duration time.Duration, now time.Time) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		window := week.For(day)
		if !window.Open || duration <= 0 {
			return
		}
		open := window.Start.On(day)
		last := window.End.On(day).Add(-duration)
		earliest := now.Add(g.LeadTime)
		for t := open; !t.After(last); t = t.Add(g.quantum()) {
			if !t.After(now) || t.Before(earliest) {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}

// Candidates yields every day's candidates in chronological order.
func (g Generator) Candidates(week Week, duration time.Duration, now time.Time) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		for _, day := range g.Days(now) {
			for t := range g.Day(week, day, duration, now) {
				if !yield(t) {
					return
				}
			}
		}
	}
}

// Available filters the candidates through checker. Days are evaluated
// concurrently and merged back in order; at most limit slots are returned
// (limit <= 0 means no limit).
func (g Generator) Available(ctx context.Context, week Week, checker *Checker, duration time.Duration, now time.Time, limit int) ([]Slot, error) {
	days := g.Days(now)
	perDay := make([][]Slot, len(days))

	eg, ctx := errgroup.WithContext(ctx)
	for i, day := range days {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for t := range g.Day(week, day, duration, now) {
				if checker.Accepts(t, duration) {
					perDay[i] = append(perDay[i], newSlot(t))
				}
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var out []Slot
	for _, slots := range perDay {
		for _, s := range slots {
			if limit > 0 && len(out) >= limit {
				return out, nil
			}
			out = append(out, s)
		}
	}
	return out, nil
}
