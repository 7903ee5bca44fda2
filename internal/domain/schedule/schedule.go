// Package schedule computes the weekly consultation availability grid from
// busy intervals supplied by the external calendar, and models reservation
// requests against the same calendar.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// HoursPerDay is the number of hourly slots emitted per day
	HoursPerDay = 24
	// DaysPerWeek is the number of day records emitted per availability query
	DaysPerWeek = 7
)

// BusyInterval is one blocked period from the external calendar.
// Intervals with a zero start or end are treated as non-blocking.
type BusyInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// blocks reports whether the interval overlaps [slotStart, slotEnd).
// Touching endpoints do not overlap: a slot abutting a busy interval stays free.
func (b BusyInterval) blocks(slotStart, slotEnd time.Time) bool {
	if b.Start.IsZero() || b.End.IsZero() {
		return false
	}
	return slotStart.Before(b.End) && b.Start.Before(slotEnd)
}

// Slot is one hourly availability window
type Slot struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Available bool      `json:"available"`
}

// Day holds the 24 hourly slots for one date
type Day struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Slots []Slot `json:"slots"`
}

// BuildWeek overlays busy intervals onto a 7-day grid of hourly slots
// starting at weekStart. Slot boundaries follow weekStart's location.
func BuildWeek(weekStart time.Time, busy []BusyInterval) []Day {
	days := make([]Day, 0, DaysPerWeek)
	for d := 0; d < DaysPerWeek; d++ {
		dayStart := weekStart.AddDate(0, 0, d)
		day := Day{
			Date:  dayStart.Format("2006-01-02"),
			Slots: make([]Slot, 0, HoursPerDay),
		}
		for h := 0; h < HoursPerDay; h++ {
			slotStart := dayStart.Add(time.Duration(h) * time.Hour)
			slotEnd := slotStart.Add(time.Hour)
			available := true
			for _, b := range busy {
				if b.blocks(slotStart, slotEnd) {
					available = false
					break
				}
			}
			day.Slots = append(day.Slots, Slot{
				Start:     slotStart,
				End:       slotEnd,
				Available: available,
			})
		}
		days = append(days, day)
	}
	return days
}

// ErrMissingFields reports which reservation fields were absent
type ErrMissingFields struct {
	Fields []string
}

func (e ErrMissingFields) Error() string {
	return "missing required reservation fields: " + strings.Join(e.Fields, ", ")
}

// Reservation is a consultation booking request forwarded to the calendar
type Reservation struct {
	Summary string    `json:"summary"`
	Email   string    `json:"email"`
	Notes   string    `json:"notes,omitempty"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

// Validate checks that all required fields are present, returning a single
// error naming every missing field
func (r *Reservation) Validate() error {
	var missing []string
	if strings.TrimSpace(r.Summary) == "" {
		missing = append(missing, "summary")
	}
	if strings.TrimSpace(r.Email) == "" {
		missing = append(missing, "email")
	}
	if r.Start.IsZero() {
		missing = append(missing, "start")
	}
	if r.End.IsZero() {
		missing = append(missing, "end")
	}
	if len(missing) > 0 {
		return ErrMissingFields{Fields: missing}
	}
	if !r.End.After(r.Start) {
		return errors.New("reservation end must be after start")
	}
	return nil
}

// Description renders the event body sent to the calendar
func (r *Reservation) Description() string {
	desc := fmt.Sprintf("Requested by: %s", r.Email)
	if r.Notes != "" {
		desc += "\n\n" + r.Notes
	}
	return desc
}

// Calendar abstracts the external calendar service
type Calendar interface {
	// BusyIntervals returns blocked periods inside [start, end)
	BusyIntervals(ctx context.Context, start, end time.Time) ([]BusyInterval, error)

	// CreateEvent books one event; only success/failure is consumed
	CreateEvent(ctx context.Context, r *Reservation) error
}
