// Package calendar implements the schedule.Calendar interface against the
// Google Calendar API. Busy intervals come from the event list of the
// configured staff calendar; reservations are inserted as single events.
package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kouden-gift-ledger/internal/config"
	"github.com/kouden-gift-ledger/internal/domain/schedule"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleCalendar talks to one Google calendar
type GoogleCalendar struct {
	logger     *slog.Logger
	service    *gcal.Service
	calendarID string
	timeout    time.Duration
}

// NewGoogleCalendar builds a calendar client. When no credentials file is
// configured, application default credentials are used.
func NewGoogleCalendar(ctx context.Context, logger *slog.Logger, cfg *config.CalendarConfig) (*GoogleCalendar, error) {
	opts := []option.ClientOption{option.WithScopes(gcal.CalendarScope)}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	service, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return &GoogleCalendar{
		logger:     logger,
		service:    service,
		calendarID: cfg.CalendarID,
		timeout:    cfg.RequestTimeout,
	}, nil
}

// BusyIntervals lists events inside [start, end) and converts them to busy
// intervals. Date-only (all-day) events expand to full-day blocks; events
// missing a usable start or end yield a zero bound, which the overlay treats
// as non-blocking.
func (c *GoogleCalendar) BusyIntervals(ctx context.Context, start, end time.Time) ([]schedule.BusyInterval, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	events, err := c.service.Events.List(c.calendarID).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(callCtx).
		Do()
	if err != nil {
		c.logger.Error("Failed to list calendar events", "calendar_id", c.calendarID, "error", err)
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}

	busy := make([]schedule.BusyInterval, 0, len(events.Items))
	for _, item := range events.Items {
		busy = append(busy, schedule.BusyInterval{
			Start: parseEventTime(item.Start, start.Location()),
			End:   parseEventTime(item.End, start.Location()),
		})
	}

	return busy, nil
}

// CreateEvent inserts one reservation event; only success/failure is reported
func (c *GoogleCalendar) CreateEvent(ctx context.Context, r *schedule.Reservation) error {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	event := &gcal.Event{
		Summary:     r.Summary,
		Description: r.Description(),
		Start:       &gcal.EventDateTime{DateTime: r.Start.Format(time.RFC3339)},
		End:         &gcal.EventDateTime{DateTime: r.End.Format(time.RFC3339)},
		Attendees:   []*gcal.EventAttendee{{Email: r.Email}},
	}

	_, err := c.service.Events.Insert(c.calendarID, event).Context(callCtx).Do()
	if err != nil {
		c.logger.Error("Failed to create calendar event", "calendar_id", c.calendarID, "error", err)
		return fmt.Errorf("failed to create calendar event: %w", err)
	}

	return nil
}

// parseEventTime converts a Google event boundary into a time.Time.
// DateTime values are RFC3339; Date values mark all-day events and map to
// midnight in loc (the all-day end date from Google is already exclusive).
// Unparseable or absent boundaries return the zero time.
func parseEventTime(edt *gcal.EventDateTime, loc *time.Location) time.Time {
	if edt == nil {
		return time.Time{}
	}
	if edt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, edt.DateTime)
		if err != nil {
			return time.Time{}
		}
		return t
	}
	if edt.Date != "" {
		t, err := time.ParseInLocation("2006-01-02", edt.Date, loc)
		if err != nil {
			return time.Time{}
		}
		return t
	}
	return time.Time{}
}

var _ schedule.Calendar = (*GoogleCalendar)(nil)
