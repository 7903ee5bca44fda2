package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/kouden-gift-ledger/internal/domain/schedule"
)

// ScheduleServiceImpl implements the ScheduleService interface
type ScheduleServiceImpl struct {
	calendar schedule.Calendar
	logger   *slog.Logger
}

// NewScheduleService creates a new schedule service
func NewScheduleService(logger *slog.Logger, calendar schedule.Calendar) ScheduleService {
	return &ScheduleServiceImpl{
		calendar: calendar,
		logger:   logger,
	}
}

// WeeklyAvailability overlays calendar busy periods onto a 7-day hourly grid
func (s *ScheduleServiceImpl) WeeklyAvailability(ctx context.Context, weekStart time.Time) ([]schedule.Day, error) {
	weekEnd := weekStart.AddDate(0, 0, schedule.DaysPerWeek)

	busy, err := s.calendar.BusyIntervals(ctx, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}

	return schedule.BuildWeek(weekStart, busy), nil
}

// Reserve validates the reservation and books it on the calendar
func (s *ScheduleServiceImpl) Reserve(ctx context.Context, r *schedule.Reservation) error {
	if err := r.Validate(); err != nil {
		return err
	}

	if err := s.calendar.CreateEvent(ctx, r); err != nil {
		return err
	}

	s.logger.Info("Consultation reserved",
		"start", r.Start.Format(time.RFC3339),
		"end", r.End.Format(time.RFC3339),
	)
	return nil
}
