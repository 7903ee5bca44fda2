package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kouden-gift-ledger/internal/domain/schedule"
)

func TestScheduleServiceImpl_WeeklyAvailability(t *testing.T) {
	ctx := context.Background()
	weekStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // Monday

	t.Run("OverlaysBusyIntervals", func(t *testing.T) {
		mockCal := new(MockCalendar)
		svc := NewScheduleService(newTestLogger(), mockCal)

		busy := []schedule.BusyInterval{
			{Start: weekStart.Add(10 * time.Hour), End: weekStart.Add(11 * time.Hour)},
		}
		mockCal.On("BusyIntervals", ctx, weekStart, weekStart.AddDate(0, 0, 7)).Return(busy, nil).Once()

		days, err := svc.WeeklyAvailability(ctx, weekStart)

		require.NoError(t, err)
		require.Len(t, days, schedule.DaysPerWeek)
		for _, d := range days {
			assert.Len(t, d.Slots, schedule.HoursPerDay)
		}
		assert.False(t, days[0].Slots[10].Available)
		assert.True(t, days[0].Slots[9].Available)
		assert.True(t, days[0].Slots[11].Available)
		mockCal.AssertExpectations(t)
	})

	t.Run("CalendarError", func(t *testing.T) {
		mockCal := new(MockCalendar)
		svc := NewScheduleService(newTestLogger(), mockCal)
		calErr := errors.New("calendar unavailable")

		mockCal.On("BusyIntervals", ctx, weekStart, weekStart.AddDate(0, 0, 7)).Return(nil, calErr).Once()

		days, err := svc.WeeklyAvailability(ctx, weekStart)

		assert.Error(t, err)
		assert.Nil(t, days)
		assert.Equal(t, calErr, err)
	})
}

func TestScheduleServiceImpl_Reserve(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 3, 14, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		mockCal := new(MockCalendar)
		svc := NewScheduleService(newTestLogger(), mockCal)

		r := &schedule.Reservation{
			Summary: "相続相談",
			Email:   "visitor@example.com",
			Start:   start,
			End:     start.Add(time.Hour),
		}
		mockCal.On("CreateEvent", ctx, r).Return(nil).Once()

		err := svc.Reserve(ctx, r)

		assert.NoError(t, err)
		mockCal.AssertExpectations(t)
	})

	t.Run("ListsAllMissingFields", func(t *testing.T) {
		mockCal := new(MockCalendar)
		svc := NewScheduleService(newTestLogger(), mockCal)

		err := svc.Reserve(ctx, &schedule.Reservation{})

		var missingErr schedule.ErrMissingFields
		require.ErrorAs(t, err, &missingErr)
		assert.Equal(t, []string{"summary", "email", "start", "end"}, missingErr.Fields)
		mockCal.AssertNotCalled(t, "CreateEvent", mock.Anything, mock.Anything)
	})

	t.Run("CalendarError", func(t *testing.T) {
		mockCal := new(MockCalendar)
		svc := NewScheduleService(newTestLogger(), mockCal)
		calErr := errors.New("insert failed")

		r := &schedule.Reservation{
			Summary: "相続相談",
			Email:   "visitor@example.com",
			Start:   start,
			End:     start.Add(time.Hour),
		}
		mockCal.On("CreateEvent", ctx, r).Return(calErr).Once()

		err := svc.Reserve(ctx, r)

		assert.Error(t, err)
		assert.Equal(t, calErr, err)
	})
}
