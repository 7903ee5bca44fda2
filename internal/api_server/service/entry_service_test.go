package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/kouden-gift-ledger/internal/domain/entry"
	"github.com/kouden-gift-ledger/internal/platform/cache"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestEntryServiceImpl_CreateEntry(t *testing.T) {
	ctx := context.Background()
	koudenID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockEntryRepository)
		mockPublisher := new(MockPublisher)
		c := cache.NewInMemoryCache()
		service := NewEntryService(newTestLogger(), mockRepo, nil, c, mockPublisher)

		mockRepo.On("Create", ctx, mock.AnythingOfType("*entry.Entry")).Return(nil).Once()
		mockPublisher.On("Publish", ctx, AuditEntryCreated, mock.AnythingOfType("AuditEvent")).Return(nil).Once()

		e, err := service.CreateEntry(ctx, koudenID, "山田太郎", "山田商事", 10000, entry.AttendanceFuneral, "")

		assert.NoError(t, err)
		assert.NotNil(t, e)
		assert.Equal(t, koudenID, e.KoudenID)
		assert.Equal(t, "山田太郎", e.Name)
		assert.Equal(t, int64(10000), e.Amount)
		assert.Equal(t, entry.ReturnStatusPending, e.ReturnStatus, "empty status should default to PENDING")
		assert.Equal(t, 1, e.Version)
		mockRepo.AssertExpectations(t)
		mockPublisher.AssertExpectations(t)
	})

	t.Run("UnknownAttendanceFallsBackToAbsent", func(t *testing.T) {
		mockRepo := new(MockEntryRepository)
		service := NewEntryService(newTestLogger(), mockRepo, nil, nil, nil)

		mockRepo.On("Create", ctx, mock.AnythingOfType("*entry.Entry")).Return(nil).Once()

		e, err := service.CreateEntry(ctx, koudenID, "佐藤花子", "", 5000, entry.Attendance("UNKNOWN"), entry.ReturnStatusPending)

		assert.NoError(t, err)
		assert.Equal(t, entry.AttendanceAbsent, e.Attendance)
		mockRepo.AssertExpectations(t)
	})

	t.Run("NegativeAmount", func(t *testing.T) {
		mockRepo := new(MockEntryRepository)
		service := NewEntryService(newTestLogger(), mockRepo, nil, nil, nil)

		e, err := service.CreateEntry(ctx, koudenID, "山田太郎", "", -1, entry.AttendanceFuneral, entry.ReturnStatusPending)

		assert.ErrorIs(t, err, entry.ErrNegativeAmount)
		assert.Nil(t, e)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("RepositoryError", func(t *testing.T) {
		mockRepo := new(MockEntryRepository)
		service := NewEntryService(newTestLogger(), mockRepo, nil, nil, nil)
		repoErr := errors.New("database error")

		mockRepo.On("Create", ctx, mock.AnythingOfType("*entry.Entry")).Return(repoErr).Once()

		e, err := service.CreateEntry(ctx, koudenID, "山田太郎", "", 10000, entry.AttendanceFuneral, entry.ReturnStatusPending)

		assert.Error(t, err)
		assert.Nil(t, e)
		assert.Equal(t, repoErr, err)
		mockRepo.AssertExpectations(t)
	})
}

func TestEntryServiceImpl_UpdateEntry(t *testing.T) {
	ctx := context.Background()
	koudenID := uuid.New()
	entryID := uuid.New()

	existing := func() *entry.Entry {
		return &entry.Entry{
			ID:           entryID,
			KoudenID:     koudenID,
			Name:         "山田太郎",
			Amount:       10000,
			Attendance:   entry.AttendanceFuneral,
			ReturnStatus: entry.ReturnStatusPending,
			Version:      1,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}
	}

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockEntryRepository)
		service := NewEntryService(newTestLogger(), mockRepo, nil, nil, nil)

		mockRepo.On("GetByID", ctx, entryID).Return(existing(), nil).Once()
		mockRepo.On("Update", ctx, mock.AnythingOfType("*entry.Entry")).Return(nil).Once()

		e, err := service.UpdateEntry(ctx, entryID, "山田太郎", "山田商事", 30000, entry.AttendanceFuneral, entry.ReturnStatusCompleted)

		assert.NoError(t, err)
		assert.Equal(t, int64(30000), e.Amount)
		assert.Equal(t, entry.ReturnStatusCompleted, e.ReturnStatus)
		assert.Equal(t, 2, e.Version, "update should bump the version")
		mockRepo.AssertExpectations(t)
	})

	t.Run("ConcurrentModification", func(t *testing.T) {
		mockRepo := new(MockEntryRepository)
		service := NewEntryService(newTestLogger(), mockRepo, nil, nil, nil)

		mockRepo.On("GetByID", ctx, entryID).Return(existing(), nil).Once()
		mockRepo.On("Update", ctx, mock.AnythingOfType("*entry.Entry")).
			Return(entry.ErrConcurrentModification{EntryID: entryID}).Once()

		e, err := service.UpdateEntry(ctx, entryID, "山田太郎", "", 20000, entry.AttendanceFuneral, entry.ReturnStatusPending)

		assert.Error(t, err)
		assert.Nil(t, e)
		var concurrentErr entry.ErrConcurrentModification
		assert.ErrorAs(t, err, &concurrentErr)
		mockRepo.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockRepo := new(MockEntryRepository)
		service := NewEntryService(newTestLogger(), mockRepo, nil, nil, nil)

		mockRepo.On("GetByID", ctx, entryID).Return(nil, entry.ErrEntryNotFound{EntryID: entryID}).Once()

		e, err := service.UpdateEntry(ctx, entryID, "山田太郎", "", 20000, entry.AttendanceFuneral, entry.ReturnStatusPending)

		assert.Error(t, err)
		assert.Nil(t, e)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestEntryServiceImpl_DeleteEntry(t *testing.T) {
	ctx := context.Background()
	koudenID := uuid.New()
	entryID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockEntryRepository)
		mockPublisher := new(MockPublisher)
		c := cache.NewInMemoryCache()
		service := NewEntryService(newTestLogger(), mockRepo, nil, c, mockPublisher)

		// Seed the cache to verify invalidation
		err := c.Set(ctx, summaryCacheKey(koudenID), []byte("{}"), time.Minute)
		assert.NoError(t, err)

		e := &entry.Entry{ID: entryID, KoudenID: koudenID, Version: 1}
		mockRepo.On("GetByID", ctx, entryID).Return(e, nil).Once()
		mockRepo.On("SoftDelete", ctx, entryID).Return(nil).Once()
		mockPublisher.On("Publish", ctx, AuditEntryDeleted, mock.AnythingOfType("AuditEvent")).Return(nil).Once()

		err = service.DeleteEntry(ctx, entryID)

		assert.NoError(t, err)
		_, err = c.Get(ctx, summaryCacheKey(koudenID))
		assert.ErrorIs(t, err, cache.ErrNotFound, "summary cache should be invalidated")
		mockRepo.AssertExpectations(t)
		mockPublisher.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockRepo := new(MockEntryRepository)
		service := NewEntryService(newTestLogger(), mockRepo, nil, nil, nil)

		mockRepo.On("GetByID", ctx, entryID).Return(nil, entry.ErrEntryNotFound{EntryID: entryID}).Once()

		err := service.DeleteEntry(ctx, entryID)

		assert.Error(t, err)
		mockRepo.AssertNotCalled(t, "SoftDelete", mock.Anything, mock.Anything)
	})
}

func TestEntryServiceImpl_AllocateOffering(t *testing.T) {
	ctx := context.Background()
	koudenID := uuid.New()
	entryID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockEntryRepository)
		mockOfferings := new(MockOfferingRepository)
		service := NewEntryService(newTestLogger(), mockRepo, mockOfferings, nil, nil)

		e := &entry.Entry{ID: entryID, KoudenID: koudenID, Version: 1}
		mockRepo.On("GetByID", ctx, entryID).Return(e, nil).Once()
		mockOfferings.On("Create", ctx, mock.AnythingOfType("*offering.Allocation")).Return(nil).Once()

		a, err := service.AllocateOffering(ctx, entryID, "供花", 15000)

		assert.NoError(t, err)
		assert.NotNil(t, a)
		assert.Equal(t, entryID, a.EntryID)
		assert.Equal(t, int64(15000), a.Amount)
		mockRepo.AssertExpectations(t)
		mockOfferings.AssertExpectations(t)
	})

	t.Run("DeletedEntry", func(t *testing.T) {
		mockRepo := new(MockEntryRepository)
		mockOfferings := new(MockOfferingRepository)
		service := NewEntryService(newTestLogger(), mockRepo, mockOfferings, nil, nil)

		deletedAt := time.Now()
		e := &entry.Entry{ID: entryID, KoudenID: koudenID, Version: 1, DeletedAt: &deletedAt}
		mockRepo.On("GetByID", ctx, entryID).Return(e, nil).Once()

		a, err := service.AllocateOffering(ctx, entryID, "供花", 15000)

		assert.Error(t, err)
		assert.Nil(t, a)
		var notFoundErr entry.ErrEntryNotFound
		assert.ErrorAs(t, err, &notFoundErr)
		mockOfferings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
