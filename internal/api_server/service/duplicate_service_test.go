package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kouden-gift-ledger/internal/domain/entry"
	"github.com/kouden-gift-ledger/internal/platform/cache"
)

func TestDuplicateServiceImpl_DetectDuplicates(t *testing.T) {
	ctx := context.Background()
	koudenID := uuid.New()
	actorID := "user-123"

	t.Run("FlagsExactTrimmedMatches", func(t *testing.T) {
		mockRepo := new(MockEntryRepository)
		mockRunner := new(MockTxRunner)
		mockPublisher := new(MockPublisher)
		svc := NewDuplicateService(newTestLogger(), mockRunner, mockRepo, nil, mockPublisher)

		idA := uuid.New()
		idB := uuid.New()
		idC := uuid.New()
		pairs := []entry.NamePair{
			{ID: idA, Name: "山田太郎"},
			{ID: idB, Name: " 山田太郎 "}, // Leading/trailing whitespace is trimmed
			{ID: idC, Name: "佐藤花子"},
		}

		mockRepo.On("ListNamePairs", ctx, koudenID).Return(pairs, nil).Once()
		mockRunner.On("ExecuteTx", ctx, mock.Anything).Return(nil).Once()
		mockRepo.On("WithTx", mock.Anything).Return(mockRepo).Once()
		mockRepo.On("ResetDuplicateFlags", ctx, koudenID).Return(nil).Once()
		mockRepo.On("SetDuplicateFlags", ctx, []uuid.UUID{idA, idB}).Return(nil).Once()
		mockPublisher.On("Publish", ctx, AuditDuplicateCheckRun, mock.AnythingOfType("AuditEvent")).Return(nil).Once()

		groups, err := svc.DetectDuplicates(ctx, actorID, koudenID)

		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, "山田太郎", groups[0].Name)
		assert.Equal(t, 2, groups[0].Count)
		assert.Equal(t, []uuid.UUID{idA, idB}, groups[0].IDs)
		mockRepo.AssertExpectations(t)
		mockRunner.AssertExpectations(t)
		mockPublisher.AssertExpectations(t)
	})

	t.Run("NoDuplicatesStillResetsFlags", func(t *testing.T) {
		mockRepo := new(MockEntryRepository)
		mockRunner := new(MockTxRunner)
		svc := NewDuplicateService(newTestLogger(), mockRunner, mockRepo, nil, nil)

		pairs := []entry.NamePair{
			{ID: uuid.New(), Name: "山田太郎"},
			{ID: uuid.New(), Name: "佐藤花子"},
		}

		mockRepo.On("ListNamePairs", ctx, koudenID).Return(pairs, nil).Once()
		mockRunner.On("ExecuteTx", ctx, mock.Anything).Return(nil).Once()
		mockRepo.On("WithTx", mock.Anything).Return(mockRepo).Once()
		mockRepo.On("ResetDuplicateFlags", ctx, koudenID).Return(nil).Once()
		mockRepo.On("SetDuplicateFlags", ctx, []uuid.UUID(nil)).Return(nil).Once()

		groups, err := svc.DetectDuplicates(ctx, actorID, koudenID)

		require.NoError(t, err)
		assert.Empty(t, groups, "a previously flagged entry loses its flag after rename")
		mockRepo.AssertExpectations(t)
	})

	t.Run("BlankNamesNeverMatch", func(t *testing.T) {
		mockRepo := new(MockEntryRepository)
		mockRunner := new(MockTxRunner)
		svc := NewDuplicateService(newTestLogger(), mockRunner, mockRepo, nil, nil)

		pairs := []entry.NamePair{
			{ID: uuid.New(), Name: ""},
			{ID: uuid.New(), Name: "   "},
		}

		mockRepo.On("ListNamePairs", ctx, koudenID).Return(pairs, nil).Once()
		mockRunner.On("ExecuteTx", ctx, mock.Anything).Return(nil).Once()
		mockRepo.On("WithTx", mock.Anything).Return(mockRepo).Once()
		mockRepo.On("ResetDuplicateFlags", ctx, koudenID).Return(nil).Once()
		mockRepo.On("SetDuplicateFlags", ctx, []uuid.UUID(nil)).Return(nil).Once()

		groups, err := svc.DetectDuplicates(ctx, actorID, koudenID)

		require.NoError(t, err)
		assert.Empty(t, groups)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		mockRepo := new(MockEntryRepository)
		mockRunner := new(MockTxRunner)
		svc := NewDuplicateService(newTestLogger(), mockRunner, mockRepo, nil, nil)

		groups, err := svc.DetectDuplicates(ctx, "", koudenID)

		assert.ErrorIs(t, err, ErrUnauthenticated)
		assert.Nil(t, groups)
		mockRepo.AssertNotCalled(t, "ListNamePairs", mock.Anything, mock.Anything)
	})

	t.Run("InvalidatesSummaryCache", func(t *testing.T) {
		mockRepo := new(MockEntryRepository)
		mockRunner := new(MockTxRunner)
		c := cache.NewInMemoryCache()
		svc := NewDuplicateService(newTestLogger(), mockRunner, mockRepo, c, nil)

		err := c.Set(ctx, summaryCacheKey(koudenID), []byte("{}"), time.Minute)
		require.NoError(t, err)

		mockRepo.On("ListNamePairs", ctx, koudenID).Return([]entry.NamePair{}, nil).Once()
		mockRunner.On("ExecuteTx", ctx, mock.Anything).Return(nil).Once()
		mockRepo.On("WithTx", mock.Anything).Return(mockRepo).Once()
		mockRepo.On("ResetDuplicateFlags", ctx, koudenID).Return(nil).Once()
		mockRepo.On("SetDuplicateFlags", ctx, []uuid.UUID(nil)).Return(nil).Once()

		_, err = svc.DetectDuplicates(ctx, actorID, koudenID)
		require.NoError(t, err)

		_, err = c.Get(ctx, summaryCacheKey(koudenID))
		assert.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("TransactionError", func(t *testing.T) {
		mockRepo := new(MockEntryRepository)
		mockRunner := new(MockTxRunner)
		svc := NewDuplicateService(newTestLogger(), mockRunner, mockRepo, nil, nil)
		txErr := errors.New("tx failed")

		mockRepo.On("ListNamePairs", ctx, koudenID).Return([]entry.NamePair{}, nil).Once()
		mockRunner.On("ExecuteTx", ctx, mock.Anything).Return(txErr).Once()

		groups, err := svc.DetectDuplicates(ctx, actorID, koudenID)

		assert.Error(t, err)
		assert.Nil(t, groups)
		assert.Equal(t, txErr, err)
	})
}
