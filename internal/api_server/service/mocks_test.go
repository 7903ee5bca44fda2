package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/kouden-gift-ledger/internal/domain/entry"
	"github.com/kouden-gift-ledger/internal/domain/offering"
	"github.com/kouden-gift-ledger/internal/domain/report"
	"github.com/kouden-gift-ledger/internal/domain/schedule"
)

type MockEntryRepository struct {
	mock.Mock
}

func (m *MockEntryRepository) Create(ctx context.Context, e *entry.Entry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEntryRepository) GetByID(ctx context.Context, id uuid.UUID) (*entry.Entry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entry.Entry), args.Error(1)
}

func (m *MockEntryRepository) ListActiveByKouden(ctx context.Context, koudenID uuid.UUID) ([]*entry.Entry, error) {
	args := m.Called(ctx, koudenID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entry.Entry), args.Error(1)
}

func (m *MockEntryRepository) ListByKouden(ctx context.Context, koudenID uuid.UUID, page, perPage int) ([]*entry.Entry, int64, error) {
	args := m.Called(ctx, koudenID, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*entry.Entry), args.Get(1).(int64), args.Error(2)
}

func (m *MockEntryRepository) ListNamePairs(ctx context.Context, koudenID uuid.UUID) ([]entry.NamePair, error) {
	args := m.Called(ctx, koudenID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entry.NamePair), args.Error(1)
}

func (m *MockEntryRepository) Update(ctx context.Context, e *entry.Entry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEntryRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEntryRepository) ResetDuplicateFlags(ctx context.Context, koudenID uuid.UUID) error {
	args := m.Called(ctx, koudenID)
	return args.Error(0)
}

func (m *MockEntryRepository) SetDuplicateFlags(ctx context.Context, ids []uuid.UUID) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *MockEntryRepository) WithTx(tx pgx.Tx) entry.Repository {
	args := m.Called(tx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(entry.Repository)
}

type MockOfferingRepository struct {
	mock.Mock
}

func (m *MockOfferingRepository) Create(ctx context.Context, a *offering.Allocation) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockOfferingRepository) TotalForEntry(ctx context.Context, entryID uuid.UUID) (int64, error) {
	args := m.Called(ctx, entryID)
	return args.Get(0).(int64), args.Error(1)
}

type MockArchiveRepository struct {
	mock.Mock
}

func (m *MockArchiveRepository) Create(ctx context.Context, a *report.Archived) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockArchiveRepository) ListByKouden(ctx context.Context, koudenID uuid.UUID, page, perPage int) ([]*report.Archived, int64, error) {
	args := m.Called(ctx, koudenID, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*report.Archived), args.Get(1).(int64), args.Error(2)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, key string, value interface{}) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockCalendar struct {
	mock.Mock
}

func (m *MockCalendar) BusyIntervals(ctx context.Context, start, end time.Time) ([]schedule.BusyInterval, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]schedule.BusyInterval), args.Error(1)
}

func (m *MockCalendar) CreateEvent(ctx context.Context, r *schedule.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

// MockTxRunner runs the transaction function with a nil tx, letting tests
// verify transactional flows without a database
type MockTxRunner struct {
	mock.Mock
}

func (m *MockTxRunner) ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	args := m.Called(ctx, mock.Anything)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(nil)
}

var (
	_ entry.Repository         = (*MockEntryRepository)(nil)
	_ offering.Repository      = (*MockOfferingRepository)(nil)
	_ report.ArchiveRepository = (*MockArchiveRepository)(nil)
	_ schedule.Calendar        = (*MockCalendar)(nil)
	_ TxRunner                 = (*MockTxRunner)(nil)
)
