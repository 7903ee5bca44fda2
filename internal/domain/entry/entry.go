package entry

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrNegativeAmount = errors.New("amount must not be negative")
	ErrMissingKouden  = errors.New("kouden ID cannot be empty")
)

// Attendance classifies how the gift-giver participated in the memorial event
type Attendance string

const (
	AttendanceFuneral         Attendance = "FUNERAL"
	AttendanceCondolenceVisit Attendance = "CONDOLENCE_VISIT"
	AttendanceAbsent          Attendance = "ABSENT"
)

// NormalizeAttendance maps unknown or unset attendance values to ABSENT
func NormalizeAttendance(a Attendance) Attendance {
	switch a {
	case AttendanceFuneral, AttendanceCondolenceVisit, AttendanceAbsent:
		return a
	default:
		return AttendanceAbsent
	}
}

// ReturnStatus tracks progress of the reciprocal gift owed back to the giver
type ReturnStatus string

const (
	ReturnStatusPending         ReturnStatus = "PENDING"
	ReturnStatusPartialReturned ReturnStatus = "PARTIAL_RETURNED"
	ReturnStatusCompleted       ReturnStatus = "COMPLETED"
	ReturnStatusNotRequired     ReturnStatus = "NOT_REQUIRED"
)

// ValidAttendance reports whether a is one of the closed attendance values
func ValidAttendance(a Attendance) bool {
	switch a {
	case AttendanceFuneral, AttendanceCondolenceVisit, AttendanceAbsent:
		return true
	}
	return false
}

// ValidReturnStatus reports whether s is one of the closed return status values
func ValidReturnStatus(s ReturnStatus) bool {
	switch s {
	case ReturnStatusPending, ReturnStatusPartialReturned, ReturnStatusCompleted, ReturnStatusNotRequired:
		return true
	}
	return false
}

// Entry represents one recorded condolence gift in a record-book.
// Amounts are whole yen, no minor units.
type Entry struct {
	ID           uuid.UUID    `json:"id"`
	KoudenID     uuid.UUID    `json:"kouden_id"`
	Name         string       `json:"name"`
	Organization string       `json:"organization"`
	Amount       int64        `json:"amount"`
	Attendance   Attendance   `json:"attendance"`
	ReturnStatus ReturnStatus `json:"return_status"`
	IsDuplicate  bool         `json:"is_duplicate"`
	Version      int          `json:"version"` // For optimistic locking
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	DeletedAt    *time.Time   `json:"deleted_at,omitempty"`
}

// NewEntry creates a new entry for the given record-book. Unknown attendance
// falls back to ABSENT; an empty return status defaults to PENDING.
func NewEntry(koudenID uuid.UUID, name, organization string, amount int64, attendance Attendance, status ReturnStatus) (*Entry, error) {
	if koudenID == uuid.Nil {
		return nil, ErrMissingKouden
	}
	if amount < 0 {
		return nil, ErrNegativeAmount
	}
	if status == "" {
		status = ReturnStatusPending
	}
	if !ValidReturnStatus(status) {
		return nil, errors.New("invalid return status: " + string(status))
	}

	now := time.Now()
	return &Entry{
		ID:           uuid.New(),
		KoudenID:     koudenID,
		Name:         name,
		Organization: organization,
		Amount:       amount,
		Attendance:   NormalizeAttendance(attendance),
		ReturnStatus: status,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Update applies new field values and bumps the optimistic-lock version
func (e *Entry) Update(name, organization string, amount int64, attendance Attendance, status ReturnStatus) error {
	if amount < 0 {
		return ErrNegativeAmount
	}
	if !ValidReturnStatus(status) {
		return errors.New("invalid return status: " + string(status))
	}

	e.Name = name
	e.Organization = organization
	e.Amount = amount
	e.Attendance = NormalizeAttendance(attendance)
	e.ReturnStatus = status
	e.UpdatedAt = time.Now()
	e.Version++
	return nil
}

// NamePair is the minimal projection used by duplicate detection
type NamePair struct {
	ID   uuid.UUID
	Name string
}
