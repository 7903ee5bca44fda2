// Package report holds the financial summary calculation for a record-book.
// Everything in this package is pure aggregation over rows already fetched
// from the stores; the I/O fan-out lives in the service layer.
package report

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/kouden-gift-ledger/internal/domain/entry"
)

var (
	ErrNoBands            = errors.New("at least one amount band is required")
	ErrBandsNotAnchored   = errors.New("first amount band must start at 0")
	ErrBandsNotContiguous = errors.New("amount bands must be contiguous with no gaps")
	ErrBandsBounded       = errors.New("last amount band must be unbounded")
)

// UnboundedMax marks a band with no upper limit
const UnboundedMax = int64(-1)

// AmountBand is one display bucket on the amount axis. Min and Max are both
// inclusive; Max == UnboundedMax means no upper limit.
type AmountBand struct {
	Label string `json:"label" bson:"label"`
	Min   int64  `json:"min" bson:"min"`
	Max   int64  `json:"max" bson:"max"`
}

// Contains reports whether v falls within the band
func (b AmountBand) Contains(v int64) bool {
	if v < b.Min {
		return false
	}
	return b.Max == UnboundedMax || v <= b.Max
}

// DefaultAmountBands returns the partition used by the distribution chart
func DefaultAmountBands() []AmountBand {
	return []AmountBand{
		{Label: "~5,000", Min: 0, Max: 5000},
		{Label: "5,001~10,000", Min: 5001, Max: 10000},
		{Label: "10,001~30,000", Min: 10001, Max: 30000},
		{Label: "30,001~", Min: 30001, Max: UnboundedMax},
	}
}

// ValidateBands checks that bands are contiguous and exhaustive over the
// non-negative integers, so every calculated total lands in exactly one band
func ValidateBands(bands []AmountBand) error {
	if len(bands) == 0 {
		return ErrNoBands
	}
	if bands[0].Min != 0 {
		return ErrBandsNotAnchored
	}
	for i := 1; i < len(bands); i++ {
		prev := bands[i-1]
		if prev.Max == UnboundedMax || bands[i].Min != prev.Max+1 {
			return ErrBandsNotContiguous
		}
	}
	if bands[len(bands)-1].Max != UnboundedMax {
		return ErrBandsBounded
	}
	return nil
}

// EntryTotal pairs an entry with its calculated total (amount + offerings)
type EntryTotal struct {
	EntryID         uuid.UUID `json:"entry_id" bson:"entry_id"`
	Name            string    `json:"name" bson:"name"`
	Amount          int64     `json:"amount" bson:"amount"`
	OfferingTotal   int64     `json:"offering_total" bson:"offering_total"`
	CalculatedTotal int64     `json:"calculated_total" bson:"calculated_total"`
}

// AttendanceCounts tallies entries per attendance category
type AttendanceCounts struct {
	Funeral         int `json:"funeral" bson:"funeral"`
	CondolenceVisit int `json:"condolence_visit" bson:"condolence_visit"`
	Absent          int `json:"absent" bson:"absent"`
}

// AttendanceDatum is a chart-ready {label, count} pair
type AttendanceDatum struct {
	Label string `json:"label" bson:"label"`
	Count int    `json:"count" bson:"count"`
}

// ReturnProgress summarizes return-gift completion for a record-book.
// Percentage is display-only and never fed back into calculations.
type ReturnProgress struct {
	Completed  int     `json:"completed" bson:"completed"`
	Pending    int     `json:"pending" bson:"pending"`
	Percentage float64 `json:"percentage" bson:"percentage"`
}

// BandCount is one bucket of the amount distribution
type BandCount struct {
	AmountBand `bson:",inline"`
	Count      int `json:"count" bson:"count"`
}

// Summary is the full financial rollup for one record-book
type Summary struct {
	KoudenID           uuid.UUID         `json:"kouden_id" bson:"kouden_id"`
	EntryCount         int               `json:"entry_count" bson:"entry_count"`
	EntryTotals        []EntryTotal      `json:"entry_totals" bson:"entry_totals"`
	TotalWithOfferings int64             `json:"total_with_offerings" bson:"total_with_offerings"`
	KoudenOnlyTotal    int64             `json:"kouden_only_total" bson:"kouden_only_total"`
	OfferingsTotal     int64             `json:"offerings_total" bson:"offerings_total"`
	Attendance         AttendanceCounts  `json:"attendance" bson:"attendance"`
	AttendanceData     []AttendanceDatum `json:"attendance_data" bson:"attendance_data"`
	ReturnProgress     ReturnProgress    `json:"return_progress" bson:"return_progress"`
	Distribution       []BandCount       `json:"distribution" bson:"distribution"`
	DegradedEntryIDs   []uuid.UUID       `json:"degraded_entry_ids,omitempty" bson:"degraded_entry_ids,omitempty"`
	GeneratedAt        time.Time         `json:"generated_at" bson:"generated_at"`
}

// BuildSummary aggregates entries and their offering totals into a Summary.
// offeringTotals maps entry ID to the externally aggregated allocation total;
// entries absent from the map contribute 0 (the degraded-lookup fallback).
// degraded lists the entry IDs whose offering lookup failed so callers can
// tell a true zero from a silent default.
func BuildSummary(koudenID uuid.UUID, entries []*entry.Entry, offeringTotals map[uuid.UUID]int64, degraded []uuid.UUID, bands []AmountBand) (*Summary, error) {
	if err := ValidateBands(bands); err != nil {
		return nil, err
	}

	s := &Summary{
		KoudenID:     koudenID,
		EntryCount:   len(entries),
		EntryTotals:  make([]EntryTotal, 0, len(entries)),
		Distribution: make([]BandCount, len(bands)),
		GeneratedAt:  time.Now(),
	}
	for i, b := range bands {
		s.Distribution[i] = BandCount{AmountBand: b}
	}
	if len(degraded) > 0 {
		s.DegradedEntryIDs = append([]uuid.UUID(nil), degraded...)
	}

	completed := 0
	for _, e := range entries {
		offeringTotal := offeringTotals[e.ID]
		calculated := e.Amount + offeringTotal

		s.EntryTotals = append(s.EntryTotals, EntryTotal{
			EntryID:         e.ID,
			Name:            e.Name,
			Amount:          e.Amount,
			OfferingTotal:   offeringTotal,
			CalculatedTotal: calculated,
		})
		s.KoudenOnlyTotal += e.Amount
		s.OfferingsTotal += offeringTotal
		s.TotalWithOfferings += calculated

		switch entry.NormalizeAttendance(e.Attendance) {
		case entry.AttendanceFuneral:
			s.Attendance.Funeral++
		case entry.AttendanceCondolenceVisit:
			s.Attendance.CondolenceVisit++
		default:
			s.Attendance.Absent++
		}

		if e.ReturnStatus == entry.ReturnStatusCompleted {
			completed++
		}

		for i := range s.Distribution {
			if s.Distribution[i].Contains(calculated) {
				s.Distribution[i].Count++
				break
			}
		}
	}

	s.ReturnProgress = ReturnProgress{
		Completed: completed,
		Pending:   len(entries) - completed,
	}
	if len(entries) > 0 {
		s.ReturnProgress.Percentage = 100 * float64(completed) / float64(len(entries))
	}

	s.AttendanceData = attendanceData(s.Attendance)

	return s, nil
}

// attendanceData converts counts into chart data, dropping empty categories.
// Order is fixed: funeral, condolence visit, absent.
func attendanceData(c AttendanceCounts) []AttendanceDatum {
	data := make([]AttendanceDatum, 0, 3)
	if c.Funeral > 0 {
		data = append(data, AttendanceDatum{Label: string(entry.AttendanceFuneral), Count: c.Funeral})
	}
	if c.CondolenceVisit > 0 {
		data = append(data, AttendanceDatum{Label: string(entry.AttendanceCondolenceVisit), Count: c.CondolenceVisit})
	}
	if c.Absent > 0 {
		data = append(data, AttendanceDatum{Label: string(entry.AttendanceAbsent), Count: c.Absent})
	}
	return data
}
