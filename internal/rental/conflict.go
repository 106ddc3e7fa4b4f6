package rental

import (
	"fmt"
	"time"
)

// Range is a booked interval. Only the calendar days matter for conflicts.
type Range struct {
	OrderID uint64    `json:"order_id,omitempty"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

// ConflictError reports the first existing range the candidate overlaps.
type ConflictError struct {
	With Range
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s (%s - %s)", ErrBookingConflict.Error(),
		e.With.Start.Format("2006-01-02"), e.With.End.Format("2006-01-02"))
}

func (e *ConflictError) Unwrap() error { return ErrBookingConflict }

// TruncateDay drops the time of day in loc.
func TruncateDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// Overlaps is the day-granularity overlap test.
func Overlaps(a, b Range, loc *time.Location) bool {
	aStart, aEnd := TruncateDay(a.Start, loc), TruncateDay(a.End, loc)
	bStart, bEnd := TruncateDay(b.Start, loc), TruncateDay(b.End, loc)
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}

// CheckConflict returns a *ConflictError for the first active range that
// overlaps the candidate.
func CheckConflict(candidate Range, active []Range, loc *time.Location) error {
	for _, r := range active {
		if Overlaps(candidate, r, loc) {
			return &ConflictError{With: r}
		}
	}
	return nil
}
