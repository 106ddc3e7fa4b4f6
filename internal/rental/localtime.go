package rental

import (
	"strings"
	"time"
)

// LocalLayout is the wire format for pickup and return times: wall clock in
// the service time zone, no offset suffix.
const LocalLayout = "2006-01-02T15:04:05"

// ParseLocal parses LocalLayout in loc. Values carrying an offset or a
// trailing Z are accepted and converted to loc.
func ParseLocal(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(LocalLayout, s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(loc), nil
}

// FormatLocal renders t in loc using LocalLayout.
func FormatLocal(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(LocalLayout)
}
