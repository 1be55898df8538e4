package sqlite

import (
	"fmt"
	"time"
)

// timeLayouts covers the TEXT timestamp shapes this schema produces: the
// driver's time.Time binding and SQLite's CURRENT_TIMESTAMP.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
}

// parseTime parses a SQLite TEXT timestamp into a UTC time.Time.
func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format %q", s)
}

// parseNullableTime parses a possibly-NULL timestamp; NULL maps to the
// zero time.
func parseNullableTime(s *string) (time.Time, error) {
	if s == nil || *s == "" {
		return time.Time{}, nil
	}
	return parseTime(*s)
}
