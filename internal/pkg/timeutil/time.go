package timeutil

import "time"

// SQLiteFormat is the fixed-width layout used for every timestamp column.
// The width is constant so stored values compare correctly as text, which
// the poller's due-schedule query relies on.
const SQLiteFormat = "2006-01-02 15:04:05.000"

// Format renders t in UTC using SQLiteFormat.
func Format(t time.Time) string {
	return t.UTC().Format(SQLiteFormat)
}

// FormatPtr renders t using SQLiteFormat, or returns nil for a nil time.
func FormatPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := Format(*t)
	return &s
}

// Parse reads a SQLiteFormat string back into a UTC time.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(SQLiteFormat, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// ParsePtr parses a timestamp string pointer into *time.Time.
// Returns nil if input is nil, empty, or parsing fails.
func ParsePtr(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := Parse(*s)
	if err != nil {
		return nil
	}
	return &t
}

// OrZero returns the dereferenced time or the zero time if nil.
func OrZero(p *time.Time) time.Time {
	if p == nil {
		return time.Time{}
	}
	return *p
}
