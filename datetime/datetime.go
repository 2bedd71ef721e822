// Package datetime parses and formats dates and times with Java style
// patterns such as "HH:mm:ss" or "yyyy-MM-dd".
package datetime

import (
	"time"

	"github.com/golang-sql/civil"
	"github.com/pkg/errors"
	"github.com/vjeantet/jodaTime"
)

// Patterns used for file stamping and archive folders
const (
	DatePattern     = "yyyyMMdd"
	DateTimePattern = "yyyyMMdd-HHmmss"
	ArchivePattern  = "yyyy-MM/yyyy-MM-dd"
)

// ToLocalTime parses a time of day such as "13:45" with pattern "HH:mm"
func ToLocalTime(value, pattern string) (civil.Time, error) {
	if pattern == "" {
		return civil.Time{}, errors.New("datetime: empty pattern")
	}
	t, err := jodaTime.Parse(pattern, value)
	if err != nil {
		return civil.Time{}, errors.Wrapf(err, "jodatime.parse: %q with %q", value, pattern)
	}
	return civil.TimeOf(t), nil
}

// FromLocalTime formats a time of day with pattern
func FromLocalTime(t civil.Time, pattern string) string {
	d := time.Date(2000, time.January, 1, t.Hour, t.Minute, t.Second, t.Nanosecond, time.UTC)
	return jodaTime.Format(pattern, d)
}

// Format formats a full timestamp with pattern
func Format(t time.Time, pattern string) string {
	return jodaTime.Format(pattern, t)
}

// Parse parses a full timestamp with pattern
func Parse(value, pattern string) (time.Time, error) {
	t, err := jodaTime.Parse(pattern, value)
	if err != nil {
		return t, errors.Wrapf(err, "jodatime.parse: %q with %q", value, pattern)
	}
	return t, nil
}
