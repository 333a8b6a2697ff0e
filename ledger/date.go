package ledger

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Civil calendar date (service dates and usage dates are day-granular)
// =============================================================================

type Date struct {
	Time time.Time
}

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// ParseDate parses an ISO calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

// Comparison
func (d Date) Before(other Date) bool { return d.normalize().Before(other.normalize()) }
func (d Date) Equal(other Date) bool  { return d.normalize().Equal(other.normalize()) }
func (d Date) After(other Date) bool  { return d.normalize().After(other.normalize()) }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Properties
func (d Date) IsZero() bool { return d.Time.IsZero() }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time.Format("2006-01-02")
}
