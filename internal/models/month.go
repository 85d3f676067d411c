package models

import (
	"fmt"
	"time"
)

// Month is a delivery month (year + calendar month).
type Month struct {
	Year int
	Mon  time.Month
}

// NewMonth creates a Month.
func NewMonth(year int, mon time.Month) Month {
	return Month{Year: year, Mon: mon}
}

// ParseMonth parses "2026-01" style strings.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("parsing month %q: %w", s, err)
	}
	return Month{Year: t.Year(), Mon: t.Month()}, nil
}

// String renders the month as "2026-01".
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Mon))
}

// Date returns the first day of the month in UTC.
func (m Month) Date() time.Time {
	return time.Date(m.Year, m.Mon, 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths returns the month n calendar months later (n may be negative).
func (m Month) AddMonths(n int) Month {
	t := m.Date().AddDate(0, n, 0)
	return Month{Year: t.Year(), Mon: t.Month()}
}

// MonthsUntil returns the number of whole calendar months from m to other.
// Positive when other is later than m.
func (m Month) MonthsUntil(other Month) int {
	return (other.Year-m.Year)*12 + int(other.Mon) - int(m.Mon)
}

// Before reports whether m precedes other.
func (m Month) Before(other Month) bool {
	return m.MonthsUntil(other) > 0
}

// IsZero reports whether the month is unset.
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Mon == 0
}

// MonthRange returns count consecutive months starting at start.
func MonthRange(start Month, count int) []Month {
	months := make([]Month, 0, count)
	for i := 0; i < count; i++ {
		months = append(months, start.AddMonths(i))
	}
	return months
}
