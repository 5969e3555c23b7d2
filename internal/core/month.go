package core

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// Month is a YYYY-MM key scoping budgets and summaries.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth accepts exactly YYYY-MM with a month in 01..12.
func ParseMonth(s string) (Month, error) {
	if !monthPattern.MatchString(s) {
		return Month{}, fmt.Errorf("%w: %q (expected YYYY-MM)", ErrInvalidMonth, s)
	}
	y, _ := strconv.Atoi(s[:4])
	m, _ := strconv.Atoi(s[5:])
	if m < 1 || m > 12 {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return Month{Year: y, Month: time.Month(m)}, nil
}

// CurrentMonth returns the month containing now.
func CurrentMonth(now time.Time) Month {
	return Month{Year: now.Year(), Month: now.Month()}
}

func (m Month) Validate() error {
	if m.Month < time.January || m.Month > time.December || m.Year < 0 || m.Year > 9999 {
		return ErrInvalidMonth
	}
	return nil
}

func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// DateRange returns the first and last calendar day of the month, inclusive.
func (m Month) DateRange() (Date, Date) {
	start := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
	// day 0 of the next month is the last day of this one
	end := time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC)
	return Date{Time: start}, Date{Time: end}
}

// Contains reports whether d falls inside the month.
func (m Month) Contains(d Date) bool {
	return d.Year() == m.Year && d.Time.Month() == m.Month
}

func (m Month) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Month) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ErrInvalidMonth
	}
	parsed, err := ParseMonth(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// DateRange is a closed interval of calendar days used to filter listings.
type DateRange struct {
	Start Date
	End   Date
}

// RangeOf returns the closed range covering month m.
func RangeOf(m Month) DateRange {
	start, end := m.DateRange()
	return DateRange{Start: start, End: end}
}

// Includes reports whether d is within the range, bounds included.
func (r DateRange) Includes(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}
