package core

import (
	"encoding/json"
	"strings"
	"time"
)

const (
	isoLayout     = "2006-01-02"
	displayLayout = "02/01/2006"
)

// Date is a calendar date without time of day, pinned to UTC midnight.
type Date struct {
	time.Time
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the time of day from t, keeping t's own calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate accepts ISO dates, RFC 3339 timestamps and the DD/MM/YYYY display
// form. Timestamps keep the date as written; no timezone shift is applied.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}
	if t, err := time.Parse(isoLayout, s); err == nil {
		return DateOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return DateOf(t), nil
	}
	if t, err := time.Parse(displayLayout, s); err == nil {
		return DateOf(t), nil
	}
	return Date{}, ErrInvalidDate
}

// ParseDisplayDate is the inverse of Display.
func ParseDisplayDate(s string) (Date, error) {
	t, err := time.Parse(displayLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return DateOf(t), nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String returns the ISO form used for storage and the API.
func (d Date) String() string {
	return d.Format(isoLayout)
}

// Display returns DD/MM/YYYY.
func (d Date) Display() string {
	return d.Format(displayLayout)
}

// MonthKey returns the month the date falls in.
func (d Date) MonthKey() Month {
	return Month{Year: d.Year(), Month: d.Time.Month()}
}

func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }
func (d Date) After(o Date) bool  { return d.Time.After(o.Time) }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ErrInvalidDate
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
