package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseMonth(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2024-03", true},
		{"1999-12", true},
		{"2024-13", false},
		{"2024-00", false},
		{"2024-3", false},
		{"24-03", false},
		{"2024/03", false},
		{"", false},
	}
	for _, tc := range cases {
		m, err := ParseMonth(tc.in)
		if tc.ok {
			if err != nil || m.String() != tc.in {
				t.Fatalf("%q expected round trip, got %v (err=%v)", tc.in, m, err)
			}
		} else if !errors.Is(err, ErrInvalidMonth) {
			t.Fatalf("%q expected ErrInvalidMonth, got %v", tc.in, err)
		}
	}
}

func TestMonthDateRange(t *testing.T) {
	cases := []struct {
		month      string
		start, end string
	}{
		{"2024-02", "2024-02-01", "2024-02-29"},
		{"2023-02", "2023-02-01", "2023-02-28"},
		{"2024-04", "2024-04-01", "2024-04-30"},
		{"2024-12", "2024-12-01", "2024-12-31"},
		{"2000-02", "2000-02-01", "2000-02-29"},
		{"1900-02", "1900-02-01", "1900-02-28"},
	}
	for _, tc := range cases {
		m, err := ParseMonth(tc.month)
		if err != nil {
			t.Fatal(err)
		}
		start, end := m.DateRange()
		if start.String() != tc.start || end.String() != tc.end {
			t.Fatalf("%s expected [%s, %s], got [%s, %s]", tc.month, tc.start, tc.end, start, end)
		}
	}
}

func TestDateRangeIncludes(t *testing.T) {
	r := RangeOf(Month{Year: 2024, Month: time.February})
	if !r.Includes(NewDate(2024, 2, 1)) || !r.Includes(NewDate(2024, 2, 29)) {
		t.Fatalf("bounds must be inclusive")
	}
	if r.Includes(NewDate(2024, 3, 1)) || r.Includes(NewDate(2024, 1, 31)) {
		t.Fatalf("dates outside the month must be excluded")
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-03-15", "2024-03-15", true},
		{"2024-03-15T23:30:00+05:30", "2024-03-15", true},
		{"2024-03-15T00:00:00.000Z", "2024-03-15", true},
		{"15/03/2024", "2024-03-15", true},
		{"2024-02-30", "", false},
		{"yesterday", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		d, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil || d.String() != tc.want {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.want, d, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestDateDisplay(t *testing.T) {
	d := NewDate(2024, 3, 5)
	if got := d.Display(); got != "05/03/2024" {
		t.Fatalf("expected 05/03/2024, got %s", got)
	}
	back, err := ParseDisplayDate(d.Display())
	if err != nil || !back.Equal(d.Time) {
		t.Fatalf("display form must round trip, got %v (err=%v)", back, err)
	}
}

func TestDateJSON(t *testing.T) {
	var payload struct {
		Date  Date  `json:"date"`
		Month Month `json:"month"`
	}
	if err := json.Unmarshal([]byte(`{"date":"2024-03-15","month":"2024-03"}`), &payload); err != nil {
		t.Fatal(err)
	}
	b, _ := json.Marshal(payload)
	if string(b) != `{"date":"2024-03-15","month":"2024-03"}` {
		t.Fatalf("unexpected encoding %s", b)
	}
}
