package http

import (
	"fmt"
	"net/http"
	"strings"

	"fintrack/internal/core"
)

// monthParam reads the month query parameter. A missing value is an error
// only when required is set; a malformed value always is.
func monthParam(r *http.Request, required bool) (*core.Month, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("month"))
	if raw == "" {
		if required {
			return nil, fmt.Errorf("%w: month query parameter is required", core.ErrInvalidMonth)
		}
		return nil, nil
	}
	m, err := core.ParseMonth(raw)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// sanitizeInput strips control characters except tab, LF and CR and trims whitespace.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s))
}
