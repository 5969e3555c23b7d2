package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"fintrack/internal/services"
)

var (
	errBodyTooLarge  = errors.New("request body too large")
	errMalformedBody = errors.New("malformed JSON body")
)

// transactionRequest is the POST/PUT /transactions body. Amount may be a
// JSON number or a numeric string.
type transactionRequest struct {
	Amount      json.RawMessage `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Date        string          `json:"date"`
}

func (t transactionRequest) input() services.TransactionInput {
	return services.TransactionInput{
		Amount:      amountText(t.Amount),
		Description: sanitizeInput(t.Description),
		Category:    sanitizeInput(t.Category),
		Date:        sanitizeInput(t.Date),
	}
}

type budgetRequest struct {
	Category string          `json:"category"`
	Amount   json.RawMessage `json:"amount"`
	Month    string          `json:"month"`
}

func (b budgetRequest) input() services.BudgetInput {
	return services.BudgetInput{
		Category: sanitizeInput(b.Category),
		Amount:   amountText(b.Amount),
		Month:    sanitizeInput(b.Month),
	}
}

// amountText turns a raw JSON amount into text for money parsing. Anything
// that is neither a number nor a string yields text that fails to parse.
func amountText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		s, err := strconv.Unquote(string(raw))
		if err != nil {
			return string(raw)
		}
		return sanitizeInput(s)
	}
	return string(raw)
}

// decodeJSON reads at most maxBytes of the body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errBodyTooLarge
		}
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: unexpected data after JSON object", errMalformedBody)
	}
	return nil
}
