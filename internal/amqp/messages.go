package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"fintrack/internal/core"
)

type EventType string

const (
	TransactionCreated EventType = "transaction.created"
	TransactionUpdated EventType = "transaction.updated"
	TransactionDeleted EventType = "transaction.deleted"
	BudgetUpserted     EventType = "budget.upserted"
)

func (t EventType) IsValid() bool {
	switch t {
	case TransactionCreated, TransactionUpdated, TransactionDeleted, BudgetUpserted:
		return true
	default:
		return false
	}
}

// LedgerEvent is a lightweight notice that a month's data changed.
// Consumers reload the month from the store rather than trusting the payload.
type LedgerEvent struct {
	Type      EventType     `json:"type"`
	ID        string        `json:"id"`
	Category  core.Category `json:"category"`
	Month     core.Month    `json:"month"`
	Timestamp time.Time     `json:"timestamp"`
}

// NewLedgerEvent creates an event stamped with the current time
func NewLedgerEvent(typ EventType, id string, category core.Category, month core.Month) *LedgerEvent {
	return &LedgerEvent{
		Type:      typ,
		ID:        id,
		Category:  category,
		Month:     month,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventFromJSON decodes and validates an event
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if !msg.Type.IsValid() {
		return nil, fmt.Errorf("unknown event type %q", msg.Type)
	}
	return &msg, nil
}
