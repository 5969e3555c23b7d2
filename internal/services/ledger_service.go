package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// EventPublisher is satisfied by *amqp.Client.
type EventPublisher interface {
	PublishEvent(ctx context.Context, ev *amqp.LedgerEvent) error
}

// TransactionInput is the raw, unvalidated form of a transaction write.
type TransactionInput struct {
	Amount      string
	Description string
	Category    string
	Date        string
}

// BudgetInput is the raw, unvalidated form of a budget upsert.
type BudgetInput struct {
	Category string
	Amount   string
	Month    string
}

// LedgerService validates writes, persists them, then announces them.
type LedgerService struct {
	store     storage.Store
	publisher EventPublisher
}

// NewLedgerService wires the store and an optional publisher (nil disables events).
func NewLedgerService(store storage.Store, publisher EventPublisher) *LedgerService {
	return &LedgerService{store: store, publisher: publisher}
}

// ParseTransaction coerces and validates raw input.
func ParseTransaction(in TransactionInput) (core.Transaction, error) {
	amount, err := core.ParseMoney(in.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %q", core.ErrInvalidAmount, in.Amount)
	}
	category, err := core.ParseCategory(in.Category)
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := core.ParseDate(in.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %q", core.ErrInvalidDate, in.Date)
	}
	t := core.Transaction{
		Amount:      amount,
		Description: strings.TrimSpace(in.Description),
		Category:    category,
		Date:        date,
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

// ParseBudget coerces and validates raw input.
func ParseBudget(in BudgetInput) (core.Budget, error) {
	category, err := core.ParseCategory(in.Category)
	if err != nil {
		return core.Budget{}, err
	}
	amount, err := core.ParseMoney(in.Amount)
	if err != nil {
		return core.Budget{}, fmt.Errorf("%w: %q", core.ErrInvalidAmount, in.Amount)
	}
	month, err := core.ParseMonth(strings.TrimSpace(in.Month))
	if err != nil {
		return core.Budget{}, err
	}
	b := core.Budget{Category: category, Amount: amount, Month: month}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

func (s *LedgerService) CreateTransaction(ctx context.Context, in TransactionInput) (core.Transaction, error) {
	t, err := ParseTransaction(in)
	if err != nil {
		return core.Transaction{}, err
	}

	created, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.publish(ctx, amqp.TransactionCreated, created.ID, created.Category, created.Date.MonthKey())
	return created, nil
}

func (s *LedgerService) UpdateTransaction(ctx context.Context, id string, in TransactionInput) (core.Transaction, error) {
	t, err := ParseTransaction(in)
	if err != nil {
		return core.Transaction{}, err
	}

	updated, err := s.store.UpdateTransaction(ctx, id, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	s.publish(ctx, amqp.TransactionUpdated, updated.ID, updated.Category, updated.Date.MonthKey())
	return updated, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	existing, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("find transaction: %w", err)
	}

	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.publish(ctx, amqp.TransactionDeleted, id, existing.Category, existing.Date.MonthKey())
	return nil
}

// ListTransactions returns transactions newest first, limited to month when given.
func (s *LedgerService) ListTransactions(ctx context.Context, month *core.Month) ([]core.Transaction, error) {
	var r *core.DateRange
	if month != nil {
		rng := core.RangeOf(*month)
		r = &rng
	}
	txns, err := s.store.ListTransactions(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txns, nil
}

func (s *LedgerService) ListBudgets(ctx context.Context, month core.Month) ([]core.Budget, error) {
	budgets, err := s.store.ListBudgets(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return budgets, nil
}

func (s *LedgerService) UpsertBudget(ctx context.Context, in BudgetInput) (core.Budget, error) {
	b, err := ParseBudget(in)
	if err != nil {
		return core.Budget{}, err
	}

	saved, err := s.store.UpsertBudget(ctx, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("save budget: %w", err)
	}

	s.publish(ctx, amqp.BudgetUpserted, saved.ID, saved.Category, saved.Month)
	return saved, nil
}

// publish never fails the caller: the write is already durable.
func (s *LedgerService) publish(ctx context.Context, typ amqp.EventType, id string, category core.Category, month core.Month) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not configured, skipping event", "type", typ, "id", id)
		return
	}
	ev := amqp.NewLedgerEvent(typ, id, category, month)
	if err := s.publisher.PublishEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"type", typ,
			"id", id,
			"error", err)
	}
}
