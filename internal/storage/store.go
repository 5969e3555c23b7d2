// Package storage defines the record store ports and the relational adapters.
//
// Every adapter (memory, sqlite, postgres, bolt) satisfies Store and passes the
// shared contract suite in storagetest.
package storage

import (
	"context"
	"errors"

	"fintrack/internal/core"
)

var ErrNotFound = errors.New("record not found")

// Ports for outbound adapters.
type (
	TransactionStore interface {
		// CreateTransaction assigns ID and CreatedAt and returns the stored record.
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		// UpdateTransaction replaces amount, description, category and date.
		// ID and CreatedAt are preserved. Returns ErrNotFound for unknown ids.
		UpdateTransaction(ctx context.Context, id string, t core.Transaction) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, id string) error
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
		// ListTransactions returns transactions newest first. A nil range
		// returns everything.
		ListTransactions(ctx context.Context, r *core.DateRange) ([]core.Transaction, error)
	}

	BudgetStore interface {
		// ListBudgets returns the month's budgets ordered by category name.
		ListBudgets(ctx context.Context, month core.Month) ([]core.Budget, error)
		// UpsertBudget creates or replaces the budget for (category, month).
		// On replace, ID and CreatedAt are kept and UpdatedAt is refreshed.
		UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	}

	Store interface {
		TransactionStore
		BudgetStore
		Ping(ctx context.Context) error
		Close() error
	}
)
