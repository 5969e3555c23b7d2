package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/storage"
	"fintrack/internal/storage/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*amqp.LedgerEvent
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, ev *amqp.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []amqp.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]amqp.EventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

func TestParseTransaction(t *testing.T) {
	cases := []struct {
		name string
		in   TransactionInput
		want error
	}{
		{"ok", TransactionInput{Amount: "500", Description: "lunch", Category: "Food", Date: "2024-03-05"}, nil},
		{"display date", TransactionInput{Amount: "12,50", Description: "bus", Category: "Transportation", Date: "05/03/2024"}, nil},
		{"non numeric amount", TransactionInput{Amount: "abc", Description: "x", Category: "Food", Date: "2024-03-05"}, core.ErrInvalidAmount},
		{"unknown category", TransactionInput{Amount: "1", Description: "x", Category: "Pets", Date: "2024-03-05"}, core.ErrInvalidCategory},
		{"blank description", TransactionInput{Amount: "1", Description: "  ", Category: "Food", Date: "2024-03-05"}, core.ErrEmptyDescription},
		{"bad date", TransactionInput{Amount: "1", Description: "x", Category: "Food", Date: "soon"}, core.ErrInvalidDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseTransaction(tc.in)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
			assert.True(t, core.IsValidation(err))
		})
	}
}

func TestParseBudget(t *testing.T) {
	b, err := ParseBudget(BudgetInput{Category: "Food", Amount: "1000", Month: "2024-03"})
	require.NoError(t, err)
	assert.Equal(t, int64(100000), b.Amount.Cents)
	assert.Equal(t, "2024-03", b.Month.String())

	_, err = ParseBudget(BudgetInput{Category: "Food", Amount: "-1", Month: "2024-03"})
	assert.ErrorIs(t, err, core.ErrNegativeBudget)
	_, err = ParseBudget(BudgetInput{Category: "Food", Amount: "10", Month: "March"})
	assert.ErrorIs(t, err, core.ErrInvalidMonth)
	_, err = ParseBudget(BudgetInput{Category: "Pets", Amount: "10", Month: "2024-03"})
	assert.ErrorIs(t, err, core.ErrInvalidCategory)
}

func TestLedgerServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := NewLedgerService(memory.New(), pub)

	created, err := svc.CreateTransaction(ctx, TransactionInput{Amount: "500", Description: "lunch", Category: "Food", Date: "2024-03-05"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	updated, err := svc.UpdateTransaction(ctx, created.ID, TransactionInput{Amount: "650", Description: "dinner", Category: "Food", Date: "2024-03-06"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, int64(65000), updated.Amount.Cents)

	_, err = svc.UpsertBudget(ctx, BudgetInput{Category: "Food", Amount: "1000", Month: "2024-03"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTransaction(ctx, created.ID))

	assert.Equal(t, []amqp.EventType{
		amqp.TransactionCreated,
		amqp.TransactionUpdated,
		amqp.BudgetUpserted,
		amqp.TransactionDeleted,
	}, pub.types())
	assert.Equal(t, "2024-03", pub.events[3].Month.String())
}

func TestLedgerServiceNotFound(t *testing.T) {
	ctx := context.Background()
	svc := NewLedgerService(memory.New(), nil)

	_, err := svc.UpdateTransaction(ctx, "missing", TransactionInput{Amount: "1", Description: "x", Category: "Food", Date: "2024-03-05"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteTransaction(ctx, "missing"), storage.ErrNotFound)
}

func TestLedgerServiceInvalidInputDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	store := memory.New()
	svc := NewLedgerService(store, pub)

	_, err := svc.CreateTransaction(ctx, TransactionInput{Amount: "abc", Description: "x", Category: "Food", Date: "2024-03-05"})
	require.Error(t, err)

	all, err := store.ListTransactions(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, pub.types())
}

func TestLedgerServicePublishFailureIsNotFatal(t *testing.T) {
	svc := NewLedgerService(memory.New(), &recordingPublisher{err: errors.New("broker down")})
	_, err := svc.CreateTransaction(context.Background(), TransactionInput{Amount: "1", Description: "x", Category: "Food", Date: "2024-03-05"})
	assert.NoError(t, err)
}

func TestListTransactionsByMonth(t *testing.T) {
	ctx := context.Background()
	svc := NewLedgerService(memory.New(), nil)
	for _, d := range []string{"2024-02-29", "2024-03-01", "2024-03-31", "2024-04-01"} {
		_, err := svc.CreateTransaction(ctx, TransactionInput{Amount: "1", Description: d, Category: "Bills", Date: d})
		require.NoError(t, err)
	}

	march := core.Month{Year: 2024, Month: time.March}
	got, err := svc.ListTransactions(ctx, &march)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-03-31", got[0].Date.String())

	all, err := svc.ListTransactions(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
