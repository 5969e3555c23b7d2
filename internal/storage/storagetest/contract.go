// Package storagetest holds the behaviour every storage.Store adapter must
// share. Adapter packages call Run from their own tests.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// Factory returns a fresh, empty store. Cleanup is the caller's job via t.Cleanup.
type Factory func(t *testing.T) storage.Store

// Run executes the contract suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("CreateAndGet", func(t *testing.T) { testCreateAndGet(t, newStore(t)) })
	t.Run("ListFiltersByMonthInclusive", func(t *testing.T) { testListFilter(t, newStore(t)) })
	t.Run("ListOrdersNewestFirst", func(t *testing.T) { testListOrder(t, newStore(t)) })
	t.Run("UpdateKeepsIdentity", func(t *testing.T) { testUpdate(t, newStore(t)) })
	t.Run("UpdateMissing", func(t *testing.T) { testUpdateMissing(t, newStore(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, newStore(t)) })
	t.Run("UpsertBudgetIsIdempotentOnKey", func(t *testing.T) { testUpsert(t, newStore(t)) })
	t.Run("BudgetsScopedToMonth", func(t *testing.T) { testBudgetMonths(t, newStore(t)) })
	t.Run("Ping", func(t *testing.T) { require.NoError(t, newStore(t).Ping(context.Background())) })
}

func newTx(cents int64, cat core.Category, date core.Date) core.Transaction {
	return core.Transaction{
		Amount:      core.Money{Cents: cents},
		Description: "item " + date.String(),
		Category:    cat,
		Date:        date,
	}
}

func testCreateAndGet(t *testing.T, s storage.Store) {
	ctx := context.Background()
	created, err := s.CreateTransaction(ctx, newTx(1250, core.Food, core.NewDate(2024, 3, 5)))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := s.GetTransaction(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, int64(1250), got.Amount.Cents)
	assert.Equal(t, core.Food, got.Category)
	assert.Equal(t, "2024-03-05", got.Date.String())
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt), "createdAt %v != %v", created.CreatedAt, got.CreatedAt)

	_, err = s.GetTransaction(ctx, "999999")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.GetTransaction(ctx, "not-an-id")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testListFilter(t *testing.T, s storage.Store) {
	ctx := context.Background()
	dates := []core.Date{
		core.NewDate(2024, 1, 31),
		core.NewDate(2024, 2, 1),
		core.NewDate(2024, 2, 29),
		core.NewDate(2024, 3, 1),
	}
	for _, d := range dates {
		_, err := s.CreateTransaction(ctx, newTx(100, core.Bills, d))
		require.NoError(t, err)
	}

	feb := core.RangeOf(core.Month{Year: 2024, Month: time.February})
	got, err := s.ListTransactions(ctx, &feb)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-02-29", got[0].Date.String())
	assert.Equal(t, "2024-02-01", got[1].Date.String())

	all, err := s.ListTransactions(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, len(dates))

	empty := core.RangeOf(core.Month{Year: 2023, Month: time.June})
	none, err := s.ListTransactions(ctx, &empty)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func testListOrder(t *testing.T, s storage.Store) {
	ctx := context.Background()
	first, err := s.CreateTransaction(ctx, newTx(100, core.Food, core.NewDate(2024, 3, 10)))
	require.NoError(t, err)
	_, err = s.CreateTransaction(ctx, newTx(100, core.Food, core.NewDate(2024, 3, 2)))
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	second, err := s.CreateTransaction(ctx, newTx(100, core.Food, core.NewDate(2024, 3, 10)))
	require.NoError(t, err)

	got, err := s.ListTransactions(ctx, nil)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, second.ID, got[0].ID, "same day: latest created first")
	assert.Equal(t, first.ID, got[1].ID)
	assert.Equal(t, "2024-03-02", got[2].Date.String())
}

func testUpdate(t *testing.T, s storage.Store) {
	ctx := context.Background()
	created, err := s.CreateTransaction(ctx, newTx(500, core.Food, core.NewDate(2024, 3, 5)))
	require.NoError(t, err)

	repl := core.Transaction{
		Amount:      core.Money{Cents: 750},
		Description: "dinner",
		Category:    core.Entertainment,
		Date:        core.NewDate(2024, 4, 1),
	}
	updated, err := s.UpdateTransaction(ctx, created.ID, repl)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
	assert.Equal(t, "dinner", updated.Description)

	got, err := s.GetTransaction(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(750), got.Amount.Cents)
	assert.Equal(t, core.Entertainment, got.Category)
	assert.Equal(t, "2024-04-01", got.Date.String())
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
}

func testUpdateMissing(t *testing.T, s storage.Store) {
	_, err := s.UpdateTransaction(context.Background(), "424242", newTx(1, core.Food, core.NewDate(2024, 1, 1)))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testDelete(t *testing.T, s storage.Store) {
	ctx := context.Background()
	created, err := s.CreateTransaction(ctx, newTx(500, core.Food, core.NewDate(2024, 3, 5)))
	require.NoError(t, err)

	require.NoError(t, s.DeleteTransaction(ctx, created.ID))
	_, err = s.GetTransaction(ctx, created.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, s.DeleteTransaction(ctx, created.ID), storage.ErrNotFound)
}

func testUpsert(t *testing.T, s storage.Store) {
	ctx := context.Background()
	march := core.Month{Year: 2024, Month: time.March}

	first, err := s.UpsertBudget(ctx, core.Budget{Category: core.Food, Amount: core.Money{Cents: 100000}, Month: march})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	time.Sleep(2 * time.Millisecond)
	second, err := s.UpsertBudget(ctx, core.Budget{Category: core.Food, Amount: core.Money{Cents: 150000}, Month: march})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
	assert.False(t, second.UpdatedAt.Before(first.UpdatedAt))

	budgets, err := s.ListBudgets(ctx, march)
	require.NoError(t, err)
	require.Len(t, budgets, 1)
	assert.Equal(t, int64(150000), budgets[0].Amount.Cents)
	assert.Equal(t, march, budgets[0].Month)
}

func testBudgetMonths(t *testing.T, s storage.Store) {
	ctx := context.Background()
	march := core.Month{Year: 2024, Month: time.March}
	april := core.Month{Year: 2024, Month: time.April}

	for _, b := range []core.Budget{
		{Category: core.Rent, Amount: core.Money{Cents: 2000000}, Month: march},
		{Category: core.Bills, Amount: core.Money{Cents: 300000}, Month: march},
		{Category: core.Rent, Amount: core.Money{Cents: 2100000}, Month: april},
		{Category: core.Other, Amount: core.Money{}, Month: march},
	} {
		_, err := s.UpsertBudget(ctx, b)
		require.NoError(t, err)
	}

	got, err := s.ListBudgets(ctx, march)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, core.Bills, got[0].Category)
	assert.Equal(t, core.Other, got[1].Category)
	assert.Equal(t, core.Rent, got[2].Category)

	none, err := s.ListBudgets(ctx, core.Month{Year: 2030, Month: time.January})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
