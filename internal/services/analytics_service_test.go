package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/storage"
	"fintrack/internal/storage/memory"
)

func TestMonthlySummaryWorkedExample(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	ledger := NewLedgerService(store, nil)

	for _, in := range []TransactionInput{
		{Amount: "500", Description: "groceries run", Category: "Food", Date: "2024-03-02"},
		{Amount: "300", Description: "restaurant", Category: "Food", Date: "2024-03-15"},
		{Amount: "200", Description: "metro card", Category: "Transportation", Date: "2024-03-20"},
		{Amount: "999", Description: "previous month", Category: "Food", Date: "2024-02-29"},
	} {
		_, err := ledger.CreateTransaction(ctx, in)
		require.NoError(t, err)
	}
	_, err := ledger.UpsertBudget(ctx, BudgetInput{Category: "Food", Amount: "1000", Month: "2024-03"})
	require.NoError(t, err)

	res, err := NewAnalyticsService(store).MonthlySummary(ctx, core.Month{Year: 2024, Month: time.March})
	require.NoError(t, err)

	assert.Equal(t, int64(100000), res.TotalSpent.Cents)
	assert.Equal(t, int64(100000), res.TotalBudget.Cents)
	assert.Equal(t, core.StatusWarning, res.CategorySummary[0].Status)
	assert.InDelta(t, 80.0, res.CategorySummary[0].Percentage, 1e-9)
	assert.Equal(t, core.StatusSafe, res.CategorySummary[1].Status)
	assert.Len(t, res.RecentTransactions, 3)
	assert.Equal(t, "2024-03-20", res.RecentTransactions[0].Date.String())
}

type failingStore struct {
	storage.Store
}

func (failingStore) ListTransactions(context.Context, *core.DateRange) ([]core.Transaction, error) {
	return nil, errors.New("connection reset")
}

func (failingStore) ListBudgets(context.Context, core.Month) ([]core.Budget, error) {
	return []core.Budget{}, nil
}

func TestMonthlySummaryPropagatesStoreErrors(t *testing.T) {
	_, err := NewAnalyticsService(failingStore{}).MonthlySummary(context.Background(), core.Month{Year: 2024, Month: time.March})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load transactions")
	assert.False(t, core.IsValidation(err))
}
