package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// AnalyticsService loads a month and hands it to the aggregator.
// Results are recomputed on every call.
type AnalyticsService struct {
	store storage.Store
}

func NewAnalyticsService(store storage.Store) *AnalyticsService {
	return &AnalyticsService{store: store}
}

// MonthlySummary fetches the month's transactions and budgets concurrently.
func (s *AnalyticsService) MonthlySummary(ctx context.Context, month core.Month) (analytics.Result, error) {
	var (
		txns    []core.Transaction
		budgets []core.Budget
	)
	rng := core.RangeOf(month)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txns, err = s.store.ListTransactions(gctx, &rng)
		if err != nil {
			return fmt.Errorf("load transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		budgets, err = s.store.ListBudgets(gctx, month)
		if err != nil {
			return fmt.Errorf("load budgets: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return analytics.Result{}, err
	}

	return analytics.ComputeMonthlySummary(month, txns, budgets), nil
}
