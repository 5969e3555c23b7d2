package bolt

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/storage"
	"fintrack/internal/storage/storagetest"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "fintrack.bolt"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBoltStoreContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store { return openTemp(t) })
}

func TestBudgetPrefixScanDoesNotLeakAcrossMonths(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	// same year, so every key shares the "2024-" stem
	for _, m := range []time.Month{time.January, time.October, time.November} {
		_, err := s.UpsertBudget(ctx, core.Budget{
			Category: core.Travel,
			Amount:   core.Money{Cents: int64(m) * 100},
			Month:    core.Month{Year: 2024, Month: m},
		})
		require.NoError(t, err)
	}
	got, err := s.ListBudgets(ctx, core.Month{Year: 2024, Month: time.January})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(100), got[0].Amount.Cents)
}
