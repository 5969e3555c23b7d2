package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/storage"
	"fintrack/internal/storage/storagetest"
)

func TestMemoryStoreContract(t *testing.T) {
	storagetest.Run(t, func(*testing.T) storage.Store { return New() })
}

func TestFileBackedStoreContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		s, err := NewFromDir(t.TempDir())
		require.NoError(t, err)
		return s
	})
}

func TestFileBackedStoreReloads(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	march := core.Month{Year: 2024, Month: time.March}

	s, err := NewFromDir(dir)
	require.NoError(t, err)
	created, err := s.CreateTransaction(ctx, core.Transaction{
		Amount:      core.Money{Cents: 4200},
		Description: "books",
		Category:    core.Education,
		Date:        core.NewDate(2024, 3, 9),
	})
	require.NoError(t, err)
	_, err = s.UpsertBudget(ctx, core.Budget{Category: core.Education, Amount: core.Money{Cents: 10000}, Month: march})
	require.NoError(t, err)

	for _, name := range []string{transactionsFile, budgetsFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
	}

	reopened, err := NewFromDir(dir)
	require.NoError(t, err)
	got, err := reopened.GetTransaction(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "books", got.Description)
	assert.Equal(t, "2024-03-09", got.Date.String())

	budgets, err := reopened.ListBudgets(ctx, march)
	require.NoError(t, err)
	require.Len(t, budgets, 1)
	assert.Equal(t, int64(10000), budgets[0].Amount.Cents)
}

func TestNewFromDirRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, transactionsFile), []byte("{not json"), 0o644))
	_, err := NewFromDir(dir)
	assert.Error(t, err)
}
