// Package memory is an in-process Store. With a data directory it also
// persists to transactions.json and budgets.json after every write.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

const (
	transactionsFile = "transactions.json"
	budgetsFile      = "budgets.json"
)

type Store struct {
	mu      sync.Mutex
	dir     string
	now     func() time.Time
	txns    map[string]core.Transaction
	budgets map[string]core.Budget // keyed by Budget.Key
}

var _ storage.Store = (*Store)(nil)

// New returns an empty store that never touches disk.
func New() *Store {
	return &Store{
		now:     time.Now,
		txns:    map[string]core.Transaction{},
		budgets: map[string]core.Budget{},
	}
}

// NewFromDir loads any existing JSON files in dir and persists back to them.
// Missing files start empty.
func NewFromDir(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	s := New()
	s.dir = dir

	var txns []core.Transaction
	if err := readJSON(filepath.Join(dir, transactionsFile), &txns); err != nil {
		return nil, err
	}
	for _, t := range txns {
		s.txns[t.ID] = t
	}

	var budgets []core.Budget
	if err := readJSON(filepath.Join(dir, budgetsFile), &budgets); err != nil {
		return nil, err
	}
	for _, b := range budgets {
		s.budgets[b.Key()] = b
	}
	return s, nil
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = uuid.NewString()
	t.CreatedAt = s.now().UTC()
	s.txns[t.ID] = t
	return t, s.flushTransactions()
}

func (s *Store) UpdateTransaction(_ context.Context, id string, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.txns[id]
	if !ok {
		return core.Transaction{}, storage.ErrNotFound
	}
	t.ID = old.ID
	t.CreatedAt = old.CreatedAt
	s.txns[id] = t
	return t, s.flushTransactions()
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txns[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.txns, id)
	return s.flushTransactions()
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txns[id]
	if !ok {
		return core.Transaction{}, storage.ErrNotFound
	}
	return t, nil
}

func (s *Store) ListTransactions(_ context.Context, r *core.DateRange) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0, len(s.txns))
	for _, t := range s.txns {
		if r == nil || r.Includes(t.Date) {
			out = append(out, t)
		}
	}
	analytics.SortNewestFirst(out)
	return out, nil
}

func (s *Store) ListBudgets(_ context.Context, month core.Month) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.Budget{}
	for _, b := range s.budgets {
		if b.Month == month {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (s *Store) UpsertBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	if old, ok := s.budgets[b.Key()]; ok {
		b.ID = old.ID
		b.CreatedAt = old.CreatedAt
	} else {
		b.ID = uuid.NewString()
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	s.budgets[b.Key()] = b
	return b, s.flushBudgets()
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) flushTransactions() error {
	if s.dir == "" {
		return nil
	}
	all := make([]core.Transaction, 0, len(s.txns))
	for _, t := range s.txns {
		all = append(all, t)
	}
	analytics.SortNewestFirst(all)
	return writeJSON(filepath.Join(s.dir, transactionsFile), all)
}

func (s *Store) flushBudgets() error {
	if s.dir == "" {
		return nil
	}
	all := make([]core.Budget, 0, len(s.budgets))
	for _, b := range s.budgets {
		all = append(all, b)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Key() < all[j].Key() })
	return writeJSON(filepath.Join(s.dir, budgetsFile), all)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeJSON replaces path atomically via a temp file rename.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
