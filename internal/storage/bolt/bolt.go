// Package bolt is a document Store on top of bbolt. Each record is a JSON
// document; budgets are keyed by month and category so that an upsert is a
// single Put inside one write transaction.
package bolt

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// Bucket names.
const (
	BucketTransactions = "transactions"
	BucketBudgets      = "budgets"
)

type Store struct {
	db  *bolt.DB
	now func() time.Time
}

var _ storage.Store = (*Store)(nil)

// New opens (or creates) the database file and initializes buckets.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range []string{BucketTransactions, BucketBudgets} {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return fmt.Errorf("create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(context.Context) error {
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(BucketTransactions)) == nil {
			return fmt.Errorf("bucket %s not found", BucketTransactions)
		}
		return nil
	})
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketTransactions))
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		t.ID = strconv.FormatUint(seq, 10)
		t.CreatedAt = s.now().UTC()
		return put(b, itob(seq), t)
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return t, nil
}

func (s *Store) UpdateTransaction(_ context.Context, id string, t core.Transaction) (core.Transaction, error) {
	key, ok := parseKey(id)
	if !ok {
		return core.Transaction{}, storage.ErrNotFound
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketTransactions))
		var old core.Transaction
		if err := get(b, key, &old); err != nil {
			return err
		}
		t.ID = old.ID
		t.CreatedAt = old.CreatedAt
		return put(b, key, t)
	})
	if err != nil {
		return core.Transaction{}, wrapNotFound("update transaction", err)
	}
	return t, nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	key, ok := parseKey(id)
	if !ok {
		return storage.ErrNotFound
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketTransactions))
		if b.Get(key) == nil {
			return storage.ErrNotFound
		}
		return b.Delete(key)
	})
	return wrapNotFound("delete transaction", err)
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	key, ok := parseKey(id)
	if !ok {
		return core.Transaction{}, storage.ErrNotFound
	}
	var t core.Transaction
	err := s.db.View(func(tx *bolt.Tx) error {
		return get(tx.Bucket([]byte(BucketTransactions)), key, &t)
	})
	if err != nil {
		return core.Transaction{}, wrapNotFound("get transaction", err)
	}
	return t, nil
}

func (s *Store) ListTransactions(_ context.Context, r *core.DateRange) ([]core.Transaction, error) {
	out := []core.Transaction{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BucketTransactions)).ForEach(func(_, v []byte) error {
			var t core.Transaction
			if err := json.Unmarshal(v, &t); err != nil {
				return err
			}
			if r == nil || r.Includes(t.Date) {
				out = append(out, t)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	analytics.SortNewestFirst(out)
	return out, nil
}

// ListBudgets scans the month's key prefix; keys sort by category within it.
func (s *Store) ListBudgets(_ context.Context, month core.Month) ([]core.Budget, error) {
	out := []core.Budget{}
	prefix := []byte(month.String() + "|")
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(BucketBudgets)).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var b core.Budget
			if err := json.Unmarshal(v, &b); err != nil {
				return err
			}
			out = append(out, b)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (s *Store) UpsertBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(BucketBudgets))
		key := []byte(b.Key())
		now := s.now().UTC()

		var old core.Budget
		switch err := get(bucket, key, &old); err {
		case nil:
			b.ID = old.ID
			b.CreatedAt = old.CreatedAt
		case storage.ErrNotFound:
			seq, err := bucket.NextSequence()
			if err != nil {
				return err
			}
			b.ID = strconv.FormatUint(seq, 10)
			b.CreatedAt = now
		default:
			return err
		}
		b.UpdatedAt = now
		return put(bucket, key, b)
	})
	if err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}
	return b, nil
}

func put(b *bolt.Bucket, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}
	return b.Put(key, data)
}

func get(b *bolt.Bucket, key []byte, v any) error {
	data := b.Get(key)
	if data == nil {
		return storage.ErrNotFound
	}
	return json.Unmarshal(data, v)
}

func wrapNotFound(op string, err error) error {
	if err == nil || err == storage.ErrNotFound {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

func parseKey(id string) ([]byte, bool) {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil || n == 0 {
		return nil, false
	}
	return itob(n), true
}

// itob encodes an id as a big-endian key so cursor order follows id order.
func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
