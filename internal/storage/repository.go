package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
)

// sqlRepository holds the queries shared by the sqlite and postgres adapters.
// Queries are written with ? placeholders and rebound per dialect.
type sqlRepository struct {
	db      *sql.DB
	dialect string
	now     func() time.Time
}

const transactionColumns = "id, amount_cents, description, category, date, created_at"

func (r *sqlRepository) q(query string) string {
	if r.dialect != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

// stamp returns the current time at the precision both databases keep.
func (r *sqlRepository) stamp() time.Time {
	return r.now().UTC().Truncate(time.Microsecond)
}

// timeArg encodes t for a timestamp column. sqlite keeps a fixed-width
// string so that ORDER BY created_at sorts chronologically.
func (r *sqlRepository) timeArg(t time.Time) any {
	if r.dialect == "postgres" {
		return t
	}
	return t.UTC().Format(sqliteTimeLayout)
}

const sqliteTimeLayout = "2006-01-02T15:04:05.000000Z"

// DB exposes the underlying handle for maintenance tasks.
func (r *sqlRepository) DB() *sql.DB {
	return r.db
}

func (r *sqlRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *sqlRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *sqlRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.CreatedAt = r.stamp()
	var id int64
	err := r.db.QueryRowContext(ctx,
		r.q(`INSERT INTO transactions (amount_cents, description, category, date, created_at)
			VALUES (?, ?, ?, ?, ?) RETURNING id`),
		t.Amount.Cents, t.Description, string(t.Category), t.Date.String(), r.timeArg(t.CreatedAt),
	).Scan(&id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	t.ID = strconv.FormatInt(id, 10)

	slog.InfoContext(ctx, "Transaction saved",
		"backend", r.dialect,
		"id", t.ID,
		"category", t.Category,
		"amount_cents", t.Amount.Cents,
		"date", t.Date.String())

	return t, nil
}

func (r *sqlRepository) UpdateTransaction(ctx context.Context, id string, t core.Transaction) (core.Transaction, error) {
	rowID, ok := parseID(id)
	if !ok {
		return core.Transaction{}, ErrNotFound
	}
	var created any
	err := r.db.QueryRowContext(ctx,
		r.q(`UPDATE transactions SET amount_cents = ?, description = ?, category = ?, date = ?
			WHERE id = ? RETURNING created_at`),
		t.Amount.Cents, t.Description, string(t.Category), t.Date.String(), rowID,
	).Scan(&created)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %s: %w", id, err)
	}
	if t.CreatedAt, err = scanTime(created); err != nil {
		return core.Transaction{}, err
	}
	t.ID = id
	return t, nil
}

func (r *sqlRepository) DeleteTransaction(ctx context.Context, id string) error {
	rowID, ok := parseID(id)
	if !ok {
		return ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, r.q(`DELETE FROM transactions WHERE id = ?`), rowID)
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqlRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	rowID, ok := parseID(id)
	if !ok {
		return core.Transaction{}, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, r.q(`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`), rowID)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return t, nil
}

func (r *sqlRepository) ListTransactions(ctx context.Context, dr *core.DateRange) ([]core.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions`
	var args []any
	if dr != nil {
		query += ` WHERE date >= ? AND date <= ?`
		args = append(args, dr.Start.String(), dr.End.String())
	}
	query += ` ORDER BY date DESC, created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, r.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

func (r *sqlRepository) ListBudgets(ctx context.Context, month core.Month) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		r.q(`SELECT id, category, amount_cents, month, created_at, updated_at
			FROM budgets WHERE month = ? ORDER BY category`),
		month.String())
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	out := []core.Budget{}
	for rows.Next() {
		var (
			id               int64
			category, mkey   string
			cents            int64
			created, updated any
		)
		if err := rows.Scan(&id, &category, &cents, &mkey, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		b := core.Budget{
			ID:       strconv.FormatInt(id, 10),
			Category: core.Category(category),
			Amount:   core.Money{Cents: cents},
		}
		if b.Month, err = core.ParseMonth(strings.TrimSpace(mkey)); err != nil {
			return nil, fmt.Errorf("scan budget %d: %w", id, err)
		}
		if b.CreatedAt, err = scanTime(created); err != nil {
			return nil, err
		}
		if b.UpdatedAt, err = scanTime(updated); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return out, nil
}

func (r *sqlRepository) UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	now := r.stamp()
	var (
		id               int64
		created, updated any
	)
	err := r.db.QueryRowContext(ctx,
		r.q(`INSERT INTO budgets (category, amount_cents, month, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (category, month) DO UPDATE
			SET amount_cents = excluded.amount_cents, updated_at = excluded.updated_at
			RETURNING id, created_at, updated_at`),
		string(b.Category), b.Amount.Cents, b.Month.String(), r.timeArg(now), r.timeArg(now),
	).Scan(&id, &created, &updated)
	if err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}
	b.ID = strconv.FormatInt(id, 10)
	if b.CreatedAt, err = scanTime(created); err != nil {
		return core.Budget{}, err
	}
	if b.UpdatedAt, err = scanTime(updated); err != nil {
		return core.Budget{}, err
	}

	slog.InfoContext(ctx, "Budget upserted",
		"backend", r.dialect,
		"id", b.ID,
		"category", b.Category,
		"month", b.Month.String(),
		"amount_cents", b.Amount.Cents)

	return b, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s rowScanner) (core.Transaction, error) {
	var (
		id            int64
		cents         int64
		desc, cat     string
		date, created any
	)
	if err := s.Scan(&id, &cents, &desc, &cat, &date, &created); err != nil {
		return core.Transaction{}, err
	}
	t := core.Transaction{
		ID:          strconv.FormatInt(id, 10),
		Amount:      core.Money{Cents: cents},
		Description: desc,
		Category:    core.Category(cat),
	}
	var err error
	if t.Date, err = scanDate(date); err != nil {
		return core.Transaction{}, err
	}
	if t.CreatedAt, err = scanTime(created); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

// scanDate accepts what either driver returns for a date column.
func scanDate(v any) (core.Date, error) {
	switch x := v.(type) {
	case time.Time:
		return core.DateOf(x), nil
	case string:
		return core.ParseDate(x)
	case []byte:
		return core.ParseDate(string(x))
	default:
		return core.Date{}, fmt.Errorf("scan date: unsupported type %T", v)
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
}

func scanTime(v any) (time.Time, error) {
	var s string
	switch x := v.(type) {
	case time.Time:
		return x.UTC(), nil
	case string:
		s = x
	case []byte:
		s = string(x)
	default:
		return time.Time{}, fmt.Errorf("scan time: unsupported type %T", v)
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("scan time: unrecognised value %q", s)
}

func parseID(id string) (int64, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	return n, err == nil && n > 0
}
