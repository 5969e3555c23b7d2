package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
	"fintrack/internal/storage/memory"
)

func newTestServer(t *testing.T, store storage.Store, opts Options) *Server {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.Config{Level: slog.LevelError, Output: io.Discard})
	}
	srv := NewServer(opts, store, services.NewLedgerService(store, nil), services.NewAnalyticsService(store))
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t, memory.New(), Options{})

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(t, srv.Handler, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}
	rr := do(t, srv.Handler, http.MethodGet, "/healthz", "")
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
}

type downStore struct{ storage.Store }

func (downStore) Ping(context.Context) error { return errors.New("dial tcp: connection refused") }

func TestReadyFailsWhenStoreDown(t *testing.T) {
	srv := newTestServer(t, downStore{memory.New()}, Options{})
	rr := do(t, srv.Handler, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.NotContains(t, rr.Body.String(), "refused")
}

func TestCategories(t *testing.T) {
	srv := newTestServer(t, memory.New(), Options{})
	rr := do(t, srv.Handler, http.MethodGet, "/categories", "")
	require.Equal(t, http.StatusOK, rr.Code)
	cats := decode[[]string](t, rr)
	require.Len(t, cats, len(core.Categories))
	assert.Equal(t, "Food", cats[0])
	assert.Equal(t, "Other", cats[len(cats)-1])
}

func TestTransactionLifecycle(t *testing.T) {
	srv := newTestServer(t, memory.New(), Options{})
	h := srv.Handler

	rr := do(t, h, http.MethodPost, "/transactions", `{"amount":500,"description":"lunch","category":"Food","date":"2024-03-05"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[core.Transaction](t, rr)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, int64(50000), created.Amount.Cents)

	rr = do(t, h, http.MethodPost, "/transactions", `{"amount":"12.5","description":"bus","category":"Transportation","date":"2024-03-06"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = do(t, h, http.MethodPut, "/transactions/"+created.ID, `{"amount":650,"description":"dinner","category":"Food","date":"2024-03-07"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	updated := decode[core.Transaction](t, rr)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "dinner", updated.Description)

	rr = do(t, h, http.MethodGet, "/transactions?month=2024-03", "")
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[[]core.Transaction](t, rr)
	require.Len(t, list, 2)
	assert.Equal(t, "2024-03-07", list[0].Date.String())

	rr = do(t, h, http.MethodDelete, "/transactions/"+created.ID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())

	rr = do(t, h, http.MethodDelete, "/transactions/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, http.MethodPut, "/transactions/"+created.ID, `{"amount":1,"description":"x","category":"Food","date":"2024-03-07"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestTransactionValidation(t *testing.T) {
	srv := newTestServer(t, memory.New(), Options{})

	tests := []struct {
		name string
		body string
		code int
	}{
		{"non numeric amount", `{"amount":"abc","description":"x","category":"Food","date":"2024-03-05"}`, http.StatusBadRequest},
		{"missing amount", `{"description":"x","category":"Food","date":"2024-03-05"}`, http.StatusBadRequest},
		{"boolean amount", `{"amount":true,"description":"x","category":"Food","date":"2024-03-05"}`, http.StatusBadRequest},
		{"unknown category", `{"amount":1,"description":"x","category":"Pets","date":"2024-03-05"}`, http.StatusBadRequest},
		{"blank description", `{"amount":1,"description":"   ","category":"Food","date":"2024-03-05"}`, http.StatusBadRequest},
		{"bad date", `{"amount":1,"description":"x","category":"Food","date":"tomorrow"}`, http.StatusBadRequest},
		{"malformed json", `{"amount":`, http.StatusBadRequest},
		{"trailing data", `{"amount":1,"description":"x","category":"Food","date":"2024-03-05"} {}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv.Handler, http.MethodPost, "/transactions", tt.body)
			assert.Equal(t, tt.code, rr.Code, rr.Body.String())
			assert.NotEmpty(t, decode[errorResponse](t, rr).Error)
		})
	}
}

func TestBodyTooLarge(t *testing.T) {
	srv := newTestServer(t, memory.New(), Options{MaxBodyBytes: 64})
	body := `{"amount":1,"description":"` + strings.Repeat("a", 200) + `","category":"Food","date":"2024-03-05"}`
	rr := do(t, srv.Handler, http.MethodPost, "/transactions", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestBudgets(t *testing.T) {
	srv := newTestServer(t, memory.New(), Options{})
	h := srv.Handler

	rr := do(t, h, http.MethodPost, "/budgets", `{"category":"Food","amount":1000,"month":"2024-03"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	first := decode[core.Budget](t, rr)

	rr = do(t, h, http.MethodPost, "/budgets", `{"category":"Food","amount":"1200","month":"2024-03"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	second := decode[core.Budget](t, rr)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(120000), second.Amount.Cents)

	rr = do(t, h, http.MethodGet, "/budgets?month=2024-03", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]core.Budget](t, rr), 1)

	rr = do(t, h, http.MethodGet, "/budgets?month=2024-04", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rr.Body.String()))

	for _, bad := range []string{
		`{"category":"Food","amount":-1,"month":"2024-03"}`,
		`{"category":"Food","amount":1,"month":"2024-13"}`,
		`{"category":"Pets","amount":1,"month":"2024-03"}`,
	} {
		rr = do(t, h, http.MethodPost, "/budgets", bad)
		assert.Equal(t, http.StatusBadRequest, rr.Code, bad)
	}
}

func TestMonthRequired(t *testing.T) {
	srv := newTestServer(t, memory.New(), Options{})
	for _, path := range []string{"/analytics", "/budgets", "/analytics?month=March", "/budgets?month=2024-3", "/transactions?month=2024-00"} {
		rr := do(t, srv.Handler, http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code, path)
	}
	rr := do(t, srv.Handler, http.MethodGet, "/transactions", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rr.Body.String()))
}

func TestAnalyticsWorkedExample(t *testing.T) {
	srv := newTestServer(t, memory.New(), Options{})
	h := srv.Handler

	for _, body := range []string{
		`{"amount":500,"description":"groceries","category":"Food","date":"2024-03-02"}`,
		`{"amount":300,"description":"restaurant","category":"Food","date":"2024-03-15"}`,
		`{"amount":200,"description":"metro","category":"Transportation","date":"2024-03-20"}`,
		`{"amount":400,"description":"last month","category":"Food","date":"2024-02-28"}`,
	} {
		require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/transactions", body).Code)
	}
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/budgets", `{"category":"Food","amount":1000,"month":"2024-03"}`).Code)

	rr := do(t, h, http.MethodGet, "/analytics?month=2024-03", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	res := decode[analytics.Result](t, rr)

	assert.Equal(t, int64(100000), res.TotalSpent.Cents)
	assert.Equal(t, int64(100000), res.TotalBudget.Cents)
	require.Len(t, res.CategorySummary, len(core.Categories))
	assert.Equal(t, core.Food, res.CategorySummary[0].Category)
	assert.Equal(t, core.StatusWarning, res.CategorySummary[0].Status)
	assert.InDelta(t, 80.0, res.CategorySummary[0].Percentage, 1e-9)
	assert.Equal(t, core.StatusSafe, res.CategorySummary[1].Status)
	assert.Len(t, res.RecentTransactions, 3)
	assert.Equal(t, "2024-03", res.Month.String())
	assert.Equal(t, []core.Category{core.Food}, res.Insights.Warning)
}

func TestAnalyticsEmptyMonth(t *testing.T) {
	srv := newTestServer(t, memory.New(), Options{})
	rr := do(t, srv.Handler, http.MethodGet, "/analytics?month=2030-01", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"recentTransactions":[]`)
	res := decode[analytics.Result](t, rr)
	assert.True(t, res.TotalSpent.IsZero())
	for _, cs := range res.CategorySummary {
		assert.Equal(t, core.StatusSafe, cs.Status)
	}
}

type brokenStore struct{ storage.Store }

func (brokenStore) ListBudgets(context.Context, core.Month) ([]core.Budget, error) {
	return nil, errors.New("pq: password authentication failed for user fintrack")
}

func TestInternalErrorsAreOpaque(t *testing.T) {
	var logs bytes.Buffer
	logger := applog.New(applog.Config{Level: slog.LevelDebug, Format: "json", Output: &logs})
	srv := newTestServer(t, brokenStore{memory.New()}, Options{Logger: logger})

	rr := do(t, srv.Handler, http.MethodGet, "/budgets?month=2024-03", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "password")
	assert.Contains(t, logs.String(), "password authentication failed")
}

func TestRateLimitAppliesToMutationsOnly(t *testing.T) {
	srv := newTestServer(t, memory.New(), Options{RateLimitPerMinute: 2})
	body := `{"amount":1,"description":"x","category":"Food","date":"2024-03-05"}`

	assert.Equal(t, http.StatusCreated, do(t, srv.Handler, http.MethodPost, "/transactions", body).Code)
	assert.Equal(t, http.StatusCreated, do(t, srv.Handler, http.MethodPost, "/transactions", body).Code)
	rr := do(t, srv.Handler, http.MethodPost, "/transactions", body)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, do(t, srv.Handler, http.MethodGet, "/transactions", "").Code)

	metrics := do(t, srv.Handler, http.MethodGet, "/metrics", "")
	assert.Contains(t, metrics.Body.String(), "rate_limit_hits_total 1")
	assert.Contains(t, metrics.Body.String(), "transactions_created_total 2")
}

func TestUnknownRoutesAreJSON(t *testing.T) {
	srv := newTestServer(t, memory.New(), Options{})
	rr := do(t, srv.Handler, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "not found", decode[errorResponse](t, rr).Error)

	rr = do(t, srv.Handler, http.MethodPatch, "/transactions/1", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
