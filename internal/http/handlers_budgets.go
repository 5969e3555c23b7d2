package http

import (
	"net/http"
	"sync/atomic"

	applog "fintrack/internal/log"
)

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r, true)
	if err != nil {
		writeServiceError(w, r, applog.OpList, err)
		return
	}
	budgets, err := s.ledger.ListBudgets(r.Context(), *month)
	if err != nil {
		writeServiceError(w, r, applog.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(budgets))
}

// handleUpsertBudget creates or replaces the budget for (category, month).
func (s *Server) handleUpsertBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(w, r, s.maxBodyBytes, &req); err != nil {
		writeServiceError(w, r, applog.OpUpsert, err)
		return
	}
	saved, err := s.ledger.UpsertBudget(r.Context(), req.input())
	if err != nil {
		writeServiceError(w, r, applog.OpUpsert, err)
		return
	}
	atomic.AddInt64(&s.appMetrics.budgetsUpserted, 1)
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Budget saved",
		applog.NewFields().WithBudget(saved).ToSlice()...)
	writeJSON(w, http.StatusCreated, saved)
}
