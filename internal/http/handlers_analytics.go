package http

import (
	"net/http"
	"sync/atomic"

	applog "fintrack/internal/log"
)

// handleAnalytics returns the monthly spend-versus-budget summary. It is
// recomputed from the store on every request.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r, true)
	if err != nil {
		writeServiceError(w, r, applog.OpSummary, err)
		return
	}
	res, err := s.analytics.MonthlySummary(r.Context(), *month)
	if err != nil {
		writeServiceError(w, r, applog.OpSummary, err)
		return
	}
	atomic.AddInt64(&s.appMetrics.summariesComputed, 1)
	res.RecentTransactions = nonNil(res.RecentTransactions)
	writeJSON(w, http.StatusOK, res)
}
