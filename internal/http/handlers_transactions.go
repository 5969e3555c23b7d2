package http

import (
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"

	applog "fintrack/internal/log"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r, false)
	if err != nil {
		writeServiceError(w, r, applog.OpList, err)
		return
	}
	txns, err := s.ledger.ListTransactions(r.Context(), month)
	if err != nil {
		writeServiceError(w, r, applog.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(txns))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, s.maxBodyBytes, &req); err != nil {
		writeServiceError(w, r, applog.OpCreate, err)
		return
	}
	created, err := s.ledger.CreateTransaction(r.Context(), req.input())
	if err != nil {
		writeServiceError(w, r, applog.OpCreate, err)
		return
	}
	atomic.AddInt64(&s.appMetrics.transactionsCreated, 1)
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Transaction created",
		applog.NewFields().WithTransaction(created).ToSlice()...)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req transactionRequest
	if err := decodeJSON(w, r, s.maxBodyBytes, &req); err != nil {
		writeServiceError(w, r, applog.OpUpdate, err)
		return
	}
	updated, err := s.ledger.UpdateTransaction(r.Context(), id, req.input())
	if err != nil {
		writeServiceError(w, r, applog.OpUpdate, err)
		return
	}
	atomic.AddInt64(&s.appMetrics.transactionsUpdated, 1)
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Transaction updated",
		applog.NewFields().WithTransaction(updated).ToSlice()...)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.ledger.DeleteTransaction(r.Context(), id); err != nil {
		writeServiceError(w, r, applog.OpDelete, err)
		return
	}
	atomic.AddInt64(&s.appMetrics.transactionsDeleted, 1)
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Transaction deleted", applog.FieldRecordID, id)
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
