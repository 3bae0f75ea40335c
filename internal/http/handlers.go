package http

import (
	"encoding/json"
	"net/http"
	"time"

	"bilancio/internal/core"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
	})
}

// handleReady reports whether the store finished its initial load.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.store.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

type summaryResponse struct {
	Ready  bool               `json:"ready"`
	Data   core.FinancialData `json:"data"`
	Totals core.Totals        `json:"totals"`
}

// handleSummary returns the current snapshot with freshly derived totals.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, summaryResponse{
		Ready:  s.store.Ready(),
		Data:   s.store.Snapshot(),
		Totals: s.store.Totals(),
	})
}

type salariesRequest struct {
	User   core.Money `json:"user"`
	Spouse core.Money `json:"spouse"`
}

func (s *Server) handleUpdateSalaries(w http.ResponseWriter, r *http.Request) {
	var req salariesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.store.UpdateSalaries(r.Context(), req.User, req.Spouse); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		Ready:  s.store.Ready(),
		Data:   s.store.Snapshot(),
		Totals: s.store.Totals(),
	})
}

type debtRequest struct {
	Description string     `json:"description"`
	Value       core.Money `json:"value"`
	Category    string     `json:"category"`
}

func (s *Server) handleAddDebt(w http.ResponseWriter, r *http.Request) {
	var req debtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	debt, err := s.store.AddDebt(r.Context(), sanitizeInput(req.Description), req.Value, sanitizeInput(req.Category))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, debt)
}

func (s *Server) handleRemoveDebt(w http.ResponseWriter, r *http.Request) {
	// Deletion is idempotent: removing an unknown id still answers 204.
	if err := s.store.RemoveDebt(r.Context(), r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleDebtPaid(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ToggleDebtPaid(r.Context(), r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		Ready:  s.store.Ready(),
		Data:   s.store.Snapshot(),
		Totals: s.store.Totals(),
	})
}

type savingsRequest struct {
	Value core.Money `json:"value"`
}

func (s *Server) handleDepositSavings(w http.ResponseWriter, r *http.Request) {
	var req savingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tx, err := s.store.DepositSavings(r.Context(), req.Value)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleWithdrawSavings(w http.ResponseWriter, r *http.Request) {
	var req savingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tx, err := s.store.WithdrawSavings(r.Context(), req.Value)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}
