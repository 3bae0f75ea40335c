package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"bilancio/internal/store"
)

type Server struct {
	http.Server
	store *store.Store

	started      time.Time
	shutdownOnce sync.Once
}

func NewServer(addr string, st *store.Store) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		store:   st,
		started: time.Now(),
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/summary", s.withMiddleware(s.handleSummary))
	mux.HandleFunc("PUT /api/salaries", s.withMiddleware(s.handleUpdateSalaries))
	mux.HandleFunc("POST /api/debts", s.withMiddleware(s.handleAddDebt))
	mux.HandleFunc("DELETE /api/debts/{id}", s.withMiddleware(s.handleRemoveDebt))
	mux.HandleFunc("POST /api/debts/{id}/toggle", s.withMiddleware(s.handleToggleDebtPaid))
	mux.HandleFunc("POST /api/savings/deposits", s.withMiddleware(s.handleDepositSavings))
	mux.HandleFunc("POST /api/savings/withdrawals", s.withMiddleware(s.handleWithdrawSavings))

	return s
}

// withMiddleware adds security headers and request logging around a handler.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Cache-Control", "no-store")

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		slog.Info("Request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status_code", rec.status,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
