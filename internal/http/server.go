// Package http exposes the ledger over a JSON API. It is a thin consumer of
// the core's read model and action set; all state transitions happen in the
// service layer.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"jarras/internal/log"
	"jarras/internal/middleware/security"
	"jarras/internal/middleware/trace"
	"jarras/internal/services"
)

// NewRouter registers all API endpoints.
func NewRouter(svc *services.LedgerService) http.Handler {
	h := NewHandler(svc)
	r := chi.NewRouter()

	r.Use(trace.Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/ledger", h.GetLedgerHandler)
		r.Post("/incomes", h.AddIncomeHandler)
		r.Post("/incomes/direct", h.AddDirectIncomeHandler)
		r.Post("/withdrawals", h.WithdrawHandler)
		r.Delete("/transactions/{id}", h.DeleteTransactionHandler)
		r.Put("/theme", h.SetThemeHandler)
		r.Get("/backup", h.ExportBackupHandler)
		r.Post("/backup", h.ImportBackupHandler)
	})

	return r
}

// NewServer creates a configured *http.Server for the ledger API.
func NewServer(port string, svc *services.LedgerService) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           NewRouter(svc),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64KB
	}
}

// requestLogger logs each request with method, path, status and duration.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		level := slog.LevelInfo
		if rec.status >= 500 {
			level = slog.LevelError
		} else if rec.status >= 400 {
			level = slog.LevelWarn
		}
		slog.Default().Log(r.Context(), level, "HTTP request completed",
			log.FieldComponent, log.ComponentHTTP,
			"request_id", trace.GetRequestID(r.Context()),
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rec.status,
			log.FieldDuration, time.Since(start).Milliseconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
