package httpapi

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/divmain/drydock-scaffold/internal/infrastructure/config"
	obs "github.com/divmain/drydock-scaffold/internal/infrastructure/observability"
	"github.com/divmain/drydock-scaffold/internal/usecase"
)

// Deps carries what the admin API handlers need.
type Deps struct {
	Cfg     config.Config
	Logger  *zerolog.Logger
	Metrics *obs.Metrics
	Svc     *usecase.RecordingService
	Monitor *MonitorHub
}

// NewAdminRouter serves health, metrics and a read-only view of the recording.
func NewAdminRouter(d *Deps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	mux.Handle("/metrics", promhttp.HandlerFor(d.Metrics.Registry(), promhttp.HandlerOpts{}))

	mux.HandleFunc("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"name":    "drydock-scaffold",
			"version": obs.VersionString(),
			"session": d.Svc.Session(),
			"time":    time.Now().UTC(),
		})
	})

	mux.HandleFunc("/api/transactions", d.handleListTransactions)
	mux.HandleFunc("/api/transactions/", d.handleTransactionByNo)
	mux.HandleFunc("/api/transactions.har", d.handleExportHAR)
	mux.HandleFunc("/api/transactions_stream", d.handleTransactionStream)
	mux.HandleFunc("/api/monitor/ws", d.Monitor.HandleWS)

	return withCORS(d.Cfg, mux)
}

// withCORS sets permissive CORS headers and answers preflight requests locally.
// A response written by the wrapped handler may replace these headers.
func withCORS(cfg config.Config, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, HEAD, OPTIONS")
		if req := r.Header.Get("Access-Control-Request-Headers"); req != "" {
			w.Header().Set("Access-Control-Allow-Headers", req)
		} else {
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Cookie")
		}
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}
