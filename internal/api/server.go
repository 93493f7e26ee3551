// internal/api/server.go
package api

import (
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"activities-api/internal/common/logger"
	"activities-api/internal/common/observability"
	"activities-api/internal/notifier"
	"activities-api/internal/registry"
)

// Server wires the activity registry to its HTTP surface.
type Server struct {
	store    registry.Store
	notifier notifier.Notifier
	log      logger.Logger
	obs      *observability.Observability
	static   fs.FS
}

// Options carries the Server's dependencies. Notifier, Observability and
// Static are optional; nil-safe defaults are substituted.
type Options struct {
	Store         registry.Store
	Notifier      notifier.Notifier
	Logger        logger.Logger
	Observability *observability.Observability
	Static        fs.FS
}

func NewServer(opts Options) *Server {
	n := opts.Notifier
	if n == nil {
		n = notifier.Noop{}
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Server{
		store:    opts.Store,
		notifier: n,
		log:      log,
		obs:      opts.Observability,
		static:   opts.Static,
	}
}

// Router builds the chi router with all application and operational routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.log))
	r.Use(metricsMiddleware(s.obs))

	r.Get("/", s.handleRoot)
	r.Get("/activities", s.handleListActivities)
	r.Post("/activities/{name}/signup", s.handleSignup)
	r.Post("/activities/{name}/unregister", s.handleUnregister)

	if s.static != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(s.static))))
	}

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	r.Get("/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		status := http.StatusOK
		readiness := "ready"
		if _, err := s.store.List(req.Context()); err != nil {
			status = http.StatusServiceUnavailable
			readiness = "not ready"
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{
			"status": readiness,
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	r.HandleFunc("/debug/pprof/", pprof.Index)
	r.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	r.HandleFunc("/debug/pprof/profile", pprof.Profile)
	r.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	r.HandleFunc("/debug/pprof/trace", pprof.Trace)

	return r
}
