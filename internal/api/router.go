// Package api exposes cluster runs over HTTP.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/sells-group/storemap-cli/internal/config"
	"github.com/sells-group/storemap-cli/internal/store"
)

// Server bundles the handlers with their collaborators.
type Server struct {
	store    store.Store
	defaults config.ClusterConfig
}

// NewRouter builds the chi router for the cluster API. st may be nil, in
// which case the run persistence endpoints respond 503.
func NewRouter(st store.Store, defaults config.ClusterConfig, srvCfg config.ServerConfig) http.Handler {
	s := &Server{store: st, defaults: defaults}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(srvCfg),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(throttle(srvCfg))

	r.Get("/health", s.handleHealth)
	r.Post("/cluster", s.handleCluster)
	r.Route("/runs", func(r chi.Router) {
		r.Get("/", s.handleListRuns)
		r.Get("/{id}", s.handleGetRun)
		r.Delete("/{id}", s.handleDeleteRun)
		r.Get("/{id}/geojson", s.handleRunGeoJSON)
	})
	return r
}

func allowedOrigins(cfg config.ServerConfig) []string {
	if len(cfg.AllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.AllowedOrigins
}

// throttle applies a global request rate limit.
func throttle(cfg config.ServerConfig) func(http.Handler) http.Handler {
	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 10
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 20
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
