package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/actuallystonmai/canteen-recommendation/internal/handler"
)

const healthCheckTimeout = 2 * time.Second

// Pinger is a dependency the health check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	RequestTimeout time.Duration
	Gatherer       prometheus.Gatherer
	// Checks are probed by GET /health, keyed by name.
	Checks map[string]Pinger
}

func Setup(h *handler.Handler, opts Options) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.RequestTimeout))

	// Routes
	r.Route("/recommendation", func(r chi.Router) {
		r.Post("/menu/{menuId}", h.RecommendForMenu)
		r.Post("/date/{date}", h.RecommendForDate)
		r.Post("/menus", h.RecommendForMenus)
	})
	r.Route("/nutrition", func(r chi.Router) {
		r.Get("/analyze/menu/{menuId}", h.AnalyzeMenu)
		r.Get("/assess/menu/{menuId}", h.AssessMenu)
	})
	r.Get("/health", healthCheck(opts.Checks))
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthCheck(checks map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK
		for name, p := range checks {
			if err := p.Ping(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(resp)
	}
}
