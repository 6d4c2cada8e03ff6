package treatshttp

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	treats "github.com/weegigs/pearls-treats"
)

type HandlerOption func(service *httpService)

func Logger(log *zerolog.Logger) HandlerOption {
	return func(service *httpService) {
		service.log = log
	}
}

// Registry sets where metrics are registered and served from. Defaults to a
// fresh registry per handler.
func Registry(registry *prometheus.Registry) HandlerOption {
	return func(service *httpService) {
		service.registry = registry
	}
}

func HealthTimeout(timeout time.Duration) HandlerOption {
	return func(service *httpService) {
		service.healthTimeout = timeout
	}
}

func NewHandler(renderer *treats.Renderer, store treats.CounterStore, options ...HandlerOption) http.Handler {
	service := &httpService{renderer: renderer, store: store, healthTimeout: 2 * time.Second}
	for _, option := range options {
		option(service)
	}
	if service.log == nil {
		service.log = &log.Logger
	}
	if service.registry == nil {
		service.registry = prometheus.NewRegistry()
	}
	service.metrics = newPageMetrics(service.registry)

	r := chi.NewRouter()

	r.Method("GET", "/", service.getPage())
	r.Method("GET", "/healthz", service.getHealth())
	r.Method("GET", "/metrics", promhttp.HandlerFor(service.registry, promhttp.HandlerOpts{}))

	return WithTelemetry(r, "treats-http")
}

type httpService struct {
	log           *zerolog.Logger
	renderer      *treats.Renderer
	store         treats.CounterStore
	registry      *prometheus.Registry
	metrics       *pageMetrics
	healthTimeout time.Duration
}

func (service *httpService) getPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		document, err := service.renderer.Render(r.Context(), r.Header)
		if err != nil {
			service.log.Error().Err(err).Msg("failed to render page")
			http.Error(w, "failed to render page", http.StatusInternalServerError)
			return
		}

		service.metrics.observe(document)

		render.Status(r, http.StatusOK)
		render.HTML(w, r, string(document.Body))
	}
}

type health struct {
	Status string `json:"status"`
	Store  string `json:"store"`
	Error  string `json:"error,omitempty"`
}

func (service *httpService) getHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), service.healthTimeout)
		defer cancel()

		status := health{Status: "ok", Store: "available"}
		code := http.StatusOK
		if err := service.store.Ping(ctx); err != nil {
			service.log.Info().Err(err).Msg("counter store health check failed")
			status = health{Status: "degraded", Store: "unavailable", Error: err.Error()}
			code = http.StatusServiceUnavailable
		}

		body, err := json.MarshalContext(r.Context(), status)
		if err != nil {
			http.Error(w, "failed to encode health", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_, _ = w.Write(body)
	}
}
