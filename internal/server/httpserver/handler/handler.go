package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/yndnr/vitals/internal/core/domain"
	"github.com/yndnr/vitals/internal/core/service"
	"github.com/yndnr/vitals/internal/server/config"
	"github.com/yndnr/vitals/internal/telemetry/logger"
	"github.com/yndnr/vitals/internal/telemetry/metric"
	"github.com/yndnr/vitals/internal/telemetry/sampler"
)

// HostProbe exposes the system sampler state used by health checks.
// *sampler.Sampler satisfies it.
type HostProbe interface {
	LastHost() (sampler.HostStats, bool)
	Err() error
}

// Config holds the dependencies of a Handler.
type Config struct {
	Items *service.ItemService

	// Metrics provides application uptime.
	Metrics *metric.HTTPMetrics

	// Host is optional; without it host thresholds are not evaluated.
	Host HostProbe

	Health config.HealthSection

	// MetricsPath mounts MetricsHandler when both are set.
	MetricsPath    string
	MetricsHandler http.Handler

	// DataMiddleware wraps the /data routes, e.g. with rate limiting.
	DataMiddleware func(http.Handler) http.Handler

	Logger logger.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Handler is the main HTTP handler that routes requests to appropriate handlers.
type Handler struct {
	items   *service.ItemService
	metrics *metric.HTTPMetrics
	host    HostProbe
	health  config.HealthSection
	logger  logger.Logger
	now     func() time.Time

	started time.Time
	mux     *http.ServeMux
}

// New creates a new Handler and registers its routes.
func New(cfg Config) *Handler {
	h := &Handler{
		items:   cfg.Items,
		metrics: cfg.Metrics,
		host:    cfg.Host,
		health:  cfg.Health,
		logger:  cfg.Logger,
		now:     cfg.Now,
		mux:     http.NewServeMux(),
	}
	if h.logger == nil {
		h.logger = logger.Discard()
	}
	if h.now == nil {
		h.now = time.Now
	}
	h.started = h.now()

	h.registerRoutes(cfg)
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// Handler reports the route pattern that serves r.
func (h *Handler) Handler(r *http.Request) (http.Handler, string) {
	return h.mux.Handler(r)
}

func (h *Handler) registerRoutes(cfg Config) {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /health/live", h.handleLive)
	h.mux.HandleFunc("GET /health/ready", h.handleReady)
	h.mux.HandleFunc("GET /health/detailed", h.handleDetailed)

	if cfg.MetricsPath != "" && cfg.MetricsHandler != nil {
		h.mux.Handle("GET "+cfg.MetricsPath, cfg.MetricsHandler)
	}

	data := func(fn http.HandlerFunc) http.Handler {
		if cfg.DataMiddleware == nil {
			return fn
		}
		return cfg.DataMiddleware(fn)
	}
	h.mux.Handle("GET /data", data(h.handleListData))
	h.mux.Handle("POST /data", data(h.handleCreateData))
	h.mux.Handle("GET /data/{id}", data(h.handleGetData))
	h.mux.Handle("PUT /data/{id}", data(h.handleUpdateData))
	h.mux.Handle("DELETE /data/{id}", data(h.handleDeleteData))

	h.mux.HandleFunc("GET /error", h.handleError)
}

// uptime falls back to the handler's own start time without Metrics.
func (h *Handler) uptime() time.Duration {
	if h.metrics != nil {
		return h.metrics.Uptime()
	}
	return h.now().Sub(h.started)
}

// writeJSON writes a success response in the standard envelope.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	requestID := getRequestID(r)
	response := NewResponse(requestID, message, data)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes an error response in the standard envelope.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	requestID := getRequestID(r)
	response := NewErrorResponse(requestID, code, message, details)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode error response", "error", err)
	}
}

// getRequestID extracts the request ID from context or header.
func getRequestID(r *http.Request) string {
	if id := logger.RequestIDFromContext(r.Context()); id != "" {
		return id
	}
	return r.Header.Get("X-Request-ID")
}

// handleServiceError converts service errors to HTTP responses. Errors
// without a code are reported as VT-SYS-5000 without their text.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	de, ok := domain.AsDomainError(err)
	if !ok {
		logger.ForRequest(r.Context(), h.logger).Error("internal error", "error", err)
		h.writeError(w, r, http.StatusInternalServerError,
			domain.ErrInternalServer.Code, domain.ErrInternalServer.Message, nil)
		return
	}

	status := de.HTTPStatus()
	if status >= 500 {
		logger.ForRequest(r.Context(), h.logger).Error("request failed", "error", err)
	}
	h.writeError(w, r, status, de.Code, err.Error(), nil)
}
