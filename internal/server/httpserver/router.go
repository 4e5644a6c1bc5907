package httpserver

import (
	"net/http"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/vitals/internal/core/service"
	"github.com/yndnr/vitals/internal/server/config"
	"github.com/yndnr/vitals/internal/server/httpserver/handler"
	"github.com/yndnr/vitals/internal/telemetry/logger"
	"github.com/yndnr/vitals/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Config supplies metrics, health and API settings.
	Config *config.ServerConfig

	// Registry backs the metrics endpoint. Its instrument set is created
	// on demand.
	Registry *metric.Registry

	// Items handles the demo data API.
	Items *service.ItemService

	// Host is the system sampler, or nil when none is running.
	Host handler.HostProbe

	// Logger for request logging.
	Logger logger.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(cfg *RouterConfig) (http.Handler, error) {
	inst, err := cfg.Registry.Init()
	if err != nil {
		return nil, err
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}

	var extra []prometheus.Gatherer
	if cfg.Config.Metrics.GoCollector {
		extra = append(extra, metric.NewRuntimeGatherer())
	}

	h := handler.New(handler.Config{
		Items:          cfg.Items,
		Metrics:        inst.HTTP,
		Host:           cfg.Host,
		Health:         cfg.Config.Health,
		MetricsPath:    cfg.Config.Metrics.Path,
		MetricsHandler: metric.Handler(cfg.Registry, metric.HandlerOpts{Extra: extra, Logger: log}),
		DataMiddleware: RateLimit(cfg.Config.API.RateLimit, cfg.Config.API.RateBurst),
		Logger:         log,
		Now:            cfg.Now,
	})

	// Order: Recover -> RequestID -> Audit -> Instrument -> routes
	return Chain(h,
		Recover(log),
		RequestID(),
		Audit(log),
		Instrument(InstrumentConfig{
			Metrics:      inst.HTTP,
			Routes:       h,
			ExcludePaths: excludePaths(cfg.Config.Metrics),
			Now:          cfg.Now,
		}),
	), nil
}

// excludePaths is the configured exclusion set plus the exposition path,
// so a scrape never counts itself whatever metrics.path is.
func excludePaths(m config.MetricsSection) []string {
	paths := slices.Clone(m.ExcludePaths)
	if m.Path != "" && !slices.Contains(paths, m.Path) {
		paths = append(paths, m.Path)
	}
	return paths
}
