package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/yndnr/vitals/internal/core/service"
	"github.com/yndnr/vitals/internal/infra/buildinfo"
	"github.com/yndnr/vitals/internal/infra/confloader"
	"github.com/yndnr/vitals/internal/infra/shutdown"
	"github.com/yndnr/vitals/internal/server/config"
	"github.com/yndnr/vitals/internal/server/httpserver"
	"github.com/yndnr/vitals/internal/server/httpserver/handler"
	"github.com/yndnr/vitals/internal/storage"
	"github.com/yndnr/vitals/internal/storage/memory"
	"github.com/yndnr/vitals/internal/telemetry/logger"
	"github.com/yndnr/vitals/internal/telemetry/metric"
	"github.com/yndnr/vitals/internal/telemetry/sampler"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		logLevel    = flag.String("log-level", "", "Override log.level (debug, info, warn, error)")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("vitals-server %s\n", buildinfo.String())
		return nil
	}

	cfg, sources, err := loadConfig(*configFile, *logLevel)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	info := buildinfo.Get()
	log.Info("starting vitals-server",
		"version", info.Version,
		"commit", info.Commit,
		"config_sources", sources)

	registry := metric.NewRegistry(
		metric.WithLatencyBuckets(cfg.Metrics.LatencyBuckets),
		metric.WithSizeBuckets(cfg.Metrics.SizeBuckets),
	)
	inst, err := registry.Init()
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	if err := exportBuildInfo(registry, info); err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	smp := startSampler(ctx, cfg, inst, log)

	repo, closeStore, err := openItemStore(cfg, registry, log)
	if err != nil {
		return fmt.Errorf("open item store: %w", err)
	}
	items := service.NewItemService(repo, service.WithMaxItems(cfg.API.MaxItems))

	routerCfg := &httpserver.RouterConfig{
		Config:   cfg,
		Registry: registry,
		Items:    items,
		Logger:   log,
	}
	// A nil *Sampler must not become a non-nil HostProbe.
	if smp != nil {
		routerCfg.Host = smp
	}
	router, err := httpserver.NewRouter(routerCfg)
	if err != nil {
		return fmt.Errorf("init router: %w", err)
	}

	httpServer := httpserver.New(cfg.Server.HTTP, router)

	shutdownHandler := shutdown.NewHandler(cfg.Server.HTTP.ShutdownTimeout, log)

	// Hooks run in reverse order: HTTP first, then the sampler, then the
	// item store, then the config watcher.
	if *configFile != "" {
		watcher, err := watchConfig(*configFile, *logLevel, log)
		if err != nil {
			log.Warn("config reload disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown("config-watcher", func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	shutdownHandler.OnShutdown("store", func(context.Context) error {
		return closeStore()
	})

	if smp != nil {
		shutdownHandler.OnShutdown("sampler", func(ctx context.Context) error {
			stopped := make(chan struct{})
			go func() {
				smp.Stop()
				close(stopped)
			}()
			select {
			case <-stopped:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}

	shutdownHandler.OnShutdown("http", func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return httpServer.Shutdown(ctx)
	})

	var (
		serveErr   error
		serveErrMu sync.Mutex
	)
	go func() {
		log.Info("HTTP server listening",
			"addr", cfg.Server.HTTP.Addr,
			"tls", httpServer.TLS(),
			"metrics_path", cfg.Metrics.Path)

		if err := httpServer.Run(); err != nil {
			log.Error("HTTP server error", "error", err)
			serveErrMu.Lock()
			serveErr = err
			serveErrMu.Unlock()
			shutdownHandler.Trigger()
		}
	}()

	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(context.Background()); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	serveErrMu.Lock()
	defer serveErrMu.Unlock()
	if serveErr != nil {
		return fmt.Errorf("http server: %w", serveErr)
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from defaults, file and environment.
// A non-empty levelOverride replaces log.level. It also returns the
// sources that were applied.
func loadConfig(configFile, levelOverride string) (*config.ServerConfig, []string, error) {
	cfg := config.Default()

	loader := confloader.NewLoader(
		confloader.WithConfigFile(configFile),
		confloader.WithOverrides(map[string]any{"log.level": levelOverride}),
	)
	if err := loader.Load(cfg); err != nil {
		return nil, nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, loader.Sources(), nil
}

// initLogger initializes the structured logger and installs it as the
// default.
func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  os.Stdout,
		Service: "vitals-server",
	})
	if err != nil {
		return nil, err
	}

	logger.SetDefault(log)
	return log, nil
}

// exportBuildInfo publishes vitals_build_info{version,commit,...} 1.
func exportBuildInfo(reg *metric.Registry, info buildinfo.Info) error {
	bi, err := reg.Info("vitals_build", "Build information of the running binary")
	if err != nil {
		return err
	}
	bi.Set(info.Fields())
	return nil
}

// startSampler starts host sampling. Without /proc the server still
// runs; it just exports no system gauges.
func startSampler(ctx context.Context, cfg *config.ServerConfig, inst *metric.Instruments, log logger.Logger) *sampler.Sampler {
	src, err := sampler.NewProcSource()
	if err != nil {
		log.Warn("system sampling disabled", "error", err)
		return nil
	}

	smp := sampler.New(inst.System, src,
		sampler.WithInterval(cfg.Metrics.CollectionInterval),
		sampler.WithMountpoints(cfg.Metrics.Mountpoints...),
		sampler.WithLogger(log.With("component", "sampler")),
	)
	smp.Start(ctx)
	return smp
}

// openItemStore opens the configured item repository and returns a
// function that releases it.
func openItemStore(cfg *config.ServerConfig, reg *metric.Registry, log logger.Logger) (service.ItemRepository, func() error, error) {
	if cfg.Storage.Backend != "badger" {
		return memory.New(), func() error { return nil }, nil
	}

	storeCfg := storage.DefaultConfig(cfg.Storage.Dir)
	storeCfg.SyncWrites = cfg.Storage.SyncWrites
	storeCfg.GCInterval = cfg.Storage.GCInterval

	store, err := storage.Open(storeCfg, reg, storage.WithLogger(log.With("component", "storage")))
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}

// configDebounce absorbs the burst of writes an editor makes on save.
const configDebounce = 250 * time.Millisecond

// watchConfig reloads log.level when the config file changes. Other
// settings need a restart.
func watchConfig(path, levelOverride string, log logger.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher(
		confloader.WithWatcherLogger(log),
		confloader.WithDebounce(configDebounce),
	)
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(path); err != nil {
		_ = watcher.Stop()
		return nil, err
	}

	watcher.OnChange(func(changed string) {
		reloadLogLevel(changed, levelOverride, log)
	})
	watcher.StartAsync()
	return watcher, nil
}

// reloadLogLevel re-reads path and applies its log.level. A -log-level
// given at startup keeps precedence over the file.
func reloadLogLevel(path, levelOverride string, log logger.Logger) {
	cfg, _, err := loadConfig(path, levelOverride)
	if err != nil {
		log.Warn("ignoring invalid configuration change", "file", path, "error", err)
		return
	}
	if cfg.Log.Level == logger.GetLevel() {
		return
	}
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		log.Warn("failed to apply log level", "level", cfg.Log.Level, "error", err)
		return
	}
	log.Info("log level updated", "level", cfg.Log.Level)
}

// Compile-time check that the sampler satisfies the health probe.
var _ handler.HostProbe = (*sampler.Sampler)(nil)
