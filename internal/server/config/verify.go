package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/yndnr/vitals/internal/telemetry/metric"
)

// Verify validates the configuration and normalizes bucket lists in place.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyMetrics(&cfg.Metrics); err != nil {
		return err
	}
	if err := verifyHealth(&cfg.Health); err != nil {
		return err
	}
	if err := verifyAPI(&cfg.API); err != nil {
		return err
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyServer(cfg *ServerSection) error {
	if cfg.HTTP.Addr == "" {
		return errors.New("server.http.addr is required")
	}
	if _, _, err := net.SplitHostPort(cfg.HTTP.Addr); err != nil {
		return fmt.Errorf("server.http.addr: %w", err)
	}
	if (cfg.HTTP.TLSCertFile == "") != (cfg.HTTP.TLSKeyFile == "") {
		return errors.New("server.http.tls_cert_file and tls_key_file must be set together")
	}
	if cfg.HTTP.ShutdownTimeout <= 0 {
		return errors.New("server.http.shutdown_timeout must be positive")
	}
	return nil
}

func verifyMetrics(cfg *MetricsSection) error {
	if !strings.HasPrefix(cfg.Path, "/") {
		return fmt.Errorf("metrics.path %q must start with /", cfg.Path)
	}
	if cfg.CollectionInterval <= 0 {
		return errors.New("metrics.collection_interval must be positive")
	}
	for _, p := range cfg.ExcludePaths {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("metrics.exclude_paths: %q must start with /", p)
		}
	}
	for _, mp := range cfg.Mountpoints {
		if mp == "" {
			return errors.New("metrics.mountpoints: empty mountpoint")
		}
	}

	latency, err := metric.NormalizeBuckets(cfg.LatencyBuckets)
	if err != nil {
		return fmt.Errorf("metrics.latency_buckets: %w", err)
	}
	size, err := metric.NormalizeBuckets(cfg.SizeBuckets)
	if err != nil {
		return fmt.Errorf("metrics.size_buckets: %w", err)
	}
	cfg.LatencyBuckets, cfg.SizeBuckets = latency, size
	return nil
}

func verifyHealth(cfg *HealthSection) error {
	pairs := []struct {
		name           string
		warn, critical float64
	}{
		{"cpu", cfg.CPUWarning, cfg.CPUCritical},
		{"memory", cfg.MemoryWarning, cfg.MemoryCritical},
		{"disk", cfg.DiskWarning, cfg.DiskCritical},
	}
	for _, p := range pairs {
		if p.warn < 0 || p.warn > 100 || p.critical < 0 || p.critical > 100 {
			return fmt.Errorf("health.%s thresholds must be within [0, 100]", p.name)
		}
		if p.warn > p.critical {
			return fmt.Errorf("health.%s_warning (%g) exceeds %s_critical (%g)", p.name, p.warn, p.name, p.critical)
		}
	}
	if cfg.ReadyMinUptime < 0 {
		return errors.New("health.ready_min_uptime must not be negative")
	}
	return nil
}

func verifyAPI(cfg *APISection) error {
	if cfg.RateLimit < 0 {
		return errors.New("api.rate_limit must not be negative")
	}
	if cfg.RateLimit > 0 && cfg.RateBurst < 1 {
		return errors.New("api.rate_burst must be at least 1 when rate limiting is enabled")
	}
	if cfg.MaxItems < 0 {
		return errors.New("api.max_items must not be negative")
	}
	return nil
}

func verifyStorage(cfg *StorageSection) error {
	switch cfg.Backend {
	case "memory":
		return nil
	case "badger":
	default:
		return fmt.Errorf("storage.backend %q is not one of memory, badger", cfg.Backend)
	}
	if cfg.Dir == "" {
		return errors.New("storage.dir is required for the badger backend")
	}
	if cfg.GCInterval <= 0 {
		return errors.New("storage.gc_interval must be positive")
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Level)
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text", "console":
	default:
		return fmt.Errorf("log.format %q is not one of json, text", cfg.Format)
	}
	return nil
}
