package config

import (
	"slices"
	"time"

	"github.com/yndnr/vitals/internal/telemetry/metric"
)

// Default configuration values.
const (
	DefaultHTTPAddr        = "0.0.0.0:8000"
	DefaultShutdownTimeout = 30 * time.Second

	DefaultMetricsPath        = "/metrics"
	DefaultCollectionInterval = 5 * time.Second

	DefaultCPUWarning     = 80.0
	DefaultCPUCritical    = 95.0
	DefaultMemoryWarning  = 80.0
	DefaultMemoryCritical = 95.0
	DefaultDiskWarning    = 80.0
	DefaultDiskCritical   = 95.0
	DefaultReadyMinUptime = 10 * time.Second

	DefaultRateBurst = 20
	DefaultMaxItems  = 10000

	DefaultStorageBackend = "memory"
	DefaultStorageDir     = "./data"
	DefaultGCInterval     = 10 * time.Minute

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// DefaultExcludePaths are never counted by the request middleware.
var DefaultExcludePaths = []string{"/metrics", "/favicon.ico", "/docs", "/openapi.json", "/redoc"}

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:            DefaultHTTPAddr,
				ShutdownTimeout: DefaultShutdownTimeout,
			},
		},
		Metrics: MetricsSection{
			Path:               DefaultMetricsPath,
			CollectionInterval: DefaultCollectionInterval,
			ExcludePaths:       slices.Clone(DefaultExcludePaths),
			LatencyBuckets:     slices.Clone(metric.DefaultLatencyBuckets),
			SizeBuckets:        slices.Clone(metric.DefaultSizeBuckets),
			Mountpoints:        []string{"/"},
			GoCollector:        true,
		},
		Health: HealthSection{
			CPUWarning:     DefaultCPUWarning,
			CPUCritical:    DefaultCPUCritical,
			MemoryWarning:  DefaultMemoryWarning,
			MemoryCritical: DefaultMemoryCritical,
			DiskWarning:    DefaultDiskWarning,
			DiskCritical:   DefaultDiskCritical,
			ReadyMinUptime: DefaultReadyMinUptime,
		},
		API: APISection{
			RateBurst: DefaultRateBurst,
			MaxItems:  DefaultMaxItems,
		},
		Storage: StorageSection{
			Backend:    DefaultStorageBackend,
			Dir:        DefaultStorageDir,
			GCInterval: DefaultGCInterval,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
