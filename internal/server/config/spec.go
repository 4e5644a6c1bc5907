package config

import "time"

// ServerConfig is the root configuration for vitals-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Metrics MetricsSection `koanf:"metrics"`
	Health  HealthSection  `koanf:"health"`
	API     APISection     `koanf:"api"`
	Storage StorageSection `koanf:"storage"`
	Log     LogSection     `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP HTTPConfig `koanf:"http"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr            string        `koanf:"addr"`
	TLSCertFile     string        `koanf:"tls_cert_file"`
	TLSKeyFile      string        `koanf:"tls_key_file"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// MetricsSection configures collection and exposition.
type MetricsSection struct {
	// Path is where the exposition endpoint is mounted.
	Path string `koanf:"path"`

	// CollectionInterval is the system sampler period.
	CollectionInterval time.Duration `koanf:"collection_interval"`

	// ExcludePaths are raw request paths the request middleware ignores.
	ExcludePaths []string `koanf:"exclude_paths"`

	// LatencyBuckets are request duration bounds in seconds. +Inf is
	// appended when missing.
	LatencyBuckets []float64 `koanf:"latency_buckets"`

	// SizeBuckets are request/response size bounds in bytes.
	SizeBuckets []float64 `koanf:"size_buckets"`

	// Mountpoints whose disk usage is sampled.
	Mountpoints []string `koanf:"mountpoints"`

	// GoCollector adds the Go runtime families (go_*) to the exposition.
	GoCollector bool `koanf:"go_collector"`
}

// HealthSection configures health check thresholds (percent).
type HealthSection struct {
	CPUWarning     float64 `koanf:"cpu_warning"`
	CPUCritical    float64 `koanf:"cpu_critical"`
	MemoryWarning  float64 `koanf:"memory_warning"`
	MemoryCritical float64 `koanf:"memory_critical"`
	DiskWarning    float64 `koanf:"disk_warning"`
	DiskCritical   float64 `koanf:"disk_critical"`

	// ReadyMinUptime is how long after start /health/ready keeps failing.
	ReadyMinUptime time.Duration `koanf:"ready_min_uptime"`
}

// APISection configures the demo data API.
type APISection struct {
	// RateLimit is requests per second per client IP. 0 disables limiting.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`

	// MaxItems caps the number of stored items. 0 removes the cap.
	MaxItems int `koanf:"max_items"`
}

// StorageSection selects where demo items live.
type StorageSection struct {
	// Backend is "memory" or "badger".
	Backend string `koanf:"backend"`

	// Dir is the badger data directory.
	Dir string `koanf:"dir"`

	SyncWrites bool          `koanf:"sync_writes"`
	GCInterval time.Duration `koanf:"gc_interval"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
