package confloader

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type testConfig struct {
	Server struct {
		HTTP struct {
			Addr string `koanf:"addr"`
		} `koanf:"http"`
	} `koanf:"server"`
	Metrics struct {
		CollectionInterval time.Duration `koanf:"collection_interval"`
		LatencyBuckets     []float64     `koanf:"latency_buckets"`
		ExcludePaths       []string      `koanf:"exclude_paths"`
		GoCollector        bool          `koanf:"go_collector"`
	} `koanf:"metrics"`
	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vitals.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestNewLoader(t *testing.T) {
	l := NewLoader()
	if l.envPrefix != DefaultEnvPrefix {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, DefaultEnvPrefix)
	}

	l = NewLoader(WithEnvPrefix("TEST_"), WithConfigFile("/etc/vitals.yaml"))
	if l.envPrefix != "TEST_" {
		t.Errorf("envPrefix = %q, want TEST_", l.envPrefix)
	}
	if l.filePath != "/etc/vitals.yaml" {
		t.Errorf("filePath = %q", l.filePath)
	}
}

func TestLoader_File(t *testing.T) {
	path := writeConfig(t, `
server:
  http:
    addr: "0.0.0.0:9000"
metrics:
  collection_interval: 10s
  latency_buckets: [0.1, 0.5, 1]
  go_collector: true
`)

	l := NewLoader(WithConfigFile(path), WithEnvPrefix("VITALS_LOADFILE_TEST_"))
	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTP.Addr != "0.0.0.0:9000" {
		t.Errorf("Addr = %q", cfg.Server.HTTP.Addr)
	}
	if !cfg.Metrics.GoCollector {
		t.Error("GoCollector should be true")
	}
	if cfg.Metrics.CollectionInterval != 10*time.Second {
		t.Errorf("CollectionInterval = %v, want 10s", cfg.Metrics.CollectionInterval)
	}
	if len(cfg.Metrics.LatencyBuckets) != 3 || cfg.Metrics.LatencyBuckets[1] != 0.5 {
		t.Errorf("LatencyBuckets = %v", cfg.Metrics.LatencyBuckets)
	}
	if got := l.Sources(); len(got) != 1 || got[0] != "file:"+path {
		t.Errorf("Sources() = %v", got)
	}
}

func TestLoader_FileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		path    string
	}{
		{name: "missing file", path: "/nonexistent/vitals.yaml"},
		{name: "malformed yaml", content: "server: [unclosed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.path
			if path == "" {
				path = writeConfig(t, tt.content)
			}
			var cfg testConfig
			if err := NewLoader(WithConfigFile(path)).Load(&cfg); err == nil {
				t.Error("Load() expected error")
			}
		})
	}
}

func TestLoader_Env(t *testing.T) {
	t.Setenv("VITALS_SERVER__HTTP__ADDR", "127.0.0.1:7000")
	t.Setenv("VITALS_METRICS__COLLECTION_INTERVAL", "2s")
	t.Setenv("VITALS_METRICS__LATENCY_BUCKETS", "0.05, 0.5,5")
	t.Setenv("VITALS_METRICS__EXCLUDE_PATHS", "/metrics")
	t.Setenv("OTHER_METRICS__COLLECTION_INTERVAL", "99s")

	l := NewLoader()
	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTP.Addr != "127.0.0.1:7000" {
		t.Errorf("Addr = %q", cfg.Server.HTTP.Addr)
	}
	if cfg.Metrics.CollectionInterval != 2*time.Second {
		t.Errorf("CollectionInterval = %v, want 2s", cfg.Metrics.CollectionInterval)
	}
	want := []float64{0.05, 0.5, 5}
	if len(cfg.Metrics.LatencyBuckets) != len(want) {
		t.Fatalf("LatencyBuckets = %v, want %v", cfg.Metrics.LatencyBuckets, want)
	}
	for i := range want {
		if cfg.Metrics.LatencyBuckets[i] != want[i] {
			t.Errorf("LatencyBuckets[%d] = %v, want %v", i, cfg.Metrics.LatencyBuckets[i], want[i])
		}
	}
	if len(cfg.Metrics.ExcludePaths) != 1 || cfg.Metrics.ExcludePaths[0] != "/metrics" {
		t.Errorf("ExcludePaths = %v, want [/metrics]", cfg.Metrics.ExcludePaths)
	}
	if got := l.Sources(); len(got) != 1 || got[0] != "env" {
		t.Errorf("Sources() = %v, want [env]", got)
	}
}

func TestLoader_EmptyEnvKeepsDefault(t *testing.T) {
	t.Setenv("VITALS_LOG__LEVEL", "")

	var cfg testConfig
	cfg.Log.Level = "info"
	if err := NewLoader().Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Level = %q, want info", cfg.Log.Level)
	}
}

func TestLoader_Load_Priority(t *testing.T) {
	path := writeConfig(t, `
server:
  http:
    addr: "file:1"
log:
  level: debug
`)
	t.Setenv("VITALS_SERVER__HTTP__ADDR", "env:2")
	t.Setenv("VITALS_LOG__LEVEL", "warn")

	var cfg testConfig
	cfg.Metrics.CollectionInterval = 5 * time.Second
	l := NewLoader(
		WithConfigFile(path),
		WithOverrides(map[string]any{"log.level": "error", "server.http.addr": ""}),
	)
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTP.Addr != "env:2" {
		t.Errorf("Addr = %q, env should override file and empty override is skipped", cfg.Server.HTTP.Addr)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("Level = %q, override should win", cfg.Log.Level)
	}
	if cfg.Metrics.CollectionInterval != 5*time.Second {
		t.Errorf("CollectionInterval = %v, preset default should survive", cfg.Metrics.CollectionInterval)
	}

	want := []string{"file:" + path, "env", "flags"}
	got := l.Sources()
	if len(got) != len(want) {
		t.Fatalf("Sources() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sources()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMapProvider(t *testing.T) {
	if _, err := mapProvider(nil).ReadBytes(); err != ErrReadBytesNotSupported {
		t.Errorf("ReadBytes() error = %v, want ErrReadBytesNotSupported", err)
	}

	got, err := mapProvider{"metrics.path": "/m", "log.level": "warn"}.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	metrics, ok := got["metrics"].(map[string]any)
	if !ok || metrics["path"] != "/m" {
		t.Errorf("Read() = %v, want nested metrics.path", got)
	}
}
