package confloader

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the default environment variable prefix.
const DefaultEnvPrefix = "VITALS_"

// envSectionSep separates nesting levels in variable names. A single
// underscore stays part of the key (collection_interval).
const envSectionSep = "__"

// Loader merges configuration sources in order: file, environment, then
// overrides. Later sources win key by key.
type Loader struct {
	k         *koanf.Koanf
	envPrefix string
	filePath  string
	overrides map[string]any
	sources   []string
}

// Option is a function that configures the Loader.
type Option func(*Loader)

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// WithConfigFile sets the configuration file path.
func WithConfigFile(path string) Option {
	return func(l *Loader) {
		l.filePath = path
	}
}

// WithOverrides applies values after the environment, typically from
// command line flags. Keys are dotted paths; empty string values are
// skipped.
func WithOverrides(values map[string]any) Option {
	return func(l *Loader) {
		l.overrides = values
	}
}

// NewLoader creates a new configuration loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		k:         koanf.New("."),
		envPrefix: DefaultEnvPrefix,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load merges all sources and unmarshals the result over target. Fields
// of target that no source sets keep their value, so callers pass a
// struct pre-filled with defaults.
func (l *Loader) Load(target any) error {
	if l.filePath != "" {
		if err := l.k.Load(file.Provider(l.filePath), yaml.Parser()); err != nil {
			return fmt.Errorf("load file %s: %w", l.filePath, err)
		}
		l.sources = append(l.sources, "file:"+l.filePath)
	}

	n, err := l.loadEnv()
	if err != nil {
		return err
	}
	if n > 0 {
		l.sources = append(l.sources, "env")
	}

	if n := l.loadOverrides(); n > 0 {
		l.sources = append(l.sources, "flags")
	}

	if err := l.k.Unmarshal("", target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

// Sources lists the sources that contributed to the last Load, in the
// order they were applied.
func (l *Loader) Sources() []string {
	return l.sources
}

// loadEnv reads variables with the loader's prefix and reports how many
// keys it set.
//
//	VITALS_SERVER__HTTP__ADDR=0.0.0.0:8000       -> server.http.addr
//	VITALS_METRICS__LATENCY_BUCKETS=0.1,0.5,1    -> metrics.latency_buckets (list)
//
// Values containing commas are split into lists. Empty values are
// ignored so an unset-but-exported variable does not clear a default.
func (l *Loader) loadEnv() (int, error) {
	n := 0
	transform := func(key, value string) (string, any) {
		if value == "" {
			return "", nil
		}
		n++
		key = strings.TrimPrefix(key, l.envPrefix)
		key = strings.ToLower(key)
		key = strings.ReplaceAll(key, envSectionSep, ".")

		if strings.Contains(value, ",") {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			return key, parts
		}
		return key, value
	}

	provider := env.ProviderWithValue(l.envPrefix, ".", transform)
	if err := l.k.Load(provider, nil); err != nil {
		return 0, fmt.Errorf("load env: %w", err)
	}
	return n, nil
}

func (l *Loader) loadOverrides() int {
	values := make(map[string]any, len(l.overrides))
	for k, v := range l.overrides {
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		values[k] = v
	}
	if len(values) == 0 {
		return 0
	}
	// mapProvider never fails.
	_ = l.k.Load(mapProvider(values), nil)
	return len(values)
}
