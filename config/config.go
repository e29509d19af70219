package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/jonwraymond/guidelinely/cache"
	"github.com/jonwraymond/guidelinely/observe"
	"github.com/jonwraymond/guidelinely/remote"
	"github.com/jonwraymond/guidelinely/secret"
)

// Environment variable names.
const (
	EnvAPIBase         = "GUIDELINELY_API_BASE"
	EnvAPIKey          = "GUIDELINELY_API_KEY"
	EnvTimeout         = "GUIDELINELY_TIMEOUT"
	EnvCacheDir        = "GUIDELINELY_CACHE_DIR"
	EnvCacheTTL        = "GUIDELINELY_CACHE_TTL"
	EnvBatchCacheTTL   = "GUIDELINELY_BATCH_CACHE_TTL"
	EnvRetries         = "GUIDELINELY_RETRIES"
	EnvLogLevel        = "GUIDELINELY_LOG_LEVEL"
	EnvTraceExporter   = "GUIDELINELY_TRACE_EXPORTER"
	EnvMetricsExporter = "GUIDELINELY_METRICS_EXPORTER"
)

// MaxRetries bounds Config.Retries.
const MaxRetries = 10

// ServiceName identifies the client in telemetry.
const ServiceName = "guidelinely"

// Errors returned by Load and Validate.
var (
	ErrInvalidConfig = errors.New("config: invalid configuration")
	ErrEnvFile       = errors.New("config: cannot read env file")
)

// Config holds client settings.
type Config struct {
	// APIBase is the service root.
	APIBase string

	// APIKey is the resolved credential. Empty means unauthenticated.
	APIKey string

	// Timeout bounds each remote call.
	Timeout time.Duration

	// CacheDir holds the SQLite cache file.
	CacheDir string

	// CacheTTL and BatchCacheTTL are the entry lifetimes for single and
	// batch calculations. Zero disables caching for that endpoint.
	CacheTTL      time.Duration
	BatchCacheTTL time.Duration

	// Retries is the number of transport-level retries.
	Retries int

	// LogLevel enables structured logging when non-empty.
	LogLevel string

	// TraceExporter and MetricsExporter enable telemetry when set to
	// anything other than "" or "none".
	TraceExporter   string
	MetricsExporter string
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		APIBase:       remote.DefaultBaseURL,
		Timeout:       remote.DefaultTimeout,
		CacheDir:      cache.DefaultDir(),
		CacheTTL:      cache.DefaultSingleTTL,
		BatchCacheTTL: cache.DefaultBatchTTL,
	}
}

// Load reads settings from the process environment.
func Load(ctx context.Context) (Config, error) {
	return FromLookup(ctx, os.LookupEnv)
}

// LoadFile reads settings from the process environment, falling back to
// the .env file at path for unset variables.
func LoadFile(ctx context.Context, path string) (Config, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", ErrEnvFile, path, err)
	}
	return FromLookup(ctx, func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := vars[key]
		return v, ok
	})
}

// FromLookup builds a Config from an arbitrary variable source, applies
// defaults, resolves the API key and validates the result.
func FromLookup(ctx context.Context, lookup secret.LookupFunc) (Config, error) {
	cfg := Default()
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvAPIBase); ok {
		cfg.APIBase = v
	}
	if v, ok := get(EnvCacheDir); ok {
		cfg.CacheDir = v
	}
	if v, ok := get(EnvLogLevel); ok {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v, ok := get(EnvTraceExporter); ok {
		cfg.TraceExporter = strings.ToLower(v)
	}
	if v, ok := get(EnvMetricsExporter); ok {
		cfg.MetricsExporter = strings.ToLower(v)
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{EnvTimeout, &cfg.Timeout},
		{EnvCacheTTL, &cfg.CacheTTL},
		{EnvBatchCacheTTL, &cfg.BatchCacheTTL},
	}
	for _, d := range durations {
		v, ok := get(d.key)
		if !ok {
			continue
		}
		parsed, err := ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, d.key, err)
		}
		*d.dst = parsed
	}

	if v, ok := get(EnvRetries); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvRetries, err)
		}
		cfg.Retries = n
	}

	if v, ok := get(EnvAPIKey); ok {
		resolver := secret.NewResolver(secret.WithLookup(lookup), secret.WithStrict())
		key, err := resolver.Resolve(ctx, v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, EnvAPIKey, err)
		}
		cfg.APIKey = key
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseDuration accepts a number of seconds ("30", "2.5") or a Go
// duration ("30s", "24h").
func ParseDuration(s string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("negative duration %q", s)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}
	return d, nil
}

// Validate checks the settings.
func (c *Config) Validate() error {
	if c.APIBase == "" {
		return fmt.Errorf("%w: api base is required", ErrInvalidConfig)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidConfig, c.Timeout)
	}
	if c.CacheTTL < 0 || c.BatchCacheTTL < 0 {
		return fmt.Errorf("%w: cache ttl must not be negative", ErrInvalidConfig)
	}
	if c.Retries < 0 || c.Retries > MaxRetries {
		return fmt.Errorf("%w: retries must be between 0 and %d, got %d", ErrInvalidConfig, MaxRetries, c.Retries)
	}
	obs := c.Observe()
	if err := obs.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Observe returns the telemetry configuration implied by c.
func (c *Config) Observe() observe.Config {
	return observe.Config{
		ServiceName: ServiceName,
		Version:     remote.Version,
		SetGlobal:   true,
		Tracing: observe.TracingConfig{
			Enabled:   enabled(c.TraceExporter),
			Exporter:  c.TraceExporter,
			SamplePct: observe.MaxSamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  enabled(c.MetricsExporter),
			Exporter: c.MetricsExporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: c.LogLevel != "",
			Level:   c.LogLevel,
		},
	}
}

// Telemetry reports whether any observability output is enabled.
func (c *Config) Telemetry() bool {
	obs := c.Observe()
	return obs.Tracing.Enabled || obs.Metrics.Enabled || obs.Logging.Enabled
}

func enabled(exporter string) bool {
	return exporter != "" && exporter != "none"
}

// String renders the settings with the API key redacted.
func (c Config) String() string {
	key := ""
	if c.APIKey != "" {
		key = "[REDACTED]"
	}
	return fmt.Sprintf("Config{APIBase:%s APIKey:%s Timeout:%s CacheDir:%s CacheTTL:%s BatchCacheTTL:%s Retries:%d LogLevel:%s}",
		c.APIBase, key, c.Timeout, c.CacheDir, c.CacheTTL, c.BatchCacheTTL, c.Retries, c.LogLevel)
}
