package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonwraymond/guidelinely/cache"
	"github.com/jonwraymond/guidelinely/observe"
	"github.com/jonwraymond/guidelinely/remote"
	"github.com/jonwraymond/guidelinely/secret"
)

func lookupOf(vars map[string]string) secret.LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestFromLookup_Defaults(t *testing.T) {
	cfg, err := FromLookup(context.Background(), lookupOf(nil))
	if err != nil {
		t.Fatalf("FromLookup() error = %v", err)
	}

	if cfg.APIBase != remote.DefaultBaseURL {
		t.Errorf("APIBase = %q", cfg.APIBase)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.CacheTTL != cache.DefaultSingleTTL || cfg.BatchCacheTTL != cache.DefaultBatchTTL {
		t.Errorf("TTLs = %v / %v", cfg.CacheTTL, cfg.BatchCacheTTL)
	}
	if cfg.CacheDir != cache.DefaultDir() {
		t.Errorf("CacheDir = %q", cfg.CacheDir)
	}
	if cfg.APIKey != "" || cfg.Retries != 0 || cfg.Telemetry() {
		t.Errorf("unexpected non-default config: %s", cfg)
	}
}

func TestFromLookup_Overrides(t *testing.T) {
	vars := map[string]string{
		EnvAPIBase:         "http://localhost:8000/api/v1",
		EnvAPIKey:          "  k-123  ",
		EnvTimeout:         "2.5",
		EnvCacheDir:        "/tmp/guidelinely",
		EnvCacheTTL:        "1h",
		EnvBatchCacheTTL:   "0",
		EnvRetries:         "3",
		EnvLogLevel:        "DEBUG",
		EnvTraceExporter:   "stdout",
		EnvMetricsExporter: "none",
	}

	cfg, err := FromLookup(context.Background(), lookupOf(vars))
	if err != nil {
		t.Fatalf("FromLookup() error = %v", err)
	}

	want := Config{
		APIBase:         "http://localhost:8000/api/v1",
		APIKey:          "k-123",
		Timeout:         2500 * time.Millisecond,
		CacheDir:        "/tmp/guidelinely",
		CacheTTL:        time.Hour,
		BatchCacheTTL:   0,
		Retries:         3,
		LogLevel:        "debug",
		TraceExporter:   "stdout",
		MetricsExporter: "none",
	}
	if cfg != want {
		t.Errorf("FromLookup() =\n%+v\nwant\n%+v", cfg, want)
	}

	obs := cfg.Observe()
	if !obs.Tracing.Enabled || obs.Metrics.Enabled || !obs.Logging.Enabled {
		t.Errorf("Observe() = %+v", obs)
	}
}

func TestFromLookup_APIKeyReferences(t *testing.T) {
	vars := map[string]string{
		"VAULT_TOKEN": "k-from-var",
		EnvAPIKey:     "secretref:env:VAULT_TOKEN",
	}
	cfg, err := FromLookup(context.Background(), lookupOf(vars))
	if err != nil {
		t.Fatalf("FromLookup() error = %v", err)
	}
	if cfg.APIKey != "k-from-var" {
		t.Errorf("APIKey = %q", cfg.APIKey)
	}

	vars[EnvAPIKey] = "${VAULT_TOKEN}"
	cfg, err = FromLookup(context.Background(), lookupOf(vars))
	if err != nil || cfg.APIKey != "k-from-var" {
		t.Errorf("expanded APIKey = %q, %v", cfg.APIKey, err)
	}

	vars[EnvAPIKey] = "${NOT_SET}"
	_, err = FromLookup(context.Background(), lookupOf(vars))
	if !errors.Is(err, ErrInvalidConfig) || !errors.Is(err, secret.ErrMissingEnv) {
		t.Errorf("missing variable error = %v", err)
	}
}

func TestFromLookup_Invalid(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		want error
	}{
		{name: "bad timeout", vars: map[string]string{EnvTimeout: "soon"}, want: ErrInvalidConfig},
		{name: "zero timeout", vars: map[string]string{EnvTimeout: "0"}, want: ErrInvalidConfig},
		{name: "negative ttl", vars: map[string]string{EnvCacheTTL: "-5"}, want: ErrInvalidConfig},
		{name: "bad retries", vars: map[string]string{EnvRetries: "many"}, want: ErrInvalidConfig},
		{name: "too many retries", vars: map[string]string{EnvRetries: "11"}, want: ErrInvalidConfig},
		{name: "bad log level", vars: map[string]string{EnvLogLevel: "verbose"}, want: observe.ErrInvalidLogLevel},
		{name: "bad exporter", vars: map[string]string{EnvMetricsExporter: "statsd"}, want: observe.ErrInvalidMetricsExporter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromLookup(context.Background(), lookupOf(tt.vars))
			if !errors.Is(err, tt.want) {
				t.Fatalf("FromLookup() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "30", want: 30 * time.Second},
		{in: "0.5", want: 500 * time.Millisecond},
		{in: "90s", want: 90 * time.Second},
		{in: "168h", want: 7 * 24 * time.Hour},
		{in: "-1", wantErr: true},
		{in: "-1m", wantErr: true},
		{in: "forever", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDuration(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoad_ProcessEnvironment(t *testing.T) {
	t.Setenv(EnvAPIBase, "http://127.0.0.1:9000")
	t.Setenv(EnvTimeout, "5s")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIBase != "http://127.0.0.1:9000" || cfg.Timeout != 5*time.Second {
		t.Errorf("Load() = %s", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := strings.Join([]string{
		"# local settings",
		EnvAPIKey + "=file-key",
		EnvRetries + "=2",
		EnvTimeout + "=10",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvTimeout, "20")

	cfg, err := LoadFile(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.APIKey != "file-key" || cfg.Retries != 2 {
		t.Errorf("file values not applied: %s", cfg)
	}
	if cfg.Timeout != 20*time.Second {
		t.Errorf("Timeout = %v, want process environment to win", cfg.Timeout)
	}

	_, err = LoadFile(context.Background(), filepath.Join(t.TempDir(), "missing.env"))
	if !errors.Is(err, ErrEnvFile) {
		t.Errorf("missing file error = %v, want ErrEnvFile", err)
	}
}

func TestConfig_StringRedactsKey(t *testing.T) {
	cfg := Default()
	cfg.APIKey = "super-secret"
	if s := cfg.String(); strings.Contains(s, "super-secret") || !strings.Contains(s, "[REDACTED]") {
		t.Errorf("String() = %s", s)
	}
}
