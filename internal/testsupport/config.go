package testsupport

import (
	"path/filepath"
	"testing"

	"vrcache/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.DataDir = filepath.Join(base, "data")
	cfg.ArchiveDir = filepath.Join(base, "archive")
	cfg.LogDir = filepath.Join(base, "logs")
	cfg.DownloadThumbnails = false
	cfg.LookupCacheEnabled = false
	cfg.SettleDelayMS = 0

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithThumbnails enables thumbnail downloads on the test config.
func WithThumbnails() ConfigOption {
	return func(c *config.Config) {
		c.DownloadThumbnails = true
	}
}

// WithLookupCache enables the persistent lookup cache on the test config.
func WithLookupCache() ConfigOption {
	return func(c *config.Config) {
		c.LookupCacheEnabled = true
	}
}
