package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadExplicitPath(t *testing.T) {
	base := t.TempDir()
	path := writeConfig(t, `
data_dir = "`+filepath.Join(base, "data")+`"
archive_dir = "`+filepath.Join(base, "archive")+`"
log_level = "debug"
api_timeout = 30
settle_delay_ms = 100
`)

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Error("explicit existing config should report exists")
	}
	if resolved != path {
		t.Errorf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.APITimeoutDuration() != 30*time.Second {
		t.Errorf("APITimeoutDuration = %v", cfg.APITimeoutDuration())
	}
	if cfg.SettleDelay() != 100*time.Millisecond {
		t.Errorf("SettleDelay = %v", cfg.SettleDelay())
	}
	// File carried no api_base_url, so the default holds.
	if cfg.APIBaseURL == "" {
		t.Error("default APIBaseURL missing")
	}
}

func TestLoadMissingExplicitPathUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Error("absent file should report !exists")
	}
	defaults := Default()
	if cfg.APITimeout != defaults.APITimeout {
		t.Errorf("APITimeout = %d, want default %d", cfg.APITimeout, defaults.APITimeout)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"zero timeout", `api_timeout = 0`},
		{"negative settle delay", `settle_delay_ms = -1`},
		{"bad log format", `log_format = "xml"`},
		{"empty data dir", `data_dir = ""`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.content)
			if _, _, _, err := Load(path); err == nil {
				t.Errorf("Load should reject %s", tc.name)
			}
		})
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := writeConfig(t, `data_dir = [unclosed`)
	if _, _, _, err := Load(path); err == nil {
		t.Error("malformed TOML should fail")
	}
}

func TestNormalizeStripsTrailingSlashFromBaseURL(t *testing.T) {
	path := writeConfig(t, `api_base_url = "https://example.com/api/1/"`)
	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if strings.HasSuffix(cfg.APIBaseURL, "/") {
		t.Errorf("APIBaseURL not trimmed: %q", cfg.APIBaseURL)
	}
}

func TestDerivedPaths(t *testing.T) {
	cfg := Default()
	cfg.DataDir = "/tmp/vrcache-data"
	cfg.ArchiveDir = "/tmp/vrcache-archive"
	cfg.LogDir = "/tmp/vrcache-logs"

	if got := cfg.CatalogPath(); got != "/tmp/vrcache-data/records.json" {
		t.Errorf("CatalogPath = %q", got)
	}
	if got := cfg.LookupCachePath(); got != "/tmp/vrcache-data/lookup_cache.db" {
		t.Errorf("LookupCachePath = %q", got)
	}
	if got := cfg.ThumbnailDir(); got != "/tmp/vrcache-archive/thumbnails" {
		t.Errorf("ThumbnailDir = %q", got)
	}
	if got := cfg.LogPath(); got != "/tmp/vrcache-logs/vrcache.log" {
		t.Errorf("LogPath = %q", got)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := Default()
	cfg.DataDir = filepath.Join(base, "data")
	cfg.ArchiveDir = filepath.Join(base, "archive")
	cfg.LogDir = filepath.Join(base, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.DataDir, cfg.ArchiveDir, cfg.LogDir, cfg.ThumbnailDir()} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("directory %q not created: %v", dir, err)
		}
	}
}

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := ExpandPath("~/somewhere")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, "somewhere") {
		t.Errorf("ExpandPath = %q", got)
	}
}

func TestSampleConfigParses(t *testing.T) {
	path := writeConfig(t, SampleConfig())
	if _, _, _, err := Load(path); err != nil {
		t.Fatalf("embedded sample config should load cleanly: %v", err)
	}
}
