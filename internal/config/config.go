package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Config encapsulates all configuration values for the archiver.
//
// Path fields are expanded and absolute after Load. The VRChat cache
// directory itself is not configured here: it is a catalog setting
// (the "vrchat_cache" scalar) because the original application stores it
// alongside the records and the CLI mutates it at runtime.
type Config struct {
	// DataDir holds records.json and the lookup cache database.
	DataDir string `toml:"data_dir"`
	// ArchiveDir receives copied asset bundles, one subdirectory per world.
	ArchiveDir string `toml:"archive_dir"`
	LogDir     string `toml:"log_dir"`
	LogFormat  string `toml:"log_format"`
	LogLevel   string `toml:"log_level"`

	// APIBaseURL points at the world metadata service.
	APIBaseURL string `toml:"api_base_url"`
	// APITimeout bounds a single metadata lookup, in seconds.
	APITimeout int `toml:"api_timeout"`

	DownloadThumbnails bool `toml:"download_thumbnails"`

	LookupCacheEnabled bool `toml:"lookup_cache_enabled"`

	// SettleDelayMS is how long the watcher waits after a create event
	// before handing the payload to ingestion, giving the game time to
	// finish writing the file.
	SettleDelayMS int `toml:"settle_delay_ms"`

	NtfyTopic   string `toml:"ntfy_topic"`
	NtfyTimeout int    `toml:"ntfy_timeout"`
}

// SampleConfig returns the embedded annotated sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/vrcache/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("vrcache.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	for _, field := range []*string{&c.DataDir, &c.ArchiveDir, &c.LogDir} {
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	return nil
}

// Validate checks configuration invariants that Load cannot repair.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return errors.New("data_dir must not be empty")
	}
	if strings.TrimSpace(c.ArchiveDir) == "" {
		return errors.New("archive_dir must not be empty")
	}
	if c.APIBaseURL == "" {
		return errors.New("api_base_url must not be empty")
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("api_timeout must be positive, got %d", c.APITimeout)
	}
	if c.SettleDelayMS < 0 {
		return fmt.Errorf("settle_delay_ms must not be negative, got %d", c.SettleDelayMS)
	}
	switch c.LogFormat {
	case "", "console", "json":
	default:
		return fmt.Errorf("log_format must be console or json, got %q", c.LogFormat)
	}
	return nil
}

// EnsureDirectories creates required directories for operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.DataDir, c.ArchiveDir, c.LogDir, c.ThumbnailDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// APITimeoutDuration returns the lookup timeout as a time.Duration.
func (c *Config) APITimeoutDuration() time.Duration {
	return time.Duration(c.APITimeout) * time.Second
}

// SettleDelay returns the watcher settle delay as a time.Duration.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMS) * time.Millisecond
}

// CatalogPath returns the location of the persisted records file.
func (c *Config) CatalogPath() string {
	return filepath.Join(c.DataDir, "records.json")
}

// LookupCachePath returns the location of the lookup cache database.
func (c *Config) LookupCachePath() string {
	return filepath.Join(c.DataDir, defaultLookupCacheFile)
}

// ThumbnailDir returns the directory thumbnails are saved under.
func (c *Config) ThumbnailDir() string {
	return filepath.Join(c.ArchiveDir, "thumbnails")
}

// LogPath returns the main log file location.
func (c *Config) LogPath() string {
	return filepath.Join(c.LogDir, "vrcache.log")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
