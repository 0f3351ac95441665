package config

const (
	defaultDataDir         = "~/.local/share/vrcache"
	defaultArchiveDir      = "~/.local/share/vrcache/assetbundles"
	defaultLogDir          = "~/.local/share/vrcache/logs"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultAPIBaseURL      = "https://api.vrchat.cloud/api/1"
	defaultAPITimeout      = 15
	defaultNtfyTimeout     = 10
	defaultLookupCacheFile = "lookup_cache.db"
	defaultSettleDelayMS   = 500
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		DataDir:            defaultDataDir,
		ArchiveDir:         defaultArchiveDir,
		LogDir:             defaultLogDir,
		LogFormat:          defaultLogFormat,
		LogLevel:           defaultLogLevel,
		APIBaseURL:         defaultAPIBaseURL,
		APITimeout:         defaultAPITimeout,
		DownloadThumbnails: true,
		LookupCacheEnabled: true,
		SettleDelayMS:      defaultSettleDelayMS,
		NtfyTimeout:        defaultNtfyTimeout,
	}
}
