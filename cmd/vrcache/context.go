package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"vrcache/internal/archive"
	"vrcache/internal/catalog"
	"vrcache/internal/config"
	"vrcache/internal/identify"
	"vrcache/internal/logging"
	"vrcache/internal/lookupcache"
	"vrcache/internal/vrcapi"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) openStore(logger *slog.Logger) (*catalog.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := catalog.Open(cfg.CatalogPath(), logger)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	return store, nil
}

// managerBundle carries the archive manager plus resources the caller must
// close when done.
type managerBundle struct {
	manager *archive.Manager
	store   *catalog.Store
	cache   *lookupcache.Cache
}

func (b *managerBundle) Close() {
	if b.cache != nil {
		_ = b.cache.Close()
	}
}

// newManager wires the full ingestion stack: metadata client, optional
// persistent lookup cache, and the interactive decider when one applies.
func (c *commandContext) newManager(logger *slog.Logger, decider identify.Decider) (*managerBundle, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	store, err := c.openStore(logger)
	if err != nil {
		return nil, err
	}

	client, err := vrcapi.New(cfg.APIBaseURL, cfg.APITimeoutDuration())
	if err != nil {
		return nil, fmt.Errorf("build metadata client: %w", err)
	}

	var (
		lookup vrcapi.Lookup = client
		cache  *lookupcache.Cache
	)
	if cfg.LookupCacheEnabled {
		cache, err = lookupcache.Open(cfg.LookupCachePath())
		if err != nil {
			logger.Warn("lookup cache unavailable, continuing without it", logging.Error(err))
			cache = nil
		} else {
			lookup = lookupcache.NewCachedLookup(client, cache, logger)
		}
	}

	manager, err := archive.NewManager(cfg, store, logger, archive.Dependencies{
		Lookup:     lookup,
		Thumbnails: client,
		Decider:    decider,
	})
	if err != nil {
		if cache != nil {
			_ = cache.Close()
		}
		return nil, err
	}

	return &managerBundle{manager: manager, store: store, cache: cache}, nil
}

func (c *commandContext) newLogger(console bool) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if console {
		return logging.NewFromConfig(cfg)
	}
	return logging.New(logging.Options{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		OutputPaths: []string{cfg.LogPath()},
	})
}
