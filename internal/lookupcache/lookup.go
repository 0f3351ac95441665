package lookupcache

import (
	"context"
	"log/slog"

	"vrcache/internal/logging"
	"vrcache/internal/vrcapi"
)

// CachedLookup wraps a metadata lookup with the SQLite cache. Cache failures
// degrade to the inner lookup; they are logged, never propagated.
type CachedLookup struct {
	inner  vrcapi.Lookup
	cache  *Cache
	logger *slog.Logger
}

var _ vrcapi.Lookup = (*CachedLookup)(nil)

// NewCachedLookup layers cache on top of inner. A nil cache returns inner
// unchanged.
func NewCachedLookup(inner vrcapi.Lookup, cache *Cache, logger *slog.Logger) vrcapi.Lookup {
	if cache == nil {
		return inner
	}
	return &CachedLookup{
		inner:  inner,
		cache:  cache,
		logger: logging.NewComponentLogger(logger, "lookupcache"),
	}
}

// GetWorld serves from cache when possible, otherwise forwards to the inner
// lookup and stores the result.
func (l *CachedLookup) GetWorld(ctx context.Context, id string) (*vrcapi.World, error) {
	if world, ok, err := l.cache.Get(ctx, id); err != nil {
		l.logger.Warn("cache read failed, falling through",
			logging.String("world_id", id),
			logging.Error(err))
	} else if ok {
		l.logger.Debug("lookup served from cache", logging.String("world_id", id))
		return world, nil
	}

	world, err := l.inner.GetWorld(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := l.cache.Put(ctx, world); err != nil {
		l.logger.Warn("cache write failed",
			logging.String("world_id", id),
			logging.Error(err))
	}
	return world, nil
}
