package archive

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"vrcache/internal/catalog"
	"vrcache/internal/config"
	"vrcache/internal/identify"
	"vrcache/internal/logging"
	"vrcache/internal/notifications"
	"vrcache/internal/vrcapi"
)

// ThumbnailFetcher saves a world's thumbnail image locally. *vrcapi.Client
// satisfies it; tests inject fakes.
type ThumbnailFetcher interface {
	DownloadThumbnail(ctx context.Context, thumbnailURL, destPath string) error
}

// Dependencies carries the pipeline collaborators. Lookup is required;
// everything else may be nil and degrades gracefully.
type Dependencies struct {
	Lookup     vrcapi.Lookup
	Thumbnails ThumbnailFetcher
	Decider    identify.Decider
	Bus        *notifications.Bus
	Push       notifications.Service
}

// Manager runs the ingestion pipeline and the interactive catalog
// operations that must stay consistent with on-disk assets.
type Manager struct {
	cfg    *config.Config
	store  *catalog.Store
	lookup vrcapi.Lookup
	thumbs ThumbnailFetcher
	decide identify.Decider
	bus    *notifications.Bus
	push   notifications.Service
	logger *slog.Logger

	// ingestMu serializes exists-check-then-add sequences across workers.
	ingestMu sync.Mutex
}

// NewManager constructs the pipeline. cfg, store, and deps.Lookup are
// required.
func NewManager(cfg *config.Config, store *catalog.Store, logger *slog.Logger, deps Dependencies) (*Manager, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("archive manager requires config and catalog store")
	}
	if deps.Lookup == nil {
		return nil, errors.New("archive manager requires a metadata lookup")
	}
	push := deps.Push
	if push == nil {
		push = notifications.NewService(cfg)
	}
	bus := deps.Bus
	if bus == nil {
		bus = notifications.NewBus()
	}
	return &Manager{
		cfg:    cfg,
		store:  store,
		lookup: deps.Lookup,
		thumbs: deps.Thumbnails,
		decide: deps.Decider,
		bus:    bus,
		push:   push,
		logger: logging.NewComponentLogger(logger, "archive"),
	}, nil
}

// Store exposes the underlying catalog store for read-side consumers.
func (m *Manager) Store() *catalog.Store {
	return m.store
}

// Bus exposes the in-process event bus UI and daemon consumers subscribe to.
func (m *Manager) Bus() *notifications.Bus {
	return m.bus
}

// VerifyIntegrity prunes records whose backing asset vanished. Safe to run
// repeatedly; a clean catalog is a no-op.
func (m *Manager) VerifyIntegrity() (int, error) {
	pruned, err := m.store.VerifyIntegrity(m.cfg.ArchiveDir)
	if err != nil {
		return pruned, err
	}
	if pruned > 0 {
		m.logger.Info("integrity pass pruned records", logging.Int("pruned", pruned))
	}
	return pruned, nil
}
