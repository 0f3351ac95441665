package archive

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"vrcache/internal/logging"
	"vrcache/internal/notifications"
	"vrcache/internal/watcher"
)

// DiscoverySummary tallies a bulk scan of pre-existing cache data.
type DiscoverySummary struct {
	Scanned      int
	Stored       int
	Flagged      int
	Skipped      int
	Unidentified int
	Failed       int
}

// DiscoverExisting walks root for payload files already on disk and runs
// each through the ingestion pipeline. It is what makes a first run against
// a populated cache directory useful: everything the watcher missed before
// it started gets archived here.
func (m *Manager) DiscoverExisting(ctx context.Context, root string) (DiscoverySummary, error) {
	logger := logging.NewComponentLogger(m.logger, "discovery")
	m.bus.PublishStatus(notifications.StatusDiscovering)
	defer m.bus.PublishStatus(notifications.StatusIdle)

	var summary DiscoverySummary
	var payloads []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if os.IsNotExist(walkErr) && path == root {
				return walkErr
			}
			logger.Warn("discovery walk error",
				logging.String("path", path),
				logging.Error(walkErr))
			return nil
		}
		if !d.IsDir() && d.Name() == watcher.PayloadFileName {
			payloads = append(payloads, path)
		}
		return nil
	})
	if err != nil {
		return summary, err
	}

	for _, path := range payloads {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		summary.Scanned++
		result, err := m.IngestPayload(ctx, path)
		if err != nil {
			summary.Failed++
			logger.Warn("discovery ingest failed",
				logging.String(logging.FieldEventType, "discovery_ingest_failed"),
				logging.String("path", path),
				logging.Error(err))
			continue
		}
		switch result.Disposition {
		case DispositionStored:
			summary.Stored++
		case DispositionStoredFlagged:
			summary.Flagged++
		case DispositionSkipped:
			summary.Skipped++
		case DispositionUnidentified:
			summary.Unidentified++
		}
	}

	attrs := []logging.Attr{
		logging.Int("scanned", summary.Scanned),
		logging.Int("stored", summary.Stored),
		logging.Int("flagged", summary.Flagged),
		logging.Int("skipped", summary.Skipped),
		logging.Int("unidentified", summary.Unidentified),
	}
	if summary.Failed > 0 {
		attrs = append(attrs, logging.Int("failed", summary.Failed))
	}
	logger.Info("discovery completed", logging.Args(attrs...)...)
	if err := m.push.NotifyDiscoveryCompleted(ctx, summary.Stored+summary.Flagged, summary.Skipped); err != nil {
		logger.Warn("discovery notification failed", logging.Error(err))
	}
	return summary, nil
}
