package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"vrcache/internal/catalog"
	"vrcache/internal/identify"
	"vrcache/internal/logging"
	"vrcache/internal/notifications"
	"vrcache/internal/vrcapi"
	"vrcache/internal/worldid"
)

// Disposition is the terminal state of one payload's ingestion.
type Disposition int

const (
	// DispositionStored means a confident record was persisted and archived.
	DispositionStored Disposition = iota
	// DispositionStoredFlagged means disambiguation failed and every
	// candidate was stored flagged for review.
	DispositionStoredFlagged
	// DispositionSkipped means a non-ambiguous record already existed.
	DispositionSkipped
	// DispositionNoCandidates means the payload contained no identifier.
	DispositionNoCandidates
	// DispositionUnidentified means identifiers were found but the metadata
	// service had data for none of them; manual entry is the fallback.
	DispositionUnidentified
)

// Result reports what ingestion did with one payload.
type Result struct {
	Disposition Disposition
	// Records holds every record finalized for this payload: one for
	// Stored, one per candidate for StoredFlagged, empty otherwise.
	Records []catalog.WorldRecord
	// Candidates are the distinct identifiers extracted from the payload.
	Candidates []string
}

// IngestPayload runs the full pipeline for one payload file. Identification
// failures become Result dispositions; only I/O and store failures surface
// as errors.
func (m *Manager) IngestPayload(ctx context.Context, payloadPath string) (Result, error) {
	runID := uuid.NewString()
	logger := m.logger.With(
		logging.String("run_id", runID),
		logging.String("payload", payloadPath))

	payload, err := os.ReadFile(payloadPath)
	if err != nil {
		return Result{}, fmt.Errorf("read payload: %w", err)
	}

	candidates := worldid.Distinct(worldid.Extract(payload))
	logger.Debug("extraction finished", logging.Int("candidates", len(candidates)))

	switch len(candidates) {
	case 0:
		return Result{Disposition: DispositionNoCandidates}, nil
	case 1:
		return m.ingestSingle(ctx, logger, payloadPath, candidates[0])
	default:
		return m.ingestMultiple(ctx, logger, payloadPath, payload, candidates)
	}
}

func (m *Manager) ingestSingle(ctx context.Context, logger *slog.Logger, payloadPath, id string) (Result, error) {
	result := Result{Candidates: []string{id}}

	if m.existsConfident(id) {
		logger.Info("world already archived, skipping", logging.String("world_id", id))
		result.Disposition = DispositionSkipped
		return result, nil
	}

	world, err := m.lookupWorld(ctx, id)
	if err != nil {
		if errors.Is(err, vrcapi.ErrWorldNotFound) {
			logger.Warn("metadata service has no data for world",
				logging.String("world_id", id))
			result.Disposition = DispositionUnidentified
			return result, nil
		}
		return result, fmt.Errorf("lookup %s: %w", id, err)
	}

	rec, stored, err := m.storeIfNew(ctx, logger, payloadPath, world, false)
	if err != nil {
		return result, err
	}
	if !stored {
		result.Disposition = DispositionSkipped
		return result, nil
	}
	result.Disposition = DispositionStored
	result.Records = append(result.Records, rec)
	return result, nil
}

func (m *Manager) ingestMultiple(ctx context.Context, logger *slog.Logger, payloadPath string, payload []byte, ids []string) (Result, error) {
	result := Result{Candidates: ids}

	candidates := make([]identify.Candidate, 0, len(ids))
	for _, id := range ids {
		world, err := m.lookupWorld(ctx, id)
		if err != nil {
			if errors.Is(err, vrcapi.ErrWorldNotFound) {
				logger.Debug("candidate has no metadata, dropping",
					logging.String("world_id", id))
				continue
			}
			return result, fmt.Errorf("lookup %s: %w", id, err)
		}
		candidates = append(candidates, identify.Candidate{ID: id, World: world})
	}

	if len(candidates) == 0 {
		result.Disposition = DispositionUnidentified
		return result, nil
	}

	resolution := identify.Resolve(ctx, candidates, payload, m.decide)
	if resolution.Method != identify.Unresolved {
		winner := candidates[resolution.Winner]
		logger.Info("disambiguation resolved",
			logging.String("world_id", winner.ID),
			logging.Bool("manual", resolution.Method == identify.ResolvedManual))

		if m.existsConfident(winner.ID) {
			result.Disposition = DispositionSkipped
			return result, nil
		}
		rec, stored, err := m.storeIfNew(ctx, logger, payloadPath, winner.World, false)
		if err != nil {
			return result, err
		}
		if !stored {
			result.Disposition = DispositionSkipped
			return result, nil
		}
		result.Disposition = DispositionStored
		result.Records = append(result.Records, rec)
		return result, nil
	}

	// Unresolved: store every candidate flagged rather than dropping data.
	logger.Warn("disambiguation failed, storing all candidates flagged",
		logging.Int("candidates", len(candidates)))
	for _, candidate := range candidates {
		rec, stored, err := m.storeIfNew(ctx, logger, payloadPath, candidate.World, true)
		if err != nil {
			return result, err
		}
		if stored {
			result.Records = append(result.Records, rec)
		}
	}
	if len(result.Records) == 0 {
		result.Disposition = DispositionSkipped
		return result, nil
	}
	result.Disposition = DispositionStoredFlagged
	return result, nil
}

// lookupWorld bounds the metadata call with the configured timeout so a
// stalled service degrades to a lookup failure instead of wedging ingestion.
func (m *Manager) lookupWorld(ctx context.Context, id string) (*vrcapi.World, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, m.cfg.APITimeoutDuration())
	defer cancel()
	return m.lookup.GetWorld(lookupCtx, id)
}

// existsConfident reports whether a non-ambiguous record already holds id.
// An ambiguous placeholder does not block re-ingestion with confidence.
func (m *Manager) existsConfident(id string) bool {
	rec, ok := m.store.Find(id)
	return ok && !rec.Ambiguous
}

// storeIfNew persists the record and copies the payload into per-world
// storage, atomically with respect to other ingestion workers. A confident
// store replaces any flagged placeholders holding the same id; a flagged
// store never duplicates one already present. The copy failing after the
// record persisted is a reportable inconsistency that the next integrity
// pass heals; it is warned about, not rolled back.
func (m *Manager) storeIfNew(ctx context.Context, logger *slog.Logger, payloadPath string, world *vrcapi.World, ambiguous bool) (catalog.WorldRecord, bool, error) {
	rec := catalog.WorldRecord{
		ID:          world.ID,
		Name:        world.Name,
		Author:      world.AuthorName,
		Description: world.Description,
		Ambiguous:   ambiguous,
	}

	m.ingestMu.Lock()
	defer m.ingestMu.Unlock()

	if existing, ok := m.store.Find(rec.ID); ok {
		if !existing.Ambiguous || ambiguous {
			return catalog.WorldRecord{}, false, nil
		}
		removed, err := m.store.RemoveAmbiguous(rec.ID)
		if err != nil {
			return catalog.WorldRecord{}, false, fmt.Errorf("supersede flagged records: %w", err)
		}
		logger.Info("confident identification supersedes flagged records",
			logging.String("world_id", rec.ID),
			logging.Int("removed", removed))
	}

	if m.thumbs != nil && m.cfg.DownloadThumbnails && world.ThumbnailURL != "" {
		thumbPath := filepath.Join(m.cfg.ThumbnailDir(), world.ID+".png")
		if err := m.thumbs.DownloadThumbnail(ctx, world.ThumbnailURL, thumbPath); err != nil {
			logger.Warn("thumbnail download failed, storing record without it",
				logging.String(logging.FieldEventType, "thumbnail_download_failed"),
				logging.String("world_id", world.ID),
				logging.Error(err))
		} else {
			rec.ThumbnailPath = thumbPath
		}
	}

	if err := m.store.Add(catalog.WorldsKey, rec); err != nil {
		return catalog.WorldRecord{}, false, fmt.Errorf("persist record: %w", err)
	}

	if err := m.copyAssetBundle(payloadPath, rec); err != nil {
		logger.Warn("asset copy failed after record persisted; next integrity pass will prune it",
			logging.String(logging.FieldEventType, "asset_copy_failed"),
			logging.String("world_id", rec.ID),
			logging.Error(err))
		_ = m.push.NotifyError(ctx, err, "asset copy")
	}

	logger.Info("world archived",
		logging.String("world_id", rec.ID),
		logging.String("world_name", rec.Name),
		logging.Bool("ambiguous", rec.Ambiguous))

	m.bus.Publish(notifications.Event{Kind: notifications.EventWorldArchived, Record: rec})
	if rec.Ambiguous {
		_ = m.push.NotifyWorldFlagged(ctx, rec.Name, rec.ID)
	} else {
		_ = m.push.NotifyWorldArchived(ctx, rec.Name, rec.ID)
	}
	return rec, true, nil
}
