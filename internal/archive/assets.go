package archive

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"vrcache/internal/catalog"
	"vrcache/internal/fileutil"
	"vrcache/internal/logging"
	"vrcache/internal/notifications"
)

// copyAssetBundle copies the payload into per-world storage: a directory
// named after the record's display name, the file named by its identifier.
func (m *Manager) copyAssetBundle(src string, rec catalog.WorldRecord) error {
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("source payload: %w", err)
	}
	dest := catalog.AssetPath(m.cfg.ArchiveDir, rec)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create asset directory: %w", err)
	}
	if err := fileutil.CopyFile(src, dest); err != nil {
		return fmt.Errorf("copy asset bundle: %w", err)
	}
	return nil
}

// RenameWorld changes a record's display name and renames its backing
// directory with it. Either both succeed or neither: a failed record flush
// reverts the directory rename, a failed directory rename aborts before the
// record is touched.
func (m *Manager) RenameWorld(id, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return errors.New("new name must not be empty")
	}

	m.ingestMu.Lock()
	defer m.ingestMu.Unlock()

	rec, ok := m.store.Find(id)
	if !ok {
		return fmt.Errorf("%w: %s", catalog.ErrNotFound, id)
	}
	if rec.Name == newName {
		return nil
	}

	oldDir := filepath.Join(m.cfg.ArchiveDir, catalog.AssetDirName(rec.Name))
	newDir := filepath.Join(m.cfg.ArchiveDir, catalog.AssetDirName(newName))

	renamedDir := false
	if oldDir != newDir {
		if _, err := os.Stat(newDir); err == nil {
			return fmt.Errorf("asset directory %q already exists", newDir)
		}
		if err := os.Rename(oldDir, newDir); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("rename asset directory: %w", err)
			}
			// No backing directory to move; integrity will prune the record
			// later if the asset truly vanished.
		} else {
			renamedDir = true
		}
	}

	if err := m.store.Rename(id, newName); err != nil {
		if renamedDir {
			if revertErr := os.Rename(newDir, oldDir); revertErr != nil {
				m.logger.Error("rename rollback failed, directory diverges from record",
					logging.String("world_id", id),
					logging.Error(revertErr))
			}
		}
		return err
	}

	rec.Name = newName
	m.bus.Publish(notifications.Event{Kind: notifications.EventWorldRenamed, Record: rec})
	m.logger.Info("world renamed",
		logging.String("world_id", id),
		logging.String("new_name", newName))
	return nil
}

// RemoveWorld purges a record along with its asset bundle and thumbnail.
func (m *Manager) RemoveWorld(id string) error {
	m.ingestMu.Lock()
	defer m.ingestMu.Unlock()

	rec, ok := m.store.Find(id)
	if !ok {
		return fmt.Errorf("%w: %s", catalog.ErrNotFound, id)
	}

	if err := m.store.Remove(id); err != nil {
		return err
	}

	assetDir := filepath.Join(m.cfg.ArchiveDir, catalog.AssetDirName(rec.Name))
	if err := os.Remove(catalog.AssetPath(m.cfg.ArchiveDir, rec)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		m.logger.Warn("asset bundle removal failed",
			logging.String("world_id", id),
			logging.Error(err))
	}
	// Drop the per-world directory when the bundle was its last content.
	if entries, err := os.ReadDir(assetDir); err == nil && len(entries) == 0 {
		_ = os.Remove(assetDir)
	}
	if rec.ThumbnailPath != "" {
		if err := os.Remove(rec.ThumbnailPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			m.logger.Warn("thumbnail removal failed",
				logging.String("world_id", id),
				logging.Error(err))
		}
	}

	m.bus.Publish(notifications.Event{Kind: notifications.EventWorldRemoved, Record: rec})
	m.logger.Info("world removed", logging.String("world_id", id))
	return nil
}
