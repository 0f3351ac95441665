package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"vrcache/internal/fileutil"
	"vrcache/internal/logging"
)

// Store manages the persisted catalog document. All operations are safe for
// concurrent use; every mutation flushes the document before returning.
type Store struct {
	path   string
	logger *slog.Logger

	mu      sync.Mutex
	worlds  []WorldRecord
	scalars map[string]json.RawMessage
}

// Open loads the catalog at path, creating an empty one in memory when the
// file does not exist. A corrupt file degrades to an empty catalog with a
// warning; it is never fatal.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("catalog path required")
	}
	logger = logging.NewComponentLogger(logger, "catalog")

	s := &Store{
		path:    path,
		logger:  logger,
		scalars: make(map[string]json.RawMessage),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the catalog file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read catalog: %w", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("catalog file is corrupt, starting empty",
			logging.String(logging.FieldEventType, "catalog_load_failed"),
			logging.String("path", s.path),
			logging.Error(err))
		return nil
	}

	for key, raw := range doc {
		if key == WorldsKey {
			var worlds []WorldRecord
			if err := json.Unmarshal(raw, &worlds); err != nil {
				s.logger.Warn("worlds sequence is corrupt, dropping it",
					logging.Error(err))
				continue
			}
			s.worlds = worlds
			continue
		}
		s.scalars[key] = raw
	}
	return nil
}

// flush serializes the document and writes it atomically. Callers hold s.mu.
func (s *Store) flush() error {
	doc := make(map[string]any, len(s.scalars)+1)
	for key, raw := range s.scalars {
		doc[key] = raw
	}
	if len(s.worlds) > 0 {
		doc[WorldsKey] = s.worlds
	}

	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	if err := fileutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	return nil
}

// Add appends value to the Worlds sequence when category is WorldsKey, or
// replaces the scalar stored under category otherwise. The store performs no
// deduplication; the ingestion pipeline checks Exists first.
func (s *Store) Add(category string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if category == WorldsKey {
		rec, ok := value.(WorldRecord)
		if !ok {
			return fmt.Errorf("category %q requires a WorldRecord, got %T", WorldsKey, value)
		}
		s.worlds = append(s.worlds, rec)
		if err := s.flush(); err != nil {
			return err
		}
		s.logger.Debug("world record added",
			logging.String("world_id", rec.ID),
			logging.String("world_name", rec.Name),
			logging.Bool("ambiguous", rec.Ambiguous))
		return nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal scalar %q: %w", category, err)
	}
	s.scalars[category] = raw
	return s.flush()
}

// Worlds returns a copy of the world record sequence in stored order.
func (s *Store) Worlds() []WorldRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]WorldRecord, len(s.worlds))
	copy(out, s.worlds)
	return out
}

// Scalar returns the string stored under key, if any. Non-string scalars
// report absent.
func (s *Store) Scalar(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.scalars[key]
	if !ok {
		return "", false
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", false
	}
	return value, true
}

// SetScalar stores a string under key and flushes.
func (s *Store) SetScalar(key, value string) error {
	return s.Add(key, value)
}

// RemoveScalar deletes the scalar under key and flushes. Removing an absent
// key is a no-op.
func (s *Store) RemoveScalar(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.scalars[key]; !ok {
		return nil
	}
	delete(s.scalars, key)
	return s.flush()
}

// Exists reports whether some world record carries the given id.
func (s *Store) Exists(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(id) >= 0
}

// Find returns the first world record matching id.
func (s *Store) Find(id string) (WorldRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findLocked(id)
	if idx < 0 {
		return WorldRecord{}, false
	}
	return s.worlds[idx], true
}

func (s *Store) findLocked(id string) int {
	for i, rec := range s.worlds {
		if rec.ID == id {
			return i
		}
	}
	return -1
}

// Rename mutates the display name of the record matching id and flushes.
// Returns ErrNotFound without touching the file when no record matches.
func (s *Store) Rename(id, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findLocked(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	previous := s.worlds[idx].Name
	s.worlds[idx].Name = newName
	if err := s.flush(); err != nil {
		s.worlds[idx].Name = previous
		return err
	}
	return nil
}

// SetThumbnail updates the thumbnail path of the record matching id.
func (s *Store) SetThumbnail(id, thumbnailPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findLocked(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.worlds[idx].ThumbnailPath = thumbnailPath
	return s.flush()
}

// ClearAmbiguous drops the ambiguous flag on the record matching id.
func (s *Store) ClearAmbiguous(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findLocked(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.worlds[idx].Ambiguous = false
	return s.flush()
}

// Remove deletes the first record matching id and flushes. When the sequence
// empties, the Worlds key disappears from the persisted document entirely.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findLocked(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.worlds = append(s.worlds[:idx], s.worlds[idx+1:]...)
	return s.flush()
}

// RemoveAmbiguous deletes every flagged record matching id and flushes,
// reporting how many were removed. Matching nothing is a no-op that leaves
// the persisted file untouched.
func (s *Store) RemoveAmbiguous(id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.worlds[:0]
	removed := 0
	for _, rec := range s.worlds {
		if rec.ID == id && rec.Ambiguous {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	if removed == 0 {
		return 0, nil
	}
	s.worlds = kept
	if err := s.flush(); err != nil {
		return removed, err
	}
	return removed, nil
}

// VerifyIntegrity prunes world records whose backing asset is missing under
// assetDir, and malformed records lacking required fields. It reports the
// number of pruned records. Running it twice against an unchanged directory
// is a no-op the second time.
func (s *Store) VerifyIntegrity(assetDir string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.worlds[:0]
	pruned := 0
	for _, rec := range s.worlds {
		if !rec.Valid() {
			pruned++
			s.logger.Warn("pruning malformed record",
				logging.String("world_id", rec.ID))
			continue
		}
		asset := AssetPath(assetDir, rec)
		if _, err := os.Stat(asset); err != nil {
			pruned++
			s.logger.Warn("pruning record with missing asset",
				logging.String("world_id", rec.ID),
				logging.String("asset", asset))
			continue
		}
		kept = append(kept, rec)
	}

	if pruned == 0 {
		return 0, nil
	}
	s.worlds = kept
	if err := s.flush(); err != nil {
		return pruned, err
	}
	return pruned, nil
}

// AssetPath returns the backing asset location for a record: a file named by
// the world id inside a directory named after the record's display name.
func AssetPath(assetDir string, rec WorldRecord) string {
	return filepath.Join(assetDir, AssetDirName(rec.Name), rec.ID)
}

// AssetDirName maps a display name onto a filesystem-safe directory name.
func AssetDirName(name string) string {
	cleaned := strings.TrimSpace(name)
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		string(rune(0)), "",
	)
	cleaned = replacer.Replace(cleaned)
	cleaned = strings.Trim(cleaned, ". ")
	if cleaned == "" {
		return "_unnamed"
	}
	return cleaned
}
