package archive

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"vrcache/internal/catalog"
	"vrcache/internal/testsupport"
)

func archiveWorld(t *testing.T, manager *Manager, payload string) catalog.WorldRecord {
	t.Helper()
	result, err := manager.IngestPayload(context.Background(), payload)
	if err != nil {
		t.Fatalf("IngestPayload: %v", err)
	}
	if result.Disposition != DispositionStored || len(result.Records) != 1 {
		t.Fatalf("setup ingest did not store exactly one record: %+v", result)
	}
	return result.Records[0]
}

func TestRenameWorldMovesDirectory(t *testing.T) {
	lookup := testsupport.NewFakeLookup(worldAlpha())
	manager, cfg := newTestManager(t, lookup, nil)
	rec := archiveWorld(t, manager, payloadFile(t, cfg, "rename", idAlpha))

	oldDir := filepath.Join(cfg.ArchiveDir, catalog.AssetDirName(rec.Name))
	if err := manager.RenameWorld(idAlpha, "Rooftop Redux"); err != nil {
		t.Fatalf("RenameWorld: %v", err)
	}

	renamed, ok := manager.Store().Find(idAlpha)
	if !ok || renamed.Name != "Rooftop Redux" {
		t.Fatalf("record not renamed: %+v", renamed)
	}
	if _, err := os.Stat(oldDir); !os.IsNotExist(err) {
		t.Error("old asset directory should be gone")
	}
	if _, err := os.Stat(catalog.AssetPath(cfg.ArchiveDir, renamed)); err != nil {
		t.Errorf("asset not reachable under new name: %v", err)
	}
}

func TestRenameWorldNotFound(t *testing.T) {
	manager, _ := newTestManager(t, testsupport.NewFakeLookup(), nil)

	err := manager.RenameWorld(idAlpha, "Anything")
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRenameWorldRejectsEmptyName(t *testing.T) {
	manager, _ := newTestManager(t, testsupport.NewFakeLookup(), nil)

	if err := manager.RenameWorld(idAlpha, "   "); err == nil {
		t.Error("blank name should be rejected")
	}
}

func TestRenameWorldSameNameIsNoop(t *testing.T) {
	lookup := testsupport.NewFakeLookup(worldAlpha())
	manager, cfg := newTestManager(t, lookup, nil)
	rec := archiveWorld(t, manager, payloadFile(t, cfg, "samename", idAlpha))

	if err := manager.RenameWorld(idAlpha, rec.Name); err != nil {
		t.Fatalf("RenameWorld: %v", err)
	}
	if _, err := os.Stat(catalog.AssetPath(cfg.ArchiveDir, rec)); err != nil {
		t.Errorf("asset moved on no-op rename: %v", err)
	}
}

func TestRemoveWorldPurgesAssets(t *testing.T) {
	lookup := testsupport.NewFakeLookup(worldAlpha())
	manager, cfg := newTestManager(t, lookup, nil)
	rec := archiveWorld(t, manager, payloadFile(t, cfg, "remove", idAlpha))

	asset := catalog.AssetPath(cfg.ArchiveDir, rec)
	if err := manager.RemoveWorld(idAlpha); err != nil {
		t.Fatalf("RemoveWorld: %v", err)
	}

	if manager.Store().Exists(idAlpha) {
		t.Error("record should be removed")
	}
	if _, err := os.Stat(asset); !os.IsNotExist(err) {
		t.Error("asset bundle should be removed")
	}
	if _, err := os.Stat(filepath.Dir(asset)); !os.IsNotExist(err) {
		t.Error("emptied asset directory should be removed")
	}
}

func TestRemoveWorldNotFound(t *testing.T) {
	manager, _ := newTestManager(t, testsupport.NewFakeLookup(), nil)

	if err := manager.RemoveWorld(idAlpha); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestImportWorldByURL(t *testing.T) {
	lookup := testsupport.NewFakeLookup(worldAlpha())
	manager, cfg := newTestManager(t, lookup, nil)
	payload := payloadFile(t, cfg, "import")

	url := "https://vrchat.com/home/world/" + idAlpha + "/info"
	rec, err := manager.ImportWorld(context.Background(), url, payload)
	if err != nil {
		t.Fatalf("ImportWorld: %v", err)
	}
	if rec.ID != idAlpha {
		t.Errorf("imported ID = %q, want %q", rec.ID, idAlpha)
	}
	if _, err := os.Stat(catalog.AssetPath(cfg.ArchiveDir, rec)); err != nil {
		t.Errorf("imported asset missing: %v", err)
	}
}

func TestImportWorldDuplicateFails(t *testing.T) {
	lookup := testsupport.NewFakeLookup(worldAlpha())
	manager, cfg := newTestManager(t, lookup, nil)
	payload := payloadFile(t, cfg, "importdup")

	if _, err := manager.ImportWorld(context.Background(), idAlpha, payload); err != nil {
		t.Fatalf("first ImportWorld: %v", err)
	}
	if _, err := manager.ImportWorld(context.Background(), idAlpha, payload); err == nil {
		t.Error("second import of the same world should fail")
	}
}

func TestImportWorldBadIdentifier(t *testing.T) {
	manager, cfg := newTestManager(t, testsupport.NewFakeLookup(), nil)
	payload := payloadFile(t, cfg, "importbad")

	if _, err := manager.ImportWorld(context.Background(), "not-a-world", payload); err == nil {
		t.Error("unparseable identifier should fail")
	}
}

func TestImportManual(t *testing.T) {
	manager, cfg := newTestManager(t, testsupport.NewFakeLookup(), nil)
	payload := payloadFile(t, cfg, "manual")

	rec, err := manager.ImportManual(context.Background(), payload, "Hand Entered", "carol", "private world", idAlpha)
	if err != nil {
		t.Fatalf("ImportManual: %v", err)
	}
	if rec.Name != "Hand Entered" || rec.Author != "carol" {
		t.Errorf("manual metadata not applied: %+v", rec)
	}
	if !manager.Store().Exists(idAlpha) {
		t.Error("manual record not persisted")
	}
}
