package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"vrcache/internal/catalog"
	"vrcache/internal/config"
	"vrcache/internal/identify"
	"vrcache/internal/logging"
	"vrcache/internal/testsupport"
	"vrcache/internal/vrcapi"
)

const (
	idAlpha = "wrld_11111111-2222-4333-8444-555555555555"
	idBeta  = "wrld_aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee"
)

func worldAlpha() vrcapi.World {
	return vrcapi.World{ID: idAlpha, Name: "Midnight Rooftop", AuthorName: "alice"}
}

func worldBeta() vrcapi.World {
	return vrcapi.World{ID: idBeta, Name: "Treehouse in the Shade", AuthorName: "bob"}
}

func newTestManager(t *testing.T, lookup vrcapi.Lookup, decider identify.Decider) (*Manager, *config.Config) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	manager, err := NewManager(cfg, store, logging.NewNop(), Dependencies{
		Lookup:  lookup,
		Decider: decider,
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return manager, cfg
}

func payloadFile(t *testing.T, cfg *config.Config, name string, ids ...string) string {
	t.Helper()
	path := filepath.Join(cfg.DataDir, "payloads", name, "__data")
	testsupport.WritePayload(t, path, ids...)
	return path
}

func TestIngestSingleCandidateStores(t *testing.T) {
	lookup := testsupport.NewFakeLookup(worldAlpha())
	manager, cfg := newTestManager(t, lookup, nil)
	payload := payloadFile(t, cfg, "single", idAlpha)

	result, err := manager.IngestPayload(context.Background(), payload)
	if err != nil {
		t.Fatalf("IngestPayload: %v", err)
	}
	if result.Disposition != DispositionStored {
		t.Fatalf("Disposition = %v, want Stored", result.Disposition)
	}
	if len(result.Records) != 1 || result.Records[0].ID != idAlpha {
		t.Fatalf("Records = %v", result.Records)
	}

	rec, ok := manager.Store().Find(idAlpha)
	if !ok {
		t.Fatal("record not persisted")
	}
	if rec.Ambiguous {
		t.Error("confident store should not be flagged")
	}
	asset := catalog.AssetPath(cfg.ArchiveDir, rec)
	if _, err := os.Stat(asset); err != nil {
		t.Errorf("asset bundle not copied: %v", err)
	}
}

func TestIngestSkipsKnownWorldWithoutLookup(t *testing.T) {
	lookup := testsupport.NewFakeLookup(worldAlpha())
	manager, cfg := newTestManager(t, lookup, nil)
	payload := payloadFile(t, cfg, "known", idAlpha)

	if _, err := manager.IngestPayload(context.Background(), payload); err != nil {
		t.Fatalf("first IngestPayload: %v", err)
	}
	callsAfterFirst := lookup.Calls(idAlpha)

	result, err := manager.IngestPayload(context.Background(), payload)
	if err != nil {
		t.Fatalf("second IngestPayload: %v", err)
	}
	if result.Disposition != DispositionSkipped {
		t.Fatalf("Disposition = %v, want Skipped", result.Disposition)
	}
	if lookup.Calls(idAlpha) != callsAfterFirst {
		t.Error("skip path should not hit the metadata service")
	}
	if got := len(manager.Store().Worlds()); got != 1 {
		t.Errorf("catalog holds %d records, want 1", got)
	}
}

func TestIngestAmbiguousRecordDoesNotBlockReingestion(t *testing.T) {
	lookup := testsupport.NewFakeLookup(worldAlpha())
	manager, cfg := newTestManager(t, lookup, nil)

	flagged := testsupport.NewRecord(idAlpha, "Midnight Rooftop")
	flagged.Ambiguous = true
	if err := manager.Store().Add(catalog.WorldsKey, flagged); err != nil {
		t.Fatalf("seed flagged record: %v", err)
	}

	payload := payloadFile(t, cfg, "reingest", idAlpha)
	result, err := manager.IngestPayload(context.Background(), payload)
	if err != nil {
		t.Fatalf("IngestPayload: %v", err)
	}
	if result.Disposition != DispositionStored {
		t.Errorf("Disposition = %v, want Stored", result.Disposition)
	}
}

func TestIngestConfidentStoreSupersedesFlaggedRecords(t *testing.T) {
	lookup := testsupport.NewFakeLookup(worldAlpha())
	manager, cfg := newTestManager(t, lookup, nil)

	flagged := testsupport.NewRecord(idAlpha, "Midnight Rooftop")
	flagged.Ambiguous = true
	if err := manager.Store().Add(catalog.WorldsKey, flagged); err != nil {
		t.Fatalf("seed flagged record: %v", err)
	}

	payload := payloadFile(t, cfg, "supersede", idAlpha)
	for pass := 0; pass < 3; pass++ {
		result, err := manager.IngestPayload(context.Background(), payload)
		if err != nil {
			t.Fatalf("pass %d: IngestPayload: %v", pass, err)
		}
		want := DispositionSkipped
		if pass == 0 {
			want = DispositionStored
		}
		if result.Disposition != want {
			t.Fatalf("pass %d: Disposition = %v, want %v", pass, result.Disposition, want)
		}
	}

	worlds := manager.Store().Worlds()
	matches := 0
	for _, rec := range worlds {
		if rec.ID != idAlpha {
			continue
		}
		matches++
		if rec.Ambiguous {
			t.Error("superseding record should not be flagged")
		}
	}
	if matches != 1 || len(worlds) != 1 {
		t.Fatalf("catalog holds %d records for %s, total %d; want exactly one", matches, idAlpha, len(worlds))
	}
}

func TestIngestUnresolvedPayloadTwiceDoesNotDuplicateFlags(t *testing.T) {
	lookup := testsupport.NewFakeLookup(worldAlpha(), worldBeta())
	manager, cfg := newTestManager(t, lookup, nil)
	payload := payloadFile(t, cfg, "reflagged", idAlpha, idBeta)

	if _, err := manager.IngestPayload(context.Background(), payload); err != nil {
		t.Fatalf("first IngestPayload: %v", err)
	}
	result, err := manager.IngestPayload(context.Background(), payload)
	if err != nil {
		t.Fatalf("second IngestPayload: %v", err)
	}
	if result.Disposition != DispositionSkipped {
		t.Errorf("Disposition = %v, want Skipped", result.Disposition)
	}
	if got := len(manager.Store().Worlds()); got != 2 {
		t.Errorf("catalog holds %d records, want 2", got)
	}
}

func TestIngestAssetCopyFailureHealedByIntegrityPass(t *testing.T) {
	lookup := testsupport.NewFakeLookup(worldAlpha())
	manager, cfg := newTestManager(t, lookup, nil)
	payload := payloadFile(t, cfg, "copyfail", idAlpha)

	// A regular file where the archive tree should be makes every copy fail.
	if err := os.RemoveAll(cfg.ArchiveDir); err != nil {
		t.Fatalf("remove archive dir: %v", err)
	}
	if err := os.WriteFile(cfg.ArchiveDir, []byte("in the way"), 0o644); err != nil {
		t.Fatalf("block archive dir: %v", err)
	}

	result, err := manager.IngestPayload(context.Background(), payload)
	if err != nil {
		t.Fatalf("IngestPayload: %v", err)
	}
	if result.Disposition != DispositionStored {
		t.Fatalf("Disposition = %v, want Stored", result.Disposition)
	}
	if !manager.Store().Exists(idAlpha) {
		t.Fatal("record should persist even when the asset copy fails")
	}

	pruned, err := manager.VerifyIntegrity()
	if err != nil {
		t.Fatalf("VerifyIntegrity: %v", err)
	}
	if pruned != 1 {
		t.Errorf("pruned %d records, want 1", pruned)
	}
	if manager.Store().Exists(idAlpha) {
		t.Error("record with missing asset should be pruned")
	}
}

type countingThumbnailFetcher struct {
	calls int
}

func (f *countingThumbnailFetcher) DownloadThumbnail(_ context.Context, _, destPath string) error {
	f.calls++
	return os.WriteFile(destPath, []byte("png"), 0o644)
}

func TestStoreIfNewSkipDoesNotFetchThumbnail(t *testing.T) {
	world := worldAlpha()
	world.ThumbnailURL = "https://cdn.example.test/alpha.png"
	lookup := testsupport.NewFakeLookup(world)

	cfg := testsupport.NewConfig(t, testsupport.WithThumbnails())
	store := testsupport.MustOpenCatalog(t, cfg)
	fetcher := &countingThumbnailFetcher{}
	manager, err := NewManager(cfg, store, logging.NewNop(), Dependencies{
		Lookup:     lookup,
		Thumbnails: fetcher,
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	path := filepath.Join(cfg.DataDir, "payloads", "thumbskip", "__data")
	testsupport.WritePayload(t, path, idAlpha)

	if _, err := manager.IngestPayload(context.Background(), path); err != nil {
		t.Fatalf("IngestPayload: %v", err)
	}
	if fetcher.calls != 1 {
		t.Fatalf("fetcher called %d times, want 1", fetcher.calls)
	}

	// Another worker that passed the confident-exists pre-check must bail
	// at the locked re-check without touching the network.
	_, stored, err := manager.storeIfNew(context.Background(), manager.logger, path, &world, false)
	if err != nil {
		t.Fatalf("storeIfNew: %v", err)
	}
	if stored {
		t.Fatal("existing confident record should not be stored again")
	}
	if fetcher.calls != 1 {
		t.Errorf("fetcher called %d times after skip, want 1", fetcher.calls)
	}
}

func TestIngestUnknownWorldIsUnidentified(t *testing.T) {
	lookup := testsupport.NewFakeLookup()
	manager, cfg := newTestManager(t, lookup, nil)
	payload := payloadFile(t, cfg, "unknown", idAlpha)

	result, err := manager.IngestPayload(context.Background(), payload)
	if err != nil {
		t.Fatalf("IngestPayload: %v", err)
	}
	if result.Disposition != DispositionUnidentified {
		t.Fatalf("Disposition = %v, want Unidentified", result.Disposition)
	}
	if manager.Store().Exists(idAlpha) {
		t.Error("unidentified world should not be stored")
	}
}

func TestIngestNoCandidates(t *testing.T) {
	manager, cfg := newTestManager(t, testsupport.NewFakeLookup(), nil)
	payload := payloadFile(t, cfg, "empty")

	result, err := manager.IngestPayload(context.Background(), payload)
	if err != nil {
		t.Fatalf("IngestPayload: %v", err)
	}
	if result.Disposition != DispositionNoCandidates {
		t.Errorf("Disposition = %v, want NoCandidates", result.Disposition)
	}
}

func TestIngestMissingPayloadFails(t *testing.T) {
	manager, cfg := newTestManager(t, testsupport.NewFakeLookup(), nil)

	_, err := manager.IngestPayload(context.Background(), filepath.Join(cfg.DataDir, "nope", "__data"))
	if err == nil {
		t.Fatal("missing payload should be an error")
	}
}

func TestIngestMultipleResolvedByNameProbe(t *testing.T) {
	lookup := testsupport.NewFakeLookup(worldAlpha(), worldBeta())
	manager, cfg := newTestManager(t, lookup, nil)

	// The payload embeds both identifiers but only Beta's name prefix.
	path := filepath.Join(cfg.DataDir, "payloads", "probe", "__data")
	testsupport.WritePayload(t, path, idAlpha, idBeta, "Treehous")

	result, err := manager.IngestPayload(context.Background(), path)
	if err != nil {
		t.Fatalf("IngestPayload: %v", err)
	}
	if result.Disposition != DispositionStored {
		t.Fatalf("Disposition = %v, want Stored", result.Disposition)
	}
	if len(result.Records) != 1 || result.Records[0].ID != idBeta {
		t.Fatalf("wrong winner stored: %v", result.Records)
	}
	if manager.Store().Exists(idAlpha) {
		t.Error("losing candidate should not be stored")
	}
}

func TestIngestMultipleDeciderChooses(t *testing.T) {
	lookup := testsupport.NewFakeLookup(worldAlpha(), worldBeta())
	decider := identify.DeciderFunc(func(_ context.Context, candidates []identify.Candidate) (int, error) {
		for i, candidate := range candidates {
			if candidate.ID == idAlpha {
				return i, nil
			}
		}
		return -1, identify.ErrDeclined
	})
	manager, cfg := newTestManager(t, lookup, decider)
	payload := payloadFile(t, cfg, "decider", idAlpha, idBeta)

	result, err := manager.IngestPayload(context.Background(), payload)
	if err != nil {
		t.Fatalf("IngestPayload: %v", err)
	}
	if result.Disposition != DispositionStored {
		t.Fatalf("Disposition = %v, want Stored", result.Disposition)
	}
	if len(result.Records) != 1 || result.Records[0].ID != idAlpha {
		t.Fatalf("wrong winner stored: %v", result.Records)
	}
}

func TestIngestMultipleUnresolvedStoresAllFlagged(t *testing.T) {
	lookup := testsupport.NewFakeLookup(worldAlpha(), worldBeta())
	manager, cfg := newTestManager(t, lookup, nil)
	payload := payloadFile(t, cfg, "flagged", idAlpha, idBeta)

	result, err := manager.IngestPayload(context.Background(), payload)
	if err != nil {
		t.Fatalf("IngestPayload: %v", err)
	}
	if result.Disposition != DispositionStoredFlagged {
		t.Fatalf("Disposition = %v, want StoredFlagged", result.Disposition)
	}
	if len(result.Records) != 2 {
		t.Fatalf("stored %d records, want 2", len(result.Records))
	}
	for _, rec := range result.Records {
		if !rec.Ambiguous {
			t.Errorf("record %s not flagged", rec.ID)
		}
		asset := catalog.AssetPath(cfg.ArchiveDir, rec)
		if _, err := os.Stat(asset); err != nil {
			t.Errorf("asset for %s not copied: %v", rec.ID, err)
		}
	}
}

func TestIngestMultipleDropsUnknownCandidates(t *testing.T) {
	// Only Beta is known to the metadata service; with one candidate left
	// the set resolves automatically.
	lookup := testsupport.NewFakeLookup(worldBeta())
	manager, cfg := newTestManager(t, lookup, nil)
	payload := payloadFile(t, cfg, "partial", idAlpha, idBeta)

	result, err := manager.IngestPayload(context.Background(), payload)
	if err != nil {
		t.Fatalf("IngestPayload: %v", err)
	}
	if result.Disposition != DispositionStored {
		t.Fatalf("Disposition = %v, want Stored", result.Disposition)
	}
	if len(result.Records) != 1 || result.Records[0].ID != idBeta {
		t.Fatalf("wrong record stored: %v", result.Records)
	}
}

func TestIngestMultipleAllUnknownIsUnidentified(t *testing.T) {
	manager, cfg := newTestManager(t, testsupport.NewFakeLookup(), nil)
	payload := payloadFile(t, cfg, "allunknown", idAlpha, idBeta)

	result, err := manager.IngestPayload(context.Background(), payload)
	if err != nil {
		t.Fatalf("IngestPayload: %v", err)
	}
	if result.Disposition != DispositionUnidentified {
		t.Errorf("Disposition = %v, want Unidentified", result.Disposition)
	}
}
