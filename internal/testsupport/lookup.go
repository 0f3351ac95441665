package testsupport

import (
	"context"
	"sync"

	"vrcache/internal/vrcapi"
)

// FakeLookup serves world metadata from an in-memory map and counts calls.
type FakeLookup struct {
	mu     sync.Mutex
	worlds map[string]vrcapi.World
	calls  map[string]int

	// Err, when set, is returned for every lookup.
	Err error
}

// NewFakeLookup builds a lookup seeded with the given worlds.
func NewFakeLookup(worlds ...vrcapi.World) *FakeLookup {
	f := &FakeLookup{
		worlds: make(map[string]vrcapi.World, len(worlds)),
		calls:  make(map[string]int),
	}
	for _, w := range worlds {
		f.worlds[w.ID] = w
	}
	return f
}

// GetWorld implements vrcapi.Lookup.
func (f *FakeLookup) GetWorld(_ context.Context, id string) (*vrcapi.World, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[id]++
	if f.Err != nil {
		return nil, f.Err
	}
	w, ok := f.worlds[id]
	if !ok {
		return nil, vrcapi.ErrWorldNotFound
	}
	return &w, nil
}

// Calls reports how many lookups were made for id.
func (f *FakeLookup) Calls(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}
