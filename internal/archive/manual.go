package archive

import (
	"context"
	"errors"
	"fmt"

	"vrcache/internal/catalog"
	"vrcache/internal/logging"
	"vrcache/internal/vrcapi"
	"vrcache/internal/worldid"
)

// ImportWorld archives a payload under an operator-supplied identifier or
// VRChat world page URL, bypassing payload scanning entirely. Metadata still
// comes from the lookup service.
func (m *Manager) ImportWorld(ctx context.Context, urlOrID, payloadPath string) (catalog.WorldRecord, error) {
	id, err := worldid.FromURL(urlOrID)
	if err != nil {
		return catalog.WorldRecord{}, fmt.Errorf("parse world identifier from %q: %w", urlOrID, err)
	}
	logger := m.logger.With(logging.String("world_id", id))

	if m.existsConfident(id) {
		rec, _ := m.store.Find(id)
		return rec, fmt.Errorf("world %q already archived as %q", id, rec.Name)
	}

	world, err := m.lookupWorld(ctx, id)
	if err != nil {
		if errors.Is(err, vrcapi.ErrWorldNotFound) {
			return catalog.WorldRecord{}, fmt.Errorf("world %q not known to the metadata service: %w", id, err)
		}
		return catalog.WorldRecord{}, fmt.Errorf("look up world %q: %w", id, err)
	}

	rec, stored, err := m.storeIfNew(ctx, logger, payloadPath, world, false)
	if err != nil {
		return catalog.WorldRecord{}, err
	}
	if !stored {
		existing, _ := m.store.Find(id)
		return existing, fmt.Errorf("world %q already archived as %q", id, existing.Name)
	}
	return rec, nil
}

// ImportManual archives a payload with operator-supplied metadata, for
// worlds the lookup service cannot resolve (private or deleted listings).
func (m *Manager) ImportManual(ctx context.Context, payloadPath string, name, author, description string, id string) (catalog.WorldRecord, error) {
	if !worldid.Valid(id) {
		return catalog.WorldRecord{}, fmt.Errorf("parse world identifier %q: %w", id, worldid.ErrInvalid)
	}
	if name == "" {
		name = "Unknown World"
	}
	world := &vrcapi.World{
		ID:          id,
		Name:        name,
		AuthorName:  author,
		Description: description,
	}
	logger := m.logger.With(logging.String("world_id", id))

	rec, stored, err := m.storeIfNew(ctx, logger, payloadPath, world, false)
	if err != nil {
		return catalog.WorldRecord{}, err
	}
	if !stored {
		existing, _ := m.store.Find(id)
		return existing, fmt.Errorf("world %q already archived as %q", id, existing.Name)
	}
	return rec, nil
}
