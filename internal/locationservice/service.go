// Package locationservice coordinates the store, the access gate, and event
// publication for the API and MCP layers.
package locationservice

import (
	"context"
	"errors"
	"strings"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/store"
)

// EventPublisher receives location change notifications. kind is one of
// "created", "updated", "deleted".
type EventPublisher interface {
	PublishLocationEvent(kind, id string)
}

// Service coordinates persistence and event publication.
type Service struct {
	store  store.Store
	events EventPublisher // nil disables publication
}

// NewService creates a location service. events may be nil.
func NewService(st store.Store, events EventPublisher) *Service {
	return &Service{store: st, events: events}
}

// Get returns one record by id.
func (s *Service) Get(ctx context.Context, id string) (*models.LocationRecord, error) {
	return s.store.GetByID(ctx, id)
}

// Save creates or overwrites a record. Content is required to carry valid
// block types; the address is required by the store.
func (s *Service) Save(ctx context.Context, id, addr string, content []models.ContentBlock, meta models.PlaceMeta) (*models.LocationRecord, error) {
	for _, b := range content {
		switch b.Type {
		case models.BlockText, models.BlockImage, models.BlockVideo:
		default:
			return nil, apperr.ErrValidation
		}
	}

	existing := id != ""
	rec, err := s.store.Save(ctx, id, addr, content, meta)
	if err != nil {
		return nil, err
	}
	if s.events != nil {
		kind := "created"
		if existing {
			kind = "updated"
		}
		s.events.PublishLocationEvent(kind, rec.ID)
	}
	return rec, nil
}

// SaveFromSelection deduplicates an incoming place selection against
// already-saved records: when a record with the same address exists it is
// returned as-is, otherwise a fresh record with the selection's metadata is
// created.
func (s *Service) SaveFromSelection(ctx context.Context, addr string, meta models.PlaceMeta) (*models.LocationRecord, bool, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, false, apperr.ErrValidation
	}
	existing, err := s.store.FindByAddress(ctx, addr)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, false, err
	}
	rec, err := s.Save(ctx, "", addr, nil, meta)
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

// Delete removes a record, reporting whether anything was removed.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := s.store.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if ok && s.events != nil {
		s.events.PublishLocationEvent("deleted", id)
	}
	return ok, nil
}

// ListByRegion returns every record tagged with a region.
func (s *Service) ListByRegion(ctx context.Context, region string) ([]models.LocationRecord, error) {
	return s.store.ListByRegion(ctx, region)
}
