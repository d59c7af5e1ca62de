// Package store defines the location record persistence contract and its two
// interchangeable backends: an in-memory store snapshotted to disk, and a
// hosted relational table reached over HTTP.
package store

import (
	"context"

	"github.com/starford/raido/internal/models"
)

// Store is the persistence contract shared by both backends. Callers depend
// only on this interface, never on backend-specific behavior beyond what is
// documented here.
//
// Result ordering differs between backends and is not part of the contract:
// the local backend enumerates records in insertion order, the remote backend
// orders by creation time, newest first.
type Store interface {
	// Search matches query case-insensitively against the address (both
	// backends) and the house number (local backend). An empty or
	// whitespace-only query returns no results without touching the
	// backend.
	Search(ctx context.Context, query string) ([]models.LocationRecord, error)

	// GetByID is an exact key lookup. An absent key yields (nil,
	// apperr.ErrNotFound), never a panic or a bare error.
	GetByID(ctx context.Context, id string) (*models.LocationRecord, error)

	// FindByAddress is a case-insensitive whole-string match on the
	// address, used to deduplicate incoming place selections before
	// creating a duplicate record. Absent yields (nil, apperr.ErrNotFound).
	FindByAddress(ctx context.Context, addr string) (*models.LocationRecord, error)

	// Save creates or fully overwrites a record. With an empty id the
	// backend assigns one (local: address slug; remote: generated key).
	// With a non-empty id every field except ID and CreatedAt is replaced,
	// and UpdatedAt is refreshed.
	Save(ctx context.Context, id, addr string, content []models.ContentBlock, meta models.PlaceMeta) (*models.LocationRecord, error)

	// Delete removes a record. The local backend returns false when the
	// key did not exist; the remote backend returns false on any backend
	// error, which it cannot distinguish from a missing key.
	Delete(ctx context.Context, id string) (bool, error)

	// ListByRegion returns every record tagged with the given region.
	ListByRegion(ctx context.Context, region string) ([]models.LocationRecord, error)
}
