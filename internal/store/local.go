package store

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/starford/raido/internal/address"
	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/snapshot"
)

// Local implements Store with an in-memory map snapshotted to a single file
// on every successful mutation.
//
// A failed snapshot write is logged and does not roll back the in-memory
// mutation, so memory and disk can diverge until the next successful write.
type Local struct {
	mu      sync.RWMutex
	records map[string]models.LocationRecord
	order   []string // ids in insertion order

	snap   *snapshot.File
	logger *slog.Logger
	now    func() time.Time
}

var _ Store = (*Local)(nil)

// NewLocal loads the snapshot (if any) and returns a ready store.
func NewLocal(snap *snapshot.File, logger *slog.Logger) (*Local, error) {
	l := &Local{
		records: make(map[string]models.LocationRecord),
		snap:    snap,
		logger:  logger,
		now:     time.Now,
	}
	records, err := snap.Load()
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		l.records[r.ID] = r
		l.order = append(l.order, r.ID)
	}
	logger.Info("local store loaded",
		slog.String("path", snap.Path()),
		slog.Int("records", len(l.order)))
	return l, nil
}

// Search matches the lowercased query as a substring of the lowercased
// address or house number, in insertion order.
func (l *Local) Search(_ context.Context, query string) ([]models.LocationRecord, error) {
	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		return nil, nil
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []models.LocationRecord
	for _, id := range l.order {
		r := l.records[id]
		if strings.Contains(strings.ToLower(r.Address), term) ||
			strings.Contains(strings.ToLower(r.HouseNumber), term) {
			out = append(out, r)
		}
	}
	return out, nil
}

// GetByID is an exact key lookup.
func (l *Local) GetByID(_ context.Context, id string) (*models.LocationRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	r, ok := l.records[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &r, nil
}

// FindByAddress is a case-insensitive whole-string match.
func (l *Local) FindByAddress(_ context.Context, addr string) (*models.LocationRecord, error) {
	want := strings.ToLower(strings.TrimSpace(addr))

	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, id := range l.order {
		r := l.records[id]
		if strings.ToLower(r.Address) == want {
			return &r, nil
		}
	}
	return nil, apperr.ErrNotFound
}

// Save creates or overwrites a record. An empty id is derived from the
// address; colliding slugs overwrite silently (last write wins).
func (l *Local) Save(_ context.Context, id, addr string, content []models.ContentBlock, meta models.PlaceMeta) (*models.LocationRecord, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, apperr.ErrValidation
	}
	if id == "" {
		id = address.Slug(addr)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	rec := models.LocationRecord{
		ID:          id,
		Address:     addr,
		HouseNumber: address.HouseNumber(addr),
		Content:     models.CloneContent(content),
		Meta:        meta,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if prev, ok := l.records[id]; ok {
		rec.CreatedAt = prev.CreatedAt
	} else {
		l.order = append(l.order, id)
	}
	l.records[id] = rec

	l.persistLocked()
	return &rec, nil
}

// Delete removes a record, reporting false when the key did not exist.
func (l *Local) Delete(_ context.Context, id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.records[id]; !ok {
		return false, nil
	}
	delete(l.records, id)
	for i, existing := range l.order {
		if existing == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	l.persistLocked()
	return true, nil
}

// ListByRegion returns records whose region tag matches, in insertion order.
func (l *Local) ListByRegion(_ context.Context, region string) ([]models.LocationRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []models.LocationRecord
	for _, id := range l.order {
		r := l.records[id]
		if r.Meta.Region == region {
			out = append(out, r)
		}
	}
	return out, nil
}

// Reload replaces the in-memory collection with the current snapshot
// contents. Used by the snapshot watcher when the file changes on disk.
func (l *Local) Reload() error {
	records, err := l.snap.Load()
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = make(map[string]models.LocationRecord, len(records))
	l.order = l.order[:0]
	for _, r := range records {
		l.records[r.ID] = r
		l.order = append(l.order, r.ID)
	}
	return nil
}

// persistLocked rewrites the snapshot from the in-memory state. The caller
// holds l.mu. A write failure is logged, not returned: the in-memory
// mutation stands.
func (l *Local) persistLocked() {
	records := make([]models.LocationRecord, 0, len(l.order))
	for _, id := range l.order {
		records = append(records, l.records[id])
	}
	if err := l.snap.Write(records); err != nil {
		l.logger.Error("snapshot write failed; memory and disk diverge",
			slog.String("path", l.snap.Path()),
			slog.String("error", err.Error()))
	}
}
