// Package search merges saved location records with external place results
// into grouped, separately labeled result sets.
package search

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/places"
	"github.com/starford/raido/internal/store"
)

// Results groups the two result sets. Saved records come first, external
// results second; the engine never interleaves or deduplicates across the
// groups (write-time FindByAddress handles duplicates instead).
type Results struct {
	Saved  []models.LocationRecord `json:"saved"`
	Nearby []places.Place          `json:"nearby"`
	// Notice carries a provider-specific "no results" message when both
	// groups are empty because the provider failed or found nothing.
	Notice string `json:"notice,omitempty"`
}

// Engine runs searches against the store and, when a provider is configured,
// against the external place service.
type Engine struct {
	store    store.Store
	provider places.Provider // nil when no provider is configured
	logger   *slog.Logger
}

// NewEngine builds a search engine. provider may be nil.
func NewEngine(st store.Store, provider places.Provider, logger *slog.Logger) *Engine {
	return &Engine{store: st, provider: provider, logger: logger}
}

// Search returns saved matches and, when a provider is configured, external
// results biased toward the selected region and sorted ascending by distance
// to the region center.
//
// A provider search without a selected region fails with ErrRegionRequired.
// Provider failures degrade to saved-only results; a blank query returns
// empty results without touching any backend.
func (e *Engine) Search(ctx context.Context, query, region string) (Results, error) {
	term := strings.TrimSpace(query)
	if term == "" {
		return Results{}, nil
	}

	if e.provider != nil && region == "" {
		return Results{}, apperr.ErrRegionRequired
	}

	saved, err := e.store.Search(ctx, term)
	if err != nil {
		// Reads degrade; keep the external half of the search alive.
		e.logger.Error("store search failed",
			slog.String("query", term),
			slog.String("error", err.Error()))
		saved = nil
	}

	res := Results{Saved: saved}
	if e.provider == nil {
		return res, nil
	}

	nearby, provErr := e.searchProvider(ctx, term, region)
	if provErr != nil {
		e.logger.Warn("place provider search failed; falling back to saved results",
			slog.String("query", term),
			slog.String("region", region),
			slog.String("error", provErr.Error()))
		if len(res.Saved) == 0 {
			res.Notice = "Place search for " + region + " is unavailable and no saved addresses matched."
		}
		return res, nil
	}

	res.Nearby = nearby
	if len(res.Saved) == 0 && len(res.Nearby) == 0 {
		res.Notice = "No saved or nearby addresses matched in " + region + "."
	}
	return res, nil
}

// searchProvider geocodes the region, runs the biased text search, and sorts
// results ascending by great-circle distance to the region center.
func (e *Engine) searchProvider(ctx context.Context, query, region string) ([]places.Place, error) {
	area, err := e.provider.GeocodeRegion(ctx, region)
	if err != nil {
		return nil, err
	}
	found, err := e.provider.TextSearch(ctx, query, area)
	if err != nil {
		return nil, err
	}
	for i := range found {
		found[i].Distance = places.Distance(area.Center, found[i].Location)
	}
	sort.SliceStable(found, func(i, j int) bool {
		return found[i].Distance < found[j].Distance
	})
	return found, nil
}

// Select fetches the full details for a chosen external result and shapes
// them into the place metadata attached to a record on save.
func (e *Engine) Select(ctx context.Context, placeID, region string) (string, models.PlaceMeta, error) {
	if e.provider == nil {
		return "", models.PlaceMeta{}, errors.New("search: no place provider configured")
	}
	p, err := e.provider.Details(ctx, placeID)
	if err != nil {
		return "", models.PlaceMeta{}, err
	}
	return p.Address, models.PlaceMeta{
		Name:    p.Name,
		Region:  region,
		PlaceID: p.PlaceID,
		Lat:     p.Location.Lat,
		Lng:     p.Location.Lng,
	}, nil
}
