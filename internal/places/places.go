// Package places integrates the external geocoding and place-search
// provider. The provider is opaque: it resolves a region name to a center
// point and bounding area, runs text searches biased toward that area, and
// returns full details for a selected result.
package places

import (
	"context"
	"math"
)

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Area is a circle used to bias a text search.
type Area struct {
	Center LatLng  `json:"center"`
	Radius float64 `json:"radius_m"`
}

// Place is one external search result.
type Place struct {
	PlaceID  string  `json:"place_id"`
	Name     string  `json:"name"`
	Address  string  `json:"address"`
	Location LatLng  `json:"location"`
	Distance float64 `json:"distance_m"` // great-circle distance to the region center
}

// Provider is the external geocoding/search service contract.
type Provider interface {
	// GeocodeRegion resolves a free-text region name to a center point and
	// bounding area.
	GeocodeRegion(ctx context.Context, region string) (Area, error)
	// TextSearch runs a free-text place search biased toward area.
	TextSearch(ctx context.Context, query string, area Area) ([]Place, error)
	// Details fetches the full record for a search result's identifier.
	Details(ctx context.Context, placeID string) (Place, error)
}

const earthRadiusM = 6371000.0

// Distance returns the great-circle distance in meters between two points,
// by the haversine formula.
func Distance(a, b LatLng) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusM * math.Asin(math.Sqrt(h))
}
