package places

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const cacheSchemaSQL = `
CREATE TABLE IF NOT EXISTS region_geocodes (
	region    TEXT PRIMARY KEY,
	lat       REAL NOT NULL,
	lng       REAL NOT NULL,
	radius_m  REAL NOT NULL,
	cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS place_details (
	place_id  TEXT PRIMARY KEY,
	name      TEXT NOT NULL DEFAULT '',
	address   TEXT NOT NULL DEFAULT '',
	lat       REAL NOT NULL,
	lng       REAL NOT NULL,
	cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Cache is a SQLite-backed cache of geocoded regions and place details, so
// repeated region selections avoid provider round-trips.
type Cache struct {
	conn *sql.DB
}

// OpenCache opens (or creates) the cache database and applies the schema.
func OpenCache(dsn string) (*Cache, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("places: open cache: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("places: ping cache: %w", err)
	}
	if _, err := conn.Exec(cacheSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("places: apply cache schema: %w", err)
	}
	return &Cache{conn: conn}, nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	return c.conn.Close()
}

// GetRegion returns a cached geocode, or false when the region is unknown.
func (c *Cache) GetRegion(region string) (Area, bool) {
	var a Area
	err := c.conn.QueryRow(
		`SELECT lat, lng, radius_m FROM region_geocodes WHERE region = ?`, region,
	).Scan(&a.Center.Lat, &a.Center.Lng, &a.Radius)
	if err != nil {
		return Area{}, false
	}
	return a, true
}

// PutRegion stores or refreshes a region geocode.
func (c *Cache) PutRegion(region string, a Area) error {
	_, err := c.conn.Exec(`
		INSERT INTO region_geocodes (region, lat, lng, radius_m, cached_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(region) DO UPDATE SET
			lat       = excluded.lat,
			lng       = excluded.lng,
			radius_m  = excluded.radius_m,
			cached_at = excluded.cached_at
	`, region, a.Center.Lat, a.Center.Lng, a.Radius, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("places: cache region: %w", err)
	}
	return nil
}

// GetDetails returns cached place details, or false when absent.
func (c *Cache) GetDetails(placeID string) (Place, bool) {
	p := Place{PlaceID: placeID}
	err := c.conn.QueryRow(
		`SELECT name, address, lat, lng FROM place_details WHERE place_id = ?`, placeID,
	).Scan(&p.Name, &p.Address, &p.Location.Lat, &p.Location.Lng)
	if err != nil {
		return Place{}, false
	}
	return p, true
}

// PutDetails stores or refreshes a place detail record.
func (c *Cache) PutDetails(p Place) error {
	_, err := c.conn.Exec(`
		INSERT INTO place_details (place_id, name, address, lat, lng, cached_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(place_id) DO UPDATE SET
			name      = excluded.name,
			address   = excluded.address,
			lat       = excluded.lat,
			lng       = excluded.lng,
			cached_at = excluded.cached_at
	`, p.PlaceID, p.Name, p.Address, p.Location.Lat, p.Location.Lng, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("places: cache details: %w", err)
	}
	return nil
}

// CachedProvider wraps a Provider with the cache. Cache misses and cache
// errors fall through to the inner provider; the cache never makes a call
// fail.
type CachedProvider struct {
	inner  Provider
	cache  *Cache
	logger *slog.Logger
}

var _ Provider = (*CachedProvider)(nil)

// WithCache wraps provider with cache.
func WithCache(inner Provider, cache *Cache, logger *slog.Logger) *CachedProvider {
	return &CachedProvider{inner: inner, cache: cache, logger: logger}
}

// GeocodeRegion serves cached geocodes and populates the cache on miss.
func (p *CachedProvider) GeocodeRegion(ctx context.Context, region string) (Area, error) {
	if a, ok := p.cache.GetRegion(region); ok {
		return a, nil
	}
	a, err := p.inner.GeocodeRegion(ctx, region)
	if err != nil {
		return Area{}, err
	}
	if putErr := p.cache.PutRegion(region, a); putErr != nil {
		p.logger.Warn("geocode cache write failed",
			slog.String("region", region),
			slog.String("error", putErr.Error()))
	}
	return a, nil
}

// TextSearch is never cached; results change as the query does.
func (p *CachedProvider) TextSearch(ctx context.Context, query string, area Area) ([]Place, error) {
	return p.inner.TextSearch(ctx, query, area)
}

// Details serves cached place records and populates the cache on miss.
func (p *CachedProvider) Details(ctx context.Context, placeID string) (Place, error) {
	if d, ok := p.cache.GetDetails(placeID); ok {
		return d, nil
	}
	d, err := p.inner.Details(ctx, placeID)
	if err != nil {
		return Place{}, err
	}
	if putErr := p.cache.PutDetails(d); putErr != nil {
		p.logger.Warn("details cache write failed",
			slog.String("place_id", placeID),
			slog.String("error", putErr.Error()))
	}
	return d, nil
}
