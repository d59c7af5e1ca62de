package store

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/starford/raido/internal/address"
	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
)

// RemoteConfig holds the connection settings for the hosted table service.
type RemoteConfig struct {
	BaseURL string
	APIKey  string
	Table   string
}

// Remote implements Store against a hosted PostgREST-style table of
// delivery locations.
//
// Failure policy differs from Local on purpose: mutating operations (Save,
// Delete) propagate backend failures to the caller; read operations degrade
// to empty results so the caller stays responsive, with the underlying cause
// logged.
type Remote struct {
	http   *resty.Client
	table  string
	logger *slog.Logger
	now    func() time.Time
}

var _ Store = (*Remote)(nil)

// NewRemote builds a Remote store. No automatic retries: every failure is
// surfaced once and requires an explicit caller-initiated retry.
func NewRemote(cfg RemoteConfig, logger *slog.Logger) *Remote {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(15 * time.Second).
		SetHeader("apikey", cfg.APIKey).
		SetHeader("Authorization", "Bearer "+cfg.APIKey).
		SetHeader("Content-Type", "application/json")

	table := cfg.Table
	if table == "" {
		table = "delivery_locations"
	}
	return &Remote{http: client, table: table, logger: logger, now: time.Now}
}

// locationRow mirrors the hosted table's column layout on the read path.
type locationRow struct {
	ID        string                `json:"id,omitempty"`
	Address   string                `json:"address"`
	Location  string                `json:"location"`
	Name      string                `json:"name"`
	Content   []models.ContentBlock `json:"content"`
	PlaceID   string                `json:"place_id"`
	Latitude  *float64              `json:"latitude"`
	Longitude *float64              `json:"longitude"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// locationWrite is the mutation payload. The service owns the timestamp
// columns: created_at is never sent, and updated_at only on updates, so a
// write can't clobber what the table manages.
type locationWrite struct {
	ID        string                `json:"id,omitempty"`
	Address   string                `json:"address"`
	Location  string                `json:"location"`
	Name      string                `json:"name"`
	Content   []models.ContentBlock `json:"content"`
	PlaceID   string                `json:"place_id"`
	Latitude  *float64              `json:"latitude"`
	Longitude *float64              `json:"longitude"`
	UpdatedAt *time.Time            `json:"updated_at,omitempty"`
}

func (row locationRow) record() models.LocationRecord {
	rec := models.LocationRecord{
		ID:          row.ID,
		Address:     row.Address,
		HouseNumber: address.HouseNumber(row.Address),
		Content:     row.Content,
		Meta: models.PlaceMeta{
			Name:    row.Name,
			Region:  row.Location,
			PlaceID: row.PlaceID,
		},
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if row.Latitude != nil {
		rec.Meta.Lat = *row.Latitude
	}
	if row.Longitude != nil {
		rec.Meta.Lng = *row.Longitude
	}
	return rec
}

func writeFrom(addr string, content []models.ContentBlock, meta models.PlaceMeta) locationWrite {
	if content == nil {
		content = []models.ContentBlock{}
	}
	row := locationWrite{
		Address:  addr,
		Location: meta.Region,
		Name:     meta.Name,
		Content:  content,
		PlaceID:  meta.PlaceID,
	}
	if meta.Lat != 0 || meta.Lng != 0 {
		lat, lng := meta.Lat, meta.Lng
		row.Latitude = &lat
		row.Longitude = &lng
	}
	return row
}

// patternEscaper neutralizes ilike metacharacters so stored text containing
// %, _, * or a backslash is matched literally instead of as a wildcard.
var patternEscaper = strings.NewReplacer(
	`\`, `\\`,
	`%`, `\%`,
	`_`, `\_`,
	`*`, `\*`,
)

func records(rows []locationRow) []models.LocationRecord {
	out := make([]models.LocationRecord, len(rows))
	for i, row := range rows {
		out[i] = row.record()
	}
	return out
}

// Search issues a case-insensitive pattern match on the address column,
// newest records first. Failures degrade to an empty result set.
func (r *Remote) Search(ctx context.Context, query string) ([]models.LocationRecord, error) {
	term := strings.TrimSpace(query)
	if term == "" {
		return nil, nil
	}

	var rows []locationRow
	resp, err := r.http.R().
		SetContext(ctx).
		SetQueryParam("address", "ilike.*"+patternEscaper.Replace(term)+"*").
		SetQueryParam("order", "created_at.desc").
		SetResult(&rows).
		Get("/rest/v1/" + r.table)
	if err != nil || resp.IsError() {
		r.logger.Error("remote search failed; returning empty results",
			slog.String("query", term),
			slog.String("error", respError(resp, err)))
		return nil, nil
	}
	return records(rows), nil
}

// GetByID looks up a record by key. Every failure mode, including a genuine
// service error, is normalized to ErrNotFound with the cause logged.
func (r *Remote) GetByID(ctx context.Context, id string) (*models.LocationRecord, error) {
	var row locationRow
	resp, err := r.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/vnd.pgrst.object+json").
		SetQueryParam("id", "eq."+id).
		SetResult(&row).
		Get("/rest/v1/" + r.table)
	if err != nil || resp.IsError() {
		if err != nil || resp.StatusCode() != http.StatusNotAcceptable {
			r.logger.Error("remote get failed",
				slog.String("id", id),
				slog.String("error", respError(resp, err)))
		}
		return nil, apperr.ErrNotFound
	}
	rec := row.record()
	return &rec, nil
}

// FindByAddress matches the whole address case-insensitively.
func (r *Remote) FindByAddress(ctx context.Context, addr string) (*models.LocationRecord, error) {
	var rows []locationRow
	resp, err := r.http.R().
		SetContext(ctx).
		SetQueryParam("address", "ilike."+patternEscaper.Replace(strings.TrimSpace(addr))).
		SetQueryParam("limit", "1").
		SetResult(&rows).
		Get("/rest/v1/" + r.table)
	if err != nil || resp.IsError() {
		r.logger.Error("remote find by address failed",
			slog.String("address", addr),
			slog.String("error", respError(resp, err)))
		return nil, apperr.ErrNotFound
	}
	if len(rows) == 0 {
		return nil, apperr.ErrNotFound
	}
	rec := rows[0].record()
	return &rec, nil
}

// Save inserts a new row (empty id) or fully overwrites an existing one.
// The table's key is a uuid; on insert it is generated here so a single
// round-trip returns the stored row. Failures propagate to the caller, who
// must not assume the record was saved.
func (r *Remote) Save(ctx context.Context, id, addr string, content []models.ContentBlock, meta models.PlaceMeta) (*models.LocationRecord, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, apperr.ErrValidation
	}

	row := writeFrom(addr, content, meta)

	var saved []locationRow
	if id == "" {
		row.ID = uuid.NewString()
		resp, err := r.http.R().
			SetContext(ctx).
			SetHeader("Prefer", "return=representation").
			SetBody([]locationWrite{row}).
			SetResult(&saved).
			Post("/rest/v1/" + r.table)
		if err != nil || resp.IsError() {
			return nil, fmt.Errorf("%w: insert: %s", apperr.ErrBackend, respError(resp, err))
		}
	} else {
		ts := r.now().UTC()
		row.UpdatedAt = &ts
		resp, err := r.http.R().
			SetContext(ctx).
			SetHeader("Prefer", "return=representation").
			SetQueryParam("id", "eq."+id).
			SetBody(row).
			SetResult(&saved).
			Patch("/rest/v1/" + r.table)
		if err != nil || resp.IsError() {
			return nil, fmt.Errorf("%w: update %s: %s", apperr.ErrBackend, id, respError(resp, err))
		}
		if len(saved) == 0 {
			return nil, apperr.ErrNotFound
		}
	}
	if len(saved) == 0 {
		return nil, fmt.Errorf("%w: service returned no representation", apperr.ErrBackend)
	}
	rec := saved[0].record()
	return &rec, nil
}

// Delete removes a row by key. The service does not distinguish "did not
// exist" from other outcomes, so false covers both.
func (r *Remote) Delete(ctx context.Context, id string) (bool, error) {
	var deleted []locationRow
	resp, err := r.http.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetQueryParam("id", "eq."+id).
		SetResult(&deleted).
		Delete("/rest/v1/" + r.table)
	if err != nil || resp.IsError() {
		r.logger.Error("remote delete failed",
			slog.String("id", id),
			slog.String("error", respError(resp, err)))
		return false, fmt.Errorf("%w: delete %s: %s", apperr.ErrBackend, id, respError(resp, err))
	}
	return len(deleted) > 0, nil
}

// ListByRegion returns all rows tagged with a region, newest first.
func (r *Remote) ListByRegion(ctx context.Context, region string) ([]models.LocationRecord, error) {
	var rows []locationRow
	resp, err := r.http.R().
		SetContext(ctx).
		SetQueryParam("location", "eq."+region).
		SetQueryParam("order", "created_at.desc").
		SetResult(&rows).
		Get("/rest/v1/" + r.table)
	if err != nil || resp.IsError() {
		r.logger.Error("remote list by region failed; returning empty results",
			slog.String("region", region),
			slog.String("error", respError(resp, err)))
		return nil, nil
	}
	return records(rows), nil
}

func respError(resp *resty.Response, err error) string {
	if err != nil {
		return err.Error()
	}
	if resp == nil {
		return "no response"
	}
	return fmt.Sprintf("status %d: %s", resp.StatusCode(), strings.TrimSpace(string(resp.Body())))
}
