package api

import (
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/search"
)

const maxBodyBytes = 10 << 20

// SaveLocationRequest is the request body for creating or overwriting a
// location record. Either Address (with optional Content and Meta) or
// PlaceID (with Region) must be set.
type SaveLocationRequest struct {
	Address string                `json:"address" example:"123 Main Street, Springfield"`
	Content []models.ContentBlock `json:"content"`
	Meta    models.PlaceMeta      `json:"meta"`

	// Place selection fields.
	PlaceID string `json:"place_id,omitempty" example:"ChIJd8BlQ2BZwokR"`
	Region  string `json:"region,omitempty" example:"IRVING"`
}

// LocationResponse is the full record response type (aliased from the domain layer).
type LocationResponse = models.LocationRecord

// LocationListResponse wraps region listings.
type LocationListResponse struct {
	Locations []models.LocationRecord `json:"locations" validate:"required"`
	Total     int                     `json:"total" example:"42" validate:"required"`
}

// SearchResponse is the grouped search result payload.
type SearchResponse = search.Results

// RegionListResponse wraps the configured region names.
type RegionListResponse struct {
	Regions []string `json:"regions" validate:"required"`
}

// AccessValidateRequest is the request body for the access gate.
type AccessValidateRequest struct {
	Region string `json:"region" example:"IRVING" validate:"required"`
	Code   string `json:"code" example:"45678" validate:"required"`
}

// AccessValidateResponse reports the gate decision for a region.
type AccessValidateResponse struct {
	Region   string `json:"region" example:"IRVING" validate:"required"`
	Decision string `json:"decision" example:"granted" validate:"required"`
}

// AttachmentResponse is returned after a successful attachment encoding.
type AttachmentResponse struct {
	Block    models.ContentBlock `json:"block" validate:"required"`
	Filename string              `json:"filename" example:"door.png" validate:"required"`
	Size     int64               `json:"size" example:"12345" validate:"required"`
	Checksum string              `json:"checksum" example:"abc123..." validate:"required"`
}
