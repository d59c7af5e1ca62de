// Package models defines the domain types for Raido.
package models

import "time"

// Block types forming the closed set of annotation content kinds.
const (
	BlockText  = "text"
	BlockImage = "image"
	BlockVideo = "video"
)

// ContentBlock is a single unit of annotation content attached to a
// location. For text blocks Data holds the (lightly formatted) text; for
// image and video blocks it holds a self-contained data URI, or the empty
// string while the block is still a placeholder.
type ContentBlock struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// Filled reports whether the block carries usable content.
func (b ContentBlock) Filled() bool {
	return b.Data != ""
}

// PlaceMeta is the optional metadata captured from an external place
// selection. All fields are empty for manually entered addresses.
type PlaceMeta struct {
	Name    string  `json:"name,omitempty"`
	Region  string  `json:"region,omitempty"`
	PlaceID string  `json:"place_id,omitempty"`
	Lat     float64 `json:"lat,omitempty"`
	Lng     float64 `json:"lng,omitempty"`
}

// LocationRecord is a delivery address with its attached annotation blocks.
//
// HouseNumber is always derived from Address on the write path and is never
// independently settable. ID is stable once assigned; updates never change it.
type LocationRecord struct {
	ID          string         `json:"id"`
	Address     string         `json:"address"`
	HouseNumber string         `json:"house_number"`
	Content     []ContentBlock `json:"content"`
	Meta        PlaceMeta      `json:"meta,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// CloneContent returns a deep copy of a content block sequence. Callers use
// it to take a working copy before an edit session so cancel can restore
// pristine state.
func CloneContent(blocks []ContentBlock) []ContentBlock {
	if blocks == nil {
		return nil
	}
	out := make([]ContentBlock, len(blocks))
	copy(out, blocks)
	return out
}
