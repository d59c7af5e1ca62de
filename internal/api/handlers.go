package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/starford/raido/internal/access"
	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/locationservice"
	"github.com/starford/raido/internal/search"
)

// Handler holds API route handlers.
type Handler struct {
	svc    *locationservice.Service
	engine *search.Engine
	gate   *access.Gate
}

// NewHandler creates a new Handler.
func NewHandler(svc *locationservice.Service, engine *search.Engine, gate *access.Gate) *Handler {
	return &Handler{svc: svc, engine: engine, gate: gate}
}

// pathParam extracts a chi URL parameter, decoding percent escapes from
// OpenAPI clients (e.g. fort%20worth).
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// Search handles GET /api/search.
//
//	@Summary		Search saved records and nearby places
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	false	"Search text"
//	@Param			region	query		string	false	"Selected region (required for place results)"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	region := r.URL.Query().Get("region")

	results, err := h.engine.Search(r.Context(), q, region)
	if err != nil {
		if errors.Is(err, apperr.ErrRegionRequired) {
			writeJSON(w, http.StatusBadRequest, errorBody("region is required for place search"))
			return
		}
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// GetLocation handles GET /api/locations/{id}.
//
//	@Summary		Get a single location record
//	@Tags			locations
//	@Produce		json
//	@Param			id	path		string	true	"Record ID"
//	@Success		200	{object}	LocationResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/locations/{id} [get]
func (h *Handler) GetLocation(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("id is required"))
		return
	}
	rec, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get location failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}

	body, err := json.Marshal(rec)
	if err != nil {
		slog.Error("marshal location failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	etag := checksum.ETag(body)
	if r.Header.Get("If-None-Match") == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// SaveLocation handles POST /api/locations.
//
// The body either carries a full record (address plus content blocks) or a
// place selection (place_id plus region), which resolves the place and
// creates a record for its address unless one already exists.
//
//	@Summary		Create a location record or save a place selection
//	@Tags			locations
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SaveLocationRequest	true	"Record to save"
//	@Success		200		{object}	LocationResponse	"Existing record matched the selection"
//	@Success		201		{object}	LocationResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/locations [post]
func (h *Handler) SaveLocation(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req SaveLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	if req.PlaceID != "" {
		addr, meta, err := h.engine.Select(r.Context(), req.PlaceID, req.Region)
		if err != nil {
			slog.Error("place selection failed", slog.String("place_id", req.PlaceID), slog.String("error", err.Error()))
			writeJSON(w, http.StatusBadGateway, errorBody("place lookup failed"))
			return
		}
		rec, created, err := h.svc.SaveFromSelection(r.Context(), addr, meta)
		if err != nil {
			h.writeSaveError(w, err)
			return
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		writeJSON(w, status, rec)
		return
	}

	if req.Address == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("address is required"))
		return
	}
	rec, err := h.svc.Save(r.Context(), "", req.Address, req.Content, req.Meta)
	if err != nil {
		h.writeSaveError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// UpdateLocation handles PUT /api/locations/{id}.
//
// The update is a full overwrite: the stored content is replaced with the
// request's blocks, not merged.
//
//	@Summary		Overwrite a location record
//	@Tags			locations
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Record ID"
//	@Param			body	body		SaveLocationRequest	true	"Replacement record"
//	@Success		200		{object}	LocationResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/locations/{id} [put]
func (h *Handler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	id := pathParam(r, "id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("id is required"))
		return
	}
	var req SaveLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Address == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("address is required"))
		return
	}
	rec, err := h.svc.Save(r.Context(), id, req.Address, req.Content, req.Meta)
	if err != nil {
		h.writeSaveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) writeSaveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrBackend):
		slog.Error("save failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody("backend unavailable"))
	default:
		slog.Error("save failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// DeleteLocation handles DELETE /api/locations/{id}.
//
//	@Summary		Delete a location record
//	@Tags			locations
//	@Param			id	path	string	true	"Record ID"
//	@Success		204	"Record deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/locations/{id} [delete]
func (h *Handler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("id is required"))
		return
	}
	ok, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		slog.Error("delete location failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody("backend unavailable"))
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListRegions handles GET /api/regions.
//
//	@Summary		List configured regions
//	@Tags			regions
//	@Produce		json
//	@Success		200	{object}	RegionListResponse
//	@Security		BearerAuth
//	@Router			/regions [get]
func (h *Handler) ListRegions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"regions": h.gate.Regions(),
	})
}

// ListByRegion handles GET /api/regions/{region}/locations.
//
//	@Summary		List location records for a region
//	@Tags			regions
//	@Produce		json
//	@Param			region	path		string	true	"Region name"
//	@Success		200		{object}	LocationListResponse
//	@Security		BearerAuth
//	@Router			/regions/{region}/locations [get]
func (h *Handler) ListByRegion(w http.ResponseWriter, r *http.Request) {
	region := pathParam(r, "region")
	if region == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("region is required"))
		return
	}
	records, err := h.svc.ListByRegion(r.Context(), region)
	if err != nil {
		slog.Error("list by region failed", slog.String("region", region), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"locations": records,
		"total":     len(records),
	})
}

// ExportRegion handles GET /api/regions/{region}/export.
//
//	@Summary		Export a region's records as an xlsx workbook
//	@Tags			regions
//	@Produce		application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
//	@Param			region	path	string	true	"Region name"
//	@Success		200		{file}	binary
//	@Security		BearerAuth
//	@Router			/regions/{region}/export [get]
func (h *Handler) ExportRegion(w http.ResponseWriter, r *http.Request) {
	region := pathParam(r, "region")
	if region == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("region is required"))
		return
	}
	data, err := h.svc.ExportRegion(r.Context(), region)
	if err != nil {
		slog.Error("export failed", slog.String("region", region), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", region+"-locations.xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ValidateAccess handles POST /api/access/validate.
//
//	@Summary		Validate a region access code
//	@Tags			access
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AccessValidateRequest	true	"Region and entered code"
//	@Success		200		{object}	AccessValidateResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/access/validate [post]
func (h *Handler) ValidateAccess(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req AccessValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Region == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("region is required"))
		return
	}
	decision := h.gate.Validate(req.Region, req.Code)
	writeJSON(w, http.StatusOK, AccessValidateResponse{
		Region:   req.Region,
		Decision: decision.String(),
	})
}
