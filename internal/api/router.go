package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/raido/internal/access"
	"github.com/starford/raido/internal/locationservice"
	"github.com/starford/raido/internal/search"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *locationservice.Service, engine *search.Engine, gate *access.Gate, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, engine, gate)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Locations CRUD.
	r.Post("/locations", h.SaveLocation)
	r.Get("/locations/{id}", h.GetLocation)
	r.Put("/locations/{id}", h.UpdateLocation)
	r.Delete("/locations/{id}", h.DeleteLocation)

	// Search.
	r.Get("/search", h.Search)

	// Regions.
	r.Get("/regions", h.ListRegions)
	r.Get("/regions/{region}/locations", h.ListByRegion)
	r.Get("/regions/{region}/export", h.ExportRegion)

	// Access gate.
	r.Post("/access/validate", h.ValidateAccess)

	// Attachment encoding (auth-protected).
	r.Post("/attachments", h.UploadAttachment)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
