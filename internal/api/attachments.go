package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/draft"
	"github.com/starford/raido/internal/models"
)

const maxUploadBytes = 50 << 20 // 50 MB

// UploadAttachment handles POST /api/attachments (multipart/form-data,
// field "file"). The file is not stored server-side; it is encoded as a
// data URI and returned as a ready-to-insert content block, so the record
// stays self-contained.
//
//	@Summary		Encode an uploaded file as an image or video block
//	@Tags			attachments
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"Image or video file"
//	@Success		201		{object}	AttachmentResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/attachments [post]
func (h *Handler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	var blockType string
	switch {
	case strings.HasPrefix(contentType, "image/"):
		blockType = models.BlockImage
	case strings.HasPrefix(contentType, "video/"):
		blockType = models.BlockVideo
	default:
		writeJSON(w, http.StatusBadRequest, errorBody("only image/* and video/* files are accepted"))
		return
	}

	uri, err := draft.DataURI(contentType, file)
	if err != nil {
		slog.Error("attachment encode failed", slog.String("filename", header.Filename), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to read file"))
		return
	}

	writeJSON(w, http.StatusCreated, AttachmentResponse{
		Block:    models.ContentBlock{Type: blockType, Data: uri},
		Filename: header.Filename,
		Size:     header.Size,
		Checksum: checksum.Sum([]byte(uri)),
	})
}
