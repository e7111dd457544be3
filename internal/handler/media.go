package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"nestpoint/internal/auth"
	"nestpoint/internal/media"
)

type MediaHandler struct {
	svc    *media.Service
	logger *slog.Logger
}

// NewMediaHandler accepts a nil service, in which case upload links are
// reported as unavailable.
func NewMediaHandler(svc *media.Service, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{svc: svc, logger: logger}
}

// UploadLinks issues a presigned upload/read pair for one new object in the
// active space. The client uploads directly to storage with the returned URL.
func (h *MediaHandler) UploadLinks(w http.ResponseWriter, r *http.Request) {
	if h.svc == nil {
		writeError(w, http.StatusServiceUnavailable, "media storage is not configured")
		return
	}

	ac, _ := auth.FromContext(r.Context())

	var req struct {
		FileName    string `json:"file_name"`
		ContentType string `json:"content_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	fileName := clampString(req.FileName, 200)
	if fileName == "" {
		writeError(w, http.StatusBadRequest, "file_name is required")
		return
	}
	contentType := clampString(req.ContentType, 120)

	if err := h.svc.EnsureBucket(r.Context()); err != nil {
		h.logger.Error("ensure bucket", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to prepare storage")
		return
	}

	links, err := h.svc.BuildUploadLinks(r.Context(), ac.SpaceID, fileName, contentType)
	if err != nil {
		h.logger.Error("presign upload", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create upload link")
		return
	}

	writeJSON(w, http.StatusOK, links)
}
