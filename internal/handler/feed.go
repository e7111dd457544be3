package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"nestpoint/internal/auth"
	"nestpoint/internal/model"
	"nestpoint/internal/store"
	"nestpoint/internal/table"
)

type FeedHandler struct {
	store  *store.PostStore
	logger *slog.Logger
}

func NewFeedHandler(ps *store.PostStore, logger *slog.Logger) *FeedHandler {
	return &FeedHandler{store: ps, logger: logger}
}

// List returns the full feed for the active space, newest first.
func (h *FeedHandler) List(w http.ResponseWriter, r *http.Request) {
	spaceID := auth.SpaceID(r.Context())

	posts, err := h.store.List(spaceID)
	if err != nil {
		h.logger.Error("list posts", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list posts")
		return
	}
	if posts == nil {
		posts = []model.Post{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": posts})
}

func (h *FeedHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req struct {
		Text  string       `json:"text"`
		Media *model.Media `json:"media"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	text := clampString(req.Text, 6000)
	if text == "" && req.Media == nil {
		writeError(w, http.StatusBadRequest, "post must include text or media")
		return
	}

	post, err := h.store.Create(ac.SpaceID, text, req.Media, ac.Principal.UserID, ac.Principal.Name)
	if err != nil {
		h.logger.Error("create post", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create post")
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

func (h *FeedHandler) Delete(w http.ResponseWriter, r *http.Request) {
	spaceID := auth.SpaceID(r.Context())
	id := r.PathValue("id")

	err := h.store.Delete(spaceID, id)
	if errors.Is(err, table.ErrNotFound) {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	if err != nil {
		h.logger.Error("delete post", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete post")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
