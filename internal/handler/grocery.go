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

type GroceryHandler struct {
	store  *store.GroceryStore
	logger *slog.Logger
}

func NewGroceryHandler(gs *store.GroceryStore, logger *slog.Logger) *GroceryHandler {
	return &GroceryHandler{store: gs, logger: logger}
}

// List returns the active space's grocery items, unpurchased first. Purchased
// items are included only with ?showDone=1.
func (h *GroceryHandler) List(w http.ResponseWriter, r *http.Request) {
	spaceID := auth.SpaceID(r.Context())
	showDone := r.URL.Query().Get("showDone") == "1"

	items, err := h.store.List(spaceID, showDone)
	if err != nil {
		h.logger.Error("list grocery items", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.GroceryItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *GroceryHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req struct {
		Text     string `json:"text"`
		Category string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	text := clampString(req.Text, 200)
	if text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	category := clampString(req.Category, 30)
	if category == "" {
		category = "Other"
	}

	item, err := h.store.Create(ac.SpaceID, text, category, ac.Principal.UserID)
	if err != nil {
		h.logger.Error("create grocery item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// SetPurchased patches the purchased flag on an item.
func (h *GroceryHandler) SetPurchased(w http.ResponseWriter, r *http.Request) {
	spaceID := auth.SpaceID(r.Context())
	id := r.PathValue("id")

	var req struct {
		Purchased bool `json:"purchased"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	item, err := h.store.SetPurchased(spaceID, id, req.Purchased)
	if err != nil {
		h.logger.Error("update grocery item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update item")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	writeJSON(w, http.StatusOK, item)
}

func (h *GroceryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	spaceID := auth.SpaceID(r.Context())
	id := r.PathValue("id")

	err := h.store.Delete(spaceID, id)
	if errors.Is(err, table.ErrNotFound) {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	if err != nil {
		h.logger.Error("delete grocery item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
