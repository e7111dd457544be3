package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"nestpoint/internal/auth"
	"nestpoint/internal/model"
	"nestpoint/internal/store"
	"nestpoint/internal/table"
)

type WorkOrderHandler struct {
	store  *store.WorkOrderStore
	logger *slog.Logger
}

func NewWorkOrderHandler(ws *store.WorkOrderStore, logger *slog.Logger) *WorkOrderHandler {
	return &WorkOrderHandler{store: ws, logger: logger}
}

// List returns the active space's work orders, newest first, optionally
// filtered by ?status=.
func (h *WorkOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	spaceID := auth.SpaceID(r.Context())
	status := r.URL.Query().Get("status")

	orders, err := h.store.List(spaceID, status)
	if err != nil {
		h.logger.Error("list work orders", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list work orders")
		return
	}
	if orders == nil {
		orders = []model.WorkOrder{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": orders})
}

func (h *WorkOrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Priority    string `json:"priority"`
		DueDate     string `json:"due_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	title := clampString(req.Title, 140)
	if len(title) < 2 {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	description := clampString(req.Description, 6000)
	priority := clampString(req.Priority, 20)
	if priority == "" {
		priority = "Medium"
	}

	var dueDate *time.Time
	if raw := clampString(req.DueDate, 40); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid due date")
			return
		}
		dueDate = &parsed
	}

	order, err := h.store.Create(ac.SpaceID, title, description, priority, dueDate, ac.Principal.UserID)
	if err != nil {
		h.logger.Error("create work order", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create work order")
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// UpdateStatus patches a work order's status. Last write wins.
func (h *WorkOrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	spaceID := auth.SpaceID(r.Context())
	id := r.PathValue("id")

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	status := clampString(req.Status, 40)
	if status == "" {
		writeError(w, http.StatusBadRequest, "status is required")
		return
	}

	order, err := h.store.UpdateStatus(spaceID, id, status)
	if err != nil {
		h.logger.Error("update work order", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update work order")
		return
	}
	if order == nil {
		writeError(w, http.StatusNotFound, "work order not found")
		return
	}

	writeJSON(w, http.StatusOK, order)
}

func (h *WorkOrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	spaceID := auth.SpaceID(r.Context())
	id := r.PathValue("id")

	err := h.store.Delete(spaceID, id)
	if errors.Is(err, table.ErrNotFound) {
		writeError(w, http.StatusNotFound, "work order not found")
		return
	}
	if err != nil {
		h.logger.Error("delete work order", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete work order")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
