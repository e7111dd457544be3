package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"nestpoint/internal/auth"
	"nestpoint/internal/model"
	"nestpoint/internal/store"
	"nestpoint/internal/table"
)

type CalendarHandler struct {
	store  *store.CalendarStore
	logger *slog.Logger
}

func NewCalendarHandler(cs *store.CalendarStore, logger *slog.Logger) *CalendarHandler {
	return &CalendarHandler{store: cs, logger: logger}
}

// List returns the active space's events in a date window. The window starts
// today unless ?start= is given and spans ?days= days, clamped to 1-60 with a
// default of 14.
func (h *CalendarHandler) List(w http.ResponseWriter, r *http.Request) {
	spaceID := auth.SpaceID(r.Context())

	start := time.Now().UTC()
	if s := r.URL.Query().Get("start"); s != "" {
		parsed, err := parseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid start date")
			return
		}
		start = parsed
	}

	days := 14
	if d := r.URL.Query().Get("days"); d != "" {
		if n, err := strconv.Atoi(d); err == nil {
			days = n
		}
	}
	if days < 1 {
		days = 1
	}
	if days > 60 {
		days = 60
	}
	end := start.AddDate(0, 0, days)

	events, err := h.store.List(spaceID, start, end)
	if err != nil {
		h.logger.Error("list events", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	if events == nil {
		events = []model.CalendarEvent{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": events})
}

func (h *CalendarHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req struct {
		Title    string `json:"title"`
		Date     string `json:"date"`
		Category string `json:"category"`
		Notes    string `json:"notes"`
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
	if req.Date == "" {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}
	date, err := parseDate(clampString(req.Date, 40))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	category := clampString(req.Category, 60)
	if category == "" {
		category = "Household"
	}
	notes := clampString(req.Notes, 4000)

	event, err := h.store.Create(ac.SpaceID, title, date, category, notes, ac.Principal.UserID)
	if err != nil {
		h.logger.Error("create event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create event")
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

func (h *CalendarHandler) Delete(w http.ResponseWriter, r *http.Request) {
	spaceID := auth.SpaceID(r.Context())
	id := r.PathValue("id")

	err := h.store.Delete(spaceID, id)
	if errors.Is(err, table.ErrNotFound) {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	if err != nil {
		h.logger.Error("delete event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete event")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
