package handler

import (
	"log/slog"
	"net/http"
	"time"

	"nestpoint/internal/auth"
	"nestpoint/internal/directory"
	"nestpoint/internal/model"
	"nestpoint/internal/store"
)

type SummaryHandler struct {
	dir        *directory.Directory
	calendar   *store.CalendarStore
	workOrders *store.WorkOrderStore
	grocery    *store.GroceryStore
	posts      *store.PostStore
	logger     *slog.Logger
}

func NewSummaryHandler(dir *directory.Directory, cs *store.CalendarStore, ws *store.WorkOrderStore, gs *store.GroceryStore, ps *store.PostStore, logger *slog.Logger) *SummaryHandler {
	return &SummaryHandler{dir: dir, calendar: cs, workOrders: ws, grocery: gs, posts: ps, logger: logger}
}

// Dashboard aggregates simple counts across the active space's collections.
// Counts come from partition scans, which is fine at household scale.
func (h *SummaryHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	spaceID := auth.SpaceID(r.Context())

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)
	weekOut := today.AddDate(0, 0, 7)

	events, err := h.calendar.List(spaceID, today, weekOut)
	if err != nil {
		h.logger.Error("summary calendar", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}
	calendarToday := 0
	for _, e := range events {
		if !e.Date.Before(today) && e.Date.Before(tomorrow) {
			calendarToday++
		}
	}

	orders, err := h.workOrders.List(spaceID, "")
	if err != nil {
		h.logger.Error("summary work orders", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}
	workOpen, workDueSoon := 0, 0
	for _, o := range orders {
		if o.Status == model.WorkOrderDone {
			continue
		}
		workOpen++
		if o.DueDate != nil && !o.DueDate.Before(today) && o.DueDate.Before(weekOut) {
			workDueSoon++
		}
	}

	items, err := h.grocery.List(spaceID, false)
	if err != nil {
		h.logger.Error("summary grocery", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}

	posts, err := h.posts.List(spaceID)
	if err != nil {
		h.logger.Error("summary posts", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}
	monthAgo := now.AddDate(0, 0, -30)
	postsMonth := 0
	for _, p := range posts {
		if p.CreatedAt.After(monthAgo) {
			postsMonth++
		}
	}

	members, err := h.dir.ListMembers(spaceID)
	if err != nil {
		h.logger.Error("summary members", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{
		"calendar_today": calendarToday,
		"calendar_week":  len(events),
		"work_open":      workOpen,
		"work_due_soon":  workDueSoon,
		"grocery_open":   len(items),
		"posts_month":    postsMonth,
		"members":        len(members),
	})
}
