package handler

import (
	"log/slog"
	"net/http"

	"nestpoint/internal/auth"
	"nestpoint/internal/directory"
)

type AccountHandler struct {
	dir    *directory.Directory
	logger *slog.Logger
}

func NewAccountHandler(dir *directory.Directory, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{dir: dir, logger: logger}
}

// Me reflects the caller's principal enriched with their active space, if
// one is selected and still valid.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	p := ac.Principal

	resp := map[string]any{
		"is_authenticated":  true,
		"provider":          p.Provider,
		"user_id":           p.UserID,
		"user_details":      p.Name,
		"active_space_id":   nil,
		"active_space_name": nil,
		"active_role":       nil,
	}

	prefs, err := h.dir.GetPrefs(p.UserID)
	if err != nil {
		h.logger.Error("load prefs", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load preferences")
		return
	}
	if prefs != nil && prefs.ActiveSpaceID != "" {
		resp["active_space_id"] = prefs.ActiveSpaceID

		space, err := h.dir.GetSpace(prefs.ActiveSpaceID)
		if err != nil {
			h.logger.Error("load space", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to load space")
			return
		}
		if space != nil {
			resp["active_space_name"] = space.Name
		}

		membership, err := h.dir.GetMembership(p.UserID, prefs.ActiveSpaceID)
		if err != nil {
			h.logger.Error("load membership", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to load membership")
			return
		}
		if membership != nil {
			resp["active_role"] = membership.Role
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
