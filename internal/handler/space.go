package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"nestpoint/internal/auth"
	"nestpoint/internal/directory"
)

type SpaceHandler struct {
	dir       *directory.Directory
	adminCode string
	logger    *slog.Logger
}

func NewSpaceHandler(dir *directory.Directory, adminCode string, logger *slog.Logger) *SpaceHandler {
	return &SpaceHandler{dir: dir, adminCode: adminCode, logger: logger}
}

type spaceSummary struct {
	SpaceID  string    `json:"space_id"`
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// List returns the caller's spaces, most recently joined first.
func (h *SpaceHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	memberships, err := h.dir.ListSpacesForUser(userID)
	if err != nil {
		h.logger.Error("list spaces", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list spaces")
		return
	}

	spaces := make([]spaceSummary, 0, len(memberships))
	for _, m := range memberships {
		name := m.SpaceName
		if name == "" {
			// Older membership rows may predate denormalized names.
			if space, err := h.dir.GetSpace(m.SpaceID); err == nil && space != nil {
				name = space.Name
			}
		}
		spaces = append(spaces, spaceSummary{
			SpaceID:  m.SpaceID,
			Name:     name,
			Role:     m.Role,
			JoinedAt: m.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"spaces": spaces})
}

// Create provisions a new space. Gated by the admin bootstrap code; the
// creator becomes the Owner and the new space becomes their active space.
func (h *SpaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req struct {
		Name      string `json:"name"`
		AdminCode string `json:"admin_code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	name := clampString(req.Name, 120)
	if len(name) < 2 {
		writeError(w, http.StatusBadRequest, "space name is required")
		return
	}
	if clampString(req.AdminCode, 80) != h.adminCode {
		writeError(w, http.StatusForbidden, "invalid admin code")
		return
	}

	space, err := h.dir.CreateSpace(name, ac.Principal)
	if err != nil {
		h.logger.Error("create space", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create space")
		return
	}

	if err := h.dir.SetActiveSpace(ac.Principal.UserID, space.ID); err != nil {
		h.logger.Error("set active space", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to select space")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"space": space})
}

// Select switches the caller's active space after confirming membership.
func (h *SpaceHandler) Select(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req struct {
		SpaceID string `json:"space_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	spaceID := clampString(req.SpaceID, 80)
	if spaceID == "" {
		writeError(w, http.StatusBadRequest, "space_id is required")
		return
	}

	membership, err := h.dir.GetMembership(userID, spaceID)
	if err != nil {
		h.logger.Error("get membership", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load membership")
		return
	}
	if membership == nil {
		writeError(w, http.StatusForbidden, "you are not a member of that space")
		return
	}

	if err := h.dir.SetActiveSpace(userID, spaceID); err != nil {
		h.logger.Error("set active space", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to select space")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Members lists the active space's members together with its live invite.
func (h *SpaceHandler) Members(w http.ResponseWriter, r *http.Request) {
	spaceID := auth.SpaceID(r.Context())

	members, err := h.dir.ListMembers(spaceID)
	if err != nil {
		h.logger.Error("list members", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list members")
		return
	}

	space, err := h.dir.GetSpace(spaceID)
	if err != nil {
		h.logger.Error("get space", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load space")
		return
	}

	var invite map[string]any
	if space != nil && space.InviteCode != "" {
		invite = map[string]any{
			"code":       space.InviteCode,
			"created_at": space.InviteCreatedAt,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"members": members, "invite": invite})
}

// Invite regenerates the active space's invite code. Owner or Admin only.
func (h *SpaceHandler) Invite(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	if !auth.IsAdmin(r.Context()) {
		writeError(w, http.StatusForbidden, "admin only")
		return
	}

	invite, err := h.dir.RegenerateInvite(ac.SpaceID, ac.Principal.UserID)
	if err != nil {
		h.logger.Error("regenerate invite", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to regenerate invite")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"invite": invite})
}

// Redeem joins the caller to a space by invite code and selects it as their
// active space.
func (h *SpaceHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req struct {
		SpaceID string `json:"space_id"`
		Code    string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	spaceID := clampString(req.SpaceID, 80)
	code := strings.ToUpper(clampString(req.Code, 20))
	if spaceID == "" || code == "" {
		writeError(w, http.StatusBadRequest, "space_id and code are required")
		return
	}

	err := h.dir.RedeemInvite(spaceID, code, ac.Principal)
	if errors.Is(err, directory.ErrSpaceNotFound) {
		writeError(w, http.StatusNotFound, "space not found")
		return
	}
	if errors.Is(err, directory.ErrInvalidInvite) {
		writeError(w, http.StatusForbidden, "invalid invite code")
		return
	}
	if err != nil {
		h.logger.Error("redeem invite", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to redeem invite")
		return
	}

	if err := h.dir.SetActiveSpace(ac.Principal.UserID, spaceID); err != nil {
		h.logger.Error("set active space", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to select space")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
