package middleware

import (
	"encoding/json"
	"net/http"

	"nestpoint/internal/auth"
	"nestpoint/internal/directory"
	"nestpoint/internal/principal"
)

// RequireAuth decodes the identity provider's principal header and populates
// the request context. Requests without a decodable principal get 401.
// Handlers behind this middleware never see the raw header.
func RequireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := principal.Decode(r.Header.Get(principal.Header))
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			ctx := auth.WithContext(r.Context(), auth.Context{Principal: p})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSpace resolves the caller's active space and confirms membership,
// then stamps the space id and role onto the auth context. No active space is
// a 400 (the client should prompt for selection); an active space the caller
// does not belong to is a 403.
func RequireSpace(dir *directory.Directory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac, ok := auth.FromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			prefs, err := dir.GetPrefs(ac.Principal.UserID)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "failed to load preferences")
				return
			}
			if prefs == nil || prefs.ActiveSpaceID == "" {
				writeError(w, http.StatusBadRequest, "no active space selected")
				return
			}

			membership, err := dir.GetMembership(ac.Principal.UserID, prefs.ActiveSpaceID)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "failed to load membership")
				return
			}
			if membership == nil {
				writeError(w, http.StatusForbidden, "you are not a member of this space")
				return
			}

			ac.SpaceID = prefs.ActiveSpaceID
			ac.Role = membership.Role
			ctx := auth.WithContext(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
