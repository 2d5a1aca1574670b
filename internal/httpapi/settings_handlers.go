package httpapi

import (
	"encoding/json"
	"net/http"

	"tuitter/internal/settings"
	"tuitter/internal/user"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.Resolve(r.Context(), handleParam(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to resolve user")
		return
	}

	row, err := s.settings.Get(r.Context(), u.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, newSettingsOut(u, row))
}

// handlePutSettings applies toggle updates to the settings row and
// profile updates (display name, bio, ascii pic) to the user row.
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	u, err := s.users.Resolve(r.Context(), handleParam(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to resolve user")
		return
	}

	if req.DisplayName != nil || req.Bio != nil || req.AsciiPic != nil {
		update := user.ProfileUpdate{
			DisplayName: req.DisplayName,
			Bio:         req.Bio,
			AsciiPic:    req.AsciiPic,
		}
		if err := s.users.UpdateProfile(r.Context(), u, update); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to update profile")
			return
		}
	}

	row, err := s.settings.Apply(r.Context(), u.ID, settings.Update{
		EmailNotifications: req.EmailNotifications,
		ShowOnlineStatus:   req.ShowOnlineStatus,
		PrivateAccount:     req.PrivateAccount,
		GithubConnected:    req.GithubConnected,
		GitlabConnected:    req.GitlabConnected,
		GoogleConnected:    req.GoogleConnected,
		DiscordConnected:   req.DiscordConnected,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update settings")
		return
	}
	writeJSON(w, http.StatusOK, newSettingsOut(u, row))
}
