package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"tuitter/internal/user"
)

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	profile, err := s.users.GetProfile(r.Context(), handleParam(r))
	if err != nil {
		if errors.Is(err, user.ErrEmptyHandle) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to resolve user")
		return
	}
	writeJSON(w, http.StatusOK, newUserOut(profile))
}

type followRequest struct {
	Follower string `json:"follower"`
}

// handleToggleFollow flips the follow edge from the body's follower to
// the path's handle and reports the resulting state.
func (s *Server) handleToggleFollow(w http.ResponseWriter, r *http.Request) {
	var req followRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Follower == "" {
		writeError(w, http.StatusBadRequest, "follower is required")
		return
	}

	follower, err := s.users.Resolve(r.Context(), req.Follower)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to resolve follower")
		return
	}
	followed, err := s.users.Resolve(r.Context(), mux.Vars(r)["handle"])
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to resolve user")
		return
	}

	following, err := s.users.ToggleFollow(r.Context(), follower, followed)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to toggle follow")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"following": following})
}
