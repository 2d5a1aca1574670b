package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	viewer, err := s.users.Resolve(r.Context(), handleParam(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to resolve user")
		return
	}

	unreadOnly, _ := strconv.ParseBool(r.URL.Query().Get("unread"))
	rows, err := s.notifs.List(r.Context(), viewer.ID, unreadOnly)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}

	out := make([]NotificationOut, 0, len(rows))
	for i := range rows {
		out = append(out, s.newNotificationOut(r.Context(), &rows[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	ok, err := s.notifs.MarkRead(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to mark notification read")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Notification not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
