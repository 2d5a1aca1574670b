package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"tuitter/internal/dbsql"
)

// handleHealth reports liveness. A database failure degrades the status
// blob but never turns the probe into a hard error.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":  "ok",
		"service": "tuitter-backend",
		"time":    time.Now().UTC().Format(time.RFC3339),
	}

	if dbTest, _ := strconv.ParseBool(r.URL.Query().Get("db_test")); dbTest {
		sqlDB, err := s.db.DB()
		if err == nil {
			err = sqlDB.PingContext(r.Context())
		}
		if err != nil {
			response["status"] = "degraded"
			response["database"] = "disconnected"
			if errInfo, _ := strconv.ParseBool(r.URL.Query().Get("error_info")); errInfo {
				response["db_error"] = err.Error()
			}
		} else {
			response["database"] = "connected"
		}
	}

	writeJSON(w, http.StatusOK, response)
}

// handleDiagDB reports per-table row counts for troubleshooting.
func (s *Server) handleDiagDB(w http.ResponseWriter, r *http.Request) {
	diagnostics := map[string]any{
		"status":    "operational",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	counts := map[string]any{}
	tables := map[string]any{
		"users":                     &dbsql.User{},
		"posts":                     &dbsql.Post{},
		"post_interactions":         &dbsql.PostInteraction{},
		"comments":                  &dbsql.Comment{},
		"follows":                   &dbsql.Follow{},
		"conversations":             &dbsql.Conversation{},
		"conversation_participants": &dbsql.ConversationParticipant{},
		"messages":                  &dbsql.Message{},
		"notifications":             &dbsql.Notification{},
		"user_settings":             &dbsql.UserSettings{},
	}
	for name, model := range tables {
		var count int64
		if err := s.db.WithContext(r.Context()).Model(model).Count(&count).Error; err != nil {
			counts[name] = "error: " + err.Error()
			diagnostics["status"] = "error"
			continue
		}
		counts[name] = count
	}
	diagnostics["table_counts"] = counts

	writeJSON(w, http.StatusOK, diagnostics)
}
