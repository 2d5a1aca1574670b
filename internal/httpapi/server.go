package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tuitter/internal/chat"
	"tuitter/internal/feed"
	"tuitter/internal/notif"
	"tuitter/internal/settings"
	"tuitter/internal/user"
	"tuitter/internal/webhook"
)

type Server struct {
	users     *user.UserService
	feed      feed.FeedUsecase
	chats     *chat.ChatService
	notifs    *notif.NotifService
	settings  *settings.SettingsService
	directory chat.UserDirectory
	webhook   *webhook.Handler

	db      *gorm.DB
	log     *logrus.Logger
	metrics *Metrics
}

func NewServer(
	users *user.UserService,
	feedSvc feed.FeedUsecase,
	chats *chat.ChatService,
	notifs *notif.NotifService,
	settingsSvc *settings.SettingsService,
	directory chat.UserDirectory,
	webhookHandler *webhook.Handler,
	db *gorm.DB,
	log *logrus.Logger,
	metrics *Metrics,
) *Server {
	return &Server{
		users:     users,
		feed:      feedSvc,
		chats:     chats,
		notifs:    notifs,
		settings:  settingsSvc,
		directory: directory,
		webhook:   webhookHandler,
		db:        db,
		log:       log,
		metrics:   metrics,
	}
}

// Router wires every endpoint of the frontend contract.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.requestLogger)

	// health accepts any verb so load balancer probes never 405
	router.HandleFunc("/health", s.handleHealth)
	router.HandleFunc("/diag/db", s.handleDiagDB).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	router.HandleFunc("/me", s.handleMe).Methods("GET")
	router.HandleFunc("/users/{handle}/follow", s.handleToggleFollow).Methods("POST")

	router.HandleFunc("/timeline", s.handleTimeline).Methods("GET")
	router.HandleFunc("/discover", s.handleDiscover).Methods("GET")
	router.HandleFunc("/posts", s.handleListPosts).Methods("GET")
	router.HandleFunc("/posts", s.handleCreatePost).Methods("POST")
	router.HandleFunc("/posts/{id}", s.handleGetPost).Methods("GET")
	router.HandleFunc("/posts/{id}", s.handleDeletePost).Methods("DELETE")
	router.HandleFunc("/posts/{id}/like", s.handleLike).Methods("POST")
	router.HandleFunc("/posts/{id}/repost", s.handleRepost).Methods("POST")
	router.HandleFunc("/posts/{id}/comments", s.handleListComments).Methods("GET")
	router.HandleFunc("/posts/{id}/comments", s.handleAddComment).Methods("POST")

	router.HandleFunc("/conversations", s.handleListConversations).Methods("GET")
	router.HandleFunc("/conversations/{id}/messages", s.handleListMessages).Methods("GET")
	router.HandleFunc("/conversations/{id}/messages", s.handleSendMessage).Methods("POST")
	router.HandleFunc("/conversations/{id}/read", s.handleMarkConversationRead).Methods("POST")
	router.HandleFunc("/dm", s.handleOpenDM).Methods("POST")

	router.HandleFunc("/notifications", s.handleListNotifications).Methods("GET")
	router.HandleFunc("/notifications/{id}/read", s.handleMarkNotificationRead).Methods("POST")

	router.HandleFunc("/settings", s.handleGetSettings).Methods("GET")
	router.HandleFunc("/settings", s.handlePutSettings).Methods("PUT")

	router.Handle("/webhook/github", s.webhook).Methods("POST")

	return router
}

// Handler returns the fully wired http.Handler.
func (s *Server) Handler() http.Handler {
	return s.Router()
}
