//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tuitter/internal/chat"
	"tuitter/internal/config"
	"tuitter/internal/feed"
	"tuitter/internal/httpapi"
	"tuitter/internal/notif"
	"tuitter/internal/settings"
	"tuitter/internal/user"
	"tuitter/internal/webhook"
)

// This is just a declaration — wire will generate the real body
func InitServer(db *gorm.DB, cnf *config.Config, log *logrus.Logger) *httpapi.Server {
	wire.Build(
		notif.NewNotificationRepository,
		notif.NewNotifService,
		wire.Bind(new(notif.Emitter), new(*notif.NotifService)),
		user.NewUserRepository,
		user.NewFollowRepository,
		user.NewUserService,
		feed.NewFeedRepository,
		wire.Bind(new(feed.Posts), new(*feed.FeedRepository)),
		wire.Bind(new(feed.Interactions), new(*feed.FeedRepository)),
		wire.Bind(new(feed.Comments), new(*feed.FeedRepository)),
		feed.NewFeedService,
		wire.Bind(new(feed.FeedUsecase), new(*feed.FeedService)),
		chat.NewChatRepository,
		provideUserDirectory,
		chat.NewChatService,
		settings.NewSettingsRepository,
		settings.NewSettingsService,
		provideWebhookConfig,
		webhook.NewHandler,
		provideRegisterer,
		httpapi.NewMetrics,
		httpapi.NewServer,
	)
	return &httpapi.Server{} // dummy for compilation
}
