package di

import (
	"github.com/prometheus/client_golang/prometheus"

	"tuitter/internal/chat"
	"tuitter/internal/config"
	"tuitter/internal/user"
)

func provideWebhookConfig(cnf *config.Config) config.WebhookConfig {
	return cnf.Webhook
}

func provideUserDirectory(repo user.UserRepository) chat.UserDirectory {
	return repo
}

func provideRegisterer() prometheus.Registerer {
	return prometheus.DefaultRegisterer
}
