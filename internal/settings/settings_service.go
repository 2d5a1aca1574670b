package settings

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"tuitter/internal/dbsql"
)

// Update carries the toggle fields the settings endpoint may change;
// nil means leave as is. Profile fields (display name, bio, ascii pic)
// live on the user row and are handled by the user service.
type Update struct {
	EmailNotifications *bool
	ShowOnlineStatus   *bool
	PrivateAccount     *bool
	GithubConnected    *bool
	GitlabConnected    *bool
	GoogleConnected    *bool
	DiscordConnected   *bool
}

type SettingsService struct {
	repo SettingsRepository
}

func NewSettingsService(repo SettingsRepository) *SettingsService {
	return &SettingsService{repo: repo}
}

// Get returns the user's settings row, creating it with defaults on
// first read.
func (s *SettingsService) Get(ctx context.Context, userID string) (*dbsql.UserSettings, error) {
	row, err := s.repo.GetByUserID(ctx, userID)
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	row = dbsql.DefaultSettings(userID)
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}

// Apply upserts the settings row and applies the partial update.
func (s *SettingsService) Apply(ctx context.Context, userID string, update Update) (*dbsql.UserSettings, error) {
	row, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.EmailNotifications != nil {
		row.EmailNotifications = *update.EmailNotifications
	}
	if update.ShowOnlineStatus != nil {
		row.ShowOnlineStatus = *update.ShowOnlineStatus
	}
	if update.PrivateAccount != nil {
		row.PrivateAccount = *update.PrivateAccount
	}
	if update.GithubConnected != nil {
		row.GithubConnected = *update.GithubConnected
	}
	if update.GitlabConnected != nil {
		row.GitlabConnected = *update.GitlabConnected
	}
	if update.GoogleConnected != nil {
		row.GoogleConnected = *update.GoogleConnected
	}
	if update.DiscordConnected != nil {
		row.DiscordConnected = *update.DiscordConnected
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}
