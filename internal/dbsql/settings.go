package dbsql

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserSettings is the persisted per-user configuration row, created lazily
// on first read or write.
type UserSettings struct {
	ID                 string    `gorm:"primaryKey;column:id;size:36" json:"id"`
	UserID             string    `gorm:"column:user_id;size:36;not null;uniqueIndex" json:"user_id"`
	EmailNotifications bool      `gorm:"column:email_notifications;default:true" json:"email_notifications"`
	ShowOnlineStatus   bool      `gorm:"column:show_online_status;default:true" json:"show_online_status"`
	PrivateAccount     bool      `gorm:"column:private_account;default:false" json:"private_account"`
	GithubConnected    bool      `gorm:"column:github_connected;default:false" json:"github_connected"`
	GitlabConnected    bool      `gorm:"column:gitlab_connected;default:false" json:"gitlab_connected"`
	GoogleConnected    bool      `gorm:"column:google_connected;default:false" json:"google_connected"`
	DiscordConnected   bool      `gorm:"column:discord_connected;default:false" json:"discord_connected"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (UserSettings) TableName() string { return "user_settings" }

func (s *UserSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// DefaultSettings returns the settings row a user gets before ever
// touching the settings endpoint.
func DefaultSettings(userID string) *UserSettings {
	return &UserSettings{
		UserID:             userID,
		EmailNotifications: true,
		ShowOnlineStatus:   true,
	}
}
