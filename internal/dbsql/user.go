package dbsql

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// Column limits enforced by the schema. Longer values are truncated
	// by the identity layer rather than rejected.
	HandleMaxLen      = 32
	DisplayNameMaxLen = 100
)

type User struct {
	ID          string    `gorm:"primaryKey;column:id;size:36" json:"id"`
	Handle      string    `gorm:"column:handle;uniqueIndex;size:32;not null" json:"handle"`
	DisplayName string    `gorm:"column:display_name;size:100;not null" json:"display_name"`
	Bio         string    `gorm:"column:bio;type:text" json:"bio"`
	AsciiPic    string    `gorm:"column:ascii_pic;type:text" json:"ascii_pic"`
	Email       *string   `gorm:"column:email;size:100;uniqueIndex" json:"email,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	LastSeenAt  time.Time `gorm:"column:last_seen_at;autoCreateTime" json:"last_seen_at"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Follow is a directed edge between two users. One row per ordered pair;
// self-follows are a policy question left to callers, not the schema.
type Follow struct {
	FollowerID string    `gorm:"primaryKey;column:follower_id;size:36" json:"follower_id"`
	FollowedID string    `gorm:"primaryKey;column:followed_id;size:36;index:idx_follows_followed" json:"followed_id"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Follow) TableName() string { return "follows" }
