package dbsql

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification types stored in notifications.type.
const (
	NotifMention = "mention"
	NotifLike    = "like"
	NotifRepost  = "repost"
	NotifFollow  = "follow"
	NotifReply   = "reply"
	NotifComment = "comment"
)

type Notification struct {
	ID            string    `gorm:"primaryKey;column:id;size:36" json:"id"`
	UserID        string    `gorm:"column:user_id;size:36;not null;index;index:idx_notifications_user_time,priority:1" json:"user_id"`
	Type          string    `gorm:"column:type;size:20;not null" json:"type"`
	ActorID       string    `gorm:"column:actor_id;size:36;not null;index" json:"actor_id"`
	Content       string    `gorm:"column:content;type:text" json:"content"`
	RelatedPostID *string   `gorm:"column:related_post_id;size:36" json:"related_post_id,omitempty"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime;index:idx_notifications_user_time,priority:2" json:"created_at"`
	Read          bool      `gorm:"column:read;default:false" json:"read"`
}

func (Notification) TableName() string { return "notifications" }

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
