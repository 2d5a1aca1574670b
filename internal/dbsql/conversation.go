package dbsql

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation groups messages between participants. Direct two-party
// conversations carry a canonical PairKey ("minID:maxID") with a unique
// index, so lookup is a single indexed read instead of a participant scan.
// Group conversations leave PairKey null.
type Conversation struct {
	ID        string    `gorm:"primaryKey;column:id;size:36" json:"id"`
	PairKey   *string   `gorm:"column:pair_key;size:80;uniqueIndex" json:"-"`
	Title     *string   `gorm:"column:title;size:100" json:"title,omitempty"`
	IsGroup   *bool     `gorm:"column:is_group" json:"is_group,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Conversation) TableName() string { return "conversations" }

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// DirectPairKey builds the canonical key for a two-party conversation.
// Symmetric in its arguments.
func DirectPairKey(userA, userB string) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	return userA + ":" + userB
}

type ConversationParticipant struct {
	ConversationID string     `gorm:"primaryKey;column:conversation_id;size:36" json:"conversation_id"`
	UserID         string     `gorm:"primaryKey;column:user_id;size:36;index:idx_cp_user" json:"user_id"`
	LastReadAt     *time.Time `gorm:"column:last_read_at" json:"last_read_at,omitempty"`
}

func (ConversationParticipant) TableName() string { return "conversation_participants" }

type Message struct {
	ID             string    `gorm:"primaryKey;column:id;size:36" json:"id"`
	ConversationID string    `gorm:"column:conversation_id;size:36;not null;index;index:idx_messages_conv_time,priority:1" json:"conversation_id"`
	SenderID       string    `gorm:"column:sender_id;size:36;not null;index" json:"sender_id"`
	Content        string    `gorm:"column:content;type:text;not null" json:"content"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime;index:idx_messages_conv_time,priority:2" json:"created_at"`
	IsRead         bool      `gorm:"column:is_read;default:false" json:"is_read"`
}

func (Message) TableName() string { return "messages" }

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
