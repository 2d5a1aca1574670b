package dbsql

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Interaction types stored in post_interactions.type.
const (
	InteractionLike   = "like"
	InteractionRepost = "repost"
)

// AttachmentsMaxLen bounds the serialized attachments JSON on a post.
const AttachmentsMaxLen = 16384

// Post is a top-level post or, when ParentID is set, a reply. The three
// counters are denormalized caches of the interaction and comment tables
// and are maintained by the mutating operations.
type Post struct {
	ID            string    `gorm:"primaryKey;column:id;size:36" json:"id"`
	AuthorID      string    `gorm:"column:author_id;size:36;not null;index;index:idx_posts_author_time,priority:1" json:"author_id"`
	Content       string    `gorm:"column:content;type:text;not null" json:"content"`
	ParentID      *string   `gorm:"column:parent_id;size:36;index" json:"parent_id,omitempty"`
	Attachments   string    `gorm:"column:attachments;type:text" json:"-"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime;index;index:idx_posts_author_time,priority:2" json:"created_at"`
	LikesCount    int       `gorm:"column:likes_count;default:0" json:"likes_count"`
	RepostsCount  int       `gorm:"column:reposts_count;default:0" json:"reposts_count"`
	CommentsCount int       `gorm:"column:comments_count;default:0" json:"comments_count"`
}

func (Post) TableName() string { return "posts" }

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// PostInteraction records a like or repost. The unique index keeps a user
// from holding more than one live interaction of a type on a post.
type PostInteraction struct {
	ID        string    `gorm:"primaryKey;column:id;size:36" json:"id"`
	PostID    string    `gorm:"column:post_id;size:36;not null;index;uniqueIndex:uix_post_user_interaction,priority:1" json:"post_id"`
	UserID    string    `gorm:"column:user_id;size:36;not null;index;uniqueIndex:uix_post_user_interaction,priority:2" json:"user_id"`
	Type      string    `gorm:"column:type;size:20;not null;uniqueIndex:uix_post_user_interaction,priority:3" json:"type"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (PostInteraction) TableName() string { return "post_interactions" }

func (i *PostInteraction) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

type Comment struct {
	ID        string    `gorm:"primaryKey;column:id;size:36" json:"id"`
	PostID    string    `gorm:"column:post_id;size:36;not null;index" json:"post_id"`
	UserID    string    `gorm:"column:user_id;size:36;not null" json:"user_id"`
	Username  string    `gorm:"column:username;size:32;not null" json:"username"`
	Text      string    `gorm:"column:text;type:text;not null" json:"text"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Comment) TableName() string { return "comments" }

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
