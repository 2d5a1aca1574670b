package httpapi

import (
	"context"
	"time"

	"tuitter/internal/chat"
	"tuitter/internal/dbsql"
	"tuitter/internal/user"
)

// Response payloads are shaped for the existing frontend contract; field
// names must not change.

type UserOut struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
	Followers   int64  `json:"followers"`
	Following   int64  `json:"following"`
	PostsCount  int64  `json:"posts_count"`
	AsciiPic    string `json:"ascii_pic"`
}

func newUserOut(p *user.Profile) UserOut {
	return UserOut{
		Username:    p.User.Handle,
		DisplayName: p.User.DisplayName,
		Bio:         p.User.Bio,
		Followers:   p.Followers,
		Following:   p.Following,
		PostsCount:  p.PostsCount,
		AsciiPic:    p.User.AsciiPic,
	}
}

type PostOut struct {
	ID             string    `json:"id"`
	Author         string    `json:"author"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
	Likes          int       `json:"likes"`
	Reposts        int       `json:"reposts"`
	Comments       int       `json:"comments"`
	LikedByUser    bool      `json:"liked_by_user"`
	RepostedByUser bool      `json:"reposted_by_user"`
}

// newPostOut resolves the author handle; a missing author renders as
// "unknown" rather than failing the read.
func (s *Server) newPostOut(ctx context.Context, p *dbsql.Post, viewerID string) PostOut {
	out := PostOut{
		ID:        p.ID,
		Author:    s.handleFor(ctx, p.AuthorID),
		Content:   p.Content,
		Timestamp: p.CreatedAt,
		Likes:     p.LikesCount,
		Reposts:   p.RepostsCount,
		Comments:  p.CommentsCount,
	}
	if viewerID != "" {
		if liked, reposted, err := s.feed.ViewerState(ctx, p.ID, viewerID); err == nil {
			out.LikedByUser = liked
			out.RepostedByUser = reposted
		}
	}
	return out
}

type MessageOut struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	IsRead    bool      `json:"is_read"`
}

func (s *Server) newMessageOut(ctx context.Context, m *dbsql.Message) MessageOut {
	return MessageOut{
		ID:        m.ID,
		Sender:    s.handleFor(ctx, m.SenderID),
		Content:   m.Content,
		Timestamp: m.CreatedAt,
		IsRead:    m.IsRead,
	}
}

type ConversationOut struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	LastMessage *string    `json:"last_message"`
	Timestamp   *time.Time `json:"timestamp"`
	Unread      bool       `json:"unread"`
}

func newConversationOut(sum chat.Summary) ConversationOut {
	out := ConversationOut{
		ID:       sum.Conversation.ID,
		Username: sum.Counterpart,
		Unread:   sum.Unread,
	}
	if sum.LastMessage != nil {
		out.LastMessage = &sum.LastMessage.Content
		out.Timestamp = &sum.LastMessage.CreatedAt
	}
	return out
}

type NotificationOut struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Actor       string    `json:"actor"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
	Read        bool      `json:"read"`
	RelatedPost *string   `json:"related_post"`
}

func (s *Server) newNotificationOut(ctx context.Context, n *dbsql.Notification) NotificationOut {
	return NotificationOut{
		ID:          n.ID,
		Type:        n.Type,
		Actor:       s.handleFor(ctx, n.ActorID),
		Content:     n.Content,
		Timestamp:   n.CreatedAt,
		Read:        n.Read,
		RelatedPost: n.RelatedPostID,
	}
}

type CommentOut struct {
	User string `json:"user"`
	Text string `json:"text"`
}

type SettingsPayload struct {
	Username           string  `json:"username"`
	DisplayName        *string `json:"display_name,omitempty"`
	Bio                *string `json:"bio,omitempty"`
	AsciiPic           *string `json:"ascii_pic,omitempty"`
	EmailNotifications *bool   `json:"email_notifications,omitempty"`
	ShowOnlineStatus   *bool   `json:"show_online_status,omitempty"`
	PrivateAccount     *bool   `json:"private_account,omitempty"`
	GithubConnected    *bool   `json:"github_connected,omitempty"`
	GitlabConnected    *bool   `json:"gitlab_connected,omitempty"`
	GoogleConnected    *bool   `json:"google_connected,omitempty"`
	DiscordConnected   *bool   `json:"discord_connected,omitempty"`
}

type SettingsOut struct {
	Username           string `json:"username"`
	DisplayName        string `json:"display_name"`
	Bio                string `json:"bio"`
	EmailNotifications bool   `json:"email_notifications"`
	ShowOnlineStatus   bool   `json:"show_online_status"`
	PrivateAccount     bool   `json:"private_account"`
	AsciiPic           string `json:"ascii_pic"`
	GithubConnected    bool   `json:"github_connected"`
	GitlabConnected    bool   `json:"gitlab_connected"`
	GoogleConnected    bool   `json:"google_connected"`
	DiscordConnected   bool   `json:"discord_connected"`
}

func newSettingsOut(u *dbsql.User, row *dbsql.UserSettings) SettingsOut {
	return SettingsOut{
		Username:           u.Handle,
		DisplayName:        u.DisplayName,
		Bio:                u.Bio,
		AsciiPic:           u.AsciiPic,
		EmailNotifications: row.EmailNotifications,
		ShowOnlineStatus:   row.ShowOnlineStatus,
		PrivateAccount:     row.PrivateAccount,
		GithubConnected:    row.GithubConnected,
		GitlabConnected:    row.GitlabConnected,
		GoogleConnected:    row.GoogleConnected,
		DiscordConnected:   row.DiscordConnected,
	}
}

// handleFor maps a user id to a handle for response payloads.
func (s *Server) handleFor(ctx context.Context, userID string) string {
	u, err := s.directory.GetUserByID(ctx, userID)
	if err != nil {
		return "unknown"
	}
	return u.Handle
}
