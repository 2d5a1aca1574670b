package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"tuitter/internal/dbsql"
	"tuitter/internal/notif"
)

// ErrAttachmentsTooLarge rejects an oversized attachment payload before
// any write happens.
var ErrAttachmentsTooLarge = fmt.Errorf("attachments exceed maximum size of %d characters", dbsql.AttachmentsMaxLen)

type FeedUsecase interface {
	CreatePost(ctx context.Context, author *dbsql.User, content string, parentID *string, attachments []map[string]any) (*dbsql.Post, error)
	GetPost(ctx context.Context, id string) (*dbsql.Post, error)
	Timeline(ctx context.Context, limit int) ([]dbsql.Post, error)
	Discover(ctx context.Context, limit int) ([]dbsql.Post, error)
	DeletePost(ctx context.Context, id string) error
	ToggleLike(ctx context.Context, postID string, viewer *dbsql.User) (*dbsql.Post, bool, error)
	ToggleRepost(ctx context.Context, postID string, viewer *dbsql.User) (*dbsql.Post, bool, error)
	AddComment(ctx context.Context, postID string, author *dbsql.User, text string) (*dbsql.Comment, error)
	ListComments(ctx context.Context, postID string) ([]dbsql.Comment, error)
	ViewerState(ctx context.Context, postID, viewerID string) (liked, reposted bool, err error)
}

type FeedService struct {
	posts        Posts
	interactions Interactions
	comments     Comments
	notifier     notif.Emitter
}

func NewFeedService(p Posts, i Interactions, c Comments, n notif.Emitter) *FeedService {
	return &FeedService{posts: p, interactions: i, comments: c, notifier: n}
}

// CreatePost validates the attachment payload, inserts the post and, for
// replies, notifies the parent's author.
func (s *FeedService) CreatePost(ctx context.Context, author *dbsql.User, content string, parentID *string, attachments []map[string]any) (*dbsql.Post, error) {
	post := &dbsql.Post{
		AuthorID: author.ID,
		Content:  content,
		ParentID: parentID,
	}

	if len(attachments) > 0 {
		serialized, err := json.Marshal(attachments)
		if err != nil {
			return nil, fmt.Errorf("invalid attachments: %w", err)
		}
		if len(serialized) > dbsql.AttachmentsMaxLen {
			return nil, ErrAttachmentsTooLarge
		}
		post.Attachments = string(serialized)
	}

	var parentAuthorID string
	if parentID != nil {
		parent, err := s.posts.GetPostByID(ctx, *parentID)
		if err != nil {
			return nil, fmt.Errorf("parent post: %w", err)
		}
		parentAuthorID = parent.AuthorID
	}

	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, err
	}

	if parentID != nil {
		s.notifier.EmitBestEffort(ctx, notif.Event{
			UserID:        parentAuthorID,
			ActorID:       author.ID,
			Type:          dbsql.NotifReply,
			Content:       fmt.Sprintf("@%s replied to your post", author.Handle),
			RelatedPostID: parentID,
		})
	}
	return post, nil
}

func (s *FeedService) GetPost(ctx context.Context, id string) (*dbsql.Post, error) {
	return s.posts.GetPostByID(ctx, id)
}

func (s *FeedService) Timeline(ctx context.Context, limit int) ([]dbsql.Post, error) {
	return s.posts.ListTimeline(ctx, limit)
}

func (s *FeedService) Discover(ctx context.Context, limit int) ([]dbsql.Post, error) {
	return s.posts.ListDiscover(ctx, limit)
}

func (s *FeedService) DeletePost(ctx context.Context, id string) error {
	return s.posts.DeletePost(ctx, id)
}

// ToggleLike flips the viewer's like and reports the refreshed post and
// whether the like is now active. Liking notifies the post's author.
func (s *FeedService) ToggleLike(ctx context.Context, postID string, viewer *dbsql.User) (*dbsql.Post, bool, error) {
	return s.toggle(ctx, postID, viewer, dbsql.InteractionLike, dbsql.NotifLike, "liked")
}

func (s *FeedService) ToggleRepost(ctx context.Context, postID string, viewer *dbsql.User) (*dbsql.Post, bool, error) {
	return s.toggle(ctx, postID, viewer, dbsql.InteractionRepost, dbsql.NotifRepost, "reposted")
}

func (s *FeedService) toggle(ctx context.Context, postID string, viewer *dbsql.User, interactionType, notifType, verb string) (*dbsql.Post, bool, error) {
	post, active, err := s.interactions.ToggleInteraction(ctx, postID, viewer.ID, interactionType)
	if err != nil {
		return nil, false, err
	}
	if active {
		s.notifier.EmitBestEffort(ctx, notif.Event{
			UserID:        post.AuthorID,
			ActorID:       viewer.ID,
			Type:          notifType,
			Content:       fmt.Sprintf("@%s %s your post", viewer.Handle, verb),
			RelatedPostID: &post.ID,
		})
	}
	return post, active, nil
}

// AddComment persists the comment, bumps the post's counter and notifies
// the post's author.
func (s *FeedService) AddComment(ctx context.Context, postID string, author *dbsql.User, text string) (*dbsql.Comment, error) {
	if text == "" {
		return nil, errors.New("comment text cannot be empty")
	}
	comment := &dbsql.Comment{
		PostID:   postID,
		UserID:   author.ID,
		Username: author.Handle,
		Text:     text,
	}
	if err := s.comments.AddComment(ctx, comment); err != nil {
		return nil, err
	}

	if post, err := s.posts.GetPostByID(ctx, postID); err == nil {
		s.notifier.EmitBestEffort(ctx, notif.Event{
			UserID:        post.AuthorID,
			ActorID:       author.ID,
			Type:          dbsql.NotifComment,
			Content:       fmt.Sprintf("@%s commented on your post", author.Handle),
			RelatedPostID: &postID,
		})
	}
	return comment, nil
}

func (s *FeedService) ListComments(ctx context.Context, postID string) ([]dbsql.Comment, error) {
	// listing comments on a missing post is a not-found, not an empty list
	if _, err := s.posts.GetPostByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.comments.ListComments(ctx, postID)
}

// ViewerState reports whether the viewer currently likes or reposts the post.
func (s *FeedService) ViewerState(ctx context.Context, postID, viewerID string) (bool, bool, error) {
	liked, err := s.interactions.HasInteraction(ctx, postID, viewerID, dbsql.InteractionLike)
	if err != nil {
		return false, false, err
	}
	reposted, err := s.interactions.HasInteraction(ctx, postID, viewerID, dbsql.InteractionRepost)
	if err != nil {
		return false, false, err
	}
	return liked, reposted, nil
}
