package feed

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"tuitter/internal/dbsql"
)

type FeedRepository struct {
	db *gorm.DB
}

func NewFeedRepository(db *gorm.DB) *FeedRepository {
	return &FeedRepository{db: db}
}

// --------- POSTS ---------

type Posts interface {
	CreatePost(ctx context.Context, post *dbsql.Post) error
	GetPostByID(ctx context.Context, id string) (*dbsql.Post, error)
	ListTimeline(ctx context.Context, limit int) ([]dbsql.Post, error)
	ListDiscover(ctx context.Context, limit int) ([]dbsql.Post, error)
	DeletePost(ctx context.Context, id string) error
}

// CreatePost inserts the post and, for replies, bumps the parent's
// comment counter in the same unit of work.
func (r *FeedRepository) CreatePost(ctx context.Context, post *dbsql.Post) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		if post.ParentID == nil {
			return nil
		}
		res := tx.Model(&dbsql.Post{}).
			Where("id = ?", *post.ParentID).
			Update("comments_count", gorm.Expr("comments_count + 1"))
		return res.Error
	})
}

func (r *FeedRepository) GetPostByID(ctx context.Context, id string) (*dbsql.Post, error) {
	var post dbsql.Post
	err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *FeedRepository) ListTimeline(ctx context.Context, limit int) ([]dbsql.Post, error) {
	var posts []dbsql.Post
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

// ListDiscover orders by a composite engagement score instead of recency.
func (r *FeedRepository) ListDiscover(ctx context.Context, limit int) ([]dbsql.Post, error) {
	var posts []dbsql.Post
	err := r.db.WithContext(ctx).
		Order("(likes_count + reposts_count + comments_count) DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

// DeletePost removes the post together with its interactions and
// comments, and for replies decrements the parent's comment counter,
// floored at zero. Foreign-key cascades are written out explicitly.
func (r *FeedRepository) DeletePost(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post dbsql.Post
		if err := tx.First(&post, "id = ?", id).Error; err != nil {
			return err
		}
		if post.ParentID != nil {
			res := tx.Model(&dbsql.Post{}).
				Where("id = ? AND comments_count > 0", *post.ParentID).
				Update("comments_count", gorm.Expr("comments_count - 1"))
			if res.Error != nil {
				return res.Error
			}
		}
		if err := tx.Where("post_id = ?", id).Delete(&dbsql.PostInteraction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&dbsql.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&dbsql.Post{}, "id = ?", id).Error
	})
}

// --------- INTERACTIONS ---------

type Interactions interface {
	ToggleInteraction(ctx context.Context, postID, userID, interactionType string) (*dbsql.Post, bool, error)
	HasInteraction(ctx context.Context, postID, userID, interactionType string) (bool, error)
}

// ToggleInteraction flips the (post, user, type) row and its counter in
// one transaction and returns the refreshed post plus whether the
// interaction exists afterwards. The unique index on the triple keeps a
// racing double-toggle from ever counting twice.
func (r *FeedRepository) ToggleInteraction(ctx context.Context, postID, userID, interactionType string) (*dbsql.Post, bool, error) {
	var (
		post   dbsql.Post
		active bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, "id = ?", postID).Error; err != nil {
			return err
		}

		counter := "likes_count"
		if interactionType == dbsql.InteractionRepost {
			counter = "reposts_count"
		}

		var existing dbsql.PostInteraction
		err := tx.Where("post_id = ? AND user_id = ? AND type = ?", postID, userID, interactionType).
			First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			res := tx.Model(&dbsql.Post{}).
				Where("id = ? AND "+counter+" > 0", postID).
				Update(counter, gorm.Expr(counter+" - 1"))
			if res.Error != nil {
				return res.Error
			}
			active = false
		case errors.Is(err, gorm.ErrRecordNotFound):
			row := dbsql.PostInteraction{PostID: postID, UserID: userID, Type: interactionType}
			if err := tx.Create(&row).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					// concurrent toggle already inserted the row
					active = true
					return nil
				}
				return err
			}
			res := tx.Model(&dbsql.Post{}).
				Where("id = ?", postID).
				Update(counter, gorm.Expr(counter+" + 1"))
			if res.Error != nil {
				return res.Error
			}
			active = true
		default:
			return err
		}
		return tx.First(&post, "id = ?", postID).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &post, active, nil
}

func (r *FeedRepository) HasInteraction(ctx context.Context, postID, userID, interactionType string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&dbsql.PostInteraction{}).
		Where("post_id = ? AND user_id = ? AND type = ?", postID, userID, interactionType).
		Count(&count).Error
	return count > 0, err
}

// --------- COMMENTS ---------

type Comments interface {
	AddComment(ctx context.Context, comment *dbsql.Comment) error
	ListComments(ctx context.Context, postID string) ([]dbsql.Comment, error)
}

// AddComment inserts the comment and bumps the post's counter in the
// same unit of work.
func (r *FeedRepository) AddComment(ctx context.Context, comment *dbsql.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&dbsql.Post{}, "id = ?", comment.PostID).Error; err != nil {
			return err
		}
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		res := tx.Model(&dbsql.Post{}).
			Where("id = ?", comment.PostID).
			Update("comments_count", gorm.Expr("comments_count + 1"))
		return res.Error
	})
}

func (r *FeedRepository) ListComments(ctx context.Context, postID string) ([]dbsql.Comment, error) {
	var comments []dbsql.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}
