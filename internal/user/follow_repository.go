package user

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"tuitter/internal/dbsql"
)

type FollowRepository interface {
	AddFollow(ctx context.Context, followerID, followedID string) error
	RemoveFollow(ctx context.Context, followerID, followedID string) error
	IsFollowing(ctx context.Context, followerID, followedID string) (bool, error)
	CountFollowers(ctx context.Context, userID string) (int64, error)
	CountFollowing(ctx context.Context, userID string) (int64, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) AddFollow(ctx context.Context, followerID, followedID string) error {
	edge := dbsql.Follow{FollowerID: followerID, FollowedID: followedID}
	err := r.db.WithContext(ctx).Create(&edge).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// composite primary key keeps the edge unique; a repeat is a no-op
		return nil
	}
	return err
}

func (r *followRepository) RemoveFollow(ctx context.Context, followerID, followedID string) error {
	return r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&dbsql.Follow{}).Error
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followedID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&dbsql.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error
	return count > 0, err
}

func (r *followRepository) CountFollowers(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&dbsql.Follow{}).
		Where("followed_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *followRepository) CountFollowing(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&dbsql.Follow{}).
		Where("follower_id = ?", userID).Count(&count).Error
	return count, err
}
