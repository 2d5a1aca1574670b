package user

import (
	"context"

	"gorm.io/gorm"

	"tuitter/internal/dbsql"
)

// in interface, all the methods related to user rows are written, and implemented
type UserRepository interface {
	CreateUser(ctx context.Context, user *dbsql.User) error
	GetUserByID(ctx context.Context, userID string) (*dbsql.User, error)
	GetUserByHandle(ctx context.Context, handle string) (*dbsql.User, error)
	UpdateUser(ctx context.Context, user *dbsql.User) error
	CountPosts(ctx context.Context, userID string) (int64, error)
}

// this struct implements above interface
type userRepository struct {
	db *gorm.DB // *gorm.DB points to the DB connection
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(ctx context.Context, user *dbsql.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetUserByID(ctx context.Context, userID string) (*dbsql.User, error) {
	var user dbsql.User
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetUserByHandle(ctx context.Context, handle string) (*dbsql.User, error) {
	var user dbsql.User
	err := r.db.WithContext(ctx).Where("handle = ?", handle).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdateUser(ctx context.Context, user *dbsql.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) CountPosts(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&dbsql.Post{}).Where("author_id = ?", userID).Count(&count).Error
	return count, err
}
