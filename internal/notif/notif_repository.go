package notif

import (
	"context"

	"gorm.io/gorm"

	"tuitter/internal/dbsql"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *dbsql.Notification) error
	ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]dbsql.Notification, error)
	MarkRead(ctx context.Context, notificationID string) (bool, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *dbsql.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepository) ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]dbsql.Notification, error) {
	var rows []dbsql.Notification
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("read = ?", false)
	}
	err := q.Order("created_at DESC").Find(&rows).Error
	return rows, err
}

// MarkRead flips the read flag. Returns false when the id does not exist,
// leaving every row untouched.
func (r *notificationRepository) MarkRead(ctx context.Context, notificationID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&dbsql.Notification{}).
		Where("id = ?", notificationID).
		Update("read", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
