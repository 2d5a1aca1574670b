package settings

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"tuitter/internal/dbsql"
)

type SettingsRepository interface {
	GetByUserID(ctx context.Context, userID string) (*dbsql.UserSettings, error)
	Create(ctx context.Context, s *dbsql.UserSettings) error
	Update(ctx context.Context, s *dbsql.UserSettings) error
}

type settingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) GetByUserID(ctx context.Context, userID string) (*dbsql.UserSettings, error) {
	var row dbsql.UserSettings
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *settingsRepository) Create(ctx context.Context, s *dbsql.UserSettings) error {
	err := r.db.WithContext(ctx).Create(s).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// a concurrent first read already created the row
		var existing dbsql.UserSettings
		if gerr := r.db.WithContext(ctx).Where("user_id = ?", s.UserID).First(&existing).Error; gerr == nil {
			*s = existing
			return nil
		}
	}
	return err
}

func (r *settingsRepository) Update(ctx context.Context, s *dbsql.UserSettings) error {
	return r.db.WithContext(ctx).Save(s).Error
}
