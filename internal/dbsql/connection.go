package dbsql

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tuitter/internal/config"
)

// Open returns a GORM DB for the configured URL: a postgres DSN when the
// URL carries a postgres scheme, otherwise a local sqlite file. The schema
// is migrated forward on every start; all changes are additive.
func Open(cnf *config.Config) (*gorm.DB, error) {
	url := cnf.Database.URL
	if url == "" {
		url = config.DefaultSQLitePath
	}

	logMode := logger.Silent
	if cnf.Database.LogQueries {
		logMode = logger.Info
	}
	gormCfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logMode),
		PrepareStmt:    true,
		TranslateError: true,
	}

	var (
		db  *gorm.DB
		err error
	)
	if cnf.Database.IsPostgres() {
		// Heroku-style postgres:// URLs are accepted by the pgx driver
		// once rewritten to postgresql://.
		dsn := strings.Replace(url, "postgres://", "postgresql://", 1)
		db, err = gorm.Open(postgres.Open(dsn), gormCfg)
	} else {
		db, err = gorm.Open(sqlite.Open(url), gormCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sql.DB error: %w", err)
	}
	sqlDB.SetMaxOpenConns(cnf.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cnf.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// Migrate creates or extends all tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Follow{},
		&Post{},
		&PostInteraction{},
		&Comment{},
		&Conversation{},
		&ConversationParticipant{},
		&Message{},
		&Notification{},
		&UserSettings{},
	)
}
