package database

import (
	"fmt"
	"time"

	"github.com/zfogg/blogicum/internal/config"
	"github.com/zfogg/blogicum/internal/logger"
	"github.com/zfogg/blogicum/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB holds the database connection
var DB *gorm.DB

// Initialize creates and configures the database connection
func Initialize(cfg *config.Config) error {
	// Configure GORM logger
	gormLogger := gormlogger.Default.LogMode(gormlogger.Warn)
	if cfg.Environment == "development" {
		gormLogger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	db, err := Open(cfg.DatabaseDriver, cfg.DSN(), gormLogger)
	if err != nil {
		return err
	}

	DB = db
	logger.Log.Info("Database connected successfully",
		zap.String("driver", cfg.DatabaseDriver),
	)

	return nil
}

// Open connects to the database with the given driver ("postgres" or "sqlite")
func Open(driver, dsn string, gormLogger gormlogger.Interface) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	if gormLogger == nil {
		gormLogger = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if driver == "sqlite" {
		// A single connection keeps in-memory databases alive and avoids
		// "database is locked" errors
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("failed to enable sqlite foreign keys: %w", err)
		}
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	return db, nil
}

// Migrate runs auto-migration for all models on the global connection
func Migrate() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	if err := MigrateDB(DB); err != nil {
		return err
	}

	logger.Log.Info("Database migrations completed")
	return nil
}

// MigrateDB runs auto-migration and index creation on db
func MigrateDB(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Location{},
		&models.Post{},
		&models.Comment{},
		&models.PasswordReset{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// createIndexes creates performance indexes
func createIndexes(db *gorm.DB) error {
	statements := []string{
		// Listing queries filter on publication state and sort by pub date
		"CREATE INDEX IF NOT EXISTS idx_posts_published_pub_date ON posts (is_published, pub_date DESC)",
		"CREATE INDEX IF NOT EXISTS idx_posts_author_pub_date ON posts (author_id, pub_date DESC)",
		"CREATE INDEX IF NOT EXISTS idx_posts_category_pub_date ON posts (category_id, pub_date DESC)",

		// Comments are listed oldest first per post
		"CREATE INDEX IF NOT EXISTS idx_comments_post_created ON comments (post_id, created_at ASC)",

		"CREATE INDEX IF NOT EXISTS idx_users_email_lower ON users (LOWER(email))",
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// Health checks database connectivity
func Health() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Ping()
}
