package database

import (
	"os"
	"path/filepath"

	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/database/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Initialize opens the SQLite store at dbPath, enables foreign key
// enforcement (cascade deletes depend on it) and runs migrations. The
// returned handle is injected into every service that needs it; callers
// own its lifecycle.
func Initialize(dbPath string) (*gorm.DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), gormConfig)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// runMigrations runs all database migrations
func runMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Email{},
		&models.Attachment{},
		&models.EmailAnalysis{},
		&models.EmailSummary{},
		&models.EmailReply{},
		&models.SyncState{},
		&models.Log{},
	)
}
