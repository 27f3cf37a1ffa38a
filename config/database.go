package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"bankdesk/models"
)

var DB *gorm.DB

// OpenDB opens (creating if needed) the SQLite database at path. Foreign keys
// must stay enabled for the lifetime of every connection so that deleting a
// customer cascades to its transactions.
func OpenDB(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	if err := db.AutoMigrate(&models.Admin{}, &models.Customer{}, &models.Transaction{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return db, nil
}

// ConnectDB opens the configured database and stores the handle in DB.
func ConnectDB(settings Settings) {
	var err error
	DB, err = OpenDB(settings.DBPath)
	if err != nil {
		log.Fatalf("Fail to connect to db : %v", err)
	}
}
