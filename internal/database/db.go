package database

import (
	"fmt"
	"log"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/justsurfingit/Agentic-Job-Tracker/internal/models"
)

const sqlitePrefix = "sqlite://"

// Dialector picks the gorm driver for a database URL. "sqlite://path",
// "file:" URIs and ":memory:" open SQLite; anything else is a Postgres DSN.
func Dialector(url string) gorm.Dialector {
	switch {
	case strings.HasPrefix(url, sqlitePrefix):
		return sqlite.Open(strings.TrimPrefix(url, sqlitePrefix))
	case strings.HasPrefix(url, "file:"), url == ":memory:":
		return sqlite.Open(url)
	}
	return postgres.Open(url)
}

// Connect opens the database and migrates every model.
func Connect(url string) (*gorm.DB, error) {
	db, err := gorm.Open(Dialector(url), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	log.Printf("Database connection established (%s)", db.Dialector.Name())

	log.Println("Running Migrations...")
	if err := db.AutoMigrate(models.All()...); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}
