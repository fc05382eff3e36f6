package database

import (
	"fmt"

	"clinic-front-desk/config"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// NewSQLiteConnection opens a single-file database for local runs.
// SQLite allows one writer, so the pool is kept to one connection.
func NewSQLiteConnection(cfg config.DBConfig, log *logrus.Logger) (*gorm.DB, error) {
	dsn := cfg.SQLitePath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: newGormLogger(log),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	log.Infof("Successfully opened SQLite database at %s", cfg.SQLitePath)

	return db, nil
}
