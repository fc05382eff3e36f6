// Package testutil builds throwaway stores for package tests.
package testutil

import (
	"io"
	"path/filepath"
	"testing"

	"clinic-front-desk/internal/domain/entity"
	"clinic-front-desk/internal/infrastructure/database"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated SQLite database in the test's temp dir.
// One connection only: everything in a transaction must go through tx.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	entity.PasswordHashCost = bcrypt.MinCost

	path := filepath.Join(t.TempDir(), "clinic.db")
	db, err := gorm.Open(sqlite.Open(path+"?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

// NewLogger returns a logger that discards output
func NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
