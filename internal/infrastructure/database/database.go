package database

import (
	"fmt"
	"time"

	"clinic-front-desk/config"
	"clinic-front-desk/internal/domain/entity"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewConnection opens the store selected by cfg.Driver
func NewConnection(cfg config.DBConfig, log *logrus.Logger) (*gorm.DB, error) {
	switch cfg.Driver {
	case "", "postgres":
		return NewPostgresConnection(cfg, log)
	case "sqlite":
		return NewSQLiteConnection(cfg, log)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
}

// AutoMigrate creates or updates every table from the entity definitions.
// Postgres deployments use the SQL migrations instead.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Doctor{},
		&entity.Patient{},
		&entity.Appointment{},
		&entity.QueueEntry{},
		&entity.AuditLog{},
	)
}

func newGormLogger(log *logrus.Logger) logger.Interface {
	level := logger.Warn
	if log.IsLevelEnabled(logrus.DebugLevel) {
		level = logger.Info
	}
	return logger.New(log, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}
