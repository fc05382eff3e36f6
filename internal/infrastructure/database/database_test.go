package database

import (
	"path/filepath"
	"testing"

	"clinic-front-desk/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresURL(t *testing.T) {
	url := PostgresURL(config.DBConfig{
		Host:     "db",
		Port:     "5432",
		User:     "clinic",
		Password: "p@ss word",
		Name:     "clinic",
		SSLMode:  "disable",
	})
	assert.Equal(t, "pgx5://clinic:p%40ss%20word@db:5432/clinic?sslmode=disable", url)
}

func TestNewConnection_UnknownDriver(t *testing.T) {
	_, err := NewConnection(config.DBConfig{Driver: "oracle"}, logrus.New())
	assert.Error(t, err)
}

func TestNewConnection_SQLiteAutoMigrate(t *testing.T) {
	db, err := NewConnection(config.DBConfig{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "clinic.db"),
	}, logrus.New())
	require.NoError(t, err)

	require.NoError(t, AutoMigrate(db))
	for _, table := range []string{"users", "doctors", "patients", "appointments", "queue_entries", "audit_logs"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func TestNewMigrator_RejectsSQLite(t *testing.T) {
	_, err := NewMigrator(config.DBConfig{Driver: "sqlite"}, logrus.New())
	assert.Error(t, err)
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	entries, err := migrationFS.ReadDir("migrations")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
