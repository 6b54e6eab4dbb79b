package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unigrievance/gateway/config"
)

type testModel struct {
	ID   uint   `gorm:"primarykey"`
	Name string `gorm:"uniqueIndex"`
}

func sqliteConfig() config.Config {
	return config.Config{
		Database: config.DatabaseConfig{
			Driver:      "sqlite",
			DSN:         ":memory:",
			AutoMigrate: true,
		},
	}
}

func TestProvideDatabase_Sqlite(t *testing.T) {
	db, err := ProvideDatabase(sqliteConfig(), WithModels(&testModel{}))

	require.NoError(t, err)
	assert.True(t, db.Migrator().HasTable(&testModel{}))
}

func TestProvideDatabase_MigrationDisabled(t *testing.T) {
	cfg := sqliteConfig()
	cfg.Database.AutoMigrate = false

	db, err := ProvideDatabase(cfg, WithModels(&testModel{}))

	require.NoError(t, err)
	assert.False(t, db.Migrator().HasTable(&testModel{}))
}

func TestProvideDatabase_UnsupportedDriver(t *testing.T) {
	cfg := sqliteConfig()
	cfg.Database.Driver = "oracle"

	_, err := ProvideDatabase(cfg, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}
