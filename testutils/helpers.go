package testutils

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/unigrievance/gateway/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func SetupTestDB(t *testing.T, models ...any) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	if len(models) > 0 {
		err = db.AutoMigrate(models...)
		require.NoError(t, err)
	}

	return db
}

// GetTestConfig returns a config with the production defaults and bcrypt
// dialed down so hashing-heavy tests stay fast.
func GetTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name: "UniGrievance Gateway",
			URL:  "http://localhost:8080",
		},
		Auth: config.AuthConfig{
			AllowedDomains:    []string{"kluniversity.in"},
			MaxResendAttempts: 3,
			OTPExpiryMinutes:  10,
			OTPCooldownSecs:   60,
			PasswordMinLength: 6,
			BcryptCost:        4,
		},
	}
}
