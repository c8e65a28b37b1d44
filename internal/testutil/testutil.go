// Package testutil provides database and config fixtures for tests.
package testutil

import (
	"fmt"
	"testing"

	"evapod/internal/adapters/persistence/models"
	"evapod/internal/config"
	"evapod/internal/pkg/password"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a private in-memory sqlite database with the schema
// migrated. It is closed when the test ends.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	password.SetCost(bcrypt.MinCost)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := config.Open(sqlite.Open(dsn), logger.Default.LogMode(logger.Silent))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// One connection keeps every statement on the same in-memory database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// TestConfig returns a dev config suitable for tests. Email verification
// stays required so the full registration flow is exercised.
func TestConfig() *config.Config {
	return &config.Config{
		AppMode:  "dev",
		Port:     "0",
		SiteName: "EVAPOD",
		BaseURL:  "http://localhost:3000",
		Database: config.DatabaseConfig{Driver: "sqlite"},
		JWT: config.JWTConfig{
			Secret:           "test_secret",
			RefreshSecret:    "test_refresh_secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
		Cookie: config.CookieConfig{SameSite: "lax"},
		Auth: config.AuthConfig{
			OTPMinutes:          10,
			VerifyTokenHours:    24,
			ResetTokenMinutes:   60,
			RequireVerification: true,
		},
		Seed: config.SeedConfig{
			AdminName:     "Administrator",
			AdminEmail:    "admin@example.org",
			AdminPassword: "admin-password",
			AdminZionID:   1000,
		},
	}
}
