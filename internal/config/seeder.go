package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"evapod/internal/adapters/persistence/models"
	"evapod/internal/pkg/password"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db     *gorm.DB
	cfg    SeedConfig
	logger *zap.Logger
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg SeedConfig, logger *zap.Logger) *Seeder {
	return &Seeder{db: db, cfg: cfg, logger: logger}
}

// Run executes all seeders
func (s *Seeder) Run(ctx context.Context) error {
	s.logger.Info("running database seeders")

	if err := s.seedAdminUser(ctx); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	s.logger.Info("database seeding completed")
	return nil
}

// seedAdminUser creates the bootstrap admin account once. It is skipped
// when no admin email is configured or an admin already exists.
func (s *Seeder) seedAdminUser(ctx context.Context) error {
	email := strings.ToLower(strings.TrimSpace(s.cfg.AdminEmail))
	if email == "" {
		s.logger.Warn("admin seed skipped: SEED_ADMIN_EMAIL is not set")
		return nil
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", "admin").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if !password.ValidatePassword(s.cfg.AdminPassword) {
		return fmt.Errorf("SEED_ADMIN_PASSWORD must be at least %d characters", password.MinLength)
	}
	hashed, err := password.Hash(s.cfg.AdminPassword)
	if err != nil {
		return err
	}

	admin := &models.User{
		Name:       s.cfg.AdminName,
		Email:      email,
		Password:   hashed,
		Role:       "admin",
		ZionID:     s.cfg.AdminZionID,
		IsVerified: true,
	}
	if err := db.Create(admin).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("email %s or zion id %d is already taken", email, admin.ZionID)
		}
		return err
	}

	s.logger.Info("admin user created", zap.String("email", admin.Email), zap.Int64("zion_id", admin.ZionID))
	return nil
}
