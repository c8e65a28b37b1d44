package repositories

import (
	"context"
	"time"

	"evapod/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// userTokenRepository implements UserTokenRepository interface
type userTokenRepository struct {
	db *gorm.DB
}

// NewUserTokenRepository creates a new email token repository
func NewUserTokenRepository(db *gorm.DB) UserTokenRepository {
	return &userTokenRepository{db: db}
}

// Create stores a hashed token
func (r *userTokenRepository) Create(ctx context.Context, token *models.UserToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

// GetUsable gets an unused, unexpired token by purpose and hash
func (r *userTokenRepository) GetUsable(ctx context.Context, purpose, tokenHash string) (*models.UserToken, error) {
	var token models.UserToken
	err := r.db.WithContext(ctx).
		Where("purpose = ? AND token_hash = ?", purpose, tokenHash).
		Where("used_at IS NULL").
		Where("expires_at > ?", time.Now()).
		First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// MarkUsed consumes a token. Consuming an already used token yields
// gorm.ErrRecordNotFound.
func (r *userTokenRepository) MarkUsed(ctx context.Context, id uint) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.UserToken{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", &now)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// InvalidateForUser marks every open token of a purpose as used, so only the
// most recently issued link works
func (r *userTokenRepository) InvalidateForUser(ctx context.Context, userID uint, purpose string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.UserToken{}).
		Where("user_id = ? AND purpose = ?", userID, purpose).
		Where("used_at IS NULL").
		Update("used_at", &now).Error
}

// DeleteStale deletes tokens that expired or were used before the given time
func (r *userTokenRepository) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ? OR used_at < ?", before, before).
		Delete(&models.UserToken{})
	return result.RowsAffected, result.Error
}
