package repositories

import (
	"context"
	"time"

	"evapod/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// sessionRepository implements SessionRepository interface
type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

// Create creates a new session
func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// GetByID gets a session by its id, revoked or not
func (r *sessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Rotate swaps the refresh token hash of an active session. The old hash is
// part of the match so a token can only be rotated once; a replayed token
// yields gorm.ErrRecordNotFound.
func (r *sessionRepository) Rotate(ctx context.Context, id, oldHash, newHash string, expiresAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("id = ? AND token_hash = ?", id, oldHash).
		Where("revoked_at IS NULL").
		Updates(map[string]interface{}{
			"token_hash":   newHash,
			"expires_at":   expiresAt,
			"last_used_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateCSRF replaces the CSRF token hash of an active session
func (r *sessionRepository) UpdateCSRF(ctx context.Context, id, csrfHash string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("id = ?", id).
		Where("revoked_at IS NULL").
		Updates(map[string]interface{}{
			"csrf_hash":    csrfHash,
			"last_used_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Revoke revokes a session by id
func (r *sessionRepository) Revoke(ctx context.Context, id string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("id = ?", id).
		Where("revoked_at IS NULL").
		Update("revoked_at", &now).Error
}

// RevokeAllByUserID revokes all sessions for a user
func (r *sessionRepository) RevokeAllByUserID(ctx context.Context, userID uint) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("user_id = ?", userID).
		Where("revoked_at IS NULL").
		Update("revoked_at", &now).Error
}

// RevokeOthers revokes every session of a user except keepID
func (r *sessionRepository) RevokeOthers(ctx context.Context, userID uint, keepID string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("user_id = ? AND id <> ?", userID, keepID).
		Where("revoked_at IS NULL").
		Update("revoked_at", &now).Error
}

// DeleteExpired deletes sessions that expired or were revoked before the
// given time (cleanup job)
func (r *sessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ? OR revoked_at < ?", before, before).
		Delete(&models.Session{})
	return result.RowsAffected, result.Error
}

// CountActiveByUserID counts active sessions for a user
func (r *sessionRepository) CountActiveByUserID(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("user_id = ?", userID).
		Where("revoked_at IS NULL").
		Where("expires_at > ?", time.Now()).
		Count(&count).Error
	return count, err
}
