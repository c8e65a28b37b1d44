package services

import (
	"context"
	"fmt"
	"time"

	"evapod/internal/adapters/persistence/models"
	"evapod/internal/config"
	"evapod/internal/pkg/mailer"

	"go.uber.org/zap"
)

// NotificationService sends account emails
type NotificationService struct {
	mailer mailer.Mailer
	cfg    *config.Config
	logger *zap.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(m mailer.Mailer, cfg *config.Config, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		mailer: m,
		cfg:    cfg,
		logger: logger,
	}
}

// SendVerification emails the account verification link
func (s *NotificationService) SendVerification(ctx context.Context, user *models.User, token string, ttl time.Duration) error {
	email := mailer.BuildVerificationEmail(user.Email, mailer.LinkEmailData{
		SiteName:  s.cfg.SiteName,
		Name:      user.Name,
		Link:      s.link("/verify/", token),
		ExpiresIn: humanDuration(ttl),
	})
	return s.send(ctx, "verification", user, email)
}

// SendPasswordReset emails the password reset link
func (s *NotificationService) SendPasswordReset(ctx context.Context, user *models.User, token string, ttl time.Duration) error {
	email := mailer.BuildPasswordResetEmail(user.Email, mailer.LinkEmailData{
		SiteName:  s.cfg.SiteName,
		Name:      user.Name,
		Link:      s.link("/reset-password/", token),
		ExpiresIn: humanDuration(ttl),
	})
	return s.send(ctx, "password_reset", user, email)
}

// SendLoginOTP emails the login code
func (s *NotificationService) SendLoginOTP(ctx context.Context, user *models.User, code string, ttl time.Duration) error {
	email := mailer.BuildOTPEmail(user.Email, mailer.OTPEmailData{
		SiteName:  s.cfg.SiteName,
		Name:      user.Name,
		Code:      code,
		ExpiresIn: humanDuration(ttl),
	})
	return s.send(ctx, "login_otp", user, email)
}

func (s *NotificationService) send(ctx context.Context, kind string, user *models.User, email mailer.Email) error {
	if err := s.mailer.Send(ctx, email); err != nil {
		s.logger.Error("failed to send email",
			zap.String("kind", kind),
			zap.Uint("user_id", user.ID),
			zap.Error(err),
		)
		return fmt.Errorf("send %s email: %w", kind, err)
	}
	s.logger.Info("email sent", zap.String("kind", kind), zap.Uint("user_id", user.ID))
	return nil
}

func (s *NotificationService) link(path, token string) string {
	return s.cfg.BaseURL + path + token
}

// humanDuration renders whole hours or minutes, e.g. "24 hours", "10 minutes"
func humanDuration(d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		if h := int(d / time.Hour); h != 1 {
			return fmt.Sprintf("%d hours", h)
		}
		return "1 hour"
	}
	if m := int(d / time.Minute); m != 1 {
		return fmt.Sprintf("%d minutes", m)
	}
	return "1 minute"
}
