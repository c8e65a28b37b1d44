package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"evapod/internal/adapters/persistence/models"
	"evapod/internal/adapters/persistence/repositories"
	"evapod/internal/config"
	"evapod/internal/core/domain"
	"evapod/internal/pkg/jwt"
	"evapod/internal/pkg/optional"
	"evapod/internal/pkg/password"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const tokenBytes = 32

// AuthService handles registration, login and sessions
type AuthService struct {
	users       *UserService
	userRepo    repositories.UserRepository
	sessionRepo repositories.SessionRepository
	tokenRepo   repositories.UserTokenRepository
	otp         *OTPService
	notify      *NotificationService
	cfg         *config.Config
	logger      *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	users *UserService,
	userRepo repositories.UserRepository,
	sessionRepo repositories.SessionRepository,
	tokenRepo repositories.UserTokenRepository,
	otp *OTPService,
	notify *NotificationService,
	cfg *config.Config,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:       users,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		tokenRepo:   tokenRepo,
		otp:         otp,
		notify:      notify,
		cfg:         cfg,
		logger:      logger,
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Password   string          `json:"password"`
	Phone      string          `json:"phone"`
	Fellowship optional.Ref    `json:"fellowship" swaggertype:"string"`
	ZionID     optional.ZionID `json:"zionId" swaggertype:"integer"`
}

// LoginInput represents login input
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyOTPInput represents the second login step
type VerifyOTPInput struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// ResetPasswordInput represents the new password sent with a reset token
type ResetPasswordInput struct {
	Password string `json:"password"`
}

// ClientMeta describes the client opening a session
type ClientMeta struct {
	UserAgent string
	IP        string
}

// LoginChallenge is returned when a login code has been emailed
type LoginChallenge struct {
	Email     string `json:"email"`
	ExpiresIn int    `json:"expiresIn"` // seconds
}

// AuthResult is returned when a session is opened or refreshed
type AuthResult struct {
	User         *models.UserResponse `json:"user"`
	AccessToken  string               `json:"accessToken"`
	RefreshToken string               `json:"refreshToken"`
	CSRFToken    string               `json:"csrfToken"`
	SessionID    string               `json:"sessionId"`
	ExpiresAt    time.Time            `json:"expiresAt"`
}

// Authenticated is the outcome of checking an access token
type Authenticated struct {
	Identity domain.Identity
	User     *models.User
	csrfHash string
}

// CSRFMatches reports whether token is the session's current CSRF token
func (a *Authenticated) CSRFMatches(token string) bool {
	return password.TokenMatches(token, a.csrfHash)
}

// Register creates an unverified account and emails the verification link
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*models.UserResponse, error) {
	if input.Fellowship.Null {
		input.Fellowship = optional.Ref{}
	}

	user, err := s.users.create(ctx, &UserInput{
		Name:       optional.Of(input.Name),
		Email:      optional.Of(input.Email),
		Password:   optional.Of(input.Password),
		Phone:      optional.Of(input.Phone),
		Fellowship: input.Fellowship,
		ZionID:     input.ZionID,
	}, !s.cfg.Auth.RequireVerification)
	if err != nil {
		return nil, err
	}

	if !user.IsVerified {
		if err := s.sendVerification(ctx, user); err != nil {
			return nil, err
		}
	}

	s.logger.Info("user registered", zap.Uint("id", user.ID), zap.Int64("zion_id", user.ZionID))
	return s.users.Profile(ctx, user.ID)
}

// VerifyEmail consumes a verification token
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	stored, err := s.consumeToken(ctx, models.TokenPurposeVerify, token)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdateFields(ctx, stored.UserID, map[string]interface{}{"is_verified": true}); err != nil {
		return err
	}
	s.logger.Info("email verified", zap.Uint("user_id", stored.UserID))
	return nil
}

// ResendVerification sends a fresh verification link. Unknown and already
// verified addresses are accepted silently.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if user.IsVerified {
		return nil
	}
	return s.sendVerification(ctx, user)
}

// Login checks the credentials and emails a one-time login code
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginChallenge, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(input.Password, user.Password) {
		return nil, domain.ErrInvalidCredentials
	}
	if err := s.checkActive(user); err != nil {
		return nil, err
	}

	code, err := s.otp.Generate(user.Email, user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.notify.SendLoginOTP(ctx, user, code, s.otp.TTL()); err != nil {
		return nil, err
	}

	s.logger.Info("login code issued", zap.Uint("user_id", user.ID))
	return &LoginChallenge{
		Email:     user.Email,
		ExpiresIn: int(s.otp.TTL().Seconds()),
	}, nil
}

// VerifyOTP checks the login code and opens a session
func (s *AuthService) VerifyOTP(ctx context.Context, input *VerifyOTPInput, meta ClientMeta) (*AuthResult, error) {
	userID, err := s.otp.Verify(input.Email, input.OTP)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	if err := s.checkActive(user); err != nil {
		return nil, err
	}

	result, err := s.openSession(ctx, user, meta)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", zap.Uint("user_id", user.ID), zap.String("session_id", result.SessionID))
	return result, nil
}

// Refresh rotates the refresh token of a session. Presenting a refresh
// token that was already rotated revokes the whole session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		return nil, tokenError(err)
	}

	session, err := s.activeSession(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}

	oldHash := password.HashToken(refreshToken)
	if !password.TokenMatches(refreshToken, session.TokenHash) {
		s.logger.Warn("refresh token replayed, revoking session",
			zap.String("session_id", session.ID),
			zap.Uint("user_id", session.UserID),
		)
		if err := s.sessionRepo.Revoke(ctx, session.ID); err != nil {
			return nil, err
		}
		return nil, domain.ErrTokenRevoked
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	if user.IsBlocked {
		return nil, domain.ErrUserBlocked
	}

	newRefresh, expiresAt, err := s.refreshToken(user.ID, session.ID)
	if err != nil {
		return nil, err
	}
	if err := s.sessionRepo.Rotate(ctx, session.ID, oldHash, password.HashToken(newRefresh), expiresAt); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTokenRevoked
		}
		return nil, err
	}

	csrf, err := s.RefreshCSRF(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	access, err := s.accessToken(user, session.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         user.ToResponse(),
		AccessToken:  access,
		RefreshToken: newRefresh,
		CSRFToken:    csrf,
		SessionID:    session.ID,
		ExpiresAt:    expiresAt,
	}, nil
}

// RefreshCSRF issues a new CSRF token for a session
func (s *AuthService) RefreshCSRF(ctx context.Context, sessionID string) (string, error) {
	csrf, err := password.NewToken(tokenBytes)
	if err != nil {
		return "", err
	}
	if err := s.sessionRepo.UpdateCSRF(ctx, sessionID, password.HashToken(csrf)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrTokenRevoked
		}
		return "", err
	}
	return csrf, nil
}

// Logout revokes the caller's session
func (s *AuthService) Logout(ctx context.Context, identity domain.Identity) error {
	if err := s.sessionRepo.Revoke(ctx, identity.SessionID); err != nil {
		return err
	}
	s.logger.Info("user logged out", zap.Uint("user_id", identity.UserID), zap.String("session_id", identity.SessionID))
	return nil
}

// ForgotPassword emails a password reset link. Unknown addresses are
// accepted silently.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	ttl := time.Duration(s.cfg.Auth.ResetTokenMinutes) * time.Minute
	token, err := s.issueToken(ctx, user.ID, models.TokenPurposeReset, ttl)
	if err != nil {
		return err
	}
	return s.notify.SendPasswordReset(ctx, user, token, ttl)
}

// ResetPassword sets a new password using a reset token and signs the user
// out everywhere
func (s *AuthService) ResetPassword(ctx context.Context, token string, input *ResetPasswordInput) error {
	if !password.ValidatePassword(input.Password) {
		return domain.Invalid("password must be at least %d characters", password.MinLength)
	}

	stored, err := s.consumeToken(ctx, models.TokenPurposeReset, token)
	if err != nil {
		return err
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdateFields(ctx, stored.UserID, map[string]interface{}{"password": hashed}); err != nil {
		return err
	}
	if err := s.sessionRepo.RevokeAllByUserID(ctx, stored.UserID); err != nil {
		return err
	}

	s.logger.Info("password reset", zap.Uint("user_id", stored.UserID))
	return nil
}

// Authenticate checks an access token against its session and the current
// state of the user. Role and hierarchy position come from the database.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*Authenticated, error) {
	claims, err := jwt.ValidateAccessToken(accessToken, s.cfg.JWT.Secret)
	if err != nil {
		return nil, tokenError(err)
	}

	session, err := s.activeSession(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != claims.UserID {
		return nil, domain.ErrTokenInvalid
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}
	if user.IsBlocked {
		return nil, domain.ErrUserBlocked
	}

	return &Authenticated{
		Identity: domain.Identity{
			UserID:       user.ID,
			ZionID:       user.ZionID,
			Role:         domain.Role(user.Role),
			SessionID:    session.ID,
			RegionID:     user.RegionID,
			ZoneID:       user.ZoneID,
			SubzoneID:    user.SubzoneID,
			FellowshipID: user.FellowshipID,
		},
		User:     user,
		csrfHash: session.CSRFHash,
	}, nil
}

func (s *AuthService) checkActive(user *models.User) error {
	if user.IsBlocked {
		return domain.ErrUserBlocked
	}
	if s.cfg.Auth.RequireVerification && !user.IsVerified {
		return domain.ErrUserNotVerified
	}
	return nil
}

func (s *AuthService) activeSession(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}
	if session.IsRevoked() {
		return nil, domain.ErrTokenRevoked
	}
	if session.IsExpired() {
		return nil, domain.ErrTokenExpired
	}
	return session, nil
}

// openSession stores a new session and returns its tokens
func (s *AuthService) openSession(ctx context.Context, user *models.User, meta ClientMeta) (*AuthResult, error) {
	sessionID := uuid.New().String()

	refresh, expiresAt, err := s.refreshToken(user.ID, sessionID)
	if err != nil {
		return nil, err
	}
	csrf, err := password.NewToken(tokenBytes)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &models.Session{
		ID:         sessionID,
		UserID:     user.ID,
		TokenHash:  password.HashToken(refresh),
		CSRFHash:   password.HashToken(csrf),
		UserAgent:  truncate(meta.UserAgent, 255),
		IP:         truncate(meta.IP, 64),
		ExpiresAt:  expiresAt,
		LastUsedAt: now,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	access, err := s.accessToken(user, sessionID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         user.ToResponse(),
		AccessToken:  access,
		RefreshToken: refresh,
		CSRFToken:    csrf,
		SessionID:    sessionID,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *AuthService) accessToken(user *models.User, sessionID string) (string, error) {
	return jwt.GenerateAccessToken(
		user.ID,
		user.ZionID,
		user.Role,
		sessionID,
		s.cfg.JWT.Secret,
		s.cfg.JWT.AccessTokenMins,
	)
}

func (s *AuthService) refreshToken(userID uint, sessionID string) (string, time.Time, error) {
	token, err := jwt.GenerateRefreshToken(
		userID,
		sessionID,
		uuid.New().String(),
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays), nil
}

func (s *AuthService) sendVerification(ctx context.Context, user *models.User) error {
	ttl := time.Duration(s.cfg.Auth.VerifyTokenHours) * time.Hour
	token, err := s.issueToken(ctx, user.ID, models.TokenPurposeVerify, ttl)
	if err != nil {
		return err
	}
	return s.notify.SendVerification(ctx, user, token, ttl)
}

// issueToken replaces any open token of the same purpose with a new one
func (s *AuthService) issueToken(ctx context.Context, userID uint, purpose string, ttl time.Duration) (string, error) {
	if err := s.tokenRepo.InvalidateForUser(ctx, userID, purpose); err != nil {
		return "", err
	}
	raw, err := password.NewToken(tokenBytes)
	if err != nil {
		return "", err
	}
	err = s.tokenRepo.Create(ctx, &models.UserToken{
		UserID:    userID,
		Purpose:   purpose,
		TokenHash: password.HashToken(raw),
		ExpiresAt: time.Now().Add(ttl),
	})
	if err != nil {
		return "", err
	}
	return raw, nil
}

func (s *AuthService) consumeToken(ctx context.Context, purpose, raw string) (*models.UserToken, error) {
	if raw == "" {
		return nil, domain.ErrTokenInvalid
	}
	stored, err := s.tokenRepo.GetUsable(ctx, purpose, password.HashToken(raw))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: link is invalid or has expired", domain.ErrTokenInvalid)
		}
		return nil, err
	}
	if err := s.tokenRepo.MarkUsed(ctx, stored.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: link was already used", domain.ErrTokenInvalid)
		}
		return nil, err
	}
	return stored, nil
}

// tokenError maps jwt package errors onto the domain ones
func tokenError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return domain.ErrTokenExpired
	}
	return domain.ErrTokenInvalid
}

// truncate cuts s to at most n bytes without splitting a rune
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
