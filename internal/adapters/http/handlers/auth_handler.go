package handlers

import (
	"strings"
	"time"

	"evapod/internal/adapters/http/middleware"
	"evapod/internal/config"
	"evapod/internal/core/services"
	"evapod/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler handles the /users endpoints: account, login and session
type AuthHandler struct {
	authService *services.AuthService
	userService *services.UserService
	cfg         *config.Config
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, userService *services.UserService, cfg *config.Config, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		cfg:         cfg,
		logger:      logger,
	}
}

// EmailRequest carries a single email address
type EmailRequest struct {
	Email string `json:"email"`
}

// RefreshRequest carries a refresh token when no cookie is available
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Register handles user registration
// @Summary Register new user
// @Description Create an unverified account and email a verification link. zionId is assigned when omitted.
// @Tags Users
// @Accept json
// @Produce json
// @Param body body services.RegisterInput true "Registration data"
// @Success 201 {object} response.Response{data=models.UserResponse}
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /users/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return bodyError(c, err)
	}
	if strings.TrimSpace(req.Name) == "" {
		return response.BadRequest(c, "Name is required")
	}
	if strings.TrimSpace(req.Email) == "" {
		return response.BadRequest(c, "Email is required")
	}

	user, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		return handleError(c, h.logger, err, "Failed to register user")
	}

	return response.Created(c, "Registration successful, please verify your email", user)
}

// ResendVerification re-sends the verification link
// @Summary Resend verification email
// @Tags Users
// @Accept json
// @Produce json
// @Param body body EmailRequest true "Email"
// @Success 200 {object} response.Response
// @Router /users/verify [post]
func (h *AuthHandler) ResendVerification(c *fiber.Ctx) error {
	var req EmailRequest
	if err := c.BodyParser(&req); err != nil {
		return bodyError(c, err)
	}
	if strings.TrimSpace(req.Email) == "" {
		return response.BadRequest(c, "Email is required")
	}

	if err := h.authService.ResendVerification(c.UserContext(), strings.TrimSpace(req.Email)); err != nil {
		return handleError(c, h.logger, err, "Failed to send verification email")
	}
	return response.Success(c, "If the account exists and is not verified, a new link has been sent", nil)
}

// VerifyEmail consumes a verification token
// @Summary Verify email address
// @Tags Users
// @Produce json
// @Param token path string true "Verification token"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /users/verify/{token} [post]
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	if err := h.authService.VerifyEmail(c.UserContext(), c.Params("token")); err != nil {
		return handleError(c, h.logger, err, "Failed to verify email")
	}
	return response.Success(c, "Email verified, you can now log in", nil)
}

// Login handles the first login step
// @Summary Login user
// @Description Check the credentials and email a one-time login code
// @Tags Users
// @Accept json
// @Produce json
// @Param body body services.LoginInput true "Login credentials"
// @Success 200 {object} response.Response{data=services.LoginChallenge}
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 429 {object} response.Response
// @Router /users/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req services.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return bodyError(c, err)
	}
	if req.Email == "" {
		return response.BadRequest(c, "Email is required")
	}
	if req.Password == "" {
		return response.BadRequest(c, "Password is required")
	}
	req.Email = strings.TrimSpace(req.Email)

	challenge, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return handleError(c, h.logger, err, "Failed to login")
	}

	return response.Success(c, "A login code has been sent to your email", challenge)
}

// VerifyOTP handles the second login step
// @Summary Verify login code
// @Description Exchange the emailed code for a session
// @Tags Users
// @Accept json
// @Produce json
// @Param body body services.VerifyOTPInput true "Email and code"
// @Success 200 {object} response.Response{data=services.AuthResult}
// @Failure 401 {object} response.Response
// @Router /users/verifyOtp [post]
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req services.VerifyOTPInput
	if err := c.BodyParser(&req); err != nil {
		return bodyError(c, err)
	}
	if req.Email == "" || req.OTP == "" {
		return response.BadRequest(c, "Email and otp are required")
	}

	result, err := h.authService.VerifyOTP(c.UserContext(), &req, services.ClientMeta{
		UserAgent: c.Get(fiber.HeaderUserAgent),
		IP:        c.IP(),
	})
	if err != nil {
		return handleError(c, h.logger, err, "Failed to verify login code")
	}

	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)
	return response.Success(c, "Login successful", result)
}

// Refresh rotates the refresh token
// @Summary Refresh session
// @Description Rotate the refresh token (cookie or body) and issue new access and CSRF tokens
// @Tags Users
// @Accept json
// @Produce json
// @Param body body RefreshRequest false "Refresh token when not sent as cookie"
// @Success 200 {object} response.Response{data=services.AuthResult}
// @Failure 401 {object} response.Response
// @Router /users/refresh [post]
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	refreshToken := c.Cookies(middleware.RefreshTokenCookie)
	if refreshToken == "" {
		var req RefreshRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return bodyError(c, err)
			}
		}
		refreshToken = req.RefreshToken
	}
	if refreshToken == "" {
		return response.Unauthorized(c, "Refresh token not found")
	}

	result, err := h.authService.Refresh(c.UserContext(), refreshToken)
	if err != nil {
		h.clearAuthCookies(c)
		return handleError(c, h.logger, err, "Failed to refresh session")
	}

	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)
	return response.Success(c, "Session refreshed", result)
}

// RefreshCSRF issues a new CSRF token
// @Summary Refresh CSRF token
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /users/refresh-csrf [post]
func (h *AuthHandler) RefreshCSRF(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	csrf, err := h.authService.RefreshCSRF(c.UserContext(), identity.SessionID)
	if err != nil {
		return handleError(c, h.logger, err, "Failed to refresh CSRF token")
	}
	return response.Success(c, "CSRF token refreshed", fiber.Map{"csrfToken": csrf})
}

// Logout handles user logout
// @Summary Logout user
// @Description Revoke the current session
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /users/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	if err := h.authService.Logout(c.UserContext(), identity); err != nil {
		return handleError(c, h.logger, err, "Failed to logout")
	}

	h.clearAuthCookies(c)
	return response.Success(c, "Logged out successfully", nil)
}

// Me returns the current user
// @Summary Get current user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.UserResponse}
// @Failure 401 {object} response.Response
// @Router /users/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	user, err := h.userService.Profile(c.UserContext(), identity.UserID)
	if err != nil {
		return handleError(c, h.logger, err, "Failed to get user")
	}
	return response.Success(c, "User retrieved successfully", user)
}

// UpdateProfile updates the current user's profile
// @Summary Update profile
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ProfileInput true "Profile fields"
// @Success 200 {object} response.Response{data=models.UserResponse}
// @Failure 400 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /users/update [put]
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.ProfileInput
	if err := c.BodyParser(&req); err != nil {
		return bodyError(c, err)
	}

	user, err := h.userService.UpdateProfile(c.UserContext(), identity.UserID, &req)
	if err != nil {
		return handleError(c, h.logger, err, "Failed to update profile")
	}
	return response.Success(c, "Profile updated successfully", user)
}

// ChangePassword changes the current user's password
// @Summary Change password
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ChangePasswordInput true "Old and new password"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /users/change-password [post]
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.ChangePasswordInput
	if err := c.BodyParser(&req); err != nil {
		return bodyError(c, err)
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		return response.BadRequest(c, "oldPassword and newPassword are required")
	}

	if err := h.userService.ChangePassword(c.UserContext(), identity, &req); err != nil {
		return handleError(c, h.logger, err, "Failed to change password")
	}
	return response.Success(c, "Password changed successfully", nil)
}

// ForgotPassword emails a reset link
// @Summary Forgot password
// @Tags Users
// @Accept json
// @Produce json
// @Param body body EmailRequest true "Email"
// @Success 200 {object} response.Response
// @Router /users/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req EmailRequest
	if err := c.BodyParser(&req); err != nil {
		return bodyError(c, err)
	}
	if strings.TrimSpace(req.Email) == "" {
		return response.BadRequest(c, "Email is required")
	}

	if err := h.authService.ForgotPassword(c.UserContext(), strings.TrimSpace(req.Email)); err != nil {
		return handleError(c, h.logger, err, "Failed to send reset email")
	}
	return response.Success(c, "If the account exists, a reset link has been sent", nil)
}

// ResetPassword sets a new password with a reset token
// @Summary Reset password
// @Tags Users
// @Accept json
// @Produce json
// @Param token path string true "Reset token"
// @Param body body services.ResetPasswordInput true "New password"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /users/reset-password/{token} [post]
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req services.ResetPasswordInput
	if err := c.BodyParser(&req); err != nil {
		return bodyError(c, err)
	}

	if err := h.authService.ResetPassword(c.UserContext(), c.Params("token"), &req); err != nil {
		return handleError(c, h.logger, err, "Failed to reset password")
	}
	return response.Success(c, "Password has been reset, please log in", nil)
}

// setAuthCookies sets access and refresh token cookies
func (h *AuthHandler) setAuthCookies(c *fiber.Ctx, accessToken, refreshToken string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    accessToken,
		Path:     "/",
		MaxAge:   h.cfg.JWT.AccessTokenMins * 60,
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})

	c.Cookie(&fiber.Cookie{
		Name:     middleware.RefreshTokenCookie,
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   h.cfg.JWT.RefreshTokenDays * 24 * 60 * 60,
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})
}

// clearAuthCookies clears auth cookies
func (h *AuthHandler) clearAuthCookies(c *fiber.Ctx) {
	for _, name := range []string{middleware.AccessTokenCookie, middleware.RefreshTokenCookie} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			Expires:  time.Now().Add(-1 * time.Hour),
			Secure:   h.cfg.Cookie.Secure,
			HTTPOnly: true,
			SameSite: h.cfg.Cookie.SameSite,
			Domain:   h.cfg.Cookie.Domain,
		})
	}
}
