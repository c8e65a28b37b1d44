package middleware

import (
	"errors"
	"strings"

	"evapod/internal/core/domain"
	"evapod/internal/core/services"
	"evapod/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const (
	// CSRFHeader carries the session's CSRF token on mutating requests
	CSRFHeader = "X-CSRF-Token"

	// AccessTokenCookie and RefreshTokenCookie name the auth cookies
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"

	localIdentity = "identity"
	localAuth     = "auth"
)

// AuthMiddleware authenticates the access token from the cookie or the
// Authorization header and stores the caller's identity
func AuthMiddleware(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 1. Try to get token from cookie first
		accessToken := c.Cookies(AccessTokenCookie)

		// 2. If not in cookie, try Authorization header
		if accessToken == "" {
			authHeader := c.Get(fiber.HeaderAuthorization)
			if strings.HasPrefix(authHeader, "Bearer ") {
				accessToken = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		result, err := auth.Authenticate(c.UserContext(), accessToken)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrTokenExpired):
				return response.Unauthorized(c, "Access token expired")
			case errors.Is(err, domain.ErrTokenRevoked):
				return response.Unauthorized(c, "Session has been revoked, please login again")
			case errors.Is(err, domain.ErrUserBlocked):
				return response.Forbidden(c, "User account is blocked")
			case errors.Is(err, domain.ErrTokenInvalid):
				return response.Unauthorized(c, "Invalid access token")
			}
			return response.InternalServerError(c, "Failed to authenticate")
		}

		c.Locals(localIdentity, result.Identity)
		c.Locals(localAuth, result)
		return c.Next()
	}
}

// CSRFMiddleware requires the session's CSRF token on every request that is
// not GET, HEAD or OPTIONS. It must run after AuthMiddleware.
func CSRFMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}

		result, ok := c.Locals(localAuth).(*services.Authenticated)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}
		if !result.CSRFMatches(c.Get(CSRFHeader)) {
			return response.Forbidden(c, "Invalid or missing CSRF token")
		}
		return c.Next()
	}
}

// RoleMiddleware creates role-based authorization middleware
func RoleMiddleware(allowedRoles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := CurrentIdentity(c)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		for _, allowedRole := range allowedRoles {
			if identity.Role == allowedRole {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// AdminOnly middleware allows only the admin role
func AdminOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleAdmin)
}

// Coordinators allows every role that manages part of the hierarchy
func Coordinators() fiber.Handler {
	return RoleMiddleware(
		domain.RoleAdmin,
		domain.RoleRegional,
		domain.RoleZonal,
		domain.RoleCoordinator,
		domain.RoleEvngCoordinator,
	)
}

// CurrentIdentity returns the identity stored by AuthMiddleware
func CurrentIdentity(c *fiber.Ctx) (domain.Identity, bool) {
	identity, ok := c.Locals(localIdentity).(domain.Identity)
	return identity, ok
}
