package handlers

import (
	"errors"
	"net/url"
	"strconv"

	"evapod/internal/core/domain"
	"evapod/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// handleError maps domain errors to HTTP responses. Anything unrecognised
// is logged and reported as a 500 with a generic message.
func handleError(c *fiber.Ctx, logger *zap.Logger, err error, fallback string) error {
	msg := domain.Message(err)

	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrOldPasswordWrong):
		return response.BadRequest(c, msg)

	case errors.Is(err, domain.ErrInvalidCredentials):
		return response.Unauthorized(c, "Invalid email or password")
	case errors.Is(err, domain.ErrOTPInvalid),
		errors.Is(err, domain.ErrOTPExpired),
		errors.Is(err, domain.ErrTokenInvalid),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenRevoked),
		errors.Is(err, domain.ErrUnauthorized):
		return response.Unauthorized(c, err.Error())

	case errors.Is(err, domain.ErrUserBlocked),
		errors.Is(err, domain.ErrUserNotVerified),
		errors.Is(err, domain.ErrCannotDeleteSelf),
		errors.Is(err, domain.ErrForbidden):
		return response.Forbidden(c, err.Error())

	case errors.Is(err, domain.ErrNotFound):
		return response.NotFound(c, msg)

	case errors.Is(err, domain.ErrDuplicateEntry):
		return response.Conflict(c, msg)
	case errors.Is(err, domain.ErrInUse):
		return response.Error(c, fiber.StatusConflict, msg)

	case errors.Is(err, domain.ErrZionIDNotFound),
		errors.Is(err, domain.ErrReferenceNotFound):
		return response.UnprocessableEntity(c, err.Error())

	case errors.Is(err, domain.ErrOTPThrottled):
		return response.TooManyRequests(c, err.Error())
	}

	logger.Error(fallback,
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return response.InternalServerError(c, fallback)
}

// parseID reads a positive numeric route parameter
func parseID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// bodyError reports a payload that could not be decoded
func bodyError(c *fiber.Ctx, err error) error {
	return response.BadRequest(c, "Invalid request body: "+err.Error())
}

// pathParam returns a route parameter with percent-escapes decoded, so
// values such as "First%20Contact" match their stored form
func pathParam(c *fiber.Ctx, name string) string {
	raw := c.Params(name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
