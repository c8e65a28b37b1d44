package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Common domain errors. Services wrap them with context; handlers match
// with errors.Is and show the wrapped message.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrZionIDNotFound     = errors.New("referenced zionId does not exist")
	ErrReferenceNotFound  = errors.New("referenced record does not exist")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInUse              = errors.New("record is still referenced")
)

// Auth errors
var (
	ErrUserNotVerified  = errors.New("email address is not verified")
	ErrUserBlocked      = errors.New("user account is blocked")
	ErrOTPInvalid       = errors.New("invalid OTP")
	ErrOTPExpired       = errors.New("OTP expired")
	ErrOTPThrottled     = errors.New("OTP requested too recently")
	ErrTokenInvalid     = errors.New("token invalid")
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenRevoked     = errors.New("token revoked")
	ErrOldPasswordWrong = errors.New("old password is incorrect")
	ErrCannotDeleteSelf = errors.New("cannot delete your own account")
)

// Invalid wraps ErrInvalidInput with a field-specific message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Duplicate wraps ErrDuplicateEntry, e.g. Duplicate("subzone", "name", "Thevara").
func Duplicate(entity, field string, value any) error {
	return fmt.Errorf("%w: %s with %s %v already exists", ErrDuplicateEntry, entity, field, value)
}

// NotFound wraps ErrNotFound for an entity.
func NotFound(entity string) error {
	return fmt.Errorf("%w: %s not found", ErrNotFound, entity)
}

// UnknownZionID wraps ErrZionIDNotFound for the field that referenced it.
func UnknownZionID(field string, zionID int64) error {
	return fmt.Errorf("%w: %s zionId %d", ErrZionIDNotFound, field, zionID)
}

// UnknownReference wraps ErrReferenceNotFound.
func UnknownReference(entity string, ref any) error {
	return fmt.Errorf("%w: %s %v", ErrReferenceNotFound, entity, ref)
}

// InUse wraps ErrInUse, e.g. InUse("region", "it still has zones").
func InUse(entity, reason string) error {
	return fmt.Errorf("%w: %s cannot be deleted, %s", ErrInUse, entity, reason)
}

// Message returns the user-facing part of a wrapped domain error, dropping
// the sentinel prefix.
func Message(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if inner := errors.Unwrap(err); inner != nil {
		if rest, ok := strings.CutPrefix(msg, inner.Error()+": "); ok {
			return rest
		}
	}
	return msg
}
