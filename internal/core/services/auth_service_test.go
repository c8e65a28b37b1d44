package services

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"unicode/utf8"

	"evapod/internal/core/domain"
	"evapod/internal/pkg/optional"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var otpPattern = regexp.MustCompile(`\b\d{6}\b`)

// linkToken returns the token at the end of the emailed link with the
// given path prefix
func linkToken(t *testing.T, f *fixture, email, prefix string) string {
	t.Helper()
	msg, ok := f.mail.Last(email)
	require.True(t, ok, "no email sent to %s", email)
	i := strings.Index(msg.TextBody, prefix)
	require.GreaterOrEqual(t, i, 0, "no %s link in %q", prefix, msg.TextBody)
	rest := msg.TextBody[i+len(prefix):]
	return strings.Fields(rest)[0]
}

// loginCode returns the last OTP emailed to email
func loginCode(t *testing.T, f *fixture, email string) string {
	t.Helper()
	msg, ok := f.mail.Last(email)
	require.True(t, ok, "no email sent to %s", email)
	code := otpPattern.FindString(msg.TextBody)
	require.NotEmpty(t, code)
	return code
}

func register(t *testing.T, f *fixture, email string) {
	t.Helper()
	user, err := f.auth.Register(context.Background(), &RegisterInput{
		Name:     "Anu",
		Email:    email,
		Password: "password123",
		Phone:    "9876543210",
	})
	require.NoError(t, err)
	assert.False(t, user.IsVerified)
}

// login runs the password and OTP steps and returns the session tokens
func login(t *testing.T, f *fixture, email, pw string) *AuthResult {
	t.Helper()
	ctx := context.Background()

	challenge, err := f.auth.Login(ctx, &LoginInput{Email: email, Password: pw})
	require.NoError(t, err)
	assert.Equal(t, int(f.otp.TTL().Seconds()), challenge.ExpiresIn)

	result, err := f.auth.VerifyOTP(ctx, &VerifyOTPInput{Email: email, OTP: loginCode(t, f, email)}, ClientMeta{UserAgent: "test", IP: "127.0.0.1"})
	require.NoError(t, err)
	return result
}

func TestAuthService_RegisterVerifyLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	register(t, f, "anu@example.org")

	_, err := f.auth.Login(ctx, &LoginInput{Email: "anu@example.org", Password: "password123"})
	assert.ErrorIs(t, err, domain.ErrUserNotVerified)

	token := linkToken(t, f, "anu@example.org", "/verify/")
	require.NoError(t, f.auth.VerifyEmail(ctx, token))
	assert.Error(t, f.auth.VerifyEmail(ctx, token), "verification tokens are single use")

	result := login(t, f, "anu@example.org", "password123")
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.NotEmpty(t, result.CSRFToken)
	assert.NotEmpty(t, result.SessionID)
	assert.True(t, result.User.IsVerified)
	assert.Equal(t, FirstZionID, result.User.ZionID)

	authed, err := f.auth.Authenticate(ctx, result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, result.SessionID, authed.Identity.SessionID)
	assert.Equal(t, domain.RoleUser, authed.Identity.Role)
	assert.True(t, authed.CSRFMatches(result.CSRFToken))
	assert.False(t, authed.CSRFMatches("forged"))
}

func TestAuthService_LoginFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createUser(t, "Anu", "anu@example.org", domain.RoleUser)

	_, err := f.auth.Login(ctx, &LoginInput{Email: "anu@example.org", Password: "wrong-password"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = f.auth.Login(ctx, &LoginInput{Email: "nobody@example.org", Password: "password123"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = f.auth.VerifyOTP(ctx, &VerifyOTPInput{Email: "anu@example.org", OTP: "123456"}, ClientMeta{})
	assert.ErrorIs(t, err, domain.ErrOTPInvalid)
}

func TestAuthService_BlockedUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.createUser(t, "Anu", "anu@example.org", domain.RoleUser)
	result := login(t, f, "anu@example.org", "password123")

	_, err := f.users.Update(ctx, domain.Identity{Role: domain.RoleAdmin}, user.ID, &UserInput{IsBlocked: optional.Of(true)})
	require.NoError(t, err)

	_, err = f.auth.Authenticate(ctx, result.AccessToken)
	assert.Error(t, err)

	_, err = f.auth.Login(ctx, &LoginInput{Email: "anu@example.org", Password: "password123"})
	assert.ErrorIs(t, err, domain.ErrUserBlocked)
}

func TestAuthService_RefreshRotation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createUser(t, "Anu", "anu@example.org", domain.RoleUser)
	first := login(t, f, "anu@example.org", "password123")

	second, err := f.auth.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.NotEqual(t, first.CSRFToken, second.CSRFToken)

	authed, err := f.auth.Authenticate(ctx, second.AccessToken)
	require.NoError(t, err)
	assert.True(t, authed.CSRFMatches(second.CSRFToken))
	assert.False(t, authed.CSRFMatches(first.CSRFToken))

	// Replaying the rotated token revokes the session
	_, err = f.auth.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrTokenRevoked)
	_, err = f.auth.Refresh(ctx, second.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrTokenRevoked)
	_, err = f.auth.Authenticate(ctx, second.AccessToken)
	assert.ErrorIs(t, err, domain.ErrTokenRevoked)
}

func TestAuthService_Logout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createUser(t, "Anu", "anu@example.org", domain.RoleUser)
	result := login(t, f, "anu@example.org", "password123")

	authed, err := f.auth.Authenticate(ctx, result.AccessToken)
	require.NoError(t, err)
	require.NoError(t, f.auth.Logout(ctx, authed.Identity))

	_, err = f.auth.Authenticate(ctx, result.AccessToken)
	assert.ErrorIs(t, err, domain.ErrTokenRevoked)
}

func TestAuthService_PasswordReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createUser(t, "Anu", "anu@example.org", domain.RoleUser)
	session := login(t, f, "anu@example.org", "password123")

	require.NoError(t, f.auth.ForgotPassword(ctx, "nobody@example.org"))
	_, sent := f.mail.Last("nobody@example.org")
	assert.False(t, sent)

	require.NoError(t, f.auth.ForgotPassword(ctx, "anu@example.org"))
	token := linkToken(t, f, "anu@example.org", "/reset-password/")

	err := f.auth.ResetPassword(ctx, token, &ResetPasswordInput{Password: "short"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, f.auth.ResetPassword(ctx, token, &ResetPasswordInput{Password: "new-password"}))
	assert.Error(t, f.auth.ResetPassword(ctx, token, &ResetPasswordInput{Password: "other-password"}))

	// Every session is signed out
	_, err = f.auth.Authenticate(ctx, session.AccessToken)
	assert.ErrorIs(t, err, domain.ErrTokenRevoked)

	_, err = f.auth.Login(ctx, &LoginInput{Email: "anu@example.org", Password: "password123"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	login(t, f, "anu@example.org", "new-password")
}

func TestAuthService_ResendVerification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	register(t, f, "anu@example.org")
	first := linkToken(t, f, "anu@example.org", "/verify/")

	require.NoError(t, f.auth.ResendVerification(ctx, "nobody@example.org"))
	require.NoError(t, f.auth.ResendVerification(ctx, "anu@example.org"))
	second := linkToken(t, f, "anu@example.org", "/verify/")
	assert.NotEqual(t, first, second)

	// The earlier link was replaced
	assert.Error(t, f.auth.VerifyEmail(ctx, first))
	require.NoError(t, f.auth.VerifyEmail(ctx, second))
}

func TestTruncateKeepsRunes(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abc", truncate("abcdef", 3))

	// "é" is two bytes; cutting inside it drops the whole rune
	got := truncate("abé", 3)
	assert.Equal(t, "ab", got)
	assert.True(t, utf8.ValidString(got))

	agent := strings.Repeat("ü", 200)
	got = truncate(agent, 255)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), 255)
	assert.Equal(t, 254, len(got))
}
