package services

import (
	"testing"
	"time"

	"evapod/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clock is a settable time source
type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newTestOTP() (*OTPService, *clock) {
	c := &clock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	s := NewOTPService(10 * time.Minute)
	s.now = c.Now
	return s, c
}

func TestOTPService_GenerateAndVerify(t *testing.T) {
	s, _ := newTestOTP()

	code, err := s.Generate("Anu@Example.org", 7)
	require.NoError(t, err)
	assert.Len(t, code, OTPLength)

	userID, err := s.Verify(" anu@example.org ", code)
	require.NoError(t, err)
	assert.Equal(t, uint(7), userID)

	// Codes are single use
	_, err = s.Verify("anu@example.org", code)
	assert.ErrorIs(t, err, domain.ErrOTPInvalid)
}

func TestOTPService_AttemptsExhausted(t *testing.T) {
	s, _ := newTestOTP()

	code, err := s.Generate("anu@example.org", 7)
	require.NoError(t, err)
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	for i := 0; i < OTPMaxAttempts; i++ {
		_, err := s.Verify("anu@example.org", wrong)
		assert.ErrorIs(t, err, domain.ErrOTPInvalid)
	}
	assert.Zero(t, s.Pending())

	_, err = s.Verify("anu@example.org", code)
	assert.ErrorIs(t, err, domain.ErrOTPInvalid)
}

func TestOTPService_Expiry(t *testing.T) {
	s, c := newTestOTP()

	code, err := s.Generate("anu@example.org", 7)
	require.NoError(t, err)

	c.now = c.now.Add(11 * time.Minute)
	_, err = s.Verify("anu@example.org", code)
	assert.ErrorIs(t, err, domain.ErrOTPExpired)
}

func TestOTPService_ResendThrottle(t *testing.T) {
	s, c := newTestOTP()

	_, err := s.Generate("anu@example.org", 7)
	require.NoError(t, err)

	_, err = s.Generate("anu@example.org", 7)
	assert.ErrorIs(t, err, domain.ErrOTPThrottled)

	c.now = c.now.Add(OTPResendAfter)
	code, err := s.Generate("anu@example.org", 7)
	require.NoError(t, err)

	userID, err := s.Verify("anu@example.org", code)
	require.NoError(t, err)
	assert.Equal(t, uint(7), userID)
}

func TestOTPService_Sweep(t *testing.T) {
	s, c := newTestOTP()

	_, err := s.Generate("anu@example.org", 7)
	require.NoError(t, err)
	c.now = c.now.Add(5 * time.Minute)
	_, err = s.Generate("biju@example.org", 8)
	require.NoError(t, err)

	c.now = c.now.Add(6 * time.Minute)
	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Pending())
}
