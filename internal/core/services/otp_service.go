package services

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"evapod/internal/core/domain"
)

// OTP settings
const (
	OTPLength      = 6
	DefaultOTPTTL  = 10 * time.Minute
	OTPMaxAttempts = 5
	OTPResendAfter = time.Minute
)

// OTPEntry represents a single login OTP held in memory
type OTPEntry struct {
	Code      string
	UserID    uint
	IssuedAt  time.Time
	ExpiresAt time.Time
	Attempts  int
}

// OTPService issues and checks login OTPs. Entries live in memory only, so
// a restart invalidates pending logins.
type OTPService struct {
	store map[string]*OTPEntry // key = normalized email
	ttl   time.Duration
	mu    sync.Mutex
	now   func() time.Time
}

// NewOTPService creates a new OTP service. A zero ttl uses DefaultOTPTTL.
func NewOTPService(ttl time.Duration) *OTPService {
	if ttl <= 0 {
		ttl = DefaultOTPTTL
	}
	return &OTPService{
		store: make(map[string]*OTPEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// TTL returns how long a code stays valid
func (s *OTPService) TTL() time.Duration {
	return s.ttl
}

// Generate creates a new code for email, replacing any earlier one. A new
// code is refused within OTPResendAfter of the previous one.
func (s *OTPService) Generate(email string, userID uint) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := otpKey(email)
	now := s.now()
	if existing, ok := s.store[key]; ok && now.Before(existing.ExpiresAt) && now.Sub(existing.IssuedAt) < OTPResendAfter {
		return "", otpThrottled(OTPResendAfter - now.Sub(existing.IssuedAt))
	}

	code, err := generateSecureOTP(OTPLength)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}

	s.store[key] = &OTPEntry{
		Code:      code,
		UserID:    userID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}
	return code, nil
}

// Verify consumes the code for email and returns the user it was issued
// to. Each wrong guess uses an attempt; after OTPMaxAttempts the code is
// discarded.
func (s *OTPService) Verify(email, code string) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := otpKey(email)
	entry, ok := s.store[key]
	if !ok {
		return 0, domain.ErrOTPInvalid
	}

	if s.now().After(entry.ExpiresAt) {
		delete(s.store, key)
		return 0, domain.ErrOTPExpired
	}

	entry.Attempts++
	if subtle.ConstantTimeCompare([]byte(entry.Code), []byte(strings.TrimSpace(code))) != 1 {
		if entry.Attempts >= OTPMaxAttempts {
			delete(s.store, key)
			return 0, fmt.Errorf("%w: too many attempts, request a new code", domain.ErrOTPInvalid)
		}
		return 0, fmt.Errorf("%w: %d attempts left", domain.ErrOTPInvalid, OTPMaxAttempts-entry.Attempts)
	}

	delete(s.store, key)
	return entry.UserID, nil
}

// Sweep removes expired entries and returns how many were dropped
func (s *OTPService) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, entry := range s.store {
		if now.After(entry.ExpiresAt) {
			delete(s.store, key)
			removed++
		}
	}
	return removed
}

// Pending reports how many codes are outstanding
func (s *OTPService) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.store)
}

// otpThrottled wraps domain.ErrOTPThrottled with the remaining wait
func otpThrottled(wait time.Duration) error {
	return fmt.Errorf("%w: try again in %d seconds", domain.ErrOTPThrottled, int(wait.Seconds()+0.5))
}

func otpKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// generateSecureOTP generates a cryptographically secure random OTP
func generateSecureOTP(length int) (string, error) {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}
