package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"
)

// ErrOTPUnavailable is returned when the code store is not reachable
var ErrOTPUnavailable = errors.New("otp store is unavailable")

const (
	otpTTL         = 5 * time.Minute
	otpMaxAttempts = 5
)

// OTPService issues and verifies one-time codes for checkout phone
// verification. Codes live in Redis with a short TTL and are delivered over
// WhatsApp.
type OTPService struct {
	cache *RedisCache
	waha  *WahaService
}

func NewOTPService(cache *RedisCache, waha *WahaService) *OTPService {
	return &OTPService{cache: cache, waha: waha}
}

// RequestOTP generates a code for the phone, stores it and sends it over the
// WhatsApp bridge.
func (s *OTPService) RequestOTP(ctx context.Context, phone string) error {
	if s.cache == nil {
		return ErrOTPUnavailable
	}

	code, err := generateOTPCode()
	if err != nil {
		return fmt.Errorf("failed to generate otp: %w", err)
	}

	if err := s.cache.Set(ctx, otpKey(phone), code, otpTTL); err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}
	// Reset the attempt counter for a fresh code
	_ = s.cache.Delete(ctx, otpAttemptsKey(phone))

	if err := s.waha.SendMessage(phone, buildOTPMessage(code)); err != nil {
		return fmt.Errorf("failed to deliver otp: %w", err)
	}
	return nil
}

// VerifyOTP checks the submitted code. The code is consumed on success;
// after too many wrong attempts the stored code is discarded.
func (s *OTPService) VerifyOTP(ctx context.Context, phone, code string) (bool, error) {
	if s.cache == nil {
		return false, ErrOTPUnavailable
	}

	attempts, err := s.cache.Increment(ctx, otpAttemptsKey(phone))
	if err == nil && attempts == 1 {
		_ = s.cache.Expire(ctx, otpAttemptsKey(phone), otpTTL)
	}
	if attempts > otpMaxAttempts {
		_ = s.cache.Delete(ctx, otpKey(phone))
		return false, fmt.Errorf("too many otp attempts for %s", phone)
	}

	var stored string
	if err := s.cache.Get(ctx, otpKey(phone), &stored); err != nil {
		return false, nil // expired or never issued
	}
	if stored != code || code == "" {
		return false, nil
	}

	_ = s.cache.Delete(ctx, otpKey(phone))
	_ = s.cache.Delete(ctx, otpAttemptsKey(phone))
	return true, nil
}

func otpKey(phone string) string         { return "otp:" + phone }
func otpAttemptsKey(phone string) string { return "otp:attempts:" + phone }

func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func buildOTPMessage(code string) string {
	return fmt.Sprintf("Your verification code is %s. It expires in 5 minutes. Do not share this code with anyone.", code)
}
