package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"time"
)

const (
	otpMin = 100000
	otpMax = 999999

	// AppIDBytes yields a 64 character lowercase hex app id.
	AppIDBytes = 32
	// SaltBytes is the length of a wallet encryption salt.
	SaltBytes = 16
)

var (
	randomReader io.Reader = rand.Reader
	randomRead             = func(b []byte) (int, error) { return io.ReadFull(randomReader, b) }
)

// GenerateRandomToken returns length random bytes, hex encoded.
func GenerateRandomToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := randomRead(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

func GenerateAppID() (string, error) {
	return GenerateRandomToken(AppIDBytes)
}

func GenerateClientSecret() (string, error) {
	return GenerateRandomToken(AppIDBytes)
}

func GenerateSalt() (string, error) {
	return GenerateRandomToken(SaltBytes)
}

// GenerateOTP returns a uniformly random six digit code in [100000, 999999].
func GenerateOTP() (string, error) {
	n, err := rand.Int(randomReader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+otpMin), nil
}

// OTPExpiry is the instant a code issued at now stops being accepted.
func OTPExpiry(now time.Time, ttl time.Duration) time.Time {
	return now.Add(ttl)
}
