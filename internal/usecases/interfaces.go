package usecases

import (
	"context"
	"time"

	"custodial-wallet.backend/pkg/hdwallet"
	"custodial-wallet.backend/pkg/jwt"
)

// OTPDelivery sends a one-time code to an email address or phone number.
type OTPDelivery interface {
	SendOTP(ctx context.Context, destination, code string, validFor time.Duration) error
}

// WelcomeDelivery sends the post-verification greeting.
type WelcomeDelivery interface {
	SendWelcome(ctx context.Context, destination string) error
}

// SMSDelivery is the SMS gateway contract.
type SMSDelivery interface {
	OTPDelivery
	WelcomeDelivery
}

type KeyGenerator interface {
	Generate() (*hdwallet.GeneratedWallet, error)
}

// KeySealer encrypts private keys before they are stored.
type KeySealer interface {
	Encrypt(ctx context.Context, plaintext []byte, salt string) (string, error)
}

// KeyOpener decrypts a stored private key for a single operation.
type KeyOpener interface {
	Decrypt(ctx context.Context, ciphertext string, salt string) ([]byte, error)
}

type SessionTokens interface {
	Issue(address string) (string, error)
	IsValidFor(token, address string) bool
}

// SessionVerifier parses a session token into its claims.
type SessionVerifier interface {
	Verify(token string) (*jwt.SessionClaims, error)
}
