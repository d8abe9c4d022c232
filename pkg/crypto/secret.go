package crypto

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// SecretCost is the bcrypt cost for app client secrets.
const SecretCost = 12

var bcryptGenerateFromPassword = bcrypt.GenerateFromPassword

// HashSecret returns the bcrypt hash of a client secret.
func HashSecret(secret string) (string, error) {
	bytes, err := bcryptGenerateFromPassword([]byte(secret), SecretCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(bytes), nil
}
