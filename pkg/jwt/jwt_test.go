package jwt

import (
	"errors"
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAddress = "0x9858EfFD232B4033E47d90003D41EC34EcaEda94"

func TestSessionTokenService_IssueAndVerify(t *testing.T) {
	svc := NewSessionTokenService("secret", time.Hour)

	token, err := svc.Issue(testAddress)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, testAddress, claims.Address)
	assert.Equal(t, testAddress, claims.Subject)
	assert.True(t, svc.IsValidFor(token, testAddress))
	assert.False(t, svc.IsValidFor(token, "0x0000000000000000000000000000000000000001"))
}

func TestSessionTokenService_IssueRequiresAddress(t *testing.T) {
	svc := NewSessionTokenService("secret", time.Hour)

	_, err := svc.Issue("  ")
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestSessionTokenService_VerifyMalformed(t *testing.T) {
	svc := NewSessionTokenService("secret", time.Hour)

	_, err := svc.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.False(t, svc.IsValidFor("", testAddress))
}

func TestSessionTokenService_VerifyExpired(t *testing.T) {
	svc := NewSessionTokenService("secret", time.Hour)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := svc.Issue(testAddress)
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestSessionTokenService_VerifyWrongSecret(t *testing.T) {
	issuer := NewSessionTokenService("secret-a", time.Hour)
	verifier := NewSessionTokenService("secret-b", time.Hour)

	token, err := issuer.Issue(testAddress)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionTokenService_VerifyWrongSigningMethod(t *testing.T) {
	svc := NewSessionTokenService("secret", time.Hour)

	claims := gjwt.MapClaims{
		"address": testAddress,
		"exp":     time.Now().Add(time.Minute).Unix(),
	}
	unsigned := gjwt.NewWithClaims(gjwt.SigningMethodNone, claims)
	token, err := unsigned.SignedString(gjwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionTokenService_VerifyMissingAddress(t *testing.T) {
	svc := NewSessionTokenService("secret", time.Hour)

	claims := gjwt.MapClaims{"exp": time.Now().Add(time.Minute).Unix()}
	token, err := gjwt.NewWithClaims(gjwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestSessionTokenService_VerifyNotYetValid(t *testing.T) {
	svc := NewSessionTokenService("secret", time.Hour)

	claims := gjwt.MapClaims{
		"address": testAddress,
		"exp":     time.Now().Add(time.Hour).Unix(),
		"nbf":     time.Now().Add(30 * time.Minute).Unix(),
	}
	token, err := gjwt.NewWithClaims(gjwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrUnverifiable)
}

func TestSessionTokenService_IssueSignError(t *testing.T) {
	orig := signJWTToken
	t.Cleanup(func() { signJWTToken = orig })
	signJWTToken = func(*gjwt.Token, []byte) (string, error) { return "", errors.New("sign failed") }

	svc := NewSessionTokenService("secret", time.Hour)
	_, err := svc.Issue(testAddress)
	assert.Error(t, err)
}
