package crypto

import (
	"errors"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("rand failed") }

func TestHashAndCheckSecret(t *testing.T) {
	hash, err := HashSecret("client-secret")
	require.NoError(t, err)
	assert.NotEqual(t, "client-secret", hash)

	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("client-secret")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("wrong")))
}

func TestHashSecretError(t *testing.T) {
	orig := bcryptGenerateFromPassword
	t.Cleanup(func() { bcryptGenerateFromPassword = orig })
	bcryptGenerateFromPassword = func([]byte, int) ([]byte, error) {
		return nil, errors.New("bcrypt failed")
	}

	_, err := HashSecret("x")
	assert.Error(t, err)
}

func TestGenerateIdentifiers(t *testing.T) {
	hex64 := regexp.MustCompile(`^[a-f0-9]{64}$`)

	appID, err := GenerateAppID()
	require.NoError(t, err)
	assert.Regexp(t, hex64, appID)

	secret, err := GenerateClientSecret()
	require.NoError(t, err)
	assert.Regexp(t, hex64, secret)
	assert.NotEqual(t, appID, secret)

	salt, err := GenerateSalt()
	require.NoError(t, err)
	assert.Len(t, salt, 32)
}

func TestGenerateOTPRange(t *testing.T) {
	for i := 0; i < 500; i++ {
		code, err := GenerateOTP()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestRandomFailures(t *testing.T) {
	orig := randomReader
	t.Cleanup(func() { randomReader = orig })
	randomReader = failingReader{}

	_, err := GenerateOTP()
	assert.Error(t, err)
	_, err = GenerateAppID()
	assert.Error(t, err)
	_, err = GenerateSalt()
	assert.Error(t, err)
}

func TestOTPExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, now.Add(10*time.Minute), OTPExpiry(now, 10*time.Minute))
}
