package jwt

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("token has expired")
	ErrInvalidPayload = errors.New("token payload missing wallet address")
	ErrUnverifiable   = errors.New("token could not be verified")
)

// SessionClaims names the wallet a session token was issued for. Nothing else
// in the token is trusted; callers re-resolve the wallet by address.
type SessionClaims struct {
	Address string `json:"address"`
	jwt.RegisteredClaims
}

// SessionTokenService issues and verifies HS256 wallet session tokens.
type SessionTokenService struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

var signJWTToken = func(token *jwt.Token, secret []byte) (string, error) {
	return token.SignedString(secret)
}

func NewSessionTokenService(secret string, expiry time.Duration) *SessionTokenService {
	return &SessionTokenService{
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}
}

// Issue signs a token for address.
func (s *SessionTokenService) Issue(address string) (string, error) {
	if strings.TrimSpace(address) == "" {
		return "", ErrInvalidPayload
	}

	now := s.now()
	claims := &SessionClaims{
		Address: address,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   address,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return signJWTToken(token, s.secret)
}

// Verify checks signature and expiry and returns the claims.
// Errors are one of ErrExpiredToken, ErrInvalidToken, ErrInvalidPayload or ErrUnverifiable.
func (s *SessionTokenService) Verify(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenMalformed),
			errors.Is(err, jwt.ErrTokenSignatureInvalid),
			errors.Is(err, jwt.ErrTokenUnverifiable):
			return nil, ErrInvalidToken
		default:
			return nil, ErrUnverifiable
		}
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Address) == "" {
		return nil, ErrInvalidPayload
	}

	return claims, nil
}

// IsValidFor reports whether token verifies and names the given address.
func (s *SessionTokenService) IsValidFor(tokenString, address string) bool {
	if tokenString == "" {
		return false
	}
	claims, err := s.Verify(tokenString)
	if err != nil {
		return false
	}
	return strings.EqualFold(claims.Address, address)
}
