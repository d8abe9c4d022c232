package middleware

import (
	"context"
	"strings"

	"custodial-wallet.backend/internal/domain/entities"
	domainerrors "custodial-wallet.backend/internal/domain/errors"
	"custodial-wallet.backend/internal/interfaces/http/response"
	"github.com/gin-gonic/gin"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// TokenQuery is the fallback for clients that cannot set headers
	TokenQuery = "token"
	// WalletKey is the context key for the authenticated wallet
	WalletKey = "wallet"
)

// SessionResolver turns a bearer token into the active wallet it names.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*entities.Wallet, error)
}

// AuthenticateWallet requires a valid session token for an active wallet.
// When ValidateApp ran first, the wallet must also belong to that app.
func AuthenticateWallet(sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		wallet, err := sessions.ResolveSession(c.Request.Context(), BearerToken(c))
		if err != nil {
			response.Error(c, err)
			return
		}

		if app, ok := GetApp(c); ok && app.AppID != wallet.AppID {
			response.Error(c, domainerrors.WalletNotFound())
			return
		}

		c.Set(WalletKey, wallet.Summary())
		c.Next()
	}
}

// BearerToken returns the session token from the Authorization header or the
// token query parameter, or "" if neither is present.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader(AuthorizationHeader)
	if len(header) > len(BearerPrefix) && strings.EqualFold(header[:len(BearerPrefix)], BearerPrefix) {
		return strings.TrimSpace(header[len(BearerPrefix):])
	}
	return strings.TrimSpace(c.Query(TokenQuery))
}

// GetWallet gets the sanitized wallet from context
func GetWallet(c *gin.Context) (*entities.WalletSummary, bool) {
	v, exists := c.Get(WalletKey)
	if !exists {
		return nil, false
	}
	wallet, ok := v.(*entities.WalletSummary)
	return wallet, ok
}
