package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"custodial-wallet.backend/internal/domain/entities"
	domainerrors "custodial-wallet.backend/internal/domain/errors"
	"custodial-wallet.backend/internal/interfaces/http/response"
	"custodial-wallet.backend/pkg/logger"
	"custodial-wallet.backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	AppIDHeader = "x-app-id"
	AppIDQuery  = "appId"
	AppKey      = "app"

	// maxPeekBody bounds how much of a JSON body is buffered to find appId.
	maxPeekBody = 1 << 20
)

// AppLookup resolves a registered application by its public id.
type AppLookup interface {
	GetByAppID(ctx context.Context, appID string) (*entities.App, error)
}

// ValidateApp resolves the calling application from the x-app-id header,
// the appId query parameter or an appId field in the JSON body.
func ValidateApp(apps AppLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		appID := extractAppID(c)
		if appID == "" {
			response.Abort(c, http.StatusBadRequest, domainerrors.CodeMissingAppID, "App ID is required")
			return
		}
		if !utils.IsValidAppID(appID) {
			response.Abort(c, http.StatusBadRequest, domainerrors.CodeInvalidAppID, "Invalid App ID format")
			return
		}

		app, err := apps.GetByAppID(c.Request.Context(), appID)
		if err != nil {
			if errors.Is(err, domainerrors.ErrNotFound) {
				response.Abort(c, http.StatusNotFound, domainerrors.CodeInvalidAppID, "App not found")
				return
			}
			response.Error(c, err)
			return
		}
		if !app.IsActive {
			response.Abort(c, http.StatusForbidden, domainerrors.CodeAppInactive, "App is not active")
			return
		}

		identity := app.Identity()
		c.Set(AppKey, identity)
		ctx := context.WithValue(c.Request.Context(), logger.AppIDKey, identity.AppID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetApp returns the identity attached by ValidateApp.
func GetApp(c *gin.Context) (*entities.AppIdentity, bool) {
	v, ok := c.Get(AppKey)
	if !ok {
		return nil, false
	}
	app, ok := v.(*entities.AppIdentity)
	return app, ok
}

func extractAppID(c *gin.Context) string {
	if v := strings.TrimSpace(c.GetHeader(AppIDHeader)); v != "" {
		return v
	}
	if v := strings.TrimSpace(c.Query(AppIDQuery)); v != "" {
		return v
	}
	return peekBodyAppID(c)
}

// peekBodyAppID reads appId from a JSON body and restores the body for the handler.
func peekBodyAppID(c *gin.Context) string {
	if c.Request.Body == nil || !strings.HasPrefix(c.ContentType(), "application/json") {
		return ""
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPeekBody))
	_ = c.Request.Body.Close()
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil || len(raw) == 0 {
		if err != nil {
			logger.Warn(c.Request.Context(), "Failed to read request body for app id", zap.Error(err))
		}
		return ""
	}

	var body struct {
		AppID string `json:"appId"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	return strings.TrimSpace(body.AppID)
}
