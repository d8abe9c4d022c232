package response

import (
	"net/http"

	domainerrors "custodial-wallet.backend/internal/domain/errors"
	"custodial-wallet.backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Success writes body with success set to true.
func Success(c *gin.Context, status int, body gin.H) {
	if body == nil {
		body = gin.H{}
	}
	body["success"] = true
	c.JSON(status, body)
}

// Error serializes err as {success:false, error:{code,message}}. Anything that
// is not an AppError becomes a generic 500 and the cause is only logged.
func Error(c *gin.Context, err error) {
	appErr, ok := domainerrors.AsAppError(err)
	if !ok {
		appErr = domainerrors.InternalError(err)
	}
	if appErr.Status >= http.StatusInternalServerError {
		logger.Error(c.Request.Context(), "Request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("code", appErr.Code),
			zap.Error(appErr.Err),
		)
	}
	Abort(c, appErr.Status, appErr.Code, appErr.Message)
}

// Abort stops the handler chain with an error body.
func Abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
