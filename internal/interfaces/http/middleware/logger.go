package middleware

import (
	"time"

	"custodial-wallet.backend/pkg/logger"
	"custodial-wallet.backend/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// LoggerMiddleware logs each request and records its latency. The query
// string is left out because it may carry a session token.
func LoggerMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		m.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), latency)
		logger.LogRequest(c.Request.Context(), c.Request.Method, c.Request.URL.Path, c.Writer.Status(), latency, c.ClientIP())
	}
}
