package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"custodial-wallet.backend/internal/config"
	"custodial-wallet.backend/internal/interfaces/http/handlers"
	"custodial-wallet.backend/internal/interfaces/http/middleware"
	"custodial-wallet.backend/pkg/logger"
	"custodial-wallet.backend/pkg/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const healthCheckTimeout = 2 * time.Second

type routeDeps struct {
	metrics          *metrics.Metrics
	emailAuthHandler *handlers.AuthHandler
	smsAuthHandler   *handlers.AuthHandler
	walletHandler    *handlers.WalletHandler
	validateApp      gin.HandlerFunc
	authenticate     gin.HandlerFunc
	idempotency      gin.HandlerFunc
	health           func(ctx context.Context) error
}

func newRouter(cfg *config.Config, d routeDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware(d.metrics))

	applyCORSMiddleware(r, cfg.Server.AllowedOrigins)
	registerHealthRoute(r, d.health)
	registerMetricsRoute(r, d.metrics)
	registerAPIV1Routes(r, d)
	return r
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		auth.Use(d.validateApp)
		{
			email := auth.Group("/email")
			email.POST("/login", d.idempotency, d.emailAuthHandler.Login)
			email.POST("/verify", d.emailAuthHandler.Verify)
			email.POST("/resend-otp", d.idempotency, d.emailAuthHandler.ResendOTP)

			sms := auth.Group("/sms")
			sms.POST("/login", d.idempotency, d.smsAuthHandler.Login)
			sms.POST("/verify", d.smsAuthHandler.Verify)
			sms.POST("/resend-otp", d.idempotency, d.smsAuthHandler.ResendOTP)
		}

		wallet := v1.Group("/wallet")
		wallet.Use(d.validateApp, d.authenticate)
		{
			wallet.GET("/me", d.walletHandler.GetMe)
			wallet.POST("/sign-message", d.walletHandler.SignMessage)
			wallet.POST("/verify-message", d.walletHandler.VerifyMessage)
		}
	}
}

func applyCORSMiddleware(r *gin.Engine, allowed []string) {
	allowAll := len(allowed) == 0
	origins := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			allowAll = true
		}
		origins[strings.TrimRight(o, "/")] = struct{}{}
	}

	r.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := origins[origin]; ok || allowAll {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
			}
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-App-Id, Idempotency-Key, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID, X-Idempotency-Hit")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

func registerHealthRoute(r *gin.Engine, check func(ctx context.Context) error) {
	r.GET("/health", func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
			defer cancel()
			if err := check(ctx); err != nil {
				logger.Warn(ctx, "Health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func registerMetricsRoute(r *gin.Engine, m *metrics.Metrics) {
	if m == nil {
		return
	}
	r.GET("/metrics", gin.WrapH(m.Handler()))
}
