package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"custodial-wallet.backend/internal/config"
	"custodial-wallet.backend/internal/infrastructure/datasources/postgres"
	"custodial-wallet.backend/internal/infrastructure/jobs"
	"custodial-wallet.backend/internal/infrastructure/keyvault"
	"custodial-wallet.backend/internal/infrastructure/models"
	"custodial-wallet.backend/internal/infrastructure/notification"
	"custodial-wallet.backend/internal/infrastructure/repositories"
	"custodial-wallet.backend/internal/interfaces/http/handlers"
	"custodial-wallet.backend/internal/interfaces/http/middleware"
	"custodial-wallet.backend/internal/usecases"
	"custodial-wallet.backend/pkg/hdwallet"
	"custodial-wallet.backend/pkg/jwt"
	"custodial-wallet.backend/pkg/logger"
	"custodial-wallet.backend/pkg/metrics"
	"custodial-wallet.backend/pkg/redis"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

var (
	loadDotenv   = godotenv.Load
	loadCfg      = config.Load
	initLog      = logger.Init
	connectRedis = redis.Connect
	connectDB    = postgres.NewConnection
	migrateDB    = models.AutoMigrate
	newKeyVault  = keyvault.New
	runServer    = func(ctx context.Context, srv *http.Server) error {
		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe() }()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}
	}
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	initLog(cfg.Server.Env)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	rdb, err := connectRedis(ctx, cfg.Redis.URL, cfg.Redis.Password)
	if err != nil {
		logger.Error(ctx, "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	defer rdb.Close()

	db, err := connectDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := migrateDB(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.Info(ctx, "Connected to PostgreSQL")

	vault, err := newKeyVault(ctx, cfg.KeyVault)
	if err != nil {
		return fmt.Errorf("failed to initialize key vault: %w", err)
	}
	logger.Info(ctx, "Key vault ready", zap.String("provider", vault.Provider()))

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	deps := buildRouteDeps(cfg, db, rdb, vault)
	if cfg.OTP.SweepInterval > 0 {
		job := jobs.NewOTPExpiryJob(repositories.NewWalletRepository(db), deps.metrics, cfg.OTP.SweepInterval)
		go job.Start(ctx)
	}

	r := newRouter(cfg, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info(ctx, "Custodial wallet backend starting", zap.String("port", cfg.Server.Port))

	if err := runServer(ctx, srv); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	logger.Info(context.Background(), "Server stopped")
	return nil
}

func buildRouteDeps(cfg *config.Config, db *gorm.DB, rdb *redis.Client, vault keyvault.KeyVault) routeDeps {
	m := metrics.New()
	tokens := jwt.NewSessionTokenService(cfg.JWT.Secret, cfg.JWT.SessionExpiry)

	walletRepo := repositories.NewWalletRepository(db)
	appRepo := repositories.NewAppRepository(db)

	deps := usecases.AuthDeps{
		Wallets: walletRepo,
		Keys:    hdwallet.NewGenerator(),
		Vault:   vault,
		Tokens:  tokens,
		Metrics: m,
		OTPTTL:  cfg.OTP.TTL,
	}
	emailAuth := usecases.NewEmailAuthUsecase(deps, notification.NewEmailSender(cfg.SMTP))
	smsAuth := usecases.NewSMSAuthUsecase(deps, notification.NewSMSSender(cfg.SMS))
	walletUsecase := usecases.NewWalletUsecase(walletRepo, tokens, vault)

	return routeDeps{
		metrics:          m,
		emailAuthHandler: handlers.NewEmailAuthHandler(emailAuth),
		smsAuthHandler:   handlers.NewSMSAuthHandler(smsAuth),
		walletHandler:    handlers.NewWalletHandler(walletUsecase),
		validateApp:      middleware.ValidateApp(appRepo),
		authenticate:     middleware.AuthenticateWallet(walletUsecase),
		idempotency:      middleware.IdempotencyMiddleware(rdb, cfg.Redis.IdempotencyTTL),
		health: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			if err := sqlDB.PingContext(ctx); err != nil {
				return err
			}
			return rdb.Ping(ctx)
		},
	}
}
