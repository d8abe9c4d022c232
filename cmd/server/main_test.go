package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"custodial-wallet.backend/internal/config"
	"custodial-wallet.backend/internal/domain/entities"
	"custodial-wallet.backend/internal/infrastructure/keyvault"
	"custodial-wallet.backend/internal/infrastructure/repositories"
	"custodial-wallet.backend/pkg/hdwallet"
	"custodial-wallet.backend/pkg/redis"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	testAppID     = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
	testMasterKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
)

func withMainHooks(t *testing.T) {
	t.Helper()
	origLoadDotenv := loadDotenv
	origLoadCfg := loadCfg
	origInitLog := initLog
	origConnectRedis := connectRedis
	origConnectDB := connectDB
	origNewKeyVault := newKeyVault
	origRunServer := runServer

	t.Cleanup(func() {
		loadDotenv = origLoadDotenv
		loadCfg = origLoadCfg
		initLog = origInitLog
		connectRedis = origConnectRedis
		connectDB = origConnectDB
		newKeyVault = origNewKeyVault
		runServer = origRunServer
	})

	loadDotenv = func(...string) error { return errors.New("no .env") }
	initLog = func(string) {}
}

func baseTestConfig(smsURL string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: "18080", Env: "development", AllowedOrigins: []string{"*"}},
		Redis:  config.RedisConfig{IdempotencyTTL: time.Hour},
		JWT:    config.JWTConfig{Secret: "integration-secret-integration-secret", SessionExpiry: time.Hour},
		OTP:    config.OTPConfig{TTL: 10 * time.Minute},
		SMTP:   config.SMTPConfig{Host: "127.0.0.1", Port: 1, From: "no-reply@test", AppName: "Test"},
		SMS: config.SMSConfig{
			BaseURL:   smsURL,
			APIKey:    "sms-key",
			Timeout:   2 * time.Second,
			RetryWait: time.Millisecond,
			AppName:   "Test",
		},
		KeyVault: config.KeyVaultConfig{Provider: keyvault.ProviderLocal, LocalMasterKeyHex: testMasterKey},
	}
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:server_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

// smsGateway records every message and extracts six-digit codes.
type smsGateway struct {
	mu       sync.Mutex
	messages []string
}

var codePattern = regexp.MustCompile(`\b(\d{6})\b`)

func (g *smsGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PhoneNumber string `json:"phoneNumber"`
		Message     string `json:"message"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	g.mu.Lock()
	g.messages = append(g.messages, body.Message)
	g.mu.Unlock()
	_, _ = io.WriteString(w, `{"success":true}`)
}

func (g *smsGateway) lastCode(t *testing.T) string {
	t.Helper()
	g.mu.Lock()
	defer g.mu.Unlock()
	require.NotEmpty(t, g.messages)
	m := codePattern.FindStringSubmatch(g.messages[len(g.messages)-1])
	require.Len(t, m, 2)
	return m[1]
}

func TestRunMainProcess_InvalidConfig(t *testing.T) {
	withMainHooks(t)
	loadCfg = func() *config.Config {
		cfg := baseTestConfig("http://127.0.0.1:1")
		cfg.OTP.TTL = time.Second
		return cfg
	}

	err := runMainProcess()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OTP_TTL")
}

func TestRunMainProcess_RedisInitError(t *testing.T) {
	withMainHooks(t)
	loadCfg = func() *config.Config { return baseTestConfig("http://127.0.0.1:1") }
	connectRedis = func(context.Context, string, string) (*redis.Client, error) {
		return nil, errors.New("redis down")
	}

	err := runMainProcess()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize redis")
}

func TestRunMainProcess_DatabaseError(t *testing.T) {
	withMainHooks(t)
	mr := miniredis.RunT(t)
	loadCfg = func() *config.Config { return baseTestConfig("http://127.0.0.1:1") }
	connectRedis = func(ctx context.Context, _, _ string) (*redis.Client, error) {
		return redis.Connect(ctx, "redis://"+mr.Addr(), "")
	}
	connectDB = func(config.DatabaseConfig) (*gorm.DB, error) { return nil, errors.New("db down") }

	err := runMainProcess()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to database")
}

func TestRunMainProcess_KeyVaultError(t *testing.T) {
	withMainHooks(t)
	mr := miniredis.RunT(t)
	loadCfg = func() *config.Config {
		cfg := baseTestConfig("http://127.0.0.1:1")
		cfg.KeyVault.LocalMasterKeyHex = "short"
		return cfg
	}
	connectRedis = func(ctx context.Context, _, _ string) (*redis.Client, error) {
		return redis.Connect(ctx, "redis://"+mr.Addr(), "")
	}
	db := testDB(t)
	connectDB = func(config.DatabaseConfig) (*gorm.DB, error) { return db, nil }

	err := runMainProcess()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key vault")
}

type apiClient struct {
	t       *testing.T
	handler http.Handler
}

func (c apiClient) do(method, path, body, token string) (int, map[string]any) {
	c.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-app-id", testAppID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
	}
	return rec.Code, out
}

func TestRunMainProcess_SMSWalletLifecycle(t *testing.T) {
	withMainHooks(t)
	gateway := &smsGateway{}
	smsServer := httptest.NewServer(gateway)
	defer smsServer.Close()

	mr := miniredis.RunT(t)
	db := testDB(t)
	loadCfg = func() *config.Config { return baseTestConfig(smsServer.URL) }
	connectRedis = func(ctx context.Context, _, _ string) (*redis.Client, error) {
		return redis.Connect(ctx, "redis://"+mr.Addr(), "")
	}
	connectDB = func(config.DatabaseConfig) (*gorm.DB, error) { return db, nil }

	runServer = func(_ context.Context, srv *http.Server) error {
		require.NoError(t, repositories.NewAppRepository(db).Create(context.Background(), &entities.App{
			AppID:        testAppID,
			DeveloperID:  "dev-1",
			Name:         "Integration",
			RedirectURLs: []string{"https://example.com/cb"},
			IsActive:     true,
		}))
		api := apiClient{t: t, handler: srv.Handler}

		status, body := api.do(http.MethodPost, "/api/v1/auth/sms/resend-otp", `{"phoneNumber":"+14155550100"}`, "")
		require.Equal(t, http.StatusNotFound, status)

		status, body = api.do(http.MethodPost, "/api/v1/auth/sms/login", `{"phoneNumber":"+1 415 555 0100"}`, "")
		require.Equal(t, http.StatusOK, status, body)
		assert.Equal(t, false, body["walletExists"])
		assert.Equal(t, false, body["isActive"])

		code := gateway.lastCode(t)
		status, body = api.do(http.MethodPost, "/api/v1/auth/sms/verify", `{"phoneNumber":"+14155550100","otp":"`+code+`"}`, "")
		require.Equal(t, http.StatusOK, status, body)
		token, _ := body["token"].(string)
		require.NotEmpty(t, token)
		address := body["data"].(map[string]any)["walletAddress"].(string)

		status, body = api.do(http.MethodPost, "/api/v1/auth/sms/verify", `{"phoneNumber":"+14155550100","otp":"`+code+`"}`, "")
		require.Equal(t, http.StatusBadRequest, status, body)
		assert.Equal(t, "INVALID_OTP", body["error"].(map[string]any)["code"])

		status, body = api.do(http.MethodPost, "/api/v1/auth/sms/login", `{"phoneNumber":"+14155550100"}`, token)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "User already logged in", body["message"])

		status, body = api.do(http.MethodGet, "/api/v1/wallet/me", "", token)
		require.Equal(t, http.StatusOK, status, body)
		assert.Equal(t, address, body["data"].(map[string]any)["address"])

		status, body = api.do(http.MethodPost, "/api/v1/wallet/sign-message", `{"message":"hello"}`, token)
		require.Equal(t, http.StatusOK, status, body)
		signature := body["data"].(map[string]any)["signature"].(string)
		signer, err := hdwallet.RecoverPersonalSigner([]byte("hello"), signature)
		require.NoError(t, err)
		assert.Equal(t, address, signer)

		status, body = api.do(http.MethodPost, "/api/v1/wallet/verify-message",
			`{"message":"hello","signature":"`+signature+`","address":"`+address+`"}`, token)
		require.Equal(t, http.StatusOK, status, body)
		assert.Equal(t, true, body["data"].(map[string]any)["isValid"])

		var stored struct {
			EncryptedPrivateKey string
			OTP                 *string
		}
		require.NoError(t, db.Raw("SELECT encrypted_private_key, otp FROM wallets WHERE address = ?", address).Scan(&stored).Error)
		assert.NotEmpty(t, stored.EncryptedPrivateKey)
		assert.Nil(t, stored.OTP)

		status, _ = api.do(http.MethodGet, "/health", "", "")
		assert.Equal(t, http.StatusOK, status)

		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Contains(t, rec.Body.String(), "wallet_created_total")
		return nil
	}

	require.NoError(t, runMainProcess())
	assert.GreaterOrEqual(t, len(gateway.messages), 2, "OTP and welcome messages")
}

func TestApplyCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	applyCORSMiddleware(r, []string{"http://localhost:3000"})
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/x", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRegisterHealthRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	healthy := true
	registerHealthRoute(r, func(context.Context) error {
		if healthy {
			return nil
		}
		return errors.New("db down")
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	healthy = false
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
