package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultJWTSecret = "change-this-in-production"

// Config holds all configuration values
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	OTP      OTPConfig
	SMTP     SMTPConfig
	SMS      SMSConfig
	KeyVault KeyVaultConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + strconv.Itoa(c.Port),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

type RedisConfig struct {
	URL      string
	Password string
	// IdempotencyTTL bounds how long a replayable response is kept.
	IdempotencyTTL time.Duration
}

type JWTConfig struct {
	Secret        string
	SessionExpiry time.Duration
}

type OTPConfig struct {
	TTL time.Duration
	// SweepInterval controls how often expired challenges are cleared. Zero disables the sweep.
	SweepInterval time.Duration
}

// ValidMinutes is the OTP window as shown to users.
func (c OTPConfig) ValidMinutes() int {
	return int(c.TTL / time.Minute)
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	AppName  string
}

type SMSConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
	RetryWait  time.Duration
	AppName    string
}

type KeyVaultConfig struct {
	Provider          string
	LocalMasterKeyHex string
	AWSKMSKeyID       string
	AWSRegion         string
	VaultAddress      string
	VaultToken        string
	VaultTransitKey   string
}

// Load loads configuration from environment variables
func Load() *Config {
	appName := getEnv("APP_NAME", "Custodial Wallet")
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Env:            getEnv("SERVER_ENV", "development"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "custodial_wallet"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 20),
		},
		Redis: RedisConfig{
			URL:            getEnv("REDIS_URL", "redis://localhost:6379"),
			Password:       getEnv("REDIS_PASSWORD", ""),
			IdempotencyTTL: getEnvAsDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", defaultJWTSecret),
			SessionExpiry: getEnvAsDuration("JWT_SESSION_EXPIRY", 24*time.Hour),
		},
		OTP: OTPConfig{
			TTL:           getEnvAsDuration("OTP_TTL", 10*time.Minute),
			SweepInterval: getEnvAsDuration("OTP_SWEEP_INTERVAL", time.Minute),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "localhost"),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "no-reply@localhost"),
			AppName:  appName,
		},
		SMS: SMSConfig{
			BaseURL:    getEnv("SMS_API_URL", "http://localhost:9000/api/sms/send"),
			APIKey:     getEnv("SMS_API_KEY", ""),
			Timeout:    getEnvAsDuration("SMS_TIMEOUT", 30*time.Second),
			MaxRetries: getEnvAsInt("SMS_MAX_RETRIES", 3),
			RetryWait:  getEnvAsDuration("SMS_RETRY_WAIT", time.Second),
			AppName:    appName,
		},
		KeyVault: KeyVaultConfig{
			Provider:          getEnv("KEY_VAULT_PROVIDER", "local"),
			LocalMasterKeyHex: getEnv("KEY_VAULT_MASTER_KEY", ""),
			AWSKMSKeyID:       getEnv("AWS_KMS_KEY_ID", ""),
			AWSRegion:         getEnv("AWS_REGION", ""),
			VaultAddress:      getEnv("VAULT_ADDR", ""),
			VaultToken:        getEnv("VAULT_TOKEN", ""),
			VaultTransitKey:   getEnv("VAULT_TRANSIT_KEY", ""),
		},
	}
}

// Validate rejects settings that would make the service unsafe to run.
func (c *Config) Validate() error {
	var errs []error
	if c.OTP.TTL < time.Minute {
		errs = append(errs, fmt.Errorf("OTP_TTL must be at least 1m, got %s", c.OTP.TTL))
	}
	if c.OTP.SweepInterval < 0 {
		errs = append(errs, fmt.Errorf("OTP_SWEEP_INTERVAL must not be negative, got %s", c.OTP.SweepInterval))
	}
	if c.JWT.SessionExpiry <= 0 {
		errs = append(errs, errors.New("JWT_SESSION_EXPIRY must be positive"))
	}
	if c.Server.Env == "production" && (c.JWT.Secret == defaultJWTSecret || len(c.JWT.Secret) < 32) {
		errs = append(errs, errors.New("JWT_SECRET must be set to at least 32 characters in production"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
