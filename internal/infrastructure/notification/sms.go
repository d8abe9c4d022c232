package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"custodial-wallet.backend/internal/config"
	"custodial-wallet.backend/pkg/logger"
	"github.com/hashicorp/go-retryablehttp"
)

// SMSSender posts messages to the SMS gateway, retrying transient failures.
type SMSSender struct {
	client  *retryablehttp.Client
	url     string
	apiKey  string
	appName string
}

type smsRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Message     string `json:"message"`
}

type smsResponse struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
}

func NewSMSSender(cfg config.SMSConfig) *SMSSender {
	client := retryablehttp.NewClient()
	client.RetryMax = cfg.MaxRetries
	client.RetryWaitMin = cfg.RetryWait
	client.RetryWaitMax = 4 * cfg.RetryWait
	client.HTTPClient.Timeout = cfg.Timeout
	client.Logger = zapLeveledLogger{}

	return &SMSSender{
		client:  client,
		url:     cfg.BaseURL,
		apiKey:  cfg.APIKey,
		appName: cfg.AppName,
	}
}

func (s *SMSSender) SendOTP(ctx context.Context, phoneNumber, code string, validFor time.Duration) error {
	return s.send(ctx, phoneNumber, otpSMSText(s.appName, code, validFor))
}

func (s *SMSSender) SendWelcome(ctx context.Context, phoneNumber string) error {
	return s.send(ctx, phoneNumber, welcomeSMSText(s.appName))
}

func (s *SMSSender) send(ctx context.Context, phoneNumber, message string) error {
	body, err := json.Marshal(smsRequest{PhoneNumber: phoneNumber, Message: message})
	if err != nil {
		return err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, s.url, body)
	if err != nil {
		return fmt.Errorf("failed to build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}

	var parsed smsResponse
	if len(raw) > 0 && json.Unmarshal(raw, &parsed) == nil && parsed.Success != nil && !*parsed.Success {
		return fmt.Errorf("sms gateway rejected message: %s", parsed.Error)
	}
	return nil
}

// zapLeveledLogger routes retryablehttp logs through the process logger.
type zapLeveledLogger struct{}

func (zapLeveledLogger) Error(msg string, kv ...interface{}) {
	logger.GetLogger().Sugar().Errorw(msg, kv...)
}

func (zapLeveledLogger) Info(msg string, kv ...interface{}) {
	logger.GetLogger().Sugar().Infow(msg, kv...)
}

func (zapLeveledLogger) Debug(msg string, kv ...interface{}) {
	logger.GetLogger().Sugar().Debugw(msg, kv...)
}

func (zapLeveledLogger) Warn(msg string, kv ...interface{}) {
	logger.GetLogger().Sugar().Warnw(msg, kv...)
}

var _ retryablehttp.LeveledLogger = zapLeveledLogger{}
