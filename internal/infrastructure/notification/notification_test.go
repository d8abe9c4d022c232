package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"custodial-wallet.backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type captureDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *captureDialer) DialAndSend(m ...*gomail.Message) error {
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, m...)
	return nil
}

func TestEmailSender_SendOTP(t *testing.T) {
	dialer := &captureDialer{}
	s := &EmailSender{dialer: dialer, from: "no-reply@wallet.test", appName: "Wallet"}

	require.NoError(t, s.SendOTP(context.Background(), "a@x.com", "482913", 10*time.Minute))
	require.Len(t, dialer.sent, 1)

	msg := dialer.sent[0]
	assert.Equal(t, []string{"a@x.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Your Wallet verification code"}, msg.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "482913")
	assert.Contains(t, buf.String(), "10 minutes")
}

func TestEmailSender_Errors(t *testing.T) {
	s := &EmailSender{dialer: &captureDialer{err: errors.New("535 auth failed")}, from: "f@x.com", appName: "W"}
	assert.ErrorContains(t, s.SendOTP(context.Background(), "a@x.com", "1", time.Minute), "smtp send failed")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.SendOTP(ctx, "a@x.com", "1", time.Minute), context.Canceled)
}

func TestNewEmailSender(t *testing.T) {
	s := NewEmailSender(config.SMTPConfig{Host: "smtp.example", Port: 587, From: "f@x.com", AppName: "W"})
	require.NotNil(t, s.dialer)
	assert.Equal(t, "f@x.com", s.from)
}

func smsConfig(url string) config.SMSConfig {
	return config.SMSConfig{
		BaseURL:    url,
		APIKey:     "sms-key",
		Timeout:    2 * time.Second,
		MaxRetries: 2,
		RetryWait:  time.Millisecond,
		AppName:    "Wallet",
	}
}

func TestSMSSender_SendOTP(t *testing.T) {
	var got smsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "sms-key", r.Header.Get("x-api-key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	s := NewSMSSender(smsConfig(srv.URL))
	require.NoError(t, s.SendOTP(context.Background(), "+15551234567", "123456", 10*time.Minute))
	assert.Equal(t, "+15551234567", got.PhoneNumber)
	assert.Equal(t, "Your Wallet verification code is: 123456. This code will expire in 10 minutes.", got.Message)

	require.NoError(t, s.SendWelcome(context.Background(), "+15551234567"))
	assert.Equal(t, "Welcome to Wallet! Your wallet has been successfully created and is ready to use.", got.Message)
}

func TestSMSSender_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewSMSSender(smsConfig(srv.URL))
	require.NoError(t, s.SendOTP(context.Background(), "+15551234567", "123456", time.Minute))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestSMSSender_Failures(t *testing.T) {
	var calls int32
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer down.Close()

	s := NewSMSSender(smsConfig(down.URL))
	assert.Error(t, s.SendOTP(context.Background(), "+15551234567", "1", time.Minute))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls), "initial attempt plus two retries")

	rejected := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"error":"invalid number"}`))
	}))
	defer rejected.Close()
	s = NewSMSSender(smsConfig(rejected.URL))
	assert.ErrorContains(t, s.SendOTP(context.Background(), "+1", "1", time.Minute), "invalid number")

	badRequest := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer badRequest.Close()
	s = NewSMSSender(smsConfig(badRequest.URL))
	assert.ErrorContains(t, s.SendWelcome(context.Background(), "+1"), "status 400")
}

func TestMessageTexts(t *testing.T) {
	assert.Equal(t, 1, validMinutes(10*time.Second))
	assert.Equal(t, 240, validMinutes(4*time.Hour))
	assert.Contains(t, otpEmailHTML("<b>App</b>", "123456", 5*time.Minute), "&lt;b&gt;App&lt;/b&gt;")
}
