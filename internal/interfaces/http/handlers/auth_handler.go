package handlers

import (
	"context"
	"net/http"

	"custodial-wallet.backend/internal/domain/entities"
	domainerrors "custodial-wallet.backend/internal/domain/errors"
	"custodial-wallet.backend/internal/interfaces/http/middleware"
	"custodial-wallet.backend/internal/interfaces/http/response"
	"github.com/gin-gonic/gin"
)

// OTPAuthService is one channel's login/verify/resend flow.
type OTPAuthService interface {
	Login(ctx context.Context, in entities.LoginInput) (*entities.LoginResult, error)
	Verify(ctx context.Context, in entities.VerifyInput) (*entities.VerifyResult, error)
	ResendOTP(ctx context.Context, in entities.LoginInput) (*entities.LoginResult, error)
}

type otpRequest struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	OTP         string `json:"otp"`
}

// AuthHandler serves the OTP endpoints of a single channel.
type AuthHandler struct {
	auth       OTPAuthService
	field      string
	identifier func(otpRequest) string
}

// NewEmailAuthHandler creates the handler for /auth/email
func NewEmailAuthHandler(auth OTPAuthService) *AuthHandler {
	return &AuthHandler{
		auth:       auth,
		field:      "email",
		identifier: func(r otpRequest) string { return r.Email },
	}
}

// NewSMSAuthHandler creates the handler for /auth/sms
func NewSMSAuthHandler(auth OTPAuthService) *AuthHandler {
	return &AuthHandler{
		auth:       auth,
		field:      "phoneNumber",
		identifier: func(r otpRequest) string { return r.PhoneNumber },
	}
}

// Login sends an OTP, creating the wallet on first contact
// POST /api/v1/auth/{email,sms}/login
func (h *AuthHandler) Login(c *gin.Context) {
	req, appID, ok := h.bind(c)
	if !ok {
		return
	}

	result, err := h.auth.Login(c.Request.Context(), entities.LoginInput{
		AppID:        appID,
		Identifier:   h.identifier(req),
		SessionToken: middleware.BearerToken(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, loginBody(result))
}

// Verify checks the OTP and returns a session token
// POST /api/v1/auth/{email,sms}/verify
func (h *AuthHandler) Verify(c *gin.Context) {
	req, appID, ok := h.bind(c)
	if !ok {
		return
	}
	if req.OTP == "" {
		response.Error(c, domainerrors.Validation("otp is required"))
		return
	}

	result, err := h.auth.Verify(c.Request.Context(), entities.VerifyInput{
		AppID:        appID,
		Identifier:   h.identifier(req),
		OTP:          req.OTP,
		SessionToken: middleware.BearerToken(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message":  result.Message,
		"data":     result.Data,
		"isActive": result.IsActive,
		"token":    result.Token,
	})
}

// ResendOTP issues a new code for an existing wallet
// POST /api/v1/auth/{email,sms}/resend-otp
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	req, appID, ok := h.bind(c)
	if !ok {
		return
	}

	result, err := h.auth.ResendOTP(c.Request.Context(), entities.LoginInput{
		AppID:      appID,
		Identifier: h.identifier(req),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, loginBody(result))
}

func (h *AuthHandler) bind(c *gin.Context) (otpRequest, string, bool) {
	var req otpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.Validation("Invalid request body"))
		return req, "", false
	}
	if h.identifier(req) == "" {
		response.Error(c, domainerrors.Validation(h.field+" is required"))
		return req, "", false
	}

	app, ok := middleware.GetApp(c)
	if !ok {
		response.Error(c, domainerrors.BadRequest(domainerrors.CodeMissingAppID, "App ID is required"))
		return req, "", false
	}
	return req, app.AppID, true
}

func loginBody(result *entities.LoginResult) gin.H {
	return gin.H{
		"message":      result.Message,
		"walletExists": result.WalletExists,
		"isActive":     result.IsActive,
	}
}
