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

type MessageSigner interface {
	SignMessage(ctx context.Context, appID, address, message string) (*entities.SignedMessage, error)
	VerifyMessage(ctx context.Context, message, signature, address string) (*entities.MessageVerification, error)
}

// WalletHandler handles endpoints for an authenticated wallet
type WalletHandler struct {
	signer MessageSigner
}

func NewWalletHandler(signer MessageSigner) *WalletHandler {
	return &WalletHandler{signer: signer}
}

// GetMe returns the authenticated wallet
// GET /api/v1/wallet/me
func (h *WalletHandler) GetMe(c *gin.Context) {
	wallet, ok := middleware.GetWallet(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized(domainerrors.CodeAuthError, "Wallet not authenticated"))
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Wallet retrieved successfully",
		"data":    wallet,
	})
}

// SignMessage signs an arbitrary message with the wallet key
// POST /api/v1/wallet/sign-message
func (h *WalletHandler) SignMessage(c *gin.Context) {
	wallet, ok := middleware.GetWallet(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized(domainerrors.CodeAuthError, "Wallet not authenticated"))
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.Validation("Invalid request body"))
		return
	}

	signed, err := h.signer.SignMessage(c.Request.Context(), wallet.AppID, wallet.Address, req.Message)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Message signed successfully",
		"data":    signed,
	})
}

// VerifyMessage recovers the signer of a personal_sign signature
// POST /api/v1/wallet/verify-message
func (h *WalletHandler) VerifyMessage(c *gin.Context) {
	var req struct {
		Message   string `json:"message"`
		Signature string `json:"signature"`
		Address   string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.Validation("Invalid request body"))
		return
	}

	result, err := h.signer.VerifyMessage(c.Request.Context(), req.Message, req.Signature, req.Address)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Message verified successfully",
		"data":    result,
	})
}
