package usecases

import (
	"context"
	"errors"
	"strings"

	"custodial-wallet.backend/internal/domain/entities"
	domainerrors "custodial-wallet.backend/internal/domain/errors"
	"custodial-wallet.backend/internal/domain/repositories"
	"custodial-wallet.backend/pkg/hdwallet"
	"custodial-wallet.backend/pkg/jwt"
	"custodial-wallet.backend/pkg/logger"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// MaxSignMessageLength bounds the payload accepted for personal_sign.
const MaxSignMessageLength = 4096

// WalletUsecase serves authenticated wallet operations.
type WalletUsecase struct {
	wallets repositories.WalletRepository
	tokens  SessionVerifier
	vault   KeyOpener
}

func NewWalletUsecase(wallets repositories.WalletRepository, tokens SessionVerifier, vault KeyOpener) *WalletUsecase {
	return &WalletUsecase{wallets: wallets, tokens: tokens, vault: vault}
}

// ResolveSession verifies a bearer token and loads the active wallet it names.
func (u *WalletUsecase) ResolveSession(ctx context.Context, token string) (*entities.Wallet, error) {
	if strings.TrimSpace(token) == "" {
		return nil, domainerrors.Unauthorized(domainerrors.CodeMissingToken, "Authentication token is required")
	}

	claims, err := u.tokens.Verify(token)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrExpiredToken):
			return nil, domainerrors.Unauthorized(domainerrors.CodeTokenExpired, "Token has expired")
		case errors.Is(err, jwt.ErrInvalidPayload):
			return nil, domainerrors.Unauthorized(domainerrors.CodeInvalidTokenPayload, "Invalid token payload")
		case errors.Is(err, jwt.ErrInvalidToken):
			return nil, domainerrors.Unauthorized(domainerrors.CodeInvalidToken, "Invalid token")
		default:
			return nil, domainerrors.Unauthorized(domainerrors.CodeAuthError, "Authentication failed")
		}
	}

	wallet, err := u.wallets.FindByAddress(ctx, claims.Address)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.WalletNotFound()
		}
		return nil, domainerrors.InternalError(err)
	}
	if !wallet.IsActive {
		return nil, domainerrors.Forbidden(domainerrors.CodeWalletInactive, "Wallet is not active")
	}
	return wallet, nil
}

// SignMessage signs message with the wallet's key using EIP-191. The key is
// decrypted for this call only and wiped before returning.
func (u *WalletUsecase) SignMessage(ctx context.Context, appID, address, message string) (*entities.SignedMessage, error) {
	if message == "" {
		return nil, domainerrors.Validation("Message is required")
	}
	if len(message) > MaxSignMessageLength {
		return nil, domainerrors.Validation("Message is too long")
	}

	wallet, err := u.wallets.FindWithSecret(ctx, appID, address)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.WalletNotFound()
		}
		return nil, domainerrors.InternalError(err)
	}
	if !wallet.IsActive {
		return nil, domainerrors.Forbidden(domainerrors.CodeWalletInactive, "Wallet is not active")
	}

	key, err := u.vault.Decrypt(ctx, wallet.EncryptedPrivateKey, wallet.EncryptionSalt)
	if err != nil {
		logger.Error(ctx, "Private key decryption failed",
			zap.String("wallet_id", wallet.ID.String()),
			zap.Error(err),
		)
		return nil, domainerrors.Internal(domainerrors.CodeSigningFailed, "Failed to sign message", err)
	}
	defer clear(key)

	signature, err := hdwallet.SignPersonalMessage(key, []byte(message), wallet.Address)
	if err != nil {
		logger.Error(ctx, "Message signing failed",
			zap.String("wallet_id", wallet.ID.String()),
			zap.Error(err),
		)
		return nil, domainerrors.Internal(domainerrors.CodeSigningFailed, "Failed to sign message", err)
	}

	logger.Info(ctx, "Message signed", zap.String("address", wallet.Address))
	return &entities.SignedMessage{
		Address:   wallet.Address,
		Message:   message,
		Signature: signature,
	}, nil
}

// VerifyMessage recovers the signer of an EIP-191 signature. With an empty
// address any recoverable signature is valid; otherwise the signer must match.
func (u *WalletUsecase) VerifyMessage(ctx context.Context, message, signature, address string) (*entities.MessageVerification, error) {
	if message == "" {
		return nil, domainerrors.Validation("Message is required")
	}
	if len(message) > MaxSignMessageLength {
		return nil, domainerrors.Validation("Message is too long")
	}
	if signature == "" {
		return nil, domainerrors.Validation("Signature is required")
	}
	if address != "" && !common.IsHexAddress(address) {
		return nil, domainerrors.Validation("Invalid address")
	}

	recovered, err := hdwallet.RecoverPersonalSigner([]byte(message), signature)
	if err != nil {
		logger.Debug(ctx, "Signature recovery failed", zap.Error(err))
		return &entities.MessageVerification{IsValid: false}, nil
	}

	return &entities.MessageVerification{
		IsValid:          address == "" || strings.EqualFold(recovered, address),
		RecoveredAddress: recovered,
	}, nil
}
