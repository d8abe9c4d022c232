package usecases

import (
	"context"
	"crypto/subtle"
	"errors"
	"regexp"
	"time"

	"custodial-wallet.backend/internal/domain/entities"
	domainerrors "custodial-wallet.backend/internal/domain/errors"
	"custodial-wallet.backend/internal/domain/repositories"
	"custodial-wallet.backend/pkg/crypto"
	"custodial-wallet.backend/pkg/logger"
	"custodial-wallet.backend/pkg/metrics"
	"custodial-wallet.backend/pkg/utils"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"
)

const (
	msgAlreadyLoggedIn = "User already logged in"
	msgVerified        = "Wallet verified successfully"
)

var otpPattern = regexp.MustCompile(`^\d{6}$`)

// AuthDeps are the collaborators shared by both OTP channels.
type AuthDeps struct {
	Wallets repositories.WalletRepository
	Keys    KeyGenerator
	Vault   KeySealer
	Tokens  SessionTokens
	Metrics *metrics.Metrics
	OTPTTL  time.Duration
}

// OTPAuthUsecase runs login, verify and resend for one channel.
type OTPAuthUsecase struct {
	ch       channel
	wallets  repositories.WalletRepository
	keys     KeyGenerator
	vault    KeySealer
	tokens   SessionTokens
	metrics  *metrics.Metrics
	delivery OTPDelivery
	welcome  WelcomeDelivery
	otpTTL   time.Duration

	now          func() time.Time
	generateOTP  func() (string, error)
	generateSalt func() (string, error)
}

func NewEmailAuthUsecase(deps AuthDeps, sender OTPDelivery) *OTPAuthUsecase {
	return newOTPAuthUsecase(emailChannel, deps, sender, nil)
}

func NewSMSAuthUsecase(deps AuthDeps, sender SMSDelivery) *OTPAuthUsecase {
	return newOTPAuthUsecase(smsChannel, deps, sender, sender)
}

func newOTPAuthUsecase(ch channel, deps AuthDeps, delivery OTPDelivery, welcome WelcomeDelivery) *OTPAuthUsecase {
	return &OTPAuthUsecase{
		ch:           ch,
		wallets:      deps.Wallets,
		keys:         deps.Keys,
		vault:        deps.Vault,
		tokens:       deps.Tokens,
		metrics:      deps.Metrics,
		delivery:     delivery,
		welcome:      welcome,
		otpTTL:       deps.OTPTTL,
		now:          time.Now,
		generateOTP:  crypto.GenerateOTP,
		generateSalt: crypto.GenerateSalt,
	}
}

// Login issues a fresh OTP, creating the wallet on first contact. A caller
// already holding a valid session for the active wallet is told so and no
// code is sent.
func (u *OTPAuthUsecase) Login(ctx context.Context, in entities.LoginInput) (*entities.LoginResult, error) {
	identifier, err := u.normalize(in.Identifier)
	if err != nil {
		u.outcome("login", "validation_error")
		return nil, err
	}

	wallet, err := u.find(ctx, in.AppID, identifier)
	if err != nil && !errors.Is(err, domainerrors.ErrNotFound) {
		u.outcome("login", "error")
		return nil, domainerrors.InternalError(err)
	}

	if wallet != nil && u.hasLiveSession(wallet, in.SessionToken) {
		u.outcome("login", "already_logged_in")
		return &entities.LoginResult{
			Message:       msgAlreadyLoggedIn,
			WalletExists:  true,
			IsActive:      true,
			AlreadyLogged: true,
		}, nil
	}

	code, expiry, err := u.newChallenge()
	if err != nil {
		u.outcome("login", "error")
		return nil, err
	}

	if wallet != nil {
		if err := u.wallets.SetChallenge(ctx, wallet.ID, code, expiry); err != nil {
			u.outcome("login", "error")
			return nil, domainerrors.InternalError(err)
		}
		if err := u.deliver(ctx, identifier, code); err != nil {
			u.outcome("login", "delivery_failed")
			return nil, err
		}
		u.outcome("login", "otp_sent")
		logger.Info(ctx, "OTP issued for existing wallet",
			zap.String("channel", u.ch.name()),
			zap.String("wallet_id", wallet.ID.String()),
		)
		return &entities.LoginResult{
			Message:      u.ch.otpSentMsg,
			WalletExists: true,
			IsActive:     wallet.IsActive,
		}, nil
	}

	created, err := u.createWallet(ctx, in.AppID, identifier, code, expiry)
	if err != nil {
		u.outcome("login", "error")
		return nil, err
	}
	if err := u.deliver(ctx, identifier, code); err != nil {
		u.outcome("login", "delivery_failed")
		return nil, err
	}

	u.outcome("login", "wallet_created")
	logger.Info(ctx, "Wallet created",
		zap.String("channel", u.ch.name()),
		zap.String("wallet_id", created.ID.String()),
		zap.String("address", created.Address),
	)
	return &entities.LoginResult{
		Message:      u.ch.otpSentMsg,
		WalletExists: false,
		IsActive:     false,
	}, nil
}

// Verify checks the submitted code, activates the wallet and issues a session token.
func (u *OTPAuthUsecase) Verify(ctx context.Context, in entities.VerifyInput) (*entities.VerifyResult, error) {
	identifier, err := u.normalize(in.Identifier)
	if err != nil {
		u.outcome("verify", "validation_error")
		return nil, err
	}
	if !otpPattern.MatchString(in.OTP) {
		u.outcome("verify", "validation_error")
		return nil, domainerrors.Validation("OTP must be a 6-digit code")
	}

	wallet, err := u.find(ctx, in.AppID, identifier)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			u.outcome("verify", "not_found")
			return nil, domainerrors.WalletNotFound()
		}
		u.outcome("verify", "error")
		return nil, domainerrors.InternalError(err)
	}

	if u.hasLiveSession(wallet, in.SessionToken) {
		u.outcome("verify", "already_logged_in")
		return &entities.VerifyResult{
			Message:  msgAlreadyLoggedIn,
			Data:     verifiedWallet(wallet),
			IsActive: true,
			Token:    in.SessionToken,
		}, nil
	}

	if wallet.OTP == nil || subtle.ConstantTimeCompare([]byte(*wallet.OTP), []byte(in.OTP)) != 1 {
		u.outcome("verify", "invalid_otp")
		return nil, domainerrors.InvalidOTP()
	}
	if wallet.OTPExpired(u.now()) {
		u.outcome("verify", "otp_expired")
		return nil, domainerrors.OTPExpired()
	}

	token, err := u.tokens.Issue(wallet.Address)
	if err != nil {
		u.outcome("verify", "error")
		return nil, domainerrors.InternalError(err)
	}
	if err := u.wallets.Activate(ctx, wallet.ID, in.OTP); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			// consumed by a concurrent verify or replaced by a resend
			u.outcome("verify", "invalid_otp")
			return nil, domainerrors.InvalidOTP()
		}
		u.outcome("verify", "error")
		return nil, domainerrors.InternalError(err)
	}

	if u.ch.sendWelcomeSMS && u.welcome != nil && !wallet.IsActive {
		if err := u.welcome.SendWelcome(ctx, identifier); err != nil {
			logger.Warn(ctx, "Welcome message failed",
				zap.String("channel", u.ch.name()),
				zap.String("wallet_id", wallet.ID.String()),
				zap.Error(err),
			)
		}
	}

	u.outcome("verify", "verified")
	logger.Info(ctx, "Wallet verified",
		zap.String("channel", u.ch.name()),
		zap.String("wallet_id", wallet.ID.String()),
	)
	return &entities.VerifyResult{
		Message:  msgVerified,
		Data:     verifiedWallet(wallet),
		IsActive: true,
		Token:    token,
	}, nil
}

// ResendOTP replaces the pending code. It never creates a wallet.
func (u *OTPAuthUsecase) ResendOTP(ctx context.Context, in entities.LoginInput) (*entities.LoginResult, error) {
	identifier, err := u.normalize(in.Identifier)
	if err != nil {
		u.outcome("resend", "validation_error")
		return nil, err
	}

	wallet, err := u.find(ctx, in.AppID, identifier)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			u.outcome("resend", "not_found")
			return nil, domainerrors.WalletNotFound()
		}
		u.outcome("resend", "error")
		return nil, domainerrors.InternalError(err)
	}

	code, expiry, err := u.newChallenge()
	if err != nil {
		u.outcome("resend", "error")
		return nil, err
	}
	if err := u.wallets.SetChallenge(ctx, wallet.ID, code, expiry); err != nil {
		u.outcome("resend", "error")
		return nil, domainerrors.InternalError(err)
	}
	if err := u.deliver(ctx, identifier, code); err != nil {
		u.outcome("resend", "delivery_failed")
		return nil, err
	}

	u.outcome("resend", "otp_sent")
	return &entities.LoginResult{
		Message:      u.ch.otpResentMsg,
		WalletExists: true,
		IsActive:     wallet.IsActive,
	}, nil
}

func (u *OTPAuthUsecase) normalize(raw string) (string, error) {
	if !u.ch.validate(raw) {
		return "", domainerrors.Validation(u.ch.invalidMessage)
	}
	return u.ch.normalize(raw), nil
}

func (u *OTPAuthUsecase) find(ctx context.Context, appID, identifier string) (*entities.Wallet, error) {
	return u.wallets.FindByIdentifier(ctx, appID, u.ch.socialType, identifier)
}

// hasLiveSession requires an active wallet and a token that verifies for its address.
func (u *OTPAuthUsecase) hasLiveSession(wallet *entities.Wallet, token string) bool {
	return token != "" && wallet.IsActive && u.tokens.IsValidFor(token, wallet.Address)
}

func (u *OTPAuthUsecase) newChallenge() (string, time.Time, error) {
	code, err := u.generateOTP()
	if err != nil {
		return "", time.Time{}, domainerrors.InternalError(err)
	}
	return code, crypto.OTPExpiry(u.now(), u.otpTTL), nil
}

func (u *OTPAuthUsecase) deliver(ctx context.Context, identifier, code string) error {
	err := u.delivery.SendOTP(ctx, identifier, code, u.otpTTL)
	u.metrics.OTPDispatched(u.ch.name(), err)
	if err != nil {
		logger.Error(ctx, "OTP delivery failed",
			zap.String("channel", u.ch.name()),
			zap.Error(err),
		)
		return domainerrors.DeliveryFailed(u.ch.sendFailedCode, u.ch.sendFailedMsg, err)
	}
	return nil
}

func (u *OTPAuthUsecase) createWallet(ctx context.Context, appID, identifier, code string, expiry time.Time) (*entities.WalletWithSecret, error) {
	generated, err := u.keys.Generate()
	if err != nil {
		logger.Error(ctx, "Wallet key generation failed", zap.String("channel", u.ch.name()), zap.Error(err))
		return nil, domainerrors.Internal(domainerrors.CodeKeyGeneration, "Failed to generate wallet", err)
	}

	salt, err := u.generateSalt()
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	rawKey, err := hexutil.Decode(generated.PrivateKey)
	if err != nil {
		return nil, domainerrors.Internal(domainerrors.CodeKeyGeneration, "Failed to generate wallet", err)
	}
	sealed, err := u.vault.Encrypt(ctx, rawKey, salt)
	clear(rawKey)
	generated.PrivateKey = ""
	generated.Mnemonic = ""
	if err != nil {
		logger.Error(ctx, "Private key encryption failed", zap.Error(err))
		return nil, domainerrors.InternalError(err)
	}

	wallet := &entities.WalletWithSecret{
		Wallet: entities.Wallet{
			ID:         utils.NewRecordID(),
			AppID:      appID,
			SocialType: u.ch.socialType,
			Address:    generated.Address,
			PublicKey:  generated.PublicKey,
			UserData:   u.ch.userData(identifier),
			IsActive:   false,
			OTP:        &code,
			OTPExpiry:  &expiry,
		},
		EncryptedPrivateKey: sealed,
		EncryptionSalt:      salt,
	}
	u.ch.assign(&wallet.Wallet, identifier)

	if err := u.wallets.Create(ctx, wallet); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			logger.Warn(ctx, "Concurrent wallet creation lost the race", zap.String("channel", u.ch.name()))
			return nil, domainerrors.DuplicateEntry("Wallet already exists for this identifier, retry login")
		}
		return nil, domainerrors.InternalError(err)
	}

	u.metrics.WalletCreated(u.ch.name())
	return wallet, nil
}

func (u *OTPAuthUsecase) outcome(operation, outcome string) {
	u.metrics.AuthOutcome(u.ch.name(), operation, outcome)
}

func verifiedWallet(w *entities.Wallet) *entities.VerifiedWallet {
	return &entities.VerifiedWallet{
		WalletAddress: w.Address,
		SocialType:    w.SocialType,
		UserData:      w.UserData,
	}
}
