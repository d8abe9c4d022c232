package repositories

import (
	"context"
	"time"

	"custodial-wallet.backend/internal/domain/entities"
	domainerrors "custodial-wallet.backend/internal/domain/errors"
	"custodial-wallet.backend/internal/infrastructure/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// walletPublicColumns never includes key material.
var walletPublicColumns = []string{
	"id", "app_id", "social_type", "email", "phone_number", "address", "public_key",
	"user_data", "oauth_tokens", "is_active", "otp", "otp_expiry", "created_at", "updated_at",
}

// WalletRepository implements wallet persistence on GORM.
type WalletRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db, now: time.Now}
}

// FindByIdentifier looks up the wallet for a channel identifier within an app.
func (r *WalletRepository) FindByIdentifier(ctx context.Context, appID string, socialType entities.SocialType, identifier string) (*entities.Wallet, error) {
	column, err := identifierColumn(socialType)
	if err != nil {
		return nil, err
	}

	var m models.Wallet
	err = r.db.WithContext(ctx).
		Select(walletPublicColumns).
		Where("app_id = ? AND "+column+" = ?", appID, identifier).
		First(&m).Error
	if err != nil {
		return nil, translateReadError(err)
	}
	return toWalletEntity(&m), nil
}

// FindByAddress expects the checksummed address stored at creation.
func (r *WalletRepository) FindByAddress(ctx context.Context, address string) (*entities.Wallet, error) {
	var m models.Wallet
	err := r.db.WithContext(ctx).
		Select(walletPublicColumns).
		Where("address = ?", address).
		Order("created_at ASC").
		First(&m).Error
	if err != nil {
		return nil, translateReadError(err)
	}
	return toWalletEntity(&m), nil
}

// FindWithSecret loads the encrypted key for a single signing operation.
func (r *WalletRepository) FindWithSecret(ctx context.Context, appID, address string) (*entities.WalletWithSecret, error) {
	var m models.Wallet
	err := r.db.WithContext(ctx).
		Where("app_id = ? AND address = ?", appID, address).
		First(&m).Error
	if err != nil {
		return nil, translateReadError(err)
	}
	return &entities.WalletWithSecret{
		Wallet:              *toWalletEntity(&m),
		EncryptedPrivateKey: m.EncryptedPrivateKey,
		EncryptionSalt:      m.EncryptionSalt,
	}, nil
}

// Create inserts a new wallet. Uniqueness violations surface as ErrAlreadyExists.
func (r *WalletRepository) Create(ctx context.Context, wallet *entities.WalletWithSecret) error {
	if !wallet.HasSingleIdentifier() {
		return domainerrors.ErrInvalidInput
	}
	if wallet.ID == uuid.Nil {
		wallet.ID = uuid.New()
	}
	now := r.now()
	if wallet.CreatedAt.IsZero() {
		wallet.CreatedAt = now
	}
	wallet.UpdatedAt = now

	m := &models.Wallet{
		ID:                  wallet.ID,
		AppID:               wallet.AppID,
		SocialType:          string(wallet.SocialType),
		Email:               wallet.Email,
		PhoneNumber:         wallet.PhoneNumber,
		Address:             wallet.Address,
		PublicKey:           wallet.PublicKey,
		EncryptedPrivateKey: wallet.EncryptedPrivateKey,
		EncryptionSalt:      wallet.EncryptionSalt,
		UserData:            wallet.UserData,
		OAuthTokens:         wallet.OAuthTokens,
		IsActive:            wallet.IsActive,
		OTP:                 wallet.OTP,
		OTPExpiry:           wallet.OTPExpiry,
		CreatedAt:           wallet.CreatedAt,
		UpdatedAt:           wallet.UpdatedAt,
	}

	return translateWriteError(r.db.WithContext(ctx).Create(m).Error)
}

// SetChallenge overwrites any pending OTP.
func (r *WalletRepository) SetChallenge(ctx context.Context, id uuid.UUID, otp string, expiry time.Time) error {
	return r.update(ctx, id, map[string]interface{}{
		"otp":        otp,
		"otp_expiry": expiry,
		"updated_at": r.now(),
	})
}

// Activate marks the wallet active and clears the challenge. The update is
// conditional on the stored code so one OTP can activate at most once.
func (r *WalletRepository) Activate(ctx context.Context, id uuid.UUID, otp string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("id = ? AND otp = ?", id, otp).
		Updates(map[string]interface{}{
			"is_active":  true,
			"otp":        gorm.Expr("NULL"),
			"otp_expiry": gorm.Expr("NULL"),
			"updated_at": r.now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// ClearExpiredChallenges returns the number of challenges it cleared.
func (r *WalletRepository) ClearExpiredChallenges(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("otp IS NOT NULL AND otp_expiry < ?", before).
		Updates(map[string]interface{}{
			"otp":        gorm.Expr("NULL"),
			"otp_expiry": gorm.Expr("NULL"),
			"updated_at": r.now(),
		})
	return result.RowsAffected, result.Error
}

func (r *WalletRepository) update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Wallet{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func identifierColumn(socialType entities.SocialType) (string, error) {
	switch socialType {
	case entities.SocialTypeEmail:
		return "email", nil
	case entities.SocialTypeSMS:
		return "phone_number", nil
	default:
		return "", domainerrors.ErrInvalidInput
	}
}

func toWalletEntity(m *models.Wallet) *entities.Wallet {
	return &entities.Wallet{
		ID:          m.ID,
		AppID:       m.AppID,
		SocialType:  entities.SocialType(m.SocialType),
		Email:       m.Email,
		PhoneNumber: m.PhoneNumber,
		Address:     m.Address,
		PublicKey:   m.PublicKey,
		UserData:    m.UserData,
		OAuthTokens: m.OAuthTokens,
		IsActive:    m.IsActive,
		OTP:         m.OTP,
		OTPExpiry:   m.OTPExpiry,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
