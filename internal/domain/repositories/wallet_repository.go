package repositories

import (
	"context"
	"time"

	"custodial-wallet.backend/internal/domain/entities"
	"github.com/google/uuid"
)

// WalletRepository persists custodial wallets. Reads return wallets without
// key material unless the method name says otherwise.
type WalletRepository interface {
	FindByIdentifier(ctx context.Context, appID string, socialType entities.SocialType, identifier string) (*entities.Wallet, error)
	FindByAddress(ctx context.Context, address string) (*entities.Wallet, error)
	FindWithSecret(ctx context.Context, appID, address string) (*entities.WalletWithSecret, error)
	// Create returns errors.ErrAlreadyExists when a uniqueness constraint trips.
	Create(ctx context.Context, wallet *entities.WalletWithSecret) error
	SetChallenge(ctx context.Context, id uuid.UUID, otp string, expiry time.Time) error
	// Activate consumes the pending challenge only if it still equals otp and
	// returns errors.ErrNotFound otherwise.
	Activate(ctx context.Context, id uuid.UUID, otp string) error
	// ClearExpiredChallenges drops OTPs whose expiry is before the given time.
	ClearExpiredChallenges(ctx context.Context, before time.Time) (int64, error)
}
