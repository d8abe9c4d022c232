package usecases_test

import (
	"context"
	"time"

	"custodial-wallet.backend/internal/domain/entities"
	"custodial-wallet.backend/pkg/hdwallet"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock WalletRepository
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) FindByIdentifier(ctx context.Context, appID string, socialType entities.SocialType, identifier string) (*entities.Wallet, error) {
	args := m.Called(ctx, appID, socialType, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) FindByAddress(ctx context.Context, address string) (*entities.Wallet, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) FindWithSecret(ctx context.Context, appID, address string) (*entities.WalletWithSecret, error) {
	args := m.Called(ctx, appID, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.WalletWithSecret), args.Error(1)
}

func (m *MockWalletRepository) Create(ctx context.Context, wallet *entities.WalletWithSecret) error {
	args := m.Called(ctx, wallet)
	return args.Error(0)
}

func (m *MockWalletRepository) SetChallenge(ctx context.Context, id uuid.UUID, otp string, expiry time.Time) error {
	args := m.Called(ctx, id, otp, expiry)
	return args.Error(0)
}

func (m *MockWalletRepository) Activate(ctx context.Context, id uuid.UUID, otp string) error {
	args := m.Called(ctx, id, otp)
	return args.Error(0)
}

func (m *MockWalletRepository) ClearExpiredChallenges(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// Mock delivery for both channels
type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendOTP(ctx context.Context, destination, code string, validFor time.Duration) error {
	args := m.Called(ctx, destination, code, validFor)
	return args.Error(0)
}

func (m *MockSender) SendWelcome(ctx context.Context, destination string) error {
	args := m.Called(ctx, destination)
	return args.Error(0)
}

// Mock KeyGenerator
type MockKeyGenerator struct {
	mock.Mock
}

func (m *MockKeyGenerator) Generate() (*hdwallet.GeneratedWallet, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hdwallet.GeneratedWallet), args.Error(1)
}

// Mock key vault
type MockVault struct {
	mock.Mock
}

func (m *MockVault) Encrypt(ctx context.Context, plaintext []byte, salt string) (string, error) {
	args := m.Called(ctx, plaintext, salt)
	return args.String(0), args.Error(1)
}

func (m *MockVault) Decrypt(ctx context.Context, ciphertext string, salt string) ([]byte, error) {
	args := m.Called(ctx, ciphertext, salt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
