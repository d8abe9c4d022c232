// Package keyvault encrypts wallet private keys at rest.
package keyvault

import (
	"context"
	"fmt"

	"custodial-wallet.backend/internal/config"
)

const (
	ProviderLocal  = "local"
	ProviderAWSKMS = "aws-kms"
	ProviderVault  = "vault"
)

// KeyVault seals and opens private keys. salt is the per-wallet
// encryption salt stored alongside the ciphertext.
type KeyVault interface {
	Encrypt(ctx context.Context, plaintext []byte, salt string) (string, error)
	Decrypt(ctx context.Context, ciphertext string, salt string) ([]byte, error)
	Provider() string
}

// New builds the provider selected by cfg.Provider; empty means local.
func New(ctx context.Context, cfg config.KeyVaultConfig) (KeyVault, error) {
	switch cfg.Provider {
	case ProviderLocal, "":
		return NewLocal(cfg.LocalMasterKeyHex)
	case ProviderAWSKMS:
		return NewAWSKMS(ctx, cfg.AWSKMSKeyID, cfg.AWSRegion)
	case ProviderVault:
		return NewVaultTransit(cfg.VaultAddress, cfg.VaultToken, cfg.VaultTransitKey)
	default:
		return nil, fmt.Errorf("unsupported key vault provider %q (supported: %s, %s, %s)",
			cfg.Provider, ProviderLocal, ProviderAWSKMS, ProviderVault)
	}
}

var (
	_ KeyVault = (*Local)(nil)
	_ KeyVault = (*AWSKMS)(nil)
	_ KeyVault = (*VaultTransit)(nil)
)
