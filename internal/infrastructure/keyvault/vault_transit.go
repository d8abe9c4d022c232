package keyvault

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	vault "github.com/hashicorp/vault/api"
)

// VaultTransit delegates encryption to a Vault Transit key. Ciphertexts are
// the vault:vN:... strings Vault returns.
type VaultTransit struct {
	transitKey string
	client     *vault.Client
}

func NewVaultTransit(address, token, transitKey string) (*VaultTransit, error) {
	if address == "" {
		return nil, errors.New("vault address is required")
	}
	if token == "" {
		return nil, errors.New("vault token is required")
	}
	if transitKey == "" {
		return nil, errors.New("vault transit key name is required")
	}

	vc := vault.DefaultConfig()
	vc.Address = address
	client, err := vault.NewClient(vc)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	client.SetToken(token)

	return &VaultTransit{transitKey: transitKey, client: client}, nil
}

func (p *VaultTransit) Encrypt(ctx context.Context, plaintext []byte, _ string) (string, error) {
	secret, err := p.client.Logical().WriteWithContext(ctx, "transit/encrypt/"+p.transitKey, map[string]interface{}{
		"plaintext": base64.StdEncoding.EncodeToString(plaintext),
	})
	if err != nil {
		return "", fmt.Errorf("vault transit encrypt failed: %w", err)
	}
	if secret == nil || secret.Data == nil {
		return "", errors.New("vault transit encrypt returned empty response")
	}
	ciphertext, ok := secret.Data["ciphertext"].(string)
	if !ok || ciphertext == "" {
		return "", errors.New("vault transit encrypt: ciphertext missing")
	}
	return ciphertext, nil
}

func (p *VaultTransit) Decrypt(ctx context.Context, ciphertext string, _ string) ([]byte, error) {
	secret, err := p.client.Logical().WriteWithContext(ctx, "transit/decrypt/"+p.transitKey, map[string]interface{}{
		"ciphertext": ciphertext,
	})
	if err != nil {
		return nil, fmt.Errorf("vault transit decrypt failed: %w", err)
	}
	if secret == nil || secret.Data == nil {
		return nil, errors.New("vault transit decrypt returned empty response")
	}
	encoded, ok := secret.Data["plaintext"].(string)
	if !ok {
		return nil, errors.New("vault transit decrypt: plaintext missing")
	}
	plaintext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("vault transit decrypt: bad plaintext encoding: %w", err)
	}
	return plaintext, nil
}

func (p *VaultTransit) Provider() string {
	return ProviderVault
}
