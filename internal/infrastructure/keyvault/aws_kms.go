package keyvault

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/kms"
)

const encryptionContextKey = "wallet_salt"

type kmsAPI interface {
	Encrypt(ctx context.Context, params *kms.EncryptInput, optFns ...func(*kms.Options)) (*kms.EncryptOutput, error)
	Decrypt(ctx context.Context, params *kms.DecryptInput, optFns ...func(*kms.Options)) (*kms.DecryptOutput, error)
}

var loadAWSConfig = awsconfig.LoadDefaultConfig

// AWSKMS encrypts with a KMS key; the wallet salt is bound as encryption context.
type AWSKMS struct {
	keyID  string
	client kmsAPI
}

func NewAWSKMS(ctx context.Context, keyID, region string) (*AWSKMS, error) {
	if keyID == "" {
		return nil, errors.New("AWS KMS key ID is required")
	}
	if region == "" {
		return nil, errors.New("AWS region is required")
	}

	cfg, err := loadAWSConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &AWSKMS{keyID: keyID, client: kms.NewFromConfig(cfg)}, nil
}

func (p *AWSKMS) Encrypt(ctx context.Context, plaintext []byte, salt string) (string, error) {
	out, err := p.client.Encrypt(ctx, &kms.EncryptInput{
		KeyId:             aws.String(p.keyID),
		Plaintext:         plaintext,
		EncryptionContext: map[string]string{encryptionContextKey: salt},
	})
	if err != nil {
		return "", fmt.Errorf("AWS KMS encrypt failed: %w", err)
	}
	return base64.StdEncoding.EncodeToString(out.CiphertextBlob), nil
}

func (p *AWSKMS) Decrypt(ctx context.Context, ciphertext string, salt string) ([]byte, error) {
	blob, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("invalid ciphertext encoding: %w", err)
	}
	out, err := p.client.Decrypt(ctx, &kms.DecryptInput{
		KeyId:             aws.String(p.keyID),
		CiphertextBlob:    blob,
		EncryptionContext: map[string]string{encryptionContextKey: salt},
	})
	if err != nil {
		return nil, fmt.Errorf("AWS KMS decrypt failed: %w", err)
	}
	return out.Plaintext, nil
}

func (p *AWSKMS) Provider() string {
	return ProviderAWSKMS
}
