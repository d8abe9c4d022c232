package hdwallet

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

var ErrSignatureMismatch = errors.New("recovered signer does not match wallet address")

// SignPersonalMessage produces an EIP-191 personal_sign signature with V in {27,28}
// and confirms the signature recovers to expectedAddress.
func SignPersonalMessage(privateKey []byte, message []byte, expectedAddress string) (string, error) {
	key, err := ethcrypto.ToECDSA(privateKey)
	if err != nil {
		return "", fmt.Errorf("invalid private key: %w", err)
	}
	defer func() {
		if key.D != nil {
			key.D.SetInt64(0)
		}
	}()

	hash := accounts.TextHash(message)
	sig, err := ethcrypto.Sign(hash, key)
	if err != nil {
		return "", fmt.Errorf("failed to sign message: %w", err)
	}

	pub, err := ethcrypto.SigToPub(hash, sig)
	if err != nil {
		return "", fmt.Errorf("failed to recover signer: %w", err)
	}
	if ethcrypto.PubkeyToAddress(*pub) != common.HexToAddress(expectedAddress) {
		return "", ErrSignatureMismatch
	}

	sig[ethcrypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig), nil
}

// RecoverPersonalSigner returns the address that produced an EIP-191 signature.
func RecoverPersonalSigner(message []byte, signatureHex string) (string, error) {
	sig, err := hexutil.Decode(signatureHex)
	if err != nil {
		return "", fmt.Errorf("invalid signature encoding: %w", err)
	}
	if len(sig) != ethcrypto.SignatureLength {
		return "", fmt.Errorf("invalid signature length %d", len(sig))
	}
	if sig[ethcrypto.RecoveryIDOffset] >= 27 {
		sig[ethcrypto.RecoveryIDOffset] -= 27
	}

	pub, err := ethcrypto.SigToPub(accounts.TextHash(message), sig)
	if err != nil {
		return "", fmt.Errorf("failed to recover signer: %w", err)
	}
	return ethcrypto.PubkeyToAddress(*pub).Hex(), nil
}
