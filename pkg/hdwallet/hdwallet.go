// Package hdwallet derives EVM accounts from BIP-39 mnemonics along the
// BIP-44 path m/44'/60'/0'/0/0.
package hdwallet

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"
)

const (
	// DefaultPath is the first external account of coin type 60.
	DefaultPath = "m/44'/60'/0'/0/0"
	// EntropyBits yields a 12 word mnemonic.
	EntropyBits  = 128
	MaxBatchSize = 100
)

var (
	ErrInvalidMnemonic  = errors.New("invalid mnemonic phrase")
	ErrAddressMismatch  = errors.New("derived address does not match private key address")
	ErrInvalidBatchSize = fmt.Errorf("batch size must be between 1 and %d", MaxBatchSize)
)

// GeneratedWallet is the immediate result of key generation. PrivateKey and
// Mnemonic must be encrypted or discarded by the caller.
type GeneratedWallet struct {
	Address    string
	PublicKey  string
	PrivateKey string
	Mnemonic   string
}

// Generator creates mnemonic-backed wallets.
type Generator struct {
	path accounts.DerivationPath

	newEntropy     func(bits int) ([]byte, error)
	addressFromKey func(key *ecdsa.PrivateKey) common.Address
}

func NewGenerator() *Generator {
	path, err := accounts.ParseDerivationPath(DefaultPath)
	if err != nil {
		panic(err)
	}
	return &Generator{
		path:       path,
		newEntropy: bip39.NewEntropy,
		addressFromKey: func(key *ecdsa.PrivateKey) common.Address {
			return ethcrypto.PubkeyToAddress(key.PublicKey)
		},
	}
}

// Generate creates a fresh 12 word wallet.
func (g *Generator) Generate() (*GeneratedWallet, error) {
	entropy, err := g.newEntropy(EntropyBits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate entropy: %w", err)
	}
	defer clear(entropy)

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, fmt.Errorf("failed to build mnemonic: %w", err)
	}
	return g.derive(mnemonic)
}

// GenerateBatch returns count wallets or none at all.
func (g *Generator) GenerateBatch(count int) ([]*GeneratedWallet, error) {
	if count < 1 || count > MaxBatchSize {
		return nil, ErrInvalidBatchSize
	}

	wallets := make([]*GeneratedWallet, 0, count)
	for i := 0; i < count; i++ {
		w, err := g.Generate()
		if err != nil {
			return nil, fmt.Errorf("batch item %d: %w", i, err)
		}
		wallets = append(wallets, w)
	}
	return wallets, nil
}

// Recover rebuilds the wallet for an existing mnemonic.
func (g *Generator) Recover(mnemonic string) (*GeneratedWallet, error) {
	mnemonic = normalizeMnemonic(mnemonic)
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}
	return g.derive(mnemonic)
}

func ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(normalizeMnemonic(mnemonic))
}

func (g *Generator) derive(mnemonic string) (*GeneratedWallet, error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return nil, ErrInvalidMnemonic
	}
	defer clear(seed)

	key, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create master key: %w", err)
	}
	for _, index := range g.path {
		key, err = key.Derive(index)
		if err != nil {
			return nil, fmt.Errorf("failed to derive path %s: %w", DefaultPath, err)
		}
	}

	ecPriv, err := key.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("failed to extract private key: %w", err)
	}
	derived := ecPriv.ToECDSA()
	hdAddress := g.addressFromKey(derived)

	rawKey := ethcrypto.FromECDSA(derived)
	defer clear(rawKey)

	// Re-derive from the raw key alone; both paths must agree.
	reloaded, err := ethcrypto.ToECDSA(rawKey)
	if err != nil {
		return nil, fmt.Errorf("failed to reload private key: %w", err)
	}
	if ethcrypto.PubkeyToAddress(reloaded.PublicKey) != hdAddress {
		return nil, ErrAddressMismatch
	}

	return &GeneratedWallet{
		Address:    hdAddress.Hex(),
		PublicKey:  hexutil.Encode(ethcrypto.FromECDSAPub(&reloaded.PublicKey)),
		PrivateKey: hexutil.Encode(rawKey),
		Mnemonic:   mnemonic,
	}, nil
}

// AddressFromPrivateKey returns the checksummed address for a hex key.
func AddressFromPrivateKey(privateKeyHex string) (string, error) {
	raw, err := hexutil.Decode(ensureHexPrefix(privateKeyHex))
	if err != nil {
		return "", fmt.Errorf("invalid private key encoding: %w", err)
	}
	defer clear(raw)

	key, err := ethcrypto.ToECDSA(raw)
	if err != nil {
		return "", fmt.Errorf("invalid private key: %w", err)
	}
	return ethcrypto.PubkeyToAddress(key.PublicKey).Hex(), nil
}

func normalizeMnemonic(m string) string {
	return strings.Join(strings.Fields(strings.ToLower(m)), " ")
}

func ensureHexPrefix(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s
	}
	return "0x" + s
}
