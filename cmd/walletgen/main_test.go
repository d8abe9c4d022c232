package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"custodial-wallet.backend/pkg/hdwallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testMnemonic = "test test test test test test test test test test test junk"
	testAddress  = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := runWalletgen(args, walletgenIO{in: strings.NewReader(stdin), out: &out})
	return out.String(), err
}

func TestWalletgenGenerate(t *testing.T) {
	out, err := run(t, "", "generate", "-count", "3")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	for _, line := range lines {
		var w walletOutput
		require.NoError(t, json.Unmarshal([]byte(line), &w))
		assert.True(t, strings.HasPrefix(w.Address, "0x"))
		assert.Empty(t, w.PrivateKey)
		assert.Empty(t, w.Mnemonic)
	}
}

func TestWalletgenGenerateReveal(t *testing.T) {
	out, err := run(t, "", "generate", "-reveal")
	require.NoError(t, err)

	var w walletOutput
	require.NoError(t, json.Unmarshal([]byte(out), &w))
	assert.True(t, hdwallet.ValidateMnemonic(w.Mnemonic))
	addr, err := hdwallet.AddressFromPrivateKey(w.PrivateKey)
	require.NoError(t, err)
	assert.Equal(t, w.Address, addr)
}

func TestWalletgenGenerateBadCount(t *testing.T) {
	_, err := run(t, "", "generate", "-count", "0")
	assert.ErrorIs(t, err, hdwallet.ErrInvalidBatchSize)
}

func TestWalletgenRecover(t *testing.T) {
	out, err := run(t, testMnemonic+"\n", "recover")
	require.NoError(t, err)

	var w walletOutput
	require.NoError(t, json.Unmarshal([]byte(out), &w))
	assert.Equal(t, testAddress, w.Address)
	assert.Empty(t, w.Mnemonic)
}

func TestWalletgenValidate(t *testing.T) {
	out, err := run(t, testMnemonic, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "valid")

	_, err = run(t, "test test test", "validate")
	assert.ErrorIs(t, err, hdwallet.ErrInvalidMnemonic)

	_, err = run(t, "", "validate")
	assert.Error(t, err)
}

func TestWalletgenAddress(t *testing.T) {
	out, err := run(t, "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80\n", "address")
	require.NoError(t, err)
	assert.Equal(t, testAddress+"\n", out)

	_, err = run(t, "not-a-key", "address")
	assert.Error(t, err)

	_, err = run(t, "", "address")
	assert.Error(t, err)
}

func TestWalletgenUsage(t *testing.T) {
	_, err := run(t, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "usage")

	_, err = run(t, "", "explode")
	assert.Contains(t, err.Error(), "unknown command")
}
