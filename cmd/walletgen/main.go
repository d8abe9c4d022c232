package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"custodial-wallet.backend/pkg/hdwallet"
)

const usage = `usage: walletgen <command> [flags]

commands:
  generate  [-count N] [-reveal]   derive N fresh wallets at m/44'/60'/0'/0/0
  recover   [-reveal]              read a mnemonic from stdin and derive its wallet
  validate                         read a mnemonic from stdin and check its checksum
  address                          read a hex private key from stdin and print its address`

type walletgenIO struct {
	in  io.Reader
	out io.Writer
}

type walletOutput struct {
	Address    string `json:"address"`
	PublicKey  string `json:"publicKey"`
	PrivateKey string `json:"privateKey,omitempty"`
	Mnemonic   string `json:"mnemonic,omitempty"`
}

var newGenerator = hdwallet.NewGenerator

func runWalletgen(args []string, stdio walletgenIO) error {
	if len(args) == 0 {
		return errors.New(usage)
	}

	switch args[0] {
	case "generate":
		fs := flag.NewFlagSet("generate", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		count := fs.Int("count", 1, "number of wallets")
		reveal := fs.Bool("reveal", false, "print private keys and mnemonics")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		wallets, err := newGenerator().GenerateBatch(*count)
		if err != nil {
			return err
		}
		return writeWallets(stdio.out, wallets, *reveal)

	case "recover":
		fs := flag.NewFlagSet("recover", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		reveal := fs.Bool("reveal", false, "print the private key")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		mnemonic, err := readMnemonic(stdio.in)
		if err != nil {
			return err
		}
		w, err := newGenerator().Recover(mnemonic)
		if err != nil {
			return err
		}
		w.Mnemonic = ""
		return writeWallets(stdio.out, []*hdwallet.GeneratedWallet{w}, *reveal)

	case "validate":
		mnemonic, err := readMnemonic(stdio.in)
		if err != nil {
			return err
		}
		if !hdwallet.ValidateMnemonic(mnemonic) {
			return hdwallet.ErrInvalidMnemonic
		}
		_, _ = fmt.Fprintln(stdio.out, "mnemonic is valid")
		return nil

	case "address":
		key, err := readLine(stdio.in, "private key")
		if err != nil {
			return err
		}
		addr, err := hdwallet.AddressFromPrivateKey(key)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(stdio.out, addr)
		return nil

	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

func readMnemonic(r io.Reader) (string, error) {
	return readLine(r, "mnemonic")
}

func readLine(r io.Reader, what string) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read %s: %w", what, err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("%s is required on stdin", what)
	}
	return line, nil
}

func writeWallets(out io.Writer, wallets []*hdwallet.GeneratedWallet, reveal bool) error {
	enc := json.NewEncoder(out)
	for _, w := range wallets {
		o := walletOutput{Address: w.Address, PublicKey: w.PublicKey}
		if reveal {
			o.PrivateKey = w.PrivateKey
			o.Mnemonic = w.Mnemonic
		}
		if err := enc.Encode(o); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	if err := runWalletgen(os.Args[1:], walletgenIO{in: os.Stdin, out: os.Stdout}); err != nil {
		log.Fatal(err)
	}
}
