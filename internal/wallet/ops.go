package wallet

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

// Runner executes one wallet CLI command and returns its combined output.
// Production: ExecRunner
// Testing: fake with scripted outputs
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs wallet CLI commands via os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// MoneroOps drives monero-wallet-cli. Addresses are validated by their
// distinguishing mainnet lead character ('4') and fixed length.
type MoneroOps struct {
	Binary string // default monero-wallet-cli
	Dir    string
	Runner Runner
}

func (o *MoneroOps) binary() string {
	if o.Binary != "" {
		return o.Binary
	}
	return "monero-wallet-cli"
}

func (o *MoneroOps) walletFile() string {
	return filepath.Join(o.Dir, "pool-wallet")
}

func (o *MoneroOps) Create(ctx context.Context, password string) error {
	out, err := o.Runner.Run(ctx, o.binary(),
		"--generate-new-wallet", o.walletFile(),
		"--password", password,
		"--mnemonic-language", "English",
		"--command", "exit")
	if err != nil {
		return fmt.Errorf("monero-wallet-cli: %w: %s", err, firstLine(out))
	}
	return nil
}

func (o *MoneroOps) ExportSeed(ctx context.Context, password string) (string, error) {
	out, err := o.Runner.Run(ctx, o.binary(),
		"--wallet-file", o.walletFile(),
		"--password", password,
		"--command", "seed")
	if err != nil {
		return "", fmt.Errorf("monero-wallet-cli seed: %w: %s", err, firstLine(out))
	}
	seed := extractMnemonic(string(out))
	if seed == "" {
		return "", fmt.Errorf("no mnemonic in wallet output")
	}
	return seed, nil
}

func (o *MoneroOps) Address(ctx context.Context, password string) (string, error) {
	out, err := o.Runner.Run(ctx, o.binary(),
		"--wallet-file", o.walletFile(),
		"--password", password,
		"--command", "address")
	if err != nil {
		return "", fmt.Errorf("monero-wallet-cli address: %w: %s", err, firstLine(out))
	}
	for _, field := range strings.Fields(string(out)) {
		if ValidMoneroAddress(field) {
			return field, nil
		}
	}
	return "", fmt.Errorf("no address in wallet output")
}

// TariOps drives minotari_console_wallet.
type TariOps struct {
	Binary string // default minotari_console_wallet
	Dir    string
	Runner Runner
}

func (o *TariOps) binary() string {
	if o.Binary != "" {
		return o.Binary
	}
	return "minotari_console_wallet"
}

func (o *TariOps) Create(ctx context.Context, password string) error {
	out, err := o.Runner.Run(ctx, o.binary(),
		"--base-path", o.Dir,
		"--password", password,
		"--command", "init")
	if err != nil {
		return fmt.Errorf("minotari wallet init: %w: %s", err, firstLine(out))
	}
	return nil
}

func (o *TariOps) ExportSeed(ctx context.Context, password string) (string, error) {
	out, err := o.Runner.Run(ctx, o.binary(),
		"--base-path", o.Dir,
		"--password", password,
		"--command", "export-seed-words")
	if err != nil {
		return "", fmt.Errorf("minotari export-seed-words: %w: %s", err, firstLine(out))
	}
	seed := extractMnemonic(string(out))
	if seed == "" {
		return "", fmt.Errorf("no seed words in wallet output")
	}
	return seed, nil
}

func (o *TariOps) Address(ctx context.Context, password string) (string, error) {
	out, err := o.Runner.Run(ctx, o.binary(),
		"--base-path", o.Dir,
		"--password", password,
		"--command", "get-address")
	if err != nil {
		return "", fmt.Errorf("minotari get-address: %w: %s", err, firstLine(out))
	}
	for _, field := range strings.Fields(string(out)) {
		if ValidTariAddress(field) {
			return field, nil
		}
	}
	return "", fmt.Errorf("no address in wallet output")
}

// AleoOps drives snarkos account management. The "wallet" is an account
// keypair written to a file; there is no seed distinct from the private key,
// so seed export re-reads the account file.
type AleoOps struct {
	Binary string // default snarkos
	Dir    string
	Runner Runner
}

func (o *AleoOps) binary() string {
	if o.Binary != "" {
		return o.Binary
	}
	return "snarkos"
}

func (o *AleoOps) Create(ctx context.Context, _ string) error {
	out, err := o.Runner.Run(ctx, o.binary(), "account", "new")
	if err != nil {
		return fmt.Errorf("snarkos account new: %w: %s", err, firstLine(out))
	}
	path := filepath.Join(o.Dir, "account.txt")
	return writeOwnerOnly(path, out)
}

func (o *AleoOps) ExportSeed(ctx context.Context, _ string) (string, error) {
	out, err := o.Runner.Run(ctx, "cat", filepath.Join(o.Dir, "account.txt"))
	if err != nil {
		return "", fmt.Errorf("read aleo account: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (o *AleoOps) Address(ctx context.Context, _ string) (string, error) {
	out, err := o.Runner.Run(ctx, "cat", filepath.Join(o.Dir, "account.txt"))
	if err != nil {
		return "", fmt.Errorf("read aleo account: %w", err)
	}
	for _, field := range strings.Fields(string(out)) {
		if ValidAleoAddress(field) {
			return field, nil
		}
	}
	return "", fmt.Errorf("no address in account file")
}

// Address validators.

var (
	moneroAddrRe = regexp.MustCompile(`^4[0-9A-Za-z]{94}$`)
	tariAddrRe   = regexp.MustCompile(`^[0-9a-fA-F]{64,70}$`)
	aleoAddrRe   = regexp.MustCompile(`^aleo1[0-9a-z]{58}$`)
)

// ValidMoneroAddress matches mainnet standard addresses: lead character '4',
// 95 characters total.
func ValidMoneroAddress(s string) bool { return moneroAddrRe.MatchString(s) }

// ValidTariAddress matches hex-encoded one-sided addresses.
func ValidTariAddress(s string) bool { return tariAddrRe.MatchString(s) }

// ValidAleoAddress matches bech32m account addresses with the aleo1 prefix.
func ValidAleoAddress(s string) bool { return aleoAddrRe.MatchString(s) }

func extractMnemonic(out string) string {
	// The seed is the longest run of 20+ lowercase words in the output.
	best := ""
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		words := strings.Fields(line)
		if len(words) < 20 {
			continue
		}
		ok := true
		for _, w := range words {
			if strings.ToLower(w) != w {
				ok = false
				break
			}
		}
		if ok && len(line) > len(best) {
			best = line
		}
	}
	return best
}

func firstLine(out []byte) string {
	s := strings.TrimSpace(string(out))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}

func writeOwnerOnly(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
