// Package wallet provisions and inspects the pool payout wallets.
//
// Provisioning is one-time and idempotent at the marker-file boundary: the
// whole create/export/extract sequence runs only while the .initialized
// marker is absent, and the marker is written last, so a crash mid-way
// retries the full sequence on the next run. Every step before the marker
// is safe to repeat.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrMissingSecret means the pre-provisioned wallet password file is absent
// or empty. Fatal: a wallet cannot be created without it.
var ErrMissingSecret = errors.New("wallet password secret missing")

const (
	markerFile  = ".initialized"
	addressFile = "address.txt"
	backupFile  = "seed-backup.txt"

	// addressAttempts bounds receiving-address extraction; wallets can be
	// slow to open right after creation.
	addressAttempts = 3
	addressRetryGap = 2 * time.Second
)

// Record is the persisted outcome of provisioning one coin's wallet.
type Record struct {
	Address       string
	InitializedAt time.Time
	BackupPath    string
}

// Ops is one coin's wallet command surface (create, seed export, address
// query). The daemons behind it differ per coin; the Provisioner does not.
type Ops interface {
	Create(ctx context.Context, password string) error
	ExportSeed(ctx context.Context, password string) (string, error)
	Address(ctx context.Context, password string) (string, error)
}

// Provisioner performs the one-time wallet initialization for a coin.
type Provisioner struct {
	Coin       string
	Dir        string // wallet data directory
	SecretFile string // pre-placed password file
	BackupDir  string

	Ops Ops

	// ValidateAddress rejects garbage from address extraction. Optional.
	ValidateAddress func(string) bool

	// RetryGap overrides the address-extraction retry delay, for tests.
	RetryGap time.Duration

	log *slog.Logger
}

// Ensure provisions the wallet if it has not been provisioned yet. When the
// initialized marker already exists the previously recorded address and
// backup path are returned without contacting the wallet daemon at all.
func (p *Provisioner) Ensure(ctx context.Context) (Record, error) {
	log := p.logger()

	if rec, ok := p.loadRecord(); ok {
		log.Debug("wallet already provisioned", "address", rec.Address)
		return rec, nil
	}

	password, err := p.readSecret()
	if err != nil {
		return Record{}, err
	}

	if p.walletDataPresent() {
		log.Info("wallet data already on disk, skipping creation")
	} else {
		log.Info("creating wallet")
		if err := p.Ops.Create(ctx, password); err != nil {
			return Record{}, fmt.Errorf("create %s wallet: %w", p.Coin, err)
		}
	}

	backupPath := p.exportSeed(ctx, password)
	address := p.extractAddress(ctx, password)

	rec := Record{
		Address: address,
		// Round(0) strips the monotonic reading so a record reloaded from
		// the marker compares equal to the one returned here.
		InitializedAt: time.Now().UTC().Round(0),
		BackupPath:    backupPath,
	}
	if err := p.writeRecord(rec); err != nil {
		return Record{}, err
	}
	log.Info("wallet provisioned", "address", address)
	return rec, nil
}

func (p *Provisioner) readSecret() (string, error) {
	data, err := os.ReadFile(p.SecretFile)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrMissingSecret, p.SecretFile)
	}
	password := strings.TrimSpace(string(data))
	if password == "" {
		return "", fmt.Errorf("%w: %s is empty", ErrMissingSecret, p.SecretFile)
	}
	return password, nil
}

// walletDataPresent reports whether wallet data already exists on disk,
// e.g. created out-of-band during installation. Marker and address files
// are ours and do not count.
func (p *Provisioner) walletDataPresent() bool {
	entries, err := os.ReadDir(p.Dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.Name() == markerFile || e.Name() == addressFile {
			continue
		}
		return true
	}
	return false
}

// exportSeed writes the recovery seed to an owner-only backup file. Failure
// is non-fatal: the pool can run without a seed backup, but the operator is
// warned loudly because losing the wallet then loses the funds.
func (p *Provisioner) exportSeed(ctx context.Context, password string) string {
	log := p.logger()

	seed, err := p.Ops.ExportSeed(ctx, password)
	if err != nil {
		log.Warn("SEED EXPORT FAILED — back up this wallet immediately by hand",
			"coin", p.Coin, "err", err)
		return ""
	}

	if err := os.MkdirAll(p.BackupDir, 0o700); err != nil {
		log.Warn("SEED BACKUP NOT WRITTEN — back up this wallet immediately by hand",
			"coin", p.Coin, "err", err)
		return ""
	}
	path := filepath.Join(p.BackupDir, backupFile)
	if err := os.WriteFile(path, []byte(seed+"\n"), 0o600); err != nil {
		log.Warn("SEED BACKUP NOT WRITTEN — back up this wallet immediately by hand",
			"coin", p.Coin, "err", err)
		return ""
	}
	return path
}

// extractAddress queries the receiving address with bounded retries. Failure
// after all attempts degrades to a warning: the wallet is still usable and
// the address can be recovered manually later.
func (p *Provisioner) extractAddress(ctx context.Context, password string) string {
	gap := p.RetryGap
	if gap <= 0 {
		gap = addressRetryGap
	}

	var address string
	op := func() error {
		addr, err := p.Ops.Address(ctx, password)
		if err != nil {
			return err
		}
		addr = strings.TrimSpace(addr)
		if p.ValidateAddress != nil && !p.ValidateAddress(addr) {
			return fmt.Errorf("invalid %s address %q", p.Coin, addr)
		}
		address = addr
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(gap), addressAttempts-1), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		p.logger().Warn("address extraction failed, recover it manually later",
			"coin", p.Coin, "attempts", addressAttempts, "err", err)
		return ""
	}
	return address
}

func (p *Provisioner) loadRecord() (Record, bool) {
	data, err := os.ReadFile(filepath.Join(p.Dir, markerFile))
	if err != nil {
		return Record{}, false
	}

	rec := Record{}
	if t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(string(data))); err == nil {
		rec.InitializedAt = t
	}
	if addr, err := os.ReadFile(filepath.Join(p.Dir, addressFile)); err == nil {
		rec.Address = strings.TrimSpace(string(addr))
	}
	if path := filepath.Join(p.BackupDir, backupFile); fileExists(path) {
		rec.BackupPath = path
	}
	return rec, true
}

// writeRecord persists the address (world-readable, it is public) and then
// the marker. Marker last: everything before it must be repeatable.
func (p *Provisioner) writeRecord(rec Record) error {
	if err := os.MkdirAll(p.Dir, 0o750); err != nil {
		return fmt.Errorf("create wallet dir: %w", err)
	}
	if rec.Address != "" {
		path := filepath.Join(p.Dir, addressFile)
		if err := os.WriteFile(path, []byte(rec.Address+"\n"), 0o644); err != nil {
			return fmt.Errorf("write address file: %w", err)
		}
	}
	marker := filepath.Join(p.Dir, markerFile)
	// Nanosecond precision so the reloaded timestamp matches exactly.
	stamp := rec.InitializedAt.Format(time.RFC3339Nano)
	if err := os.WriteFile(marker, []byte(stamp+"\n"), 0o644); err != nil {
		return fmt.Errorf("write initialized marker: %w", err)
	}
	return nil
}

func (p *Provisioner) logger() *slog.Logger {
	if p.log == nil {
		p.log = slog.With("component", "wallet", "coin", p.Coin)
	}
	return p.log
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
