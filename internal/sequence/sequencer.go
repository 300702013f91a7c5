// Package sequence drives one coin's startup state machine: start node,
// wait responsive, wait synced, provision and start the wallet service,
// wait on a cross-coin dependency, start stratum, verify it is active.
//
// Failure semantics: node and sync waits degrade (retry forever or proceed
// with a warning), because a slow node still eventually serves miners. Only
// two things abort a sequencer — a service-manager request failing outright
// and the stratum process not running after start, since a dead stratum
// accepts no shares and that is the pool's entire purpose.
package sequence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"solopool/internal/probe"
)

// ErrStratumInactive is the fatal stratum-verification failure: the stratum
// unit did not report active after its settle delay.
var ErrStratumInactive = errors.New("stratum service not active after start")

// Default wait steps. Sync and dependency waits are unbounded by design:
// blockchain sync duration is unbounded and coin-dependent.
var (
	DefaultResponsiveWait = RetryPolicy{Interval: 5 * time.Second, MaxAttempts: 60, OnExhaust: Degrade}
	DefaultSyncWait       = RetryPolicy{Interval: 30 * time.Second}
	DefaultDependencyWait = RetryPolicy{Interval: 30 * time.Second}
)

// DefaultSettleDelay is the fixed pause before checking a freshly started
// wallet or stratum unit.
const DefaultSettleDelay = 5 * time.Second

// Sequencer runs one coin's startup sequence. Zero or more optional stages
// are skipped when their fields are unset: no WalletUnit means no wallet
// stages, no Dependency means no dependency wait.
type Sequencer struct {
	Coin string

	NodeUnit    string
	WalletUnit  string
	StratumUnit string

	Services  ServiceManager
	Probe     probe.Probe
	Provision Provisioner // nil for wallet-less coins

	// Dependency, when set, must report active before stratum start. Used
	// by the Tari merge proxy waiting on the Monero wallet service.
	Dependency     func(ctx context.Context) bool
	DependencyName string

	Journal Recorder // optional

	ResponsiveWait       RetryPolicy
	SyncWait             RetryPolicy
	DependencyWaitPolicy RetryPolicy
	SettleDelay          time.Duration

	mu    sync.RWMutex
	phase Phase
	log   *slog.Logger
}

// Phase returns the sequencer's current phase. Safe for concurrent reads
// while Run executes.
func (s *Sequencer) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.phase == 0 {
		return NotStarted
	}
	return s.phase
}

func (s *Sequencer) transition(ctx context.Context, to Phase) {
	s.mu.Lock()
	if s.phase == 0 {
		s.phase = NotStarted
	}
	from := s.phase
	s.phase = s.phase.Transition(to)
	s.mu.Unlock()

	s.logger().Debug("phase transition", "from", from.String(), "to", to.String())
	if s.Journal != nil {
		s.Journal.Record(ctx, s.Coin, "phase."+to.String(), "")
	}
}

// StartNode requests the node start. The fleet calls this for every enabled
// coin before any sequencer proceeds past it, so all nodes begin syncing in
// parallel.
func (s *Sequencer) StartNode(ctx context.Context) error {
	s.transition(ctx, NodeStarting)
	if err := s.Services.Start(ctx, s.NodeUnit); err != nil {
		s.fail(ctx, err)
		return err
	}
	s.logger().Info("node start requested", "unit", s.NodeUnit)
	return nil
}

// Run drives the sequence from node-responsive wait to stratum
// verification. StartNode must have been called first.
func (s *Sequencer) Run(ctx context.Context) error {
	log := s.logger()

	if err := s.waitResponsive(ctx); err != nil {
		return err
	}
	if err := s.waitSynced(ctx); err != nil {
		return err
	}

	if s.WalletUnit != "" || s.Provision != nil {
		if err := s.walletStages(ctx); err != nil {
			return err
		}
	}

	if s.Dependency != nil {
		s.transition(ctx, DependencyWait)
		log.Info("waiting on dependency wallet service", "dependency", s.DependencyName)
		if _, err := s.dependencyWait().Wait(ctx, s.Dependency); err != nil {
			return err
		}
		log.Info("dependency ready", "dependency", s.DependencyName)
	}

	return s.startStratum(ctx)
}

func (s *Sequencer) waitResponsive(ctx context.Context) error {
	log := s.logger()
	policy := s.ResponsiveWait
	if policy.Interval == 0 {
		policy = DefaultResponsiveWait
	}

	ok, err := policy.Wait(ctx, func(ctx context.Context) bool {
		return s.Probe.Responsive(ctx)
	})
	if err != nil {
		return err
	}
	if ok {
		s.transition(ctx, NodeResponsive)
		log.Info("node responsive", "unit", s.NodeUnit)
		s.transition(ctx, Syncing)
		return nil
	}

	// Some nodes are slow to bind RPC. Proceed degraded: the sync poll
	// below keeps failing visibly until the node answers.
	log.Warn("node never became responsive, proceeding degraded",
		"unit", s.NodeUnit, "attempts", policy.MaxAttempts)
	if s.Journal != nil {
		s.Journal.Record(ctx, s.Coin, "probe.timeout", s.NodeUnit)
	}
	s.transition(ctx, Syncing)
	return nil
}

func (s *Sequencer) waitSynced(ctx context.Context) error {
	log := s.logger()
	policy := s.SyncWait
	if policy.Interval == 0 {
		policy = DefaultSyncWait
	}

	_, err := policy.Wait(ctx, func(ctx context.Context) bool {
		st, err := s.Probe.Sync(ctx)
		if err != nil {
			log.Warn("sync poll failed", "err", err)
			return false
		}
		log.Info("sync progress",
			"height", st.Height, "target", st.TargetHeight,
			"progress", fmt.Sprintf("%.2f%%", st.Progress*100), "synced", st.Synced)
		return st.Synced
	})
	if err != nil {
		return err
	}
	s.transition(ctx, Synced)
	log.Info("chain synced", "unit", s.NodeUnit)
	return nil
}

func (s *Sequencer) walletStages(ctx context.Context) error {
	log := s.logger()

	if s.Provision != nil {
		s.transition(ctx, WalletProvisioning)
		rec, err := s.Provision.Ensure(ctx)
		if err != nil {
			s.fail(ctx, err)
			return fmt.Errorf("provision %s wallet: %w", s.Coin, err)
		}
		if rec.Address != "" {
			log.Info("pool wallet ready", "address", rec.Address)
		}
		s.transition(ctx, WalletStarting)
	} else {
		s.transition(ctx, WalletProvisioning)
		s.transition(ctx, WalletStarting)
	}

	if s.WalletUnit == "" {
		// Provisioned account with no long-running wallet service (Aleo).
		return nil
	}
	if err := s.Services.Start(ctx, s.WalletUnit); err != nil {
		s.fail(ctx, err)
		return err
	}
	if err := sleep(ctx, s.settleDelay()); err != nil {
		return err
	}
	// Wallet non-activation is not fatal: the stratum step may still
	// partially function and the operator can intervene.
	if !s.Services.IsActive(ctx, s.WalletUnit) {
		log.Warn("wallet service not active after start", "unit", s.WalletUnit)
		if s.Journal != nil {
			s.Journal.Record(ctx, s.Coin, "wallet.inactive", s.WalletUnit)
		}
	}
	return nil
}

func (s *Sequencer) startStratum(ctx context.Context) error {
	log := s.logger()

	if s.StratumUnit == "" {
		// Merge mode: the base chain's blocks are mined through the other
		// coin's merge proxy, so there is no stratum process of its own.
		s.transition(ctx, Verified)
		log.Info("no stratum process in this mode")
		return nil
	}

	s.transition(ctx, StratumStarting)
	if err := s.Services.Start(ctx, s.StratumUnit); err != nil {
		s.fail(ctx, err)
		return err
	}
	if err := sleep(ctx, s.settleDelay()); err != nil {
		return err
	}
	if !s.Services.IsActive(ctx, s.StratumUnit) {
		err := fmt.Errorf("%w: %s", ErrStratumInactive, s.StratumUnit)
		s.fail(ctx, err)
		return err
	}

	s.transition(ctx, Verified)
	log.Info("stratum verified active", "unit", s.StratumUnit)
	return nil
}

func (s *Sequencer) fail(ctx context.Context, err error) {
	s.mu.Lock()
	s.phase = s.phase.Transition(Failed)
	s.mu.Unlock()
	s.logger().Error("sequencer failed", "err", err)
	if s.Journal != nil {
		s.Journal.Record(ctx, s.Coin, "failed", err.Error())
	}
}

func (s *Sequencer) dependencyWait() RetryPolicy {
	if s.DependencyWaitPolicy.Interval != 0 {
		return s.DependencyWaitPolicy
	}
	return DefaultDependencyWait
}

func (s *Sequencer) settleDelay() time.Duration {
	if s.SettleDelay > 0 {
		return s.SettleDelay
	}
	return DefaultSettleDelay
}

func (s *Sequencer) logger() *slog.Logger {
	if s.log == nil {
		s.log = slog.With("component", "sequencer", "coin", s.Coin)
	}
	return s.log
}
