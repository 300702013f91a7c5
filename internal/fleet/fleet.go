// Package fleet orchestrates the whole mining stack: it expands
// configuration into coin profiles, starts every enabled node before any
// stratum process, runs the per-coin startup sequencers concurrently, and
// tears everything down in exact reverse dependency order.
package fleet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"solopool/config"
	"solopool/internal/sequence"
)

// Manager is the slice of the service manager the fleet drives.
// Production: *service.Systemd
// Testing: fake recording the stop order
type Manager interface {
	Start(ctx context.Context, unit string) error
	Stop(ctx context.Context, unit string) error
	IsActive(ctx context.Context, unit string) bool
}

// Recorder receives fleet and sequencer lifecycle events.
type Recorder interface {
	Record(ctx context.Context, coin, event, detail string)
}

// Fleet drives startup and shutdown across all enabled coins.
type Fleet struct {
	cfg      *config.Config
	services Manager
	journal  Recorder
	profiles []*CoinProfile
	seqs     []*sequence.Sequencer
	log      *slog.Logger
}

// Option configures a Fleet.
type Option func(*Fleet)

// WithJournal attaches an event recorder.
func WithJournal(r Recorder) Option {
	return func(f *Fleet) { f.journal = r }
}

// New builds the fleet from configuration.
func New(cfg *config.Config, services Manager, opts ...Option) (*Fleet, error) {
	profiles, err := Profiles(cfg)
	if err != nil {
		return nil, err
	}

	f := &Fleet{
		cfg:      cfg,
		services: services,
		profiles: profiles,
		log:      slog.With("component", "fleet"),
	}
	for _, opt := range opts {
		opt(f)
	}

	for _, p := range profiles {
		seq := &sequence.Sequencer{
			Coin:        p.ID,
			NodeUnit:    p.NodeUnit,
			WalletUnit:  p.WalletUnit,
			StratumUnit: p.StratumUnit,
			Services:    services,
			Probe:       p.Probe,
			Journal:     f.journal,
		}
		if p.Provision != nil {
			seq.Provision = p.Provision
		}
		if p.DependsOnWallet != "" {
			unit := p.DependsOnWallet
			seq.DependencyName = unit
			seq.Dependency = func(ctx context.Context) bool {
				return services.IsActive(ctx, unit)
			}
		}
		f.seqs = append(f.seqs, seq)
	}
	return f, nil
}

// Profiles returns the enabled coin profiles in startup order.
func (f *Fleet) Profiles() []*CoinProfile { return f.profiles }

// Sequencers exposes the per-coin sequencers, mainly for phase inspection.
func (f *Fleet) Sequencers() []*sequence.Sequencer { return f.seqs }

// StartAll brings the stack up: every enabled node is requested first so
// all chains sync in parallel, then the sequencers run concurrently. Each
// sequencer polls only its own coin; the one cross-coin observation (merge
// dependency) reads service state through the service manager.
func (f *Fleet) StartAll(ctx context.Context) error {
	if len(f.seqs) == 0 {
		f.log.Warn("no coins enabled, nothing to start")
		return nil
	}

	var errs []error
	var runnable []*sequence.Sequencer
	for _, seq := range f.seqs {
		if err := seq.StartNode(ctx); err != nil {
			// Fatal to this coin's sequencer; the others continue.
			errs = append(errs, fmt.Errorf("%s: %w", seq.Coin, err))
			continue
		}
		runnable = append(runnable, seq)
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, seq := range runnable {
		wg.Add(1)
		go func(seq *sequence.Sequencer) {
			defer wg.Done()
			if err := seq.Run(ctx); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", seq.Coin, err))
				mu.Unlock()
			}
		}(seq)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return err
	}
	f.log.Info("all enabled coins verified", "coins", len(f.seqs))
	return nil
}

// StopAll tears the stack down in the exact reverse of conceptual startup
// order: dashboard and payments first, then every stratum/pool process (in
// reverse enable order), then wallet services, then nodes. A stratum
// process is therefore never left running against a stopped node. Stop
// failures are collected, not short-circuited: shutdown is best effort.
func (f *Fleet) StopAll(ctx context.Context) error {
	var errs []error
	stop := func(unit string) {
		if unit == "" {
			return
		}
		f.log.Info("stopping", "unit", unit)
		if err := f.services.Stop(ctx, unit); err != nil {
			f.log.Warn("stop failed", "unit", unit, "err", err)
			errs = append(errs, err)
		}
	}

	stop(f.cfg.DashboardUnit)
	stop(f.cfg.PaymentsUnit)

	for _, p := range reversed(f.profiles) {
		stop(p.StratumUnit)
	}
	for _, p := range reversed(f.profiles) {
		stop(p.WalletUnit)
	}
	for _, p := range reversed(f.profiles) {
		stop(p.NodeUnit)
	}

	if f.journal != nil {
		f.journal.Record(ctx, "", "fleet.stopped", "")
	}
	return errors.Join(errs...)
}

func reversed(profiles []*CoinProfile) []*CoinProfile {
	out := make([]*CoinProfile, len(profiles))
	for i, p := range profiles {
		out[len(profiles)-1-i] = p
	}
	return out
}
