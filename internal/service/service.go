// Package service wraps the system service manager (systemd) behind a
// small start/stop/is-active surface.
//
// Start and Stop are fire-and-forget requests: they return once systemd has
// accepted the job, not once the unit reaches a state. Callers poll IsActive,
// which is always answered by the service manager, never from a cache.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

var (
	// ErrNotFound means the unit is unknown to the service manager.
	ErrNotFound = errors.New("service unit not found")
	// ErrPermissionDenied means the manager refused the request.
	ErrPermissionDenied = errors.New("service manager permission denied")
)

// Manager starts, stops and inspects named service units.
type Manager interface {
	Start(ctx context.Context, unit string) error
	Stop(ctx context.Context, unit string) error
	IsActive(ctx context.Context, unit string) bool
}

// Runner executes one service-manager command and returns its combined
// output.
// Production: ExecRunner
// Testing: fake with scripted outputs
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands via os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Systemd is the production Manager, shelling out to systemctl.
type Systemd struct {
	runner Runner
	log    *slog.Logger
}

// SystemdOption configures a Systemd manager.
type SystemdOption func(*Systemd)

// WithRunner overrides command execution, for tests.
func WithRunner(r Runner) SystemdOption {
	return func(s *Systemd) { s.runner = r }
}

// NewSystemd creates a systemctl-backed Manager.
func NewSystemd(opts ...SystemdOption) *Systemd {
	s := &Systemd{
		runner: ExecRunner{},
		log:    slog.With("component", "service-manager"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Systemd) Start(ctx context.Context, unit string) error {
	s.log.Debug("requesting start", "unit", unit)
	return s.request(ctx, "start", unit)
}

func (s *Systemd) Stop(ctx context.Context, unit string) error {
	s.log.Debug("requesting stop", "unit", unit)
	return s.request(ctx, "stop", unit)
}

// IsActive queries the unit's current state. The service manager is ground
// truth; no result is ever cached across polls.
func (s *Systemd) IsActive(ctx context.Context, unit string) bool {
	out, err := s.runner.Run(ctx, "systemctl", "is-active", "--quiet", unit)
	if err != nil {
		s.log.Debug("unit inactive", "unit", unit, "output", strings.TrimSpace(string(out)))
		return false
	}
	return true
}

func (s *Systemd) request(ctx context.Context, verb, unit string) error {
	out, err := s.runner.Run(ctx, "systemctl", verb, unit)
	if err == nil {
		return nil
	}
	if classified := classify(out); classified != nil {
		return fmt.Errorf("systemctl %s %s: %w", verb, unit, classified)
	}
	return fmt.Errorf("systemctl %s %s: %w: %s", verb, unit, err, strings.TrimSpace(string(out)))
}

// classify maps systemctl failure output to the sentinel errors callers
// branch on. Both are fatal to a startup sequencer.
func classify(out []byte) error {
	msg := strings.ToLower(string(out))
	switch {
	case strings.Contains(msg, "not found") || strings.Contains(msg, "not be found") ||
		strings.Contains(msg, "no such unit"):
		return ErrNotFound
	case strings.Contains(msg, "access denied") || strings.Contains(msg, "permission denied") ||
		strings.Contains(msg, "authentication required"):
		return ErrPermissionDenied
	}
	return nil
}
