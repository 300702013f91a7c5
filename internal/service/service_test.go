package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

type fakeRunner struct {
	calls  []string
	output []byte
	err    error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, name+" "+strings.Join(args, " "))
	return f.output, f.err
}

func TestStartIssuesSystemctlStart(t *testing.T) {
	r := &fakeRunner{}
	m := NewSystemd(WithRunner(r))

	if err := m.Start(context.Background(), "bitcoind"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(r.calls) != 1 || r.calls[0] != "systemctl start bitcoind" {
		t.Fatalf("calls = %v, want [systemctl start bitcoind]", r.calls)
	}
}

func TestStopIssuesSystemctlStop(t *testing.T) {
	r := &fakeRunner{}
	m := NewSystemd(WithRunner(r))

	if err := m.Stop(context.Background(), "monero-pool"); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if len(r.calls) != 1 || r.calls[0] != "systemctl stop monero-pool" {
		t.Fatalf("calls = %v, want [systemctl stop monero-pool]", r.calls)
	}
}

func TestRequestClassifiesFailures(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   error
	}{
		{
			name:   "unknown unit",
			output: "Unit nosuch.service could not be found.",
			want:   ErrNotFound,
		},
		{
			name:   "no such unit variant",
			output: "Failed to start: no such unit",
			want:   ErrNotFound,
		},
		{
			name:   "polkit denial",
			output: "Access denied",
			want:   ErrPermissionDenied,
		},
		{
			name:   "interactive auth",
			output: "Interactive authentication required.",
			want:   ErrPermissionDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRunner{output: []byte(tt.output), err: fmt.Errorf("exit status 1")}
			m := NewSystemd(WithRunner(r))

			err := m.Start(context.Background(), "x")
			if !errors.Is(err, tt.want) {
				t.Fatalf("Start error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRequestWrapsUnclassifiedFailure(t *testing.T) {
	r := &fakeRunner{output: []byte("Job failed. See journalctl."), err: fmt.Errorf("exit status 1")}
	m := NewSystemd(WithRunner(r))

	err := m.Start(context.Background(), "bitcoind")
	if err == nil {
		t.Fatal("Start should fail")
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("unclassified failure mapped to sentinel: %v", err)
	}
	if !strings.Contains(err.Error(), "journalctl") {
		t.Fatalf("error should carry systemctl output, got %v", err)
	}
}

func TestIsActive(t *testing.T) {
	active := NewSystemd(WithRunner(&fakeRunner{}))
	if !active.IsActive(context.Background(), "bitcoind") {
		t.Fatal("zero exit should report active")
	}

	inactive := NewSystemd(WithRunner(&fakeRunner{err: fmt.Errorf("exit status 3")}))
	if inactive.IsActive(context.Background(), "bitcoind") {
		t.Fatal("non-zero exit should report inactive")
	}
}
