package probe

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeTail struct {
	lines []string
	err   error
}

func (f *fakeTail) Tail(context.Context) ([]string, error) { return f.lines, f.err }

func TestTariSyncHeuristic(t *testing.T) {
	tests := []struct {
		name   string
		lines  []string
		synced bool
	}{
		{
			name:   "explicit synced line",
			lines:  []string{"2026-08-29 INFO base_node: chain metadata updated", "2026-08-29 INFO base_node: Synced to tip"},
			synced: true,
		},
		{
			name:   "percentage complete",
			lines:  []string{"block sync 100% complete"},
			synced: true,
		},
		{
			name:   "listening is a secondary synced signal",
			lines:  []string{"node initializing", "listening for peer connections on /ip4/0.0.0.0"},
			synced: true,
		},
		{
			name:   "no signal yet",
			lines:  []string{"starting header sync", "requesting blocks 100..200"},
			synced: false,
		},
		{
			name:   "empty log",
			lines:  nil,
			synced: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &TariNode{Logs: &fakeTail{lines: tt.lines}}
			st, err := p.Sync(context.Background())
			if err != nil {
				t.Fatalf("Sync: %v", err)
			}
			if st.Synced != tt.synced {
				t.Fatalf("Synced = %v, want %v", st.Synced, tt.synced)
			}
		})
	}
}

func TestTariSyncTailError(t *testing.T) {
	p := &TariNode{Logs: &fakeTail{err: errors.New("log rotated away")}}
	if _, err := p.Sync(context.Background()); err == nil {
		t.Fatal("tail failure should surface as an error")
	}
}

func TestTariResponsive(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	p := &TariNode{GRPCPort: port}
	if !p.Responsive(context.Background()) {
		t.Fatal("open port should be responsive")
	}

	ln.Close()
	if p.Responsive(context.Background()) {
		t.Fatal("closed port should not be responsive")
	}
}

func TestFileTailWindow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.log")
	content := "one\ntwo\nthree\nfour\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	tail := &FileTail{Path: path, Window: 2}
	lines, err := tail.Tail(context.Background())
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(lines) != 2 || lines[0] != "three" || lines[1] != "four" {
		t.Fatalf("lines = %v, want [three four]", lines)
	}
}

func TestFileTailBoundsReadOnLargeLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.log")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create log: %v", err)
	}
	// Pad well past the byte cap so a full read would be visible in the
	// returned lines, then append the signal at the tail.
	filler := strings.Repeat("2026-08-29 INFO base_node: requesting blocks\n", (tariTailBytes/45)*3)
	if _, err := f.WriteString(filler + "Synced to tip\n"); err != nil {
		t.Fatalf("write log: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close log: %v", err)
	}

	tail := &FileTail{Path: path}
	lines, err := tail.Tail(context.Background())
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(lines) > tariLogWindow {
		t.Fatalf("returned %d lines, window is %d", len(lines), tariLogWindow)
	}
	if got := lines[len(lines)-1]; got != "Synced to tip" {
		t.Fatalf("last line = %q, want the trailing signal", got)
	}

	// The byte cut must never produce a torn first line.
	for i, line := range lines {
		if line != "Synced to tip" && line != "2026-08-29 INFO base_node: requesting blocks" {
			t.Fatalf("line %d is partial: %q", i, line)
		}
	}
}
