package journal

import (
	"context"
	"path/filepath"
	"testing"
)

func TestRecordAndRecent(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer j.Close()

	ctx := context.Background()
	j.Record(ctx, "btc", "phase.node_starting", "")
	j.Record(ctx, "btc", "phase.syncing", "")
	j.Record(ctx, "xmr", "failed", "stratum not active")

	events, err := j.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("len(events) = %d, want 3", len(events))
	}
	// Newest first.
	if events[0].Coin != "xmr" || events[0].Event != "failed" {
		t.Fatalf("events[0] = %+v, want xmr failed", events[0])
	}
	if events[0].Detail != "stratum not active" {
		t.Fatalf("detail = %q", events[0].Detail)
	}
	if events[0].Time.IsZero() {
		t.Fatal("event time should parse")
	}
}

func TestRecentHonorsLimit(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer j.Close()

	ctx := context.Background()
	for range 5 {
		j.Record(ctx, "btc", "phase.syncing", "")
	}
	events, err := j.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
}

func TestNilJournalRecordIsSafe(t *testing.T) {
	var j *Journal
	j.Record(context.Background(), "btc", "phase.syncing", "")
}
