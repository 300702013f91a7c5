// Package probe answers "is this node responsive" and "how far along is its
// blockchain sync" for each supported coin.
//
// The daemons expose wildly different introspection surfaces: the bitcoin
// family speaks authenticated JSON-RPC 1.0, monerod speaks JSON-RPC 2.0 over
// /json_rpc, snarkOS has a plain REST height endpoint, and the Tari base node
// offers nothing structured at all, so its state is inferred from a TCP
// liveness port and recent log lines. Probe hides that variance so the
// startup sequencer stays coin-agnostic.
package probe

import (
	"context"
	"net/http"
	"time"
)

// SyncThreshold is the verification-progress fraction above which a node
// counts as caught up.
const SyncThreshold = 0.999

// requestTimeout bounds a single probe call; probes are polled, so a slow
// answer is worth no more than a missed one.
const requestTimeout = 5 * time.Second

// SyncState is one snapshot of a node's chain-sync progress. Derived fresh
// on every poll, never persisted.
type SyncState struct {
	Height       uint64
	TargetHeight uint64
	Progress     float64
	Synced       bool
}

// Probe is one coin's readiness strategy.
type Probe interface {
	// Responsive is a single non-blocking check that the node answers at all.
	Responsive(ctx context.Context) bool
	// Sync takes one sync-progress snapshot. The caller loops.
	Sync(ctx context.Context) (SyncState, error)
}

func httpClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}
