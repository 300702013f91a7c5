package sequence

import "testing"

func TestPhaseTransitions(t *testing.T) {
	legal := []struct {
		from, to Phase
	}{
		{NotStarted, NodeStarting},
		{NodeStarting, NodeResponsive},
		{NodeStarting, Syncing}, // degraded: responsiveness wait exhausted
		{NodeResponsive, Syncing},
		{Syncing, Synced},
		{Synced, WalletProvisioning},
		{Synced, DependencyWait},
		{Synced, StratumStarting},
		{WalletProvisioning, WalletStarting},
		{WalletStarting, DependencyWait},
		{WalletStarting, StratumStarting},
		{DependencyWait, StratumStarting},
		{StratumStarting, Verified},
		{StratumStarting, Failed},
	}
	for _, tt := range legal {
		if got := tt.from.Transition(tt.to); got != tt.to {
			t.Errorf("Transition(%s -> %s) = %s, want %s", tt.from, tt.to, got, tt.to)
		}
	}

	illegal := []struct {
		from, to Phase
	}{
		{NotStarted, Syncing},
		{Syncing, StratumStarting},
		{Verified, NodeStarting},
		{Failed, NodeStarting},
		{DependencyWait, Verified},
	}
	for _, tt := range illegal {
		if got := tt.from.Transition(tt.to); got != tt.from {
			t.Errorf("illegal Transition(%s -> %s) moved to %s", tt.from, tt.to, got)
		}
	}
}
