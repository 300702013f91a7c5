package sequence

import "solopool/internal/check"

// Phase is a coin sequencer's position in the startup state machine.
type Phase uint8

const (
	NotStarted Phase = iota + 1
	NodeStarting
	NodeResponsive
	Syncing
	Synced
	WalletProvisioning
	WalletStarting
	DependencyWait
	StratumStarting
	Verified
	Failed
)

func (p Phase) String() string {
	switch p {
	case NotStarted:
		return "not_started"
	case NodeStarting:
		return "node_starting"
	case NodeResponsive:
		return "node_responsive"
	case Syncing:
		return "syncing"
	case Synced:
		return "synced"
	case WalletProvisioning:
		return "wallet_provisioning"
	case WalletStarting:
		return "wallet_starting"
	case DependencyWait:
		return "dependency_wait"
	case StratumStarting:
		return "stratum_starting"
	case Verified:
		return "verified"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Transition validates and applies a phase change. NodeStarting may jump
// straight to Syncing: the responsiveness wait degrades on exhaustion
// instead of aborting. Wallet, dependency and stratum stages are optional
// (merge mode runs Monero without its own stratum process), so Synced and
// WalletStarting fan out.
func (p Phase) Transition(to Phase) Phase {
	ok := false
	switch p {
	case NotStarted:
		ok = to == NodeStarting
	case NodeStarting:
		ok = to == NodeResponsive || to == Syncing || to == Failed
	case NodeResponsive:
		ok = to == Syncing
	case Syncing:
		ok = to == Synced || to == Failed
	case Synced:
		ok = to == WalletProvisioning || to == DependencyWait || to == StratumStarting || to == Verified
	case WalletProvisioning:
		ok = to == WalletStarting || to == Failed
	case WalletStarting:
		ok = to == DependencyWait || to == StratumStarting || to == Verified || to == Failed
	case DependencyWait:
		ok = to == StratumStarting
	case StratumStarting:
		ok = to == Verified || to == Failed
	case Verified, Failed:
		ok = false
	}
	check.Assertf(ok, "sequencer phase transition: %s -> %s", p, to)
	if !ok {
		return p
	}
	return to
}
