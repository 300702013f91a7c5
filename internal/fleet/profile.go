package fleet

import (
	"fmt"

	"solopool/config"
	"solopool/internal/probe"
	"solopool/internal/wallet"
)

// CoinProfile is one coin's immutable orchestration description: its service
// units, its readiness strategy, its wallet provisioner and its optional
// dependency edge. Built once from configuration, never mutated.
type CoinProfile struct {
	ID   string
	Name string

	NodeUnit    string
	WalletUnit  string
	StratumUnit string // empty: no stratum process in this mode

	Probe     probe.Probe
	Provision *wallet.Provisioner // nil for coins without a pool wallet

	// DependsOnWallet names another profile's wallet unit that must be
	// observed active before this coin's stratum start. The graph is
	// acyclic by construction: the only edge is Tari → Monero in merge
	// mode.
	DependsOnWallet string

	// WalletRPC reads the pool wallet balance for status reporting.
	WalletRPC wallet.BalanceClient
}

var coinNames = map[string]string{
	config.Bitcoin:     "Bitcoin",
	config.BitcoinCash: "Bitcoin Cash",
	config.DigiByte:    "DigiByte",
	config.Monero:      "Monero",
	config.Tari:        "Tari",
	config.Aleo:        "Aleo",
}

// Profiles expands the configuration into the enabled coin profiles, in
// declared startup order. The merge-mining mode decides how the Monero/Tari
// pair is arranged:
//
//   - monero-only: Monero runs its own pool; Tari is skipped.
//   - merge: Monero runs node+wallet only, Tari's merge proxy is the
//     stratum process for both and waits on the Monero wallet.
//   - tari-only: Tari runs the standalone miner; Monero is skipped.
func Profiles(cfg *config.Config) ([]*CoinProfile, error) {
	var out []*CoinProfile
	for _, id := range config.CoinOrder {
		cc := cfg.Coins[id]
		if !cc.Enabled {
			continue
		}
		if id == config.Monero && cfg.Mode == config.ModeTariOnly {
			continue
		}
		if id == config.Tari && cfg.Mode == config.ModeMoneroOnly {
			continue
		}

		p, err := buildProfile(cfg, id, cc)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func buildProfile(cfg *config.Config, id string, cc config.Coin) (*CoinProfile, error) {
	p := &CoinProfile{
		ID:          id,
		Name:        coinNames[id],
		NodeUnit:    cc.NodeUnit,
		WalletUnit:  cc.WalletUnit,
		StratumUnit: cc.StratumUnit,
	}

	switch id {
	case config.Bitcoin, config.BitcoinCash, config.DigiByte:
		p.Probe = &probe.BitcoinRPC{URL: cc.RPCURL, User: cc.RPCUser, Password: cc.RPCPass}

	case config.Monero:
		p.Probe = &probe.MoneroRPC{URL: cc.RPCURL}
		p.Provision = &wallet.Provisioner{
			Coin:            id,
			Dir:             cc.WalletDir,
			SecretFile:      cc.SecretFile,
			BackupDir:       cc.BackupDir,
			Ops:             &wallet.MoneroOps{Dir: cc.WalletDir, Runner: wallet.ExecRunner{}},
			ValidateAddress: wallet.ValidMoneroAddress,
		}
		p.WalletRPC = &wallet.MoneroWalletRPC{URL: cc.WalletRPCURL}
		if cfg.Mode == config.ModeMerge {
			// The merge proxy mines Monero's blocks; no pool of its own.
			p.StratumUnit = ""
		}

	case config.Tari:
		p.Probe = &probe.TariNode{
			GRPCPort: cc.GRPCPort,
			Logs:     &probe.FileTail{Path: cc.LogPath},
		}
		p.Provision = &wallet.Provisioner{
			Coin:            id,
			Dir:             cc.WalletDir,
			SecretFile:      cc.SecretFile,
			BackupDir:       cc.BackupDir,
			Ops:             &wallet.TariOps{Dir: cc.WalletDir, Runner: wallet.ExecRunner{}},
			ValidateAddress: wallet.ValidTariAddress,
		}
		p.WalletRPC = &wallet.TariWalletRPC{URL: cc.WalletRPCURL}
		if cfg.Mode == config.ModeMerge {
			p.StratumUnit = cc.MergeProxyUnit
			p.DependsOnWallet = cfg.Coins[config.Monero].WalletUnit
			if !cfg.Enabled(config.Monero) {
				return nil, fmt.Errorf("merge mode requires monero enabled")
			}
		}

	case config.Aleo:
		p.Probe = &probe.AleoREST{URL: cc.RESTURL, Network: cc.Network}
		p.Provision = &wallet.Provisioner{
			Coin:            id,
			Dir:             cc.WalletDir,
			SecretFile:      cc.SecretFile,
			BackupDir:       cc.BackupDir,
			Ops:             &wallet.AleoOps{Dir: cc.WalletDir, Runner: wallet.ExecRunner{}},
			ValidateAddress: wallet.ValidAleoAddress,
		}

	default:
		return nil, fmt.Errorf("unknown coin %q", id)
	}
	return p, nil
}
