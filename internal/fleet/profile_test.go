package fleet

import (
	"testing"

	"solopool/config"
)

func testConfig(mode string, enabled ...string) *config.Config {
	cfg := &config.Config{Mode: mode, Coins: map[string]config.Coin{}}
	for _, id := range enabled {
		cfg.Coins[id] = config.Coin{Enabled: true}
	}
	applyDefaultsForTest(cfg)
	return cfg
}

// applyDefaultsForTest fills unit names and endpoints the way Load would.
func applyDefaultsForTest(cfg *config.Config) {
	defaults := map[string]config.Coin{
		config.Bitcoin: {NodeUnit: "bitcoind", StratumUnit: "ckpool-btc", RPCURL: "http://127.0.0.1:8332"},
		config.Monero: {
			NodeUnit: "monerod", WalletUnit: "monero-wallet-rpc", StratumUnit: "monero-pool",
			RPCURL: "http://127.0.0.1:18081", WalletDir: "/tmp/xmr", SecretFile: "/tmp/xmr/pw", BackupDir: "/tmp/xmr/backup",
		},
		config.Tari: {
			NodeUnit: "minotari-node", WalletUnit: "minotari-wallet", StratumUnit: "minotari-miner",
			MergeProxyUnit: "minotari-merge-proxy", GRPCPort: 18142, LogPath: "/tmp/xtm/node.log",
			WalletDir: "/tmp/xtm", SecretFile: "/tmp/xtm/pw", BackupDir: "/tmp/xtm/backup",
		},
		config.Aleo: {
			NodeUnit: "snarkos", StratumUnit: "aleo-pool", RESTURL: "http://127.0.0.1:3030", Network: "mainnet",
			WalletDir: "/tmp/aleo", SecretFile: "/tmp/aleo/pw", BackupDir: "/tmp/aleo/backup",
		},
	}
	for id, coin := range cfg.Coins {
		def := defaults[id]
		def.Enabled = coin.Enabled
		cfg.Coins[id] = def
	}
}

func profileIDs(profiles []*CoinProfile) []string {
	out := make([]string, len(profiles))
	for i, p := range profiles {
		out[i] = p.ID
	}
	return out
}

func TestProfilesMergeMode(t *testing.T) {
	cfg := testConfig(config.ModeMerge, config.Monero, config.Tari)

	profiles, err := Profiles(cfg)
	if err != nil {
		t.Fatalf("Profiles: %v", err)
	}
	ids := profileIDs(profiles)
	if len(ids) != 2 || ids[0] != config.Monero || ids[1] != config.Tari {
		t.Fatalf("profiles = %v, want [xmr xtm]", ids)
	}

	xmr, xtm := profiles[0], profiles[1]
	if xmr.StratumUnit != "" {
		t.Fatalf("merge-mode monero StratumUnit = %q, want none", xmr.StratumUnit)
	}
	if xtm.StratumUnit != "minotari-merge-proxy" {
		t.Fatalf("merge-mode tari StratumUnit = %q, want merge proxy", xtm.StratumUnit)
	}
	if xtm.DependsOnWallet != "monero-wallet-rpc" {
		t.Fatalf("tari DependsOnWallet = %q, want monero wallet unit", xtm.DependsOnWallet)
	}
}

func TestProfilesMergeModeRequiresMonero(t *testing.T) {
	cfg := testConfig(config.ModeMerge, config.Tari)
	if _, err := Profiles(cfg); err == nil {
		t.Fatal("merge mode without monero should fail")
	}
}

func TestProfilesMoneroOnlySkipsTari(t *testing.T) {
	cfg := testConfig(config.ModeMoneroOnly, config.Monero, config.Tari)

	profiles, err := Profiles(cfg)
	if err != nil {
		t.Fatalf("Profiles: %v", err)
	}
	ids := profileIDs(profiles)
	if len(ids) != 1 || ids[0] != config.Monero {
		t.Fatalf("profiles = %v, want [xmr]", ids)
	}
	if profiles[0].StratumUnit != "monero-pool" {
		t.Fatalf("StratumUnit = %q, want monero-pool", profiles[0].StratumUnit)
	}
	if profiles[0].DependsOnWallet != "" {
		t.Fatal("monero-only mode must not create a dependency edge")
	}
}

func TestProfilesTariOnlySkipsMonero(t *testing.T) {
	cfg := testConfig(config.ModeTariOnly, config.Monero, config.Tari)

	profiles, err := Profiles(cfg)
	if err != nil {
		t.Fatalf("Profiles: %v", err)
	}
	ids := profileIDs(profiles)
	if len(ids) != 1 || ids[0] != config.Tari {
		t.Fatalf("profiles = %v, want [xtm]", ids)
	}
	if profiles[0].StratumUnit != "minotari-miner" {
		t.Fatalf("StratumUnit = %q, want minotari-miner", profiles[0].StratumUnit)
	}
}

func TestProfilesDeclaredOrder(t *testing.T) {
	cfg := testConfig(config.ModeMoneroOnly, config.Aleo, config.Bitcoin, config.Monero)

	profiles, err := Profiles(cfg)
	if err != nil {
		t.Fatalf("Profiles: %v", err)
	}
	ids := profileIDs(profiles)
	want := []string{config.Bitcoin, config.Monero, config.Aleo}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("profiles = %v, want %v", ids, want)
		}
	}
}
