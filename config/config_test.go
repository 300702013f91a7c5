package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "solopool.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
mode: merge
coins:
  btc:
    enabled: true
  xmr:
    enabled: true
    rpc_url: http://10.0.0.5:18081
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Mode != ModeMerge {
		t.Fatalf("Mode = %q", cfg.Mode)
	}
	if cfg.DashboardUnit != "solopool-webui" {
		t.Fatalf("DashboardUnit default = %q", cfg.DashboardUnit)
	}

	btc := cfg.Coins[Bitcoin]
	if !btc.Enabled || btc.NodeUnit != "bitcoind" || btc.RPCURL != "http://127.0.0.1:8332" {
		t.Fatalf("btc = %+v, defaults not applied", btc)
	}

	xmr := cfg.Coins[Monero]
	if xmr.RPCURL != "http://10.0.0.5:18081" {
		t.Fatalf("explicit rpc_url overridden: %q", xmr.RPCURL)
	}
	if xmr.WalletUnit != "monero-wallet-rpc" {
		t.Fatalf("xmr wallet unit default = %q", xmr.WalletUnit)
	}

	// Disabled coins still get defaults but stay disabled.
	if cfg.Enabled(Tari) {
		t.Fatal("tari should be disabled")
	}
	if cfg.Coins[Tari].MergeProxyUnit != "minotari-merge-proxy" {
		t.Fatalf("tari merge proxy default = %q", cfg.Coins[Tari].MergeProxyUnit)
	}
}

func TestLoadDefaultsModeToMoneroOnly(t *testing.T) {
	cfg, err := Load(writeConfig(t, `coins: {}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != ModeMoneroOnly {
		t.Fatalf("Mode = %q, want %q", cfg.Mode, ModeMoneroOnly)
	}
}

func TestLoadRejectsInvalidMode(t *testing.T) {
	if _, err := Load(writeConfig(t, `mode: hybrid`)); err == nil {
		t.Fatal("invalid mode should fail")
	}
}

func TestLoadRejectsUnknownCoin(t *testing.T) {
	if _, err := Load(writeConfig(t, "coins:\n  doge:\n    enabled: true\n")); err == nil {
		t.Fatal("unknown coin should fail")
	}
}

func TestLoadMissingFileIsFatal(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("missing config must be a load error, not an empty default")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "coins: [not a map")); err == nil {
		t.Fatal("malformed yaml should fail")
	}
}
