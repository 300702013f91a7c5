// Package config loads the orchestrator configuration.
//
// Config lives at /etc/solopool/solopool.yaml (overridable with --config).
// It is read once at startup and treated as immutable for the process
// lifetime: enabled-coin flags, the merge-mining mode selector, per-coin
// RPC endpoints, unit names, and wallet directories.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the installer drops the orchestrator config.
const DefaultPath = "/etc/solopool/solopool.yaml"

// Merge-mining modes for the Monero/Tari pair. The mode decides which
// stratum processes exist and whether the Tari merge proxy carries a
// dependency edge on the Monero wallet service.
const (
	ModeMoneroOnly = "monero-only"
	ModeMerge      = "merge"
	ModeTariOnly   = "tari-only"
)

// Coin identifiers, also the declared startup order.
const (
	Bitcoin     = "btc"
	BitcoinCash = "bch"
	DigiByte    = "dgb"
	Monero      = "xmr"
	Tari        = "xtm"
	Aleo        = "aleo"
)

// CoinOrder is the fixed startup order; shutdown walks it in reverse.
var CoinOrder = []string{Bitcoin, BitcoinCash, DigiByte, Monero, Tari, Aleo}

// Coin holds one coin's service units, endpoints and wallet paths.
type Coin struct {
	Enabled bool `yaml:"enabled"`

	NodeUnit    string `yaml:"node_unit"`
	WalletUnit  string `yaml:"wallet_unit,omitempty"`
	StratumUnit string `yaml:"stratum_unit"`

	// MergeProxyUnit replaces StratumUnit for Tari in merge mode.
	MergeProxyUnit string `yaml:"merge_proxy_unit,omitempty"`

	// Node introspection. RPCURL serves the bitcoin-family JSON-RPC and the
	// Monero /json_rpc endpoint; RESTURL serves the Aleo height endpoint;
	// GRPCPort is the Tari liveness port.
	RPCURL   string `yaml:"rpc_url,omitempty"`
	RPCUser  string `yaml:"rpc_user,omitempty"`
	RPCPass  string `yaml:"rpc_pass,omitempty"`
	RESTURL  string `yaml:"rest_url,omitempty"`
	Network  string `yaml:"network,omitempty"` // aleo REST network segment
	GRPCPort int    `yaml:"grpc_port,omitempty"`
	LogPath  string `yaml:"log_path,omitempty"` // tari sync heuristic source

	// Wallet provisioning paths (wallet-bearing coins only).
	WalletDir    string `yaml:"wallet_dir,omitempty"`
	WalletRPCURL string `yaml:"wallet_rpc_url,omitempty"`
	SecretFile   string `yaml:"secret_file,omitempty"`
	BackupDir    string `yaml:"backup_dir,omitempty"`
}

// Config is the full orchestrator configuration.
type Config struct {
	// Mode selects the Monero/Tari merge-mining arrangement.
	Mode string `yaml:"mode"`

	// Units stopped first on shutdown, never sequenced on startup.
	DashboardUnit string `yaml:"dashboard_unit"`
	PaymentsUnit  string `yaml:"payments_unit"`

	// JournalPath is the sqlite event journal. Empty disables journaling.
	JournalPath string `yaml:"journal_path"`

	// NTPPool and NTPMaxDriftMS bound the preflight clock check.
	NTPPool       string `yaml:"ntp_pool"`
	NTPMaxDriftMS int    `yaml:"ntp_max_drift_ms"`

	Coins map[string]Coin `yaml:"coins"`
}

// Load reads and validates the config file. A missing or unparseable file
// is a fatal configuration error: the orchestrator must not touch any
// service with guessed settings.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = ModeMoneroOnly
	}
	if c.DashboardUnit == "" {
		c.DashboardUnit = "solopool-webui"
	}
	if c.PaymentsUnit == "" {
		c.PaymentsUnit = "solopool-payments"
	}
	if c.NTPPool == "" {
		c.NTPPool = "pool.ntp.org"
	}
	if c.NTPMaxDriftMS == 0 {
		c.NTPMaxDriftMS = 500
	}
	if c.Coins == nil {
		c.Coins = make(map[string]Coin)
	}
	for id, def := range coinDefaults {
		coin := c.Coins[id]
		mergeCoinDefaults(&coin, def)
		c.Coins[id] = coin
	}
}

func (c *Config) validate() error {
	switch c.Mode {
	case ModeMoneroOnly, ModeMerge, ModeTariOnly:
	default:
		return fmt.Errorf("invalid mode %q (want %s, %s or %s)",
			c.Mode, ModeMoneroOnly, ModeMerge, ModeTariOnly)
	}
	for id := range c.Coins {
		if _, ok := coinDefaults[id]; !ok {
			return fmt.Errorf("unknown coin %q", id)
		}
	}
	return nil
}

// Enabled reports whether a coin participates in this run.
func (c *Config) Enabled(id string) bool {
	return c.Coins[id].Enabled
}

var coinDefaults = map[string]Coin{
	Bitcoin: {
		NodeUnit:    "bitcoind",
		StratumUnit: "ckpool-btc",
		RPCURL:      "http://127.0.0.1:8332",
	},
	BitcoinCash: {
		NodeUnit:    "bitcoincashd",
		StratumUnit: "ckpool-bch",
		RPCURL:      "http://127.0.0.1:8432",
	},
	DigiByte: {
		NodeUnit:    "digibyted",
		StratumUnit: "ckpool-dgb",
		RPCURL:      "http://127.0.0.1:14022",
	},
	Monero: {
		NodeUnit:     "monerod",
		WalletUnit:   "monero-wallet-rpc",
		StratumUnit:  "monero-pool",
		RPCURL:       "http://127.0.0.1:18081",
		WalletRPCURL: "http://127.0.0.1:18083",
		WalletDir:    "/opt/solopool/xmr/wallet",
		SecretFile:   "/opt/solopool/xmr/wallet-password",
		BackupDir:    "/opt/solopool/xmr/backup",
	},
	Tari: {
		NodeUnit:       "minotari-node",
		WalletUnit:     "minotari-wallet",
		StratumUnit:    "minotari-miner",
		MergeProxyUnit: "minotari-merge-proxy",
		GRPCPort:       18142,
		LogPath:        "/opt/solopool/xtm/log/base_node.log",
		WalletRPCURL:   "http://127.0.0.1:18143",
		WalletDir:      "/opt/solopool/xtm/wallet",
		SecretFile:     "/opt/solopool/xtm/wallet-password",
		BackupDir:      "/opt/solopool/xtm/backup",
	},
	Aleo: {
		NodeUnit:    "snarkos",
		StratumUnit: "aleo-pool",
		WalletUnit:  "",
		RESTURL:     "http://127.0.0.1:3030",
		Network:     "mainnet",
		WalletDir:   "/opt/solopool/aleo/wallet",
		SecretFile:  "/opt/solopool/aleo/wallet-password",
		BackupDir:   "/opt/solopool/aleo/backup",
	},
}

func mergeCoinDefaults(c *Coin, def Coin) {
	if c.NodeUnit == "" {
		c.NodeUnit = def.NodeUnit
	}
	if c.WalletUnit == "" {
		c.WalletUnit = def.WalletUnit
	}
	if c.StratumUnit == "" {
		c.StratumUnit = def.StratumUnit
	}
	if c.MergeProxyUnit == "" {
		c.MergeProxyUnit = def.MergeProxyUnit
	}
	if c.RPCURL == "" {
		c.RPCURL = def.RPCURL
	}
	if c.RESTURL == "" {
		c.RESTURL = def.RESTURL
	}
	if c.Network == "" {
		c.Network = def.Network
	}
	if c.GRPCPort == 0 {
		c.GRPCPort = def.GRPCPort
	}
	if c.LogPath == "" {
		c.LogPath = def.LogPath
	}
	if c.WalletDir == "" {
		c.WalletDir = def.WalletDir
	}
	if c.WalletRPCURL == "" {
		c.WalletRPCURL = def.WalletRPCURL
	}
	if c.SecretFile == "" {
		c.SecretFile = def.SecretFile
	}
	if c.BackupDir == "" {
		c.BackupDir = def.BackupDir
	}
}

// MarkerPath returns the wallet initialized-marker location for a coin.
func (c Coin) MarkerPath() string {
	return filepath.Join(c.WalletDir, ".initialized")
}
