package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// BitcoinRPC probes bitcoin-family nodes (BTC, BCH, DGB) over authenticated
// JSON-RPC with getblockchaininfo.
type BitcoinRPC struct {
	URL      string
	User     string
	Password string

	// HTTP overrides the default client, for tests.
	HTTP *http.Client
}

type blockchainInfo struct {
	Blocks               uint64  `json:"blocks"`
	Headers              uint64  `json:"headers"`
	VerificationProgress float64 `json:"verificationprogress"`
	InitialBlockDownload bool    `json:"initialblockdownload"`
}

func (p *BitcoinRPC) Responsive(ctx context.Context) bool {
	_, err := p.getBlockchainInfo(ctx)
	return err == nil
}

func (p *BitcoinRPC) Sync(ctx context.Context) (SyncState, error) {
	info, err := p.getBlockchainInfo(ctx)
	if err != nil {
		return SyncState{}, err
	}
	st := SyncState{
		Height:       info.Blocks,
		TargetHeight: info.Headers,
		Progress:     min(info.VerificationProgress, 1),
	}
	st.Synced = !info.InitialBlockDownload && info.VerificationProgress >= SyncThreshold
	return st, nil
}

func (p *BitcoinRPC) getBlockchainInfo(ctx context.Context) (blockchainInfo, error) {
	body, err := json.Marshal(map[string]any{
		"jsonrpc": "1.0",
		"id":      "solopoolctl",
		"method":  "getblockchaininfo",
		"params":  []any{},
	})
	if err != nil {
		return blockchainInfo{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewReader(body))
	if err != nil {
		return blockchainInfo{}, err
	}
	req.SetBasicAuth(p.User, p.Password)
	req.Header.Set("Content-Type", "application/json")

	client := p.HTTP
	if client == nil {
		client = httpClient()
	}
	resp, err := client.Do(req)
	if err != nil {
		return blockchainInfo{}, fmt.Errorf("node rpc: %w", err)
	}
	defer resp.Body.Close()

	var parsed struct {
		Result *blockchainInfo `json:"result"`
		Error  *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return blockchainInfo{}, fmt.Errorf("decode getblockchaininfo: %w", err)
	}
	if parsed.Error != nil {
		return blockchainInfo{}, fmt.Errorf("getblockchaininfo: %s", parsed.Error.Message)
	}
	if parsed.Result == nil {
		return blockchainInfo{}, fmt.Errorf("getblockchaininfo: empty result")
	}
	return *parsed.Result, nil
}
