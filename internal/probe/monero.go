package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// MoneroRPC probes monerod over its /json_rpc endpoint with get_info.
//
// Synced resolution, first true condition wins:
//  1. the node reports synchronized;
//  2. target_height is 0 (monerod reports 0 once caught up, and also
//     briefly right after start before it learns a target — treated as
//     synced either way);
//  3. height/target_height reaches the sync threshold.
type MoneroRPC struct {
	URL string

	HTTP *http.Client
}

type moneroInfo struct {
	Height       uint64 `json:"height"`
	TargetHeight uint64 `json:"target_height"`
	Synchronized bool   `json:"synchronized"`
	Status       string `json:"status"`
}

func (p *MoneroRPC) Responsive(ctx context.Context) bool {
	_, err := p.getInfo(ctx)
	return err == nil
}

func (p *MoneroRPC) Sync(ctx context.Context) (SyncState, error) {
	info, err := p.getInfo(ctx)
	if err != nil {
		return SyncState{}, err
	}

	st := SyncState{Height: info.Height, TargetHeight: info.TargetHeight}
	switch {
	case info.Synchronized:
		st.Synced = true
		st.Progress = 1
	case info.TargetHeight == 0:
		st.Synced = true
		st.Progress = 1
	default:
		st.Progress = min(float64(info.Height)/float64(info.TargetHeight), 1)
		st.Synced = st.Progress >= SyncThreshold
	}
	return st, nil
}

func (p *MoneroRPC) getInfo(ctx context.Context) (moneroInfo, error) {
	body, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      "0",
		"method":  "get_info",
	})
	if err != nil {
		return moneroInfo{}, err
	}

	url := strings.TrimSuffix(p.URL, "/") + "/json_rpc"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return moneroInfo{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := p.HTTP
	if client == nil {
		client = httpClient()
	}
	resp, err := client.Do(req)
	if err != nil {
		return moneroInfo{}, fmt.Errorf("monero rpc: %w", err)
	}
	defer resp.Body.Close()

	var parsed struct {
		Result *moneroInfo `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return moneroInfo{}, fmt.Errorf("decode get_info: %w", err)
	}
	if parsed.Result == nil {
		return moneroInfo{}, fmt.Errorf("get_info: empty result")
	}
	return *parsed.Result, nil
}
