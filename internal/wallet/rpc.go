package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const rpcTimeout = 5 * time.Second

// BalanceClient reads a pool wallet's spendable balance, in whole coins.
type BalanceClient interface {
	Balance(ctx context.Context) (decimal.Decimal, error)
}

// MoneroWalletRPC reads balances from monero-wallet-rpc. Amounts come back
// in piconero (1e12 per XMR).
type MoneroWalletRPC struct {
	URL  string
	HTTP *http.Client
}

func (c *MoneroWalletRPC) Balance(ctx context.Context) (decimal.Decimal, error) {
	var result struct {
		Balance         uint64 `json:"balance"`
		UnlockedBalance uint64 `json:"unlocked_balance"`
	}
	err := jsonRPC(ctx, c.HTTP, c.URL, "get_balance",
		map[string]any{"account_index": 0}, &result)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromUint64(result.UnlockedBalance).Shift(-12), nil
}

// TariWalletRPC reads balances from the minotari console wallet RPC.
// Amounts come back in microTari (1e6 per XTM).
type TariWalletRPC struct {
	URL  string
	HTTP *http.Client
}

func (c *TariWalletRPC) Balance(ctx context.Context) (decimal.Decimal, error) {
	var result struct {
		AvailableBalance       uint64 `json:"available_balance"`
		PendingIncomingBalance uint64 `json:"pending_incoming_balance"`
	}
	err := jsonRPC(ctx, c.HTTP, c.URL, "get_balance", map[string]any{}, &result)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromUint64(result.AvailableBalance).Shift(-6), nil
}

func jsonRPC(ctx context.Context, client *http.Client, url, method string, params any, result any) error {
	body, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      "0",
		"method":  method,
		"params":  params,
	})
	if err != nil {
		return err
	}

	if !strings.HasSuffix(url, "/json_rpc") {
		url = strings.TrimSuffix(url, "/") + "/json_rpc"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	if client == nil {
		client = &http.Client{Timeout: rpcTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("wallet rpc: %w", err)
	}
	defer resp.Body.Close()

	var parsed struct {
		Result json.RawMessage `json:"result"`
		Error  *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("decode %s: %w", method, err)
	}
	if parsed.Error != nil {
		return fmt.Errorf("%s: %s", method, parsed.Error.Message)
	}
	if parsed.Result == nil {
		return fmt.Errorf("%s: empty result", method)
	}
	return json.Unmarshal(parsed.Result, result)
}
