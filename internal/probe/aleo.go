package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// AleoREST probes a snarkOS node via its REST height endpoint
// ({url}/{network}/latest/height). The endpoint returns a bare number; a
// positive height means the node is serving chain state.
type AleoREST struct {
	URL     string
	Network string

	HTTP *http.Client
}

func (p *AleoREST) Responsive(ctx context.Context) bool {
	_, err := p.latestHeight(ctx)
	return err == nil
}

func (p *AleoREST) Sync(ctx context.Context) (SyncState, error) {
	height, err := p.latestHeight(ctx)
	if err != nil {
		return SyncState{}, err
	}
	st := SyncState{Height: height}
	if height > 0 {
		st.Progress = 1
		st.Synced = true
	}
	return st, nil
}

func (p *AleoREST) latestHeight(ctx context.Context) (uint64, error) {
	url := fmt.Sprintf("%s/%s/latest/height", strings.TrimSuffix(p.URL, "/"), p.Network)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	client := p.HTTP
	if client == nil {
		client = httpClient()
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("aleo rest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("aleo rest: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return 0, err
	}
	height, err := strconv.ParseUint(strings.TrimSpace(string(body)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse height %q: %w", strings.TrimSpace(string(body)), err)
	}
	return height, nil
}
