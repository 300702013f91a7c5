package probe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func moneroServer(t *testing.T, info moneroInfo) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/json_rpc" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"result": info})
	}))
}

func TestMoneroSync(t *testing.T) {
	tests := []struct {
		name     string
		info     moneroInfo
		synced   bool
		progress float64
	}{
		{
			name:     "synchronized flag wins regardless of ratio",
			info:     moneroInfo{Height: 10, TargetHeight: 3000000, Synchronized: true},
			synced:   true,
			progress: 1,
		},
		{
			name:     "zero target treated as synced",
			info:     moneroInfo{Height: 0, TargetHeight: 0},
			synced:   true,
			progress: 1,
		},
		{
			name:     "ratio below threshold",
			info:     moneroInfo{Height: 1500000, TargetHeight: 3000000},
			synced:   false,
			progress: 0.5,
		},
		{
			name:     "ratio above threshold",
			info:     moneroInfo{Height: 2999999, TargetHeight: 3000000},
			synced:   true,
			progress: 2999999.0 / 3000000.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := moneroServer(t, tt.info)
			defer srv.Close()

			p := &MoneroRPC{URL: srv.URL}
			st, err := p.Sync(context.Background())
			if err != nil {
				t.Fatalf("Sync: %v", err)
			}
			if st.Synced != tt.synced {
				t.Fatalf("Synced = %v, want %v (state %+v)", st.Synced, tt.synced, st)
			}
			if st.Progress != tt.progress {
				t.Fatalf("Progress = %v, want %v", st.Progress, tt.progress)
			}
		})
	}
}

func TestMoneroFreshNodeImmediatelySynced(t *testing.T) {
	// A freshly started monerod returns target_height 0 before it has
	// learned a sync target; the first poll must already report synced.
	srv := moneroServer(t, moneroInfo{Height: 1, TargetHeight: 0})
	defer srv.Close()

	p := &MoneroRPC{URL: srv.URL}
	st, err := p.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if !st.Synced {
		t.Fatal("first poll with target_height 0 should report synced")
	}
}

func TestMoneroResponsive(t *testing.T) {
	srv := moneroServer(t, moneroInfo{})
	p := &MoneroRPC{URL: srv.URL}
	if !p.Responsive(context.Background()) {
		t.Fatal("answering node should be responsive")
	}
	srv.Close()
	if p.Responsive(context.Background()) {
		t.Fatal("closed server should not be responsive")
	}
}
