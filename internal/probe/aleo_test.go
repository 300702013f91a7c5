package probe

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAleoSync(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		synced bool
		height uint64
		fails  bool
	}{
		{name: "positive height", body: "412345", status: 200, synced: true, height: 412345},
		{name: "zero height still starting", body: "0", status: 200, synced: false},
		{name: "non-numeric body", body: "<html>", status: 200, fails: true},
		{name: "server error", body: "", status: 500, fails: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/mainnet/latest/height" {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			p := &AleoREST{URL: srv.URL, Network: "mainnet"}
			st, err := p.Sync(context.Background())
			if tt.fails {
				if err == nil {
					t.Fatal("Sync should fail")
				}
				return
			}
			if err != nil {
				t.Fatalf("Sync: %v", err)
			}
			if st.Synced != tt.synced || st.Height != tt.height {
				t.Fatalf("state = %+v, want synced=%v height=%d", st, tt.synced, tt.height)
			}
		})
	}
}
