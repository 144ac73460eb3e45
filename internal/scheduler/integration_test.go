package scheduler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/dpatel/binance-collector/internal/archive"
	"github.com/dpatel/binance-collector/internal/binance"
	"github.com/dpatel/binance-collector/internal/snapshot"
)

// TestRunBatchAgainstMockAPI runs a real client and archive against a
// mock API: every query target must yield exactly one timestamped file
// holding the mocked response.
func TestRunBatchAgainstMockAPI(t *testing.T) {
	responses := map[string]string{
		"/api/v3/exchangeInfo": `{"timezone":"UTC","symbols":[{"symbol":"BTCUSDT"}]}`,
		"/api/v3/ticker/24hr":  `[{"symbol":"BTCUSDT","priceChange":"-94.99"}]`,
		"/api/v3/ticker/price": `[{"symbol":"BTCUSDT","price":"64000.10"}]`,
		"/api/v3/depth":        `{"lastUpdateId":1027024,"bids":[["64000.10","4.0"]],"asks":[["64000.20","5.7"]]}`,
		"/api/v3/trades":       `[{"id":28457,"price":"64000.10","qty":"12.0"}]`,
		"/api/v3/klines":       `[[1499040000000,"0.01634790","0.80000000"]]`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := responses[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	dir := t.TempDir()
	arch, err := archive.New(dir)
	if err != nil {
		t.Fatalf("archive.New failed: %v", err)
	}
	client := binance.NewClient(binance.Config{BaseURL: srv.URL})

	r := New(client, arch, "test-run")
	r.Pause = 0

	results := r.RunBatch(context.Background())
	if len(results) != len(snapshot.Queries()) {
		t.Fatalf("got %d results, want %d", len(results), len(snapshot.Queries()))
	}

	pattern := regexp.MustCompile(`^[a-zA-Z0-9_]+_\d{8}_\d{6}\.json$`)
	for _, res := range results {
		if res.Kind != snapshot.FaultNone {
			t.Errorf("query %s faulted: %v", res.Query.Prefix, res.Err)
			continue
		}
		if !pattern.MatchString(res.Filename) {
			t.Errorf("filename %q does not match %v", res.Filename, pattern)
		}
		data, err := os.ReadFile(filepath.Join(dir, res.Filename))
		if err != nil {
			t.Errorf("read %s: %v", res.Filename, err)
			continue
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, data); err != nil {
			t.Errorf("%s is not valid JSON: %v", res.Filename, err)
			continue
		}
		wantPath, _, _ := strings.Cut(res.Query.Path, "?")
		if compact.String() != responses[wantPath] {
			t.Errorf("%s content = %s, want %s", res.Filename, compact.String(), responses[wantPath])
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != len(snapshot.Queries()) {
		t.Errorf("dir has %d files, want %d", len(entries), len(snapshot.Queries()))
	}
}

// TestRunBatchMockAPIFaultLeavesRestPersisted drops one endpoint with a
// server error; the other five files must still be written.
func TestRunBatchMockAPIFaultLeavesRestPersisted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v3/ticker/24hr" {
			http.Error(w, `{"code":-1000,"msg":"internal error"}`, http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	dir := t.TempDir()
	arch, err := archive.New(dir)
	if err != nil {
		t.Fatalf("archive.New failed: %v", err)
	}
	r := New(binance.NewClient(binance.Config{BaseURL: srv.URL}), arch, "test-run")
	r.Pause = 0

	var faulted string
	for _, res := range r.RunBatch(context.Background()) {
		if res.Kind == snapshot.FaultNetwork {
			faulted = res.Query.Prefix
		}
	}
	if faulted != "ticker_24hr_all" {
		t.Errorf("faulted query = %q, want ticker_24hr_all", faulted)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 5 {
		t.Errorf("dir has %d files, want 5", len(entries))
	}
}
