package snapshot

import (
	"context"
	"time"
)

// Query is one fixed request target paired with the filename prefix its
// responses are saved under.
type Query struct {
	Path   string
	Prefix string
}

// Queries returns the fixed batch executed on every collection cycle, in
// order. Ordering matters only for log readability.
func Queries() []Query {
	return []Query{
		{Path: "/api/v3/exchangeInfo", Prefix: "exchange_info"},
		{Path: "/api/v3/ticker/24hr", Prefix: "ticker_24hr_all"},
		{Path: "/api/v3/ticker/price", Prefix: "ticker_price_all"},
		{Path: "/api/v3/depth?symbol=BTCUSDT&limit=100", Prefix: "orderbook_BTCUSDT"},
		{Path: "/api/v3/trades?symbol=BTCUSDT&limit=100", Prefix: "trades_BTCUSDT"},
		{Path: "/api/v3/klines?symbol=BTCUSDT&interval=1h&limit=24", Prefix: "klines_BTCUSDT_1h"},
	}
}

// Snapshot is one API response captured verbatim. Immutable once produced;
// written to disk exactly once and never read back.
type Snapshot struct {
	Prefix     string    `json:"prefix"`
	CapturedAt time.Time `json:"captured_at"`
	Payload    []byte    `json:"-"`
}

// FaultKind classifies the outcome of a single fetch-and-persist call.
type FaultKind int

const (
	FaultNone FaultKind = iota
	FaultNetwork
	FaultPersist
)

func (k FaultKind) String() string {
	switch k {
	case FaultNetwork:
		return "network"
	case FaultPersist:
		return "persist"
	default:
		return "ok"
	}
}

// Result is the per-fetch outcome the scheduler aggregates. A fault never
// aborts the batch; it is recorded here and logged.
type Result struct {
	Query    Query
	Filename string
	Kind     FaultKind
	Err      error
}

// SavedRecord describes one snapshot that made it to disk. It is what
// downstream sinks (catalog, queue, cache) receive; the file itself is
// the source of truth.
type SavedRecord struct {
	RunID      string    `json:"run_id"`
	Prefix     string    `json:"prefix"`
	Filename   string    `json:"filename"`
	CapturedAt time.Time `json:"captured_at"`
	Bytes      int       `json:"bytes"`
	SHA256     string    `json:"sha256"`
}

// Sink receives a record for each successfully written snapshot. Sink
// errors are persistence faults: logged by the caller, never fatal.
type Sink interface {
	Name() string
	Record(ctx context.Context, rec SavedRecord, payload []byte) error
}
