// Package scheduler drives the collection loop: run the fixed batch of
// queries, sleep until the next interval boundary or the run deadline,
// repeat. Faults inside a batch are logged and skipped; nothing short of
// context cancellation stops the loop early.
package scheduler

import (
	"context"
	"time"

	"github.com/dpatel/binance-collector/internal/hashutil"
	"github.com/dpatel/binance-collector/internal/logging"
	"github.com/dpatel/binance-collector/internal/snapshot"
)

// Fetcher retrieves the raw JSON body for one query target.
type Fetcher interface {
	Get(ctx context.Context, q snapshot.Query) ([]byte, error)
}

// Saver persists one snapshot and returns the filename it was saved
// under.
type Saver interface {
	Save(snap snapshot.Snapshot) (string, error)
}

// DefaultQueryPause is the politeness delay between queries inside a
// batch.
const DefaultQueryPause = 100 * time.Millisecond

// Runner executes batches of fetch-and-persist calls sequentially.
type Runner struct {
	fetcher Fetcher
	saver   Saver
	sinks   []snapshot.Sink
	runID   string

	// Pause between consecutive queries inside a batch.
	Pause time.Duration

	now   func() time.Time
	sleep func(context.Context, time.Duration)
}

// New builds a Runner. Sinks receive a record per saved snapshot; a nil
// or empty sink list means files on disk are the only output.
func New(fetcher Fetcher, saver Saver, runID string, sinks ...snapshot.Sink) *Runner {
	return &Runner{
		fetcher: fetcher,
		saver:   saver,
		sinks:   sinks,
		runID:   runID,
		Pause:   DefaultQueryPause,
		now:     time.Now,
		sleep:   sleepCtx,
	}
}

// RunBatch executes the six queries in order and returns the per-fetch
// results. A fault on one query never prevents the rest from running.
func (r *Runner) RunBatch(ctx context.Context) []snapshot.Result {
	queries := snapshot.Queries()
	results := make([]snapshot.Result, 0, len(queries))
	for i, q := range queries {
		if ctx.Err() != nil {
			break
		}
		results = append(results, r.fetchAndSave(ctx, q))
		if r.Pause > 0 && i < len(queries)-1 {
			r.sleep(ctx, r.Pause)
		}
	}
	return results
}

// Run executes batches starting immediately, then every interval, until
// elapsed wall-clock time reaches duration. A zero duration runs exactly
// one batch without sleeping. Returns ctx.Err() when cancelled,
// otherwise nil.
func (r *Runner) Run(ctx context.Context, duration, interval time.Duration) error {
	start := r.now()
	end := start.Add(duration)
	batches := 0

	logging.Infof("[scheduler] starting: duration=%s interval=%s stop at %s",
		duration, interval, end.Format("2006-01-02 15:04:05"))

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		batches++
		logging.Infof("[scheduler] batch #%d", batches)
		summarize(batches, r.RunBatch(ctx))

		remaining := end.Sub(r.now())
		if remaining <= 0 {
			break
		}
		wait := interval
		if remaining < wait {
			wait = remaining
		}
		if wait > 0 {
			logging.Infof("[scheduler] next batch at %s (sleeping %s)",
				r.now().Add(wait).Format("2006-01-02 15:04:05"), wait)
			r.sleep(ctx, wait)
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
		if !r.now().Before(end) {
			break
		}
	}

	logging.Infof("[scheduler] completed: %d batches in %s", batches, r.now().Sub(start))
	return nil
}

func (r *Runner) fetchAndSave(ctx context.Context, q snapshot.Query) snapshot.Result {
	logging.Debugf("[%s] fetching %s", q.Prefix, q.Path)

	payload, err := r.fetcher.Get(ctx, q)
	if err != nil {
		logging.Errorf("[%s] fetch failed: %v", q.Prefix, err)
		return snapshot.Result{Query: q, Kind: snapshot.FaultNetwork, Err: err}
	}

	snap := snapshot.Snapshot{
		Prefix:     q.Prefix,
		CapturedAt: r.now(),
		Payload:    payload,
	}
	name, err := r.saver.Save(snap)
	if err != nil {
		logging.Errorf("[%s] write failed: %v", q.Prefix, err)
		return snapshot.Result{Query: q, Kind: snapshot.FaultPersist, Err: err}
	}
	logging.Infof("[%s] saved %s (%d bytes)", q.Prefix, name, len(payload))

	rec := snapshot.SavedRecord{
		RunID:      r.runID,
		Prefix:     q.Prefix,
		Filename:   name,
		CapturedAt: snap.CapturedAt,
		Bytes:      len(payload),
		SHA256:     hashutil.Sum(payload),
	}
	for _, sink := range r.sinks {
		if err := sink.Record(ctx, rec, payload); err != nil {
			logging.Errorf("[%s] %s record failed for %s: %v", q.Prefix, sink.Name(), name, err)
		}
	}

	return snapshot.Result{Query: q, Filename: name, Kind: snapshot.FaultNone}
}

func summarize(batch int, results []snapshot.Result) {
	var ok, netFaults, persistFaults int
	for _, res := range results {
		switch res.Kind {
		case snapshot.FaultNetwork:
			netFaults++
		case snapshot.FaultPersist:
			persistFaults++
		default:
			ok++
		}
	}
	logging.Infof("[scheduler] batch #%d done: %d saved, %d network faults, %d persist faults",
		batch, ok, netFaults, persistFaults)
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
