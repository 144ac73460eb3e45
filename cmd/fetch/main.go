package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/dpatel/binance-collector/internal/archive"
	"github.com/dpatel/binance-collector/internal/binance"
	"github.com/dpatel/binance-collector/internal/config"
	"github.com/dpatel/binance-collector/internal/logging"
	"github.com/dpatel/binance-collector/internal/scheduler"
	"github.com/dpatel/binance-collector/internal/snapshot"
)

// fetch runs exactly one batch of queries and exits: no prompts, no
// loop, no optional sinks. Useful for cron jobs and smoke checks.
func main() {
	godotenv.Load()
	logging.InitFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := config.FromEnv()
	client := binance.NewClient(binance.Config{BaseURL: cfg.BaseURL, Timeout: cfg.HTTPTimeout})
	arch, err := archive.New(cfg.DataDir)
	if err != nil {
		logging.Fatalf("[fetch] open archive: %v", err)
	}
	logging.Infof("[fetch] data will be saved to: %s", arch.Dir())

	runner := scheduler.New(client, arch, uuid.NewString())
	runner.Pause = cfg.QueryPause

	var saved int
	for _, res := range runner.RunBatch(ctx) {
		if res.Kind == snapshot.FaultNone {
			saved++
		}
	}
	logging.Infof("[fetch] done: %d of %d snapshots saved in %s", saved, len(snapshot.Queries()), arch.Dir())
}
