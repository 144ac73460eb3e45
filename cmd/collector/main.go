package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/dpatel/binance-collector/internal/archive"
	"github.com/dpatel/binance-collector/internal/binance"
	"github.com/dpatel/binance-collector/internal/cache"
	"github.com/dpatel/binance-collector/internal/catalog"
	"github.com/dpatel/binance-collector/internal/config"
	"github.com/dpatel/binance-collector/internal/console"
	"github.com/dpatel/binance-collector/internal/kafka"
	"github.com/dpatel/binance-collector/internal/logging"
	"github.com/dpatel/binance-collector/internal/queue"
	"github.com/dpatel/binance-collector/internal/scheduler"
	"github.com/dpatel/binance-collector/internal/snapshot"
)

func main() {
	godotenv.Load()
	logging.InitFromEnv()

	prompter := console.NewPrompter(os.Stdin, os.Stdout)
	runCfg, err := prompter.Configure()
	if err != nil {
		logging.Fatalf("[collector] configuration aborted: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := config.FromEnv()
	runner, cleanup := buildRunner(ctx, cfg)
	defer cleanup()

	logging.Infof("[collector] press Ctrl+C to stop early")
	if err := runner.Run(ctx, runCfg.Runtime(), runCfg.Interval()); err != nil {
		if errors.Is(err, context.Canceled) {
			logging.Infof("[collector] interrupted by user; collector stopped")
			return
		}
		logging.Fatalf("[collector] run failed: %v", err)
	}
	logging.Infof("[collector] run completed")
}

func buildRunner(ctx context.Context, cfg config.Config) (*scheduler.Runner, func()) {
	client := binance.NewClient(binance.Config{BaseURL: cfg.BaseURL, Timeout: cfg.HTTPTimeout})

	arch, err := archive.New(cfg.DataDir)
	if err != nil {
		logging.Fatalf("[collector] open archive: %v", err)
	}
	logging.Infof("[collector] data will be saved to: %s", arch.Dir())

	runID := uuid.NewString()
	logging.Infof("[collector] run id %s", runID)

	var sinks []snapshot.Sink
	var closers []func() error

	if cfg.CatalogPath != "" {
		store, err := catalog.Open(cfg.CatalogPath)
		if err != nil {
			logging.Fatalf("[collector] open catalog: %v", err)
		}
		if err := store.Init(ctx); err != nil {
			logging.Fatalf("[collector] init catalog: %v", err)
		}
		sinks = append(sinks, store)
		closers = append(closers, store.Close)
	}

	if brokers := kafka.Brokers(); len(brokers) > 0 {
		topic := kafka.TopicFromEnv("SNAPSHOT_KAFKA_TOPIC", kafka.DefaultSnapshotTopic)
		ensureCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := kafka.EnsureTopic(ensureCtx, brokers, topic); err != nil {
			logging.Errorf("[kafka] ensure topic %s: %v (publishing anyway)", topic, err)
		}
		cancel()
		pub := queue.NewPublisher(kafka.NewWriter(brokers, topic))
		sinks = append(sinks, pub)
		closers = append(closers, pub.Close)
	}

	if cfg.RedisAddr != "" {
		latest, err := cache.NewRedisLatestCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, 0, "")
		if err != nil {
			logging.Fatalf("[collector] redis cache: %v", err)
		}
		sinks = append(sinks, latest)
		closers = append(closers, latest.Close)
	}

	runner := scheduler.New(client, arch, runID, sinks...)
	runner.Pause = cfg.QueryPause

	cleanup := func() {
		for _, closeFn := range closers {
			if err := closeFn(); err != nil {
				logging.Errorf("[collector] close: %v", err)
			}
		}
	}
	return runner, cleanup
}
