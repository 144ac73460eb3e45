package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/dpatel/binance-collector/internal/snapshot"
)

// Publisher announces saved snapshots on a Kafka topic. Only the record
// is published, never the payload body; consumers fetch the file if they
// want the data.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(writer *kafka.Writer) *Publisher {
	return &Publisher{writer: writer}
}

func (p *Publisher) Name() string {
	return "kafka"
}

func (p *Publisher) Record(ctx context.Context, rec snapshot.SavedRecord, _ []byte) error {
	if p == nil || p.writer == nil {
		return nil
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", rec.Filename, err)
	}
	key := fmt.Sprintf("%s-%d", rec.Prefix, rec.CapturedAt.UnixNano())
	return p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: payload})
}

func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
