// Package kafka publishes ingestion run summaries for downstream consumers.
// The publisher is feature-flagged; a disabled publisher accepts and drops
// everything so callers never branch on the flag.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/vientodata/enviro-etl-service/internal/ingest"
)

// Publisher emits one message per finished ingestion run, keyed by domain so
// consumers see each domain's runs in order.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a publisher for the given brokers and topic. It
// returns a disabled no-op publisher when enabled is false.
func NewPublisher(enabled bool, brokers []string, topic string, logger *slog.Logger) *Publisher {
	if !enabled {
		return &Publisher{logger: logger}
	}
	return &Publisher{
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafkago.Hash{},
			RequiredAcks: kafkago.RequireOne,
		},
		logger: logger,
	}
}

// PublishSummary sends one run summary. Publish failures are logged and
// returned but callers treat them as non-fatal; a broker outage must never
// stop ingestion.
func (p *Publisher) PublishSummary(ctx context.Context, summary ingest.Summary) error {
	if p.writer == nil {
		return nil
	}

	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal run summary: %w", err)
	}

	msg := kafkago.Message{
		Key:   []byte(summary.Domain),
		Value: payload,
		Headers: []kafkago.Header{
			{Key: "run_id", Value: []byte(summary.RunID.String())},
			{Key: "domain", Value: []byte(summary.Domain)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("publish run summary failed", "domain", summary.Domain, "error", err)
		return fmt.Errorf("publish run summary: %w", err)
	}

	p.logger.Debug("run summary published", "domain", summary.Domain, "run_id", summary.RunID)
	return nil
}

// Close flushes and releases the writer. Safe on a disabled publisher.
func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
