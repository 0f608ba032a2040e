package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/climate-catalog-etl/internal/config"
	"github.com/couchcryptid/climate-catalog-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Record kinds carried in the "kind" header.
const (
	KindIndicator = "indicator"
	KindCIC       = "cic"
)

// messageWriter is the subset of *kafkago.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes catalog records to a Kafka topic, one message per
// indicator and per CIC, keyed by id so a compacted topic keeps the latest
// version of each record. It implements pipeline.Loader.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured catalog topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "kafka" }

// Load publishes every record of c in a single WriteMessages call.
func (w *Writer) Load(ctx context.Context, c domain.Catalog) error {
	msgs, err := catalogMessages(c)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish catalog: %w", err)
	}
	w.logger.Debug("catalog published", "messages", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// catalogMessages converts c into Kafka messages: indicators first, then CICs,
// each in catalog order.
func catalogMessages(c domain.Catalog) ([]kafkago.Message, error) {
	msgs := make([]kafkago.Message, 0, len(c.Indicators)+len(c.CICs))
	for i := range c.Indicators {
		ind := c.Indicators[i]
		if ind.Datasets == nil {
			ind.Datasets = []domain.Dataset{}
		}
		msg, err := serializeToMessage(ind.ID, KindIndicator, c.GeneratedAt, ind)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	for i := range c.CICs {
		cic := c.CICs[i]
		if cic.IndicatorIDs == nil {
			cic.IndicatorIDs = []string{}
		}
		msg, err := serializeToMessage(cic.ID, KindCIC, c.GeneratedAt, cic)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// serializeToMessage marshals one catalog record into a Kafka message.
func serializeToMessage(id, kind, generatedAt string, v any) (kafkago.Message, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize %s %s: %w", kind, id, err)
	}
	return kafkago.Message{
		Key:   []byte(kind + ":" + id),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "kind", Value: []byte(kind)},
			{Key: "generated_at", Value: []byte(generatedAt)},
		},
	}, nil
}
