package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/partscout/partscout/internal/config"
	"github.com/partscout/partscout/internal/infrastructure/monitoring/logging"
	apperrors "github.com/partscout/partscout/pkg/errors"
	"github.com/partscout/partscout/pkg/types/listing"
)

// Producer publishes scoring events.  It satisfies the scoring service's
// EventPublisher contract.
type Producer struct {
	writer *kafka.Writer
	logger logging.Logger
}

// NewProducer constructs a Producer for the listing-scored topic.
func NewProducer(cfg config.KafkaConfig, logger logging.Logger) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        TopicListingScored,
			Balancer:     &kafka.Hash{},
			MaxAttempts:  cfg.ProducerRetries,
			BatchTimeout: cfg.BatchTimeout,
			WriteTimeout: cfg.WriteTimeout,
			RequiredAcks: kafka.RequireOne,
		},
		logger: logger.Named("kafka_producer"),
	}
}

// PublishScored emits one scored-listing event keyed by record ID.
func (p *Producer) PublishScored(ctx context.Context, rec *listing.ScoreRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "encode scored event")
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(rec.ID),
		Value: payload,
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodePublishFailed, "publish scored event")
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
