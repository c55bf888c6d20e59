package kafka

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/segmentio/kafka-go"

	"github.com/partscout/partscout/internal/config"
	"github.com/partscout/partscout/internal/infrastructure/monitoring/logging"
)

// RescoreHandler processes one re-score request.  A returned error marks
// the message for logging only; the offset is committed either way so a
// poison message cannot wedge the partition.
type RescoreHandler func(ctx context.Context, req RescoreRequest) error

// Consumer reads re-score requests for the background worker.
type Consumer struct {
	reader  *kafka.Reader
	handler RescoreHandler
	logger  logging.Logger
}

// NewConsumer constructs a Consumer in the worker's consumer group.
func NewConsumer(cfg config.KafkaConfig, handler RescoreHandler, logger logging.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  cfg.Brokers,
			GroupID:  cfg.GroupID,
			Topic:    TopicRescoreRequests,
			MinBytes: 1,
			MaxBytes: 1 << 20,
		}),
		handler: handler,
		logger:  logger.Named("kafka_consumer"),
	}
}

// Run consumes until ctx is cancelled.  Cancellation is a clean exit;
// any other read error is returned.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}

		c.handle(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			c.logger.Error("commit failed", logging.Err(err))
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) {
	var req RescoreRequest
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		c.logger.Warn("discarding unparseable rescore request",
			logging.Int("partition", msg.Partition),
			logging.Any("offset", msg.Offset),
			logging.Err(err))
		return
	}
	if req.URL == "" {
		c.logger.Warn("discarding rescore request without URL")
		return
	}

	if err := c.handler(ctx, req); err != nil {
		c.logger.Error("rescore failed",
			logging.String("url", req.URL), logging.Err(err))
	}
}

// Close shuts down the reader and leaves the consumer group.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
