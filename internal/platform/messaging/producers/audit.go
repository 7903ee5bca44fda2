package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/kouden-gift-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

// AuditEventProducer publishes kouden audit events (entry mutations,
// duplicate-check runs) to the audit topic. Publishing is best-effort:
// callers log failures and carry on.
type AuditEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewAuditEventProducer creates the audit producer and ensures the topic exists
func NewAuditEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*AuditEventProducer, error) {
	if cfg.AuditTopic == "" {
		return nil, fmt.Errorf("kafka audit topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for audit producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.AuditTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure audit topic %s exists: %w", cfg.AuditTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.AuditTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true, // Audit events are fire-and-forget
		WriteTimeout: cfg.WriteTimeout,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to write audit events asynchronously", "topic", cfg.AuditTopic, "error", err, "count", len(messages))
			} else {
				logger.Debug("Successfully wrote audit events asynchronously", "topic", cfg.AuditTopic, "count", len(messages))
			}
		},
	}

	return &AuditEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.AuditTopic,
	}, nil
}

func (p *AuditEventProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish audit event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish audit event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published audit event",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *AuditEventProducer) Close() error {
	p.logger.Info("Closing audit event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close audit kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}

var _ MessagePublisher = (*AuditEventProducer)(nil)
