package events

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Pesokrava/storefront_reviews/internal/config"
	"github.com/Pesokrava/storefront_reviews/internal/pkg/logger"
)

const (
	publishRetryAttempts = 2
	publishRetryWait     = 250 * time.Millisecond
)

// Publisher handles publishing events to NATS JetStream
type Publisher struct {
	nc     *nats.Conn
	js     nats.JetStreamContext
	logger *logger.Logger
}

// NewPublisher creates a new NATS JetStream publisher
func NewPublisher(cfg *config.Config, log *logger.Logger) (*Publisher, error) {
	nc, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"url": cfg.NATS.URL,
	}).Info("Connected to NATS JetStream")

	return &Publisher{
		nc:     nc,
		js:     js,
		logger: log,
	}, nil
}

// messageID derives a deduplication ID from the payload, so a publish that is
// retried with the same bytes inside DuplicateWindow is stored once
func messageID(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:16])
}

// Publish stores data on the stream and waits for the server acknowledgement
func (p *Publisher) Publish(ctx context.Context, subject string, data []byte) error {
	pubAck, err := p.js.Publish(subject, data,
		nats.Context(ctx),
		nats.MsgId(messageID(data)),
		nats.RetryAttempts(publishRetryAttempts),
		nats.RetryWait(publishRetryWait),
	)
	if err != nil {
		return fmt.Errorf("failed to publish to JetStream: %w", err)
	}

	p.logger.WithFields(map[string]interface{}{
		"subject":   subject,
		"stream":    pubAck.Stream,
		"sequence":  pubAck.Sequence,
		"duplicate": pubAck.Duplicate,
	}).Debug("Published message to JetStream")

	return nil
}

// EnsureStream provisions the review events stream so publishes are stored
// even before any consumer has started
func (p *Publisher) EnsureStream() error {
	return NewStreamConfig(p.js, p.logger).EnsureStream()
}

// Close drains pending publishes and closes the NATS connection
func (p *Publisher) Close() {
	if p.nc == nil {
		return
	}
	if err := p.nc.Drain(); err != nil {
		p.logger.Warnf("Failed to drain NATS connection: %v", err)
		p.nc.Close()
	}
	p.logger.Info("NATS publisher connection closed")
}
