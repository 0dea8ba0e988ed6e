package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Pesokrava/storefront_reviews/internal/config"
	"github.com/Pesokrava/storefront_reviews/internal/domain"
	"github.com/Pesokrava/storefront_reviews/internal/pkg/logger"
)

const (
	fetchBatch   = 10
	fetchMaxWait = 5 * time.Second
	fetchBackoff = 5 * time.Second
)

// Handler processes one event payload
type Handler func(data []byte) error

// Consumer pulls review events from a durable JetStream consumer
type Consumer struct {
	nc     *nats.Conn
	js     nats.JetStreamContext
	logger *logger.Logger
}

// NewConsumer connects to NATS and provisions the review events stream
func NewConsumer(cfg *config.Config, log *logger.Logger) (*Consumer, error) {
	nc, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	log.Infof("Connected to NATS JetStream at %s", cfg.NATS.URL)

	if err := NewStreamConfig(js, log).EnsureStream(); err != nil {
		nc.Close()
		return nil, err
	}

	return &Consumer{
		nc:     nc,
		js:     js,
		logger: log,
	}, nil
}

// Consume fetches events for spec and hands each to handler until ctx is done
func (c *Consumer) Consume(ctx context.Context, spec ConsumerSpec, handler Handler) error {
	if err := NewStreamConfig(c.js, c.logger).EnsureConsumer(spec); err != nil {
		return err
	}

	sub, err := c.js.PullSubscribe(StreamSubjects, spec.Name, nats.ManualAck())
	if err != nil {
		return fmt.Errorf("failed to subscribe to consumer %s: %w", spec.Name, err)
	}
	defer func() {
		if err := sub.Unsubscribe(); err != nil {
			c.logger.Warnf("Failed to unsubscribe from %s: %v", spec.Name, err)
		}
	}()

	log := c.logger.WithFields(map[string]any{
		"stream":   StreamName,
		"consumer": spec.Name,
	})
	log.Info("Subscribed to JetStream consumer")

	for {
		if ctx.Err() != nil {
			return nil
		}

		fetchCtx, cancel := context.WithTimeout(ctx, fetchMaxWait)
		msgs, err := sub.Fetch(fetchBatch, nats.Context(fetchCtx))
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			log.Error("Failed to fetch messages from JetStream", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(fetchBackoff):
			}
			continue
		}

		for _, msg := range msgs {
			settle(msg, handler(msg.Data), log)
		}
	}
}

// acknowledger is the acknowledgement surface of a JetStream message
type acknowledger interface {
	Ack(opts ...nats.AckOpt) error
	Nak(opts ...nats.AckOpt) error
	Term(opts ...nats.AckOpt) error
}

// settle acknowledges a handled message. Malformed events are terminated
// since redelivery cannot fix them; other failures are redelivered with backoff.
func settle(msg acknowledger, handleErr error, log *logger.Logger) {
	var err error
	switch {
	case handleErr == nil:
		err = msg.Ack()
	case errors.Is(handleErr, domain.ErrInvalidInput):
		log.Error("Dropping malformed event", handleErr)
		err = msg.Term()
	default:
		log.Error("Failed to handle event", handleErr)
		err = msg.Nak()
	}
	if err != nil {
		log.Error("Failed to settle message", err)
	}
}

// Close closes the NATS connection
func (c *Consumer) Close() {
	if c.nc != nil {
		c.nc.Close()
		c.logger.Info("NATS consumer connection closed")
	}
}

// ModerationFeedHandler logs review events for moderators. Events carrying
// masked terms are logged at warn level so they stand out in the feed.
func ModerationFeedHandler(log *logger.Logger) Handler {
	return func(data []byte) error {
		var event domain.ReviewEvent
		if err := json.Unmarshal(data, &event); err != nil {
			log.Error("Failed to unmarshal event", err)
			return fmt.Errorf("%w: failed to unmarshal event: %w", domain.ErrInvalidInput, err)
		}

		fields := map[string]interface{}{
			"event_type": event.EventType,
			"product_id": event.ProductID.String(),
			"actor_id":   event.ActorID,
			"timestamp":  event.Timestamp,
		}
		if event.Aggregate != nil {
			fields["ratings"] = event.Aggregate.Ratings
			fields["num_of_reviews"] = event.Aggregate.NumOfReviews
		}

		flagged := false
		if event.Review != nil {
			fields["review_id"] = event.Review.ID.String()
			fields["rating"] = event.Review.Rating
			if len(event.Review.FlaggedTerms) > 0 {
				fields["flagged_words"] = event.Review.FlaggedTerms
				flagged = true
			}
		}

		entry := log.WithFields(fields)
		if flagged {
			entry.Warn("Review event with masked terms")
			return nil
		}
		entry.Info("Review event")
		return nil
	}
}
