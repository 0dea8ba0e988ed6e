package events

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Pesokrava/storefront_reviews/internal/domain"
	"github.com/Pesokrava/storefront_reviews/internal/pkg/logger"
)

const (
	// StreamName is the JetStream stream for review events
	StreamName = "REVIEWS"

	// StreamSubjects defines the subjects this stream listens to
	StreamSubjects = domain.ReviewEventsSubject

	// StreamMaxAge bounds how long an unconsumed event is kept
	StreamMaxAge = 24 * time.Hour

	// DuplicateWindow is how long a message ID is remembered for deduplication
	DuplicateWindow = 2 * time.Minute

	// AckWait is how long to wait for acknowledgment before redelivery
	AckWait = 30 * time.Second
)

// ConsumerSpec describes one durable pull consumer of the review events stream
type ConsumerSpec struct {
	Name        string
	Description string
	// MaxDeliver is the number of delivery attempts before an event is dropped
	MaxDeliver int
}

var (
	// AuditorConsumer feeds the rating auditor. A dropped event only delays the
	// next audit of that product, so few attempts are enough.
	AuditorConsumer = ConsumerSpec{
		Name:        "rating-auditor",
		Description: "Rating auditor verifying product aggregates",
		MaxDeliver:  3,
	}

	// ModerationFeedConsumer feeds the moderator notification log
	ModerationFeedConsumer = ConsumerSpec{
		Name:        "moderation-feed",
		Description: "Moderator feed of review lifecycle events",
		MaxDeliver:  5,
	}
)

// StreamConfig provisions the review events stream and its consumers
type StreamConfig struct {
	js     nats.JetStreamContext
	logger *logger.Logger
}

// NewStreamConfig creates a new stream configuration helper
func NewStreamConfig(js nats.JetStreamContext, log *logger.Logger) *StreamConfig {
	return &StreamConfig{
		js:     js,
		logger: log,
	}
}

// generateExponentialBackoff creates a backoff schedule for NATS redeliveries:
// 1s, 2s, 4s, ... MaxDeliver N needs N-1 durations since the first delivery is immediate.
func generateExponentialBackoff(maxDeliveryAttempts int) []time.Duration {
	if maxDeliveryAttempts <= 1 {
		return nil
	}

	backoff := make([]time.Duration, maxDeliveryAttempts-1)
	for i := range backoff {
		backoff[i] = time.Duration(1<<i) * time.Second
	}
	return backoff
}

// streamSettings is the desired stream configuration. Interest retention keeps
// an event until every consumer has acknowledged it, so the auditor and the
// moderation feed each see every event.
func streamSettings() *nats.StreamConfig {
	return &nats.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{StreamSubjects},
		Retention:   nats.InterestPolicy,
		Storage:     nats.FileStorage,
		Replicas:    1,
		MaxAge:      StreamMaxAge,
		Discard:     nats.DiscardOld,
		Duplicates:  DuplicateWindow,
		Description: "Review lifecycle events (created, updated, deleted)",
	}
}

// needsUpdate reports whether an existing stream differs from the mutable part of want
func needsUpdate(have, want *nats.StreamConfig) bool {
	return !slices.Equal(have.Subjects, want.Subjects) ||
		have.MaxAge != want.MaxAge ||
		have.Duplicates != want.Duplicates
}

// EnsureStream creates the review events stream, or updates subjects and
// limits of an existing one. Retention cannot change in place; a stream with
// another retention policy is reported as an error.
func (s *StreamConfig) EnsureStream() error {
	want := streamSettings()
	stream, err := s.js.StreamInfo(StreamName)

	if errors.Is(err, nats.ErrStreamNotFound) {
		s.logger.WithFields(map[string]any{
			"stream":   StreamName,
			"subjects": StreamSubjects,
		}).Info("Creating JetStream stream")

		if _, err = s.js.AddStream(want); err != nil {
			return fmt.Errorf("failed to create stream: %w", err)
		}

		s.logger.Info("JetStream stream created successfully")
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to get stream info: %w", err)
	}

	if stream.Config.Retention != want.Retention {
		return fmt.Errorf("stream %s has retention %s, want %s: recreate it", StreamName, stream.Config.Retention, want.Retention)
	}

	if needsUpdate(&stream.Config, want) {
		if _, err := s.js.UpdateStream(want); err != nil {
			return fmt.Errorf("failed to update stream: %w", err)
		}
		s.logger.WithFields(map[string]any{"stream": StreamName}).Info("JetStream stream updated")
		return nil
	}

	s.logger.WithFields(map[string]any{
		"stream":   stream.Config.Name,
		"messages": stream.State.Msgs,
		"bytes":    stream.State.Bytes,
	}).Info("JetStream stream already exists")

	return nil
}

// EnsureConsumer creates the durable pull consumer described by spec.
// Delivery is explicit-ack with exponential backoff between attempts; events
// that exhaust MaxDeliver are dropped, not dead-lettered.
func (s *StreamConfig) EnsureConsumer(spec ConsumerSpec) error {
	consumerInfo, err := s.js.ConsumerInfo(StreamName, spec.Name)

	if errors.Is(err, nats.ErrConsumerNotFound) {
		s.logger.WithFields(map[string]any{
			"stream":   StreamName,
			"consumer": spec.Name,
		}).Info("Creating JetStream consumer")

		_, err = s.js.AddConsumer(StreamName, &nats.ConsumerConfig{
			Durable:       spec.Name,
			AckPolicy:     nats.AckExplicitPolicy,
			AckWait:       AckWait,
			MaxDeliver:    spec.MaxDeliver,
			FilterSubject: StreamSubjects,
			BackOff:       generateExponentialBackoff(spec.MaxDeliver),
			Description:   spec.Description,
		})
		if err != nil {
			return fmt.Errorf("failed to create consumer %s: %w", spec.Name, err)
		}

		s.logger.Infof("JetStream consumer %s created successfully", spec.Name)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to get consumer info: %w", err)
	}

	s.logger.WithFields(map[string]any{
		"consumer":    consumerInfo.Name,
		"pending":     consumerInfo.NumPending,
		"redelivered": consumerInfo.NumRedelivered,
		"ack_pending": consumerInfo.NumAckPending,
	}).Info("JetStream consumer already exists")

	return nil
}
