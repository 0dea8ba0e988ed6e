package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Review event types published after a committed mutation
const (
	EventReviewCreated = "review.created"
	EventReviewUpdated = "review.updated"
	EventReviewDeleted = "review.deleted"
)

// ReviewEventsSubject is the NATS subject review events are published on
const ReviewEventsSubject = "reviews.events"

// ReviewEvent represents an event related to a review
type ReviewEvent struct {
	EventType string     `json:"event_type"`
	Timestamp time.Time  `json:"timestamp"`
	ProductID uuid.UUID  `json:"product_id"`
	ActorID   string     `json:"actor_id,omitempty"`
	Review    *Review    `json:"review,omitempty"`
	Aggregate *Aggregate `json:"aggregate,omitempty"`
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}
