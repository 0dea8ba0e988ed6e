package moderation

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Pesokrava/storefront_reviews/internal/domain"
	"github.com/Pesokrava/storefront_reviews/internal/pkg/logger"
	"github.com/Pesokrava/storefront_reviews/internal/usecase/reviewstore"
)

var reviewsRemovedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "moderation_reviews_removed_total",
	Help: "Total number of reviews removed by moderators",
})

// Store is the part of the review store used by moderation
type Store interface {
	ListAll(ctx context.Context) ([]domain.FlattenedReview, error)
	RemoveByID(ctx context.Context, productID, reviewID uuid.UUID) (*reviewstore.RemoveResult, error)
}

// CacheInvalidator drops cached data derived from a product's reviews
type CacheInvalidator interface {
	InvalidateProduct(ctx context.Context, productID uuid.UUID) error
}

// Service handles the admin-facing review lifecycle
type Service struct {
	store     Store
	cache     CacheInvalidator
	publisher domain.EventPublisher
	logger    *logger.Logger
}

// NewService creates a new moderation service
func NewService(store Store, cache CacheInvalidator, publisher domain.EventPublisher, log *logger.Logger) *Service {
	return &Service{
		store:     store,
		cache:     cache,
		publisher: publisher,
		logger:    log,
	}
}

// ListAll returns every review across all products, flattened
func (s *Service) ListAll(ctx context.Context) ([]domain.FlattenedReview, error) {
	reviews, err := s.store.ListAll(ctx)
	if err != nil {
		s.logger.Error("Failed to list all reviews", err)
		return nil, err
	}
	return reviews, nil
}

// Delete removes one review. The product's aggregate is recomputed as part of the removal.
func (s *Service) Delete(ctx context.Context, moderator domain.Identity, productID, reviewID uuid.UUID) (*domain.Aggregate, error) {
	res, err := s.store.RemoveByID(ctx, productID, reviewID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debugf("Review %s on product %s not found", reviewID, productID)
		} else {
			s.logger.Error("Failed to delete review", err)
		}
		return nil, err
	}

	reviewsRemovedTotal.Inc()

	if err := s.cache.InvalidateProduct(ctx, productID); err != nil {
		s.logger.Warnf("Failed to invalidate cache for product %s: %v", productID, err)
	}

	s.publishEvent(moderator.UserID, res.Review, res.Aggregate)

	s.logger.WithFields(map[string]interface{}{
		"review_id":      reviewID,
		"product_id":     productID,
		"moderator_id":   moderator.UserID,
		"ratings":        res.Aggregate.Ratings,
		"num_of_reviews": res.Aggregate.NumOfReviews,
	}).Info("Review deleted by moderator")

	agg := res.Aggregate
	return &agg, nil
}

func (s *Service) publishEvent(actorID string, review domain.Review, agg domain.Aggregate) {
	event := domain.ReviewEvent{
		EventType: domain.EventReviewDeleted,
		Timestamp: time.Now().UTC(),
		ProductID: review.ProductID,
		ActorID:   actorID,
		Review:    &review,
		Aggregate: &agg,
	}

	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Errorf(err, "Failed to marshal event for review %s", review.ID)
		return
	}

	go func() {
		if err := s.publisher.Publish(context.Background(), domain.ReviewEventsSubject, data); err != nil {
			s.logger.Errorf(err, "Failed to publish event for review %s", review.ID)
		}
	}()
}
