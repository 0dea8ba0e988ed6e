package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Pesokrava/storefront_reviews/internal/domain"
	"github.com/Pesokrava/storefront_reviews/internal/pkg/logger"
	"github.com/Pesokrava/storefront_reviews/internal/usecase/reviewstore"
)

// Store is the part of the review store used by the submission path
type Store interface {
	Upsert(ctx context.Context, productID uuid.UUID, authorID, authorName string, rating int, comment string) (*reviewstore.UpsertResult, error)
	ListForProduct(ctx context.Context, productID uuid.UUID) ([]domain.Review, error)
}

// ReviewCache defines the cache operations used for product review lists
type ReviewCache interface {
	GetReviewsList(ctx context.Context, productID uuid.UUID) ([]domain.Review, error)
	ReviewsGeneration(ctx context.Context, productID uuid.UUID) (int64, error)
	SetReviewsList(ctx context.Context, productID uuid.UUID, generation int64, reviews []domain.Review) error
	InvalidateProduct(ctx context.Context, productID uuid.UUID) error
}

// SubmitResult is the review written by a submission together with the product's aggregate
type SubmitResult struct {
	Review    domain.Review    `json:"review"`
	Aggregate domain.Aggregate `json:"aggregate"`
	Created   bool             `json:"created"`
}

// Service handles the user-facing review lifecycle
type Service struct {
	store     Store
	ledger    domain.PurchaseLedger
	cache     ReviewCache
	publisher domain.EventPublisher
	logger    *logger.Logger
}

// NewService creates a new review service
func NewService(
	store Store,
	ledger domain.PurchaseLedger,
	cache ReviewCache,
	publisher domain.EventPublisher,
	log *logger.Logger,
) *Service {
	return &Service{
		store:     store,
		ledger:    ledger,
		cache:     cache,
		publisher: publisher,
		logger:    log,
	}
}

// Submit creates or updates the caller's review of a product. Only users with a
// delivered order containing the product may review it.
func (s *Service) Submit(ctx context.Context, identity domain.Identity, productID uuid.UUID, rating int, comment string) (*SubmitResult, error) {
	if identity.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	if !domain.ValidRating(rating) {
		return nil, fmt.Errorf("%w: rating must be an integer between %d and %d", domain.ErrInvalidInput, domain.MinRating, domain.MaxRating)
	}

	delivered, err := s.ledger.HasDeliveredOrder(ctx, identity.UserID, productID.String())
	if err != nil {
		s.logger.Error("Purchase ledger lookup failed", err)
		if errors.Is(err, domain.ErrStoreUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: purchase ledger: %w", domain.ErrStoreUnavailable, err)
	}
	if !delivered {
		s.logger.WithFields(map[string]interface{}{
			"user_id":    identity.UserID,
			"product_id": productID,
		}).Info("Review rejected: no delivered purchase")
		return nil, fmt.Errorf("%w: must purchase before reviewing", domain.ErrForbidden)
	}

	authorName := identity.UserName
	if strings.TrimSpace(authorName) == "" {
		authorName = identity.UserID
	}

	res, err := s.store.Upsert(ctx, productID, identity.UserID, authorName, rating, comment)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrInvalidInput) {
			s.logger.Error("Failed to upsert review", err)
		}
		return nil, err
	}

	if err := s.cache.InvalidateProduct(ctx, productID); err != nil {
		s.logger.Warnf("Failed to invalidate cache for product %s: %v", productID, err)
	}

	eventType := domain.EventReviewUpdated
	if res.Created {
		eventType = domain.EventReviewCreated
	}
	s.publishEvent(eventType, identity.UserID, res.Review, res.Aggregate)

	s.logger.WithFields(map[string]interface{}{
		"review_id":      res.Review.ID,
		"product_id":     productID,
		"rating":         res.Review.Rating,
		"created":        res.Created,
		"ratings":        res.Aggregate.Ratings,
		"num_of_reviews": res.Aggregate.NumOfReviews,
	}).Info("Review submitted successfully")

	return &SubmitResult{Review: res.Review, Aggregate: res.Aggregate, Created: res.Created}, nil
}

// GetForProduct returns a product's reviews in insertion order, served from cache when possible
func (s *Service) GetForProduct(ctx context.Context, productID uuid.UUID) ([]domain.Review, error) {
	reviews, err := s.cache.GetReviewsList(ctx, productID)
	if err == nil {
		s.logger.Debugf("Cache hit for product %s reviews", productID)
		return reviews, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		s.logger.Warnf("Failed to read cached reviews for product %s: %v", productID, err)
	}

	generation, genErr := s.cache.ReviewsGeneration(ctx, productID)
	if genErr != nil {
		s.logger.Warnf("Failed to read cache generation for product %s: %v", productID, genErr)
	}

	reviews, err = s.store.ListForProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debugf("Product not found: %s", productID)
		} else {
			s.logger.Error("Failed to list reviews", err)
		}
		return nil, err
	}

	if genErr != nil {
		return reviews, nil
	}
	if err := s.cache.SetReviewsList(ctx, productID, generation, reviews); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			s.logger.Debugf("Skipped caching stale reviews for product %s", productID)
		} else {
			s.logger.Warnf("Failed to cache reviews for product %s: %v", productID, err)
		}
	}

	return reviews, nil
}

// publishEvent publishes a review event (non-blocking)
func (s *Service) publishEvent(eventType, actorID string, review domain.Review, agg domain.Aggregate) {
	event := domain.ReviewEvent{
		EventType: eventType,
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

	// Publish in background to avoid blocking
	go func() {
		if err := s.publisher.Publish(context.Background(), domain.ReviewEventsSubject, data); err != nil {
			s.logger.Errorf(err, "Failed to publish event for review %s", review.ID)
		}
	}()
}
