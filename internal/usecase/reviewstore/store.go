package reviewstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Pesokrava/storefront_reviews/internal/domain"
	"github.com/Pesokrava/storefront_reviews/internal/pkg/logger"
	"github.com/Pesokrava/storefront_reviews/internal/profanity"
)

// MaxCommentLength bounds a review comment in runes
const MaxCommentLength = 5000

// ProductRepository is the persistence the store needs for a product and its reviews
type ProductRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Save(ctx context.Context, product *domain.Product) error
	ListWithReviews(ctx context.Context) ([]*domain.Product, error)
}

// ContentScreen screens free text before it is stored
type ContentScreen interface {
	Evaluate(text string) profanity.Result
}

// UpsertResult is the review written by Upsert together with the refreshed aggregate
type UpsertResult struct {
	Review    domain.Review
	Aggregate domain.Aggregate
	Created   bool
}

// RemoveResult is the review removed by RemoveByID together with the refreshed aggregate
type RemoveResult struct {
	Review    domain.Review
	Aggregate domain.Aggregate
}

// Store is the only writer of a product's review list and derived rating fields.
// Writes to the same product are serialized; different products proceed independently.
type Store struct {
	repo   ProductRepository
	screen ContentScreen
	locks  *productLocks
	logger *logger.Logger
	now    func() time.Time
}

// New creates a review store
func New(repo ProductRepository, screen ContentScreen, log *logger.Logger) *Store {
	return &Store{
		repo:   repo,
		screen: screen,
		locks:  newProductLocks(),
		logger: log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Upsert creates the author's review of a product, or overwrites rating and comment
// of the existing one while keeping its ID and creation time. The comment of record
// is the screened text: profanity is redacted, not rejected.
func (s *Store) Upsert(ctx context.Context, productID uuid.UUID, authorID, authorName string, rating int, comment string) (*UpsertResult, error) {
	if strings.TrimSpace(authorID) == "" {
		return nil, fmt.Errorf("%w: author is required", domain.ErrInvalidInput)
	}
	if !domain.ValidRating(rating) {
		return nil, fmt.Errorf("%w: rating must be an integer between %d and %d", domain.ErrInvalidInput, domain.MinRating, domain.MaxRating)
	}
	if strings.TrimSpace(comment) == "" {
		return nil, fmt.Errorf("%w: comment is required", domain.ErrInvalidInput)
	}
	if len([]rune(comment)) > MaxCommentLength {
		return nil, fmt.Errorf("%w: comment exceeds %d characters", domain.ErrInvalidInput, MaxCommentLength)
	}

	screened := s.screen.Evaluate(comment)
	if screened.IsFlagged {
		s.logger.WithFields(map[string]interface{}{
			"product_id":    productID,
			"author_id":     authorID,
			"flagged_terms": screened.FlaggedTerms,
		}).Info("Review comment redacted")
	}

	unlock := s.locks.lock(productID)
	defer unlock()

	current, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	// Mutate a copy so a failed Save leaves nothing half-applied
	product := current.Clone()
	now := s.now()
	created := false

	idx := product.FindReviewByAuthor(authorID)
	if idx >= 0 {
		r := &product.Reviews[idx]
		r.Rating = rating
		r.Comment = screened.FilteredText
		r.FlaggedTerms = screened.FlaggedTerms
		r.UpdatedAt = now
	} else {
		product.Reviews = append(product.Reviews, domain.Review{
			ID:           uuid.New(),
			ProductID:    product.ID,
			AuthorID:     authorID,
			AuthorName:   authorName,
			Rating:       rating,
			Comment:      screened.FilteredText,
			FlaggedTerms: screened.FlaggedTerms,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		idx = len(product.Reviews) - 1
		created = true
	}

	product.RecomputeAggregate()

	if err := s.repo.Save(ctx, product); err != nil {
		return nil, err
	}

	return &UpsertResult{
		Review:    product.Reviews[idx],
		Aggregate: product.Aggregate(),
		Created:   created,
	}, nil
}

// RemoveByID deletes exactly one review from a product and recomputes the aggregate
func (s *Store) RemoveByID(ctx context.Context, productID, reviewID uuid.UUID) (*RemoveResult, error) {
	unlock := s.locks.lock(productID)
	defer unlock()

	current, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	idx := current.FindReview(reviewID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: review %s on product %s", domain.ErrNotFound, reviewID, productID)
	}

	product := current.Clone()
	removed := product.Reviews[idx]
	product.Reviews = append(product.Reviews[:idx], product.Reviews[idx+1:]...)
	product.RecomputeAggregate()

	if err := s.repo.Save(ctx, product); err != nil {
		return nil, err
	}

	return &RemoveResult{Review: removed, Aggregate: product.Aggregate()}, nil
}

// ListForProduct returns the product's reviews in insertion order
func (s *Store) ListForProduct(ctx context.Context, productID uuid.UUID) ([]domain.Review, error) {
	product, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	reviews := make([]domain.Review, len(product.Reviews))
	for i, r := range product.Reviews {
		r.AuthorName = domain.DisplayName(r.AuthorName)
		reviews[i] = r
	}
	return reviews, nil
}

// ListAll flattens every product's reviews, each tagged with its product's ID and name.
// The result is unbounded: cost grows with the total number of reviews.
func (s *Store) ListAll(ctx context.Context) ([]domain.FlattenedReview, error) {
	products, err := s.repo.ListWithReviews(ctx)
	if err != nil {
		return nil, err
	}

	flat := make([]domain.FlattenedReview, 0)
	for _, p := range products {
		for _, r := range p.Reviews {
			flat = append(flat, domain.FlattenedReview{
				ReviewID:    r.ID,
				ProductID:   p.ID,
				ProductName: p.Name,
				AuthorID:    r.AuthorID,
				AuthorName:  domain.DisplayName(r.AuthorName),
				Rating:      r.Rating,
				Comment:     r.Comment,
				CreatedAt:   r.CreatedAt,
			})
		}
	}
	return flat, nil
}
