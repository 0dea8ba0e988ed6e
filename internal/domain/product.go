package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Product represents a product in the catalogue. It exclusively owns its reviews.
type Product struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Name         string     `json:"name" db:"name" validate:"required,min=1,max=255"`
	Description  *string    `json:"description,omitempty" db:"description"`
	Price        float64    `json:"price" db:"price" validate:"gte=0"`
	Ratings      float64    `json:"ratings" db:"ratings"`
	NumOfReviews int        `json:"numOfReviews" db:"num_of_reviews"`
	Reviews      []Review   `json:"reviews,omitempty" db:"-"`
	Version      int        `json:"version" db:"version"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
	DeletedAt    *time.Time `json:"deletedAt,omitempty" db:"deleted_at"`
}

// Aggregate is the derived rating summary of a product
type Aggregate struct {
	Ratings      float64 `json:"ratings"`
	NumOfReviews int     `json:"numOfReviews"`
}

// RecomputeAggregate derives Ratings and NumOfReviews from Reviews.
// These two fields must not be assigned anywhere else.
func (p *Product) RecomputeAggregate() {
	p.NumOfReviews = len(p.Reviews)
	if p.NumOfReviews == 0 {
		p.Ratings = 0
		return
	}

	sum := 0
	for _, r := range p.Reviews {
		sum += r.Rating
	}
	p.Ratings = float64(sum) / float64(p.NumOfReviews)
}

// Aggregate returns the current rating summary
func (p *Product) Aggregate() Aggregate {
	return Aggregate{Ratings: p.Ratings, NumOfReviews: p.NumOfReviews}
}

// FindReviewByAuthor returns the index of the author's review, or -1
func (p *Product) FindReviewByAuthor(authorID string) int {
	for i := range p.Reviews {
		if p.Reviews[i].AuthorID == authorID {
			return i
		}
	}
	return -1
}

// FindReview returns the index of the review with the given ID, or -1
func (p *Product) FindReview(reviewID uuid.UUID) int {
	for i := range p.Reviews {
		if p.Reviews[i].ID == reviewID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so callers can mutate without touching the original
func (p *Product) Clone() *Product {
	cp := *p
	cp.Reviews = make([]Review, len(p.Reviews))
	for i, r := range p.Reviews {
		cp.Reviews[i] = r.clone()
	}
	return &cp
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	// Create creates a new product with an empty review list
	Create(ctx context.Context, product *Product) error

	// GetByID retrieves a product with its reviews in insertion order (excludes soft-deleted)
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// List retrieves a paginated list of products without reviews (excludes soft-deleted)
	List(ctx context.Context, limit, offset int) ([]*Product, error)

	// ListWithReviews retrieves every product together with its reviews
	ListWithReviews(ctx context.Context) ([]*Product, error)

	// Update updates name, description and price using optimistic locking
	Update(ctx context.Context, product *Product) error

	// Save persists the review list and derived aggregate using optimistic locking
	Save(ctx context.Context, product *Product) error

	// Delete soft-deletes a product and removes its reviews
	Delete(ctx context.Context, id uuid.UUID) error

	// Count returns the total number of products (excludes soft-deleted)
	Count(ctx context.Context) (int, error)
}
