package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DeletedUserName is shown for reviews whose captured author name is absent
const DeletedUserName = "Deleted User"

// MinRating and MaxRating bound a review's rating
const (
	MinRating = 1
	MaxRating = 5
)

// Review represents a product review. It belongs to exactly one product.
type Review struct {
	ID           uuid.UUID `json:"reviewId" db:"id"`
	ProductID    uuid.UUID `json:"productId" db:"product_id"`
	AuthorID     string    `json:"authorId" db:"author_id"`
	AuthorName   string    `json:"authorName" db:"author_name"`
	Rating       int       `json:"rating" db:"rating"`
	Comment      string    `json:"comment" db:"comment"`
	FlaggedTerms []string  `json:"flaggedWords,omitempty" db:"-"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

func (r Review) clone() Review {
	if r.FlaggedTerms != nil {
		r.FlaggedTerms = append([]string(nil), r.FlaggedTerms...)
	}
	return r
}

// FlattenedReview is a review projected with its owning product, used by moderation
type FlattenedReview struct {
	ReviewID    uuid.UUID `json:"reviewId"`
	ProductID   uuid.UUID `json:"productId"`
	ProductName string    `json:"productName"`
	AuthorID    string    `json:"authorId"`
	AuthorName  string    `json:"authorName"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ValidRating reports whether rating is within [MinRating, MaxRating]
func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}

// DisplayName returns the captured author name, or DeletedUserName when it is blank
func DisplayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return DeletedUserName
	}
	return name
}
