package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestProduct_RecomputeAggregate(t *testing.T) {
	tests := []struct {
		name      string
		ratings   []int
		wantAvg   float64
		wantCount int
	}{
		{name: "empty", ratings: nil, wantAvg: 0, wantCount: 0},
		{name: "single", ratings: []int{4}, wantAvg: 4, wantCount: 1},
		{name: "fractional", ratings: []int{5, 4, 5, 3, 5}, wantAvg: 4.4, wantCount: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Product{Ratings: 2.5, NumOfReviews: 9}
			for _, r := range tt.ratings {
				p.Reviews = append(p.Reviews, Review{ID: uuid.New(), Rating: r})
			}

			p.RecomputeAggregate()

			assert.InDelta(t, tt.wantAvg, p.Ratings, 0.0001)
			assert.Equal(t, tt.wantCount, p.NumOfReviews)
			assert.Equal(t, Aggregate{Ratings: p.Ratings, NumOfReviews: p.NumOfReviews}, p.Aggregate())
		})
	}
}

func TestProduct_CloneIsDeep(t *testing.T) {
	p := &Product{
		ID:      uuid.New(),
		Reviews: []Review{{ID: uuid.New(), AuthorID: "u1", Rating: 3, FlaggedTerms: []string{"damn"}}},
	}

	cp := p.Clone()
	cp.Reviews[0].Rating = 5
	cp.Reviews[0].FlaggedTerms[0] = "x"
	cp.Reviews = append(cp.Reviews, Review{ID: uuid.New()})

	assert.Len(t, p.Reviews, 1)
	assert.Equal(t, 3, p.Reviews[0].Rating)
	assert.Equal(t, "damn", p.Reviews[0].FlaggedTerms[0])
}

func TestProduct_FindReview(t *testing.T) {
	id := uuid.New()
	p := &Product{Reviews: []Review{{ID: uuid.New(), AuthorID: "u1"}, {ID: id, AuthorID: "u2"}}}

	assert.Equal(t, 1, p.FindReview(id))
	assert.Equal(t, -1, p.FindReview(uuid.New()))
	assert.Equal(t, 0, p.FindReviewByAuthor("u1"))
	assert.Equal(t, -1, p.FindReviewByAuthor("u3"))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Asha", DisplayName("Asha"))
	assert.Equal(t, DeletedUserName, DisplayName(""))
	assert.Equal(t, DeletedUserName, DisplayName("   "))
}

func TestValidRating(t *testing.T) {
	assert.False(t, ValidRating(0))
	assert.True(t, ValidRating(1))
	assert.True(t, ValidRating(5))
	assert.False(t, ValidRating(6))
}
