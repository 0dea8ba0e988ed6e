//go:build integration
// +build integration

package postgres_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/storefront_reviews/internal/config"
	"github.com/Pesokrava/storefront_reviews/internal/domain"
	"github.com/Pesokrava/storefront_reviews/internal/pkg/database"
	"github.com/Pesokrava/storefront_reviews/internal/pkg/logger"
	"github.com/Pesokrava/storefront_reviews/internal/profanity"
	"github.com/Pesokrava/storefront_reviews/internal/repository/postgres"
	"github.com/Pesokrava/storefront_reviews/internal/usecase/reviewstore"
	"github.com/Pesokrava/storefront_reviews/internal/worker"
)

func strPtr(s string) *string {
	return &s
}

type harness struct {
	db    *sqlx.DB
	repo  *postgres.ProductRepository
	store *reviewstore.Store
	log   *logger.Logger
}

func setup(t *testing.T) (*harness, *domain.Product) {
	t.Helper()

	cfg, err := config.Load()
	require.NoError(t, err)

	log := logger.New(cfg.Env)

	db, err := database.WaitForDB(context.Background(), cfg, log, 5, 2*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.RunMigrations(db, "../../../migrations", log))

	repo := postgres.NewProductRepository(db)
	h := &harness{
		db:    db,
		repo:  repo,
		store: reviewstore.New(repo, profanity.New(), log),
		log:   log,
	}

	ctx := context.Background()
	product := &domain.Product{
		ID:          uuid.New(),
		Name:        "Integration Product",
		Description: strPtr("Integration test product"),
		Price:       99.99,
	}
	require.NoError(t, repo.Create(ctx, product))
	t.Cleanup(func() { _ = repo.Delete(ctx, product.ID) })

	return h, product
}

func TestStore_UpsertOverwritesAndPersistsAggregate(t *testing.T) {
	h, product := setup(t)
	ctx := context.Background()

	first, err := h.store.Upsert(ctx, product.ID, "user-1", "Asha", 4, "Solid build")
	require.NoError(t, err)
	assert.True(t, first.Created)

	_, err = h.store.Upsert(ctx, product.ID, "user-2", "Ravi", 2, "This is crap")
	require.NoError(t, err)

	second, err := h.store.Upsert(ctx, product.ID, "user-1", "Asha", 5, "Even better after a week")
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Review.ID, second.Review.ID)

	stored, err := h.repo.GetByID(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, stored.Reviews, 2)
	assert.Equal(t, 2, stored.NumOfReviews)
	assert.InDelta(t, 3.5, stored.Ratings, 0.0001)

	assert.Equal(t, "user-1", stored.Reviews[0].AuthorID)
	assert.Equal(t, "Even better after a week", stored.Reviews[0].Comment)
	assert.Equal(t, "This is ****", stored.Reviews[1].Comment)
	assert.Equal(t, []string{"crap"}, stored.Reviews[1].FlaggedTerms)
}

func TestStore_ConcurrentAuthorsKeepCountExact(t *testing.T) {
	h, product := setup(t)
	ctx := context.Background()

	const authors = 20
	var wg sync.WaitGroup
	errs := make(chan error, authors*2)

	for i := 0; i < authors; i++ {
		for j := 0; j < 2; j++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := h.store.Upsert(ctx, product.ID, fmt.Sprintf("user-%d", i), "Buyer", i%5+1, "Concurrent review")
				errs <- err
			}(i)
		}
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	stored, err := h.repo.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Reviews, authors)
	assert.Equal(t, authors, stored.NumOfReviews)
	assert.InDelta(t, 3.0, stored.Ratings, 0.0001)
}

func TestStore_RemoveByIDRecomputes(t *testing.T) {
	h, product := setup(t)
	ctx := context.Background()

	kept, err := h.store.Upsert(ctx, product.ID, "user-1", "Asha", 5, "Great")
	require.NoError(t, err)
	removed, err := h.store.Upsert(ctx, product.ID, "user-2", "Ravi", 1, "Broke on day one")
	require.NoError(t, err)

	res, err := h.store.RemoveByID(ctx, product.ID, removed.Review.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Aggregate{Ratings: 5, NumOfReviews: 1}, res.Aggregate)

	stored, err := h.repo.GetByID(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, stored.Reviews, 1)
	assert.Equal(t, kept.Review.ID, stored.Reviews[0].ID)

	_, err = h.store.RemoveByID(ctx, product.ID, removed.Review.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAuditor_RepairsOutOfBandWrite(t *testing.T) {
	h, product := setup(t)
	ctx := context.Background()

	for i, rating := range []int{5, 4, 5, 3, 5} {
		_, err := h.store.Upsert(ctx, product.ID, fmt.Sprintf("user-%d", i), "Buyer", rating, "Review")
		require.NoError(t, err)
	}

	_, err := h.db.ExecContext(ctx, `UPDATE products SET ratings = 1, num_of_reviews = 99 WHERE id = $1`, product.ID)
	require.NoError(t, err)

	auditor := worker.NewAuditor(h.db, h.log)

	repaired, err := auditor.Audit(ctx, product.ID)
	require.NoError(t, err)
	assert.True(t, repaired)

	stored, err := h.repo.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.NumOfReviews)
	assert.InDelta(t, 4.4, stored.Ratings, 0.0001)

	repaired, err = auditor.Audit(ctx, product.ID)
	require.NoError(t, err)
	assert.False(t, repaired)
}
