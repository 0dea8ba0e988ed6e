package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Pesokrava/storefront_reviews/internal/domain"
)

// generationTTL outlives any in-flight load so a counter never resets under a reader
const generationTTL = 24 * time.Hour

// RedisCache caches per-product review lists
type RedisCache struct {
	client         *redis.Client
	reviewsListTTL time.Duration
}

// NewRedisCache creates a new Redis cache instance
func NewRedisCache(client *redis.Client, reviewsListTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:         client,
		reviewsListTTL: reviewsListTTL,
	}
}

func (c *RedisCache) generationKey(productID uuid.UUID) string {
	return fmt.Sprintf("product:%s:reviews:gen", productID.String())
}

func (c *RedisCache) reviewsListKey(productID uuid.UUID) string {
	return fmt.Sprintf("product:%s:reviews", productID.String())
}

// GetReviewsList retrieves the cached review list for a product.
// A miss is reported as domain.ErrNotFound.
func (c *RedisCache) GetReviewsList(ctx context.Context, productID uuid.UUID) ([]domain.Review, error) {
	val, err := c.client.Get(ctx, c.reviewsListKey(productID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var reviews []domain.Review
	if err := json.Unmarshal(val, &reviews); err != nil {
		return nil, err
	}

	return reviews, nil
}

// ReviewsGeneration returns the product's invalidation counter. Read it before
// loading from the store and pass it to SetReviewsList.
func (c *RedisCache) ReviewsGeneration(ctx context.Context, productID uuid.UUID) (int64, error) {
	gen, err := c.client.Get(ctx, c.generationKey(productID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// SetReviewsList stores the review list for a product unless the product was
// invalidated after generation was read. A skipped write returns domain.ErrConflict.
func (c *RedisCache) SetReviewsList(ctx context.Context, productID uuid.UUID, generation int64, reviews []domain.Review) error {
	data, err := json.Marshal(reviews)
	if err != nil {
		return err
	}

	genKey := c.generationKey(productID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return fmt.Errorf("%w: reviews of product %s invalidated since load", domain.ErrConflict, productID)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.reviewsListKey(productID), data, c.reviewsListTTL)
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("%w: reviews of product %s invalidated during write", domain.ErrConflict, productID)
	}
	return err
}

// InvalidateProduct removes every cache entry derived from the product's reviews
// and bumps its generation so in-flight loads cannot repopulate it
func (c *RedisCache) InvalidateProduct(ctx context.Context, productID uuid.UUID) error {
	genKey := c.generationKey(productID)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		pipe.Unlink(ctx, c.reviewsListKey(productID))
		return nil
	})
	return err
}
