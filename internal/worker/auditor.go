package worker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Pesokrava/storefront_reviews/internal/domain"
	"github.com/Pesokrava/storefront_reviews/internal/pkg/logger"
)

// Auditor compares a product's stored rating aggregate with its reviews table
// and rewrites the aggregate when they disagree
type Auditor struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// NewAuditor creates a new aggregate auditor
func NewAuditor(db *sqlx.DB, logger *logger.Logger) *Auditor {
	return &Auditor{
		db:     db,
		logger: logger,
	}
}

// Audit recomputes ratings and num_of_reviews for a product from its reviews.
// The row is only written when it drifted, so consistent products keep their version.
// It reports whether a repair happened.
func (a *Auditor) Audit(ctx context.Context, productID uuid.UUID) (bool, error) {
	query := `
		WITH actual AS (
			SELECT COALESCE(AVG(rating)::float8, 0) AS ratings, COUNT(*)::int AS num_of_reviews
			FROM reviews
			WHERE product_id = $1
		)
		UPDATE products p
		SET
			ratings = actual.ratings,
			num_of_reviews = actual.num_of_reviews,
			updated_at = $2,
			version = p.version + 1
		FROM actual
		WHERE p.id = $1
			AND p.deleted_at IS NULL
			AND (p.num_of_reviews <> actual.num_of_reviews OR abs(p.ratings - actual.ratings) > 1e-9)
		RETURNING actual.ratings, actual.num_of_reviews
	`

	var agg domain.Aggregate
	err := a.db.QueryRowxContext(ctx, query, productID, time.Now().UTC()).Scan(&agg.Ratings, &agg.NumOfReviews)
	if errors.Is(err, sql.ErrNoRows) {
		// Consistent, or the product is gone
		a.logger.WithFields(map[string]any{
			"product_id": productID.String(),
		}).Debug("Aggregate consistent, nothing to repair")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to audit product aggregate: %w", err)
	}

	a.logger.WithFields(map[string]any{
		"product_id":     productID.String(),
		"ratings":        agg.Ratings,
		"num_of_reviews": agg.NumOfReviews,
	}).Warn("Aggregate drift repaired")

	return true, nil
}
