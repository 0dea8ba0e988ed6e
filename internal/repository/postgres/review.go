package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Pesokrava/storefront_reviews/internal/domain"
)

const reviewColumns = `id, product_id, author_id, author_name, rating, comment, flagged_terms, created_at, updated_at`

const uniqueViolation = "23505"

type reviewRow struct {
	ID           uuid.UUID      `db:"id"`
	ProductID    uuid.UUID      `db:"product_id"`
	AuthorID     string         `db:"author_id"`
	AuthorName   string         `db:"author_name"`
	Rating       int            `db:"rating"`
	Comment      string         `db:"comment"`
	FlaggedTerms pq.StringArray `db:"flagged_terms"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (row reviewRow) toDomain() domain.Review {
	r := domain.Review{
		ID:         row.ID,
		ProductID:  row.ProductID,
		AuthorID:   row.AuthorID,
		AuthorName: row.AuthorName,
		Rating:     row.Rating,
		Comment:    row.Comment,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
	if len(row.FlaggedTerms) > 0 {
		r.FlaggedTerms = []string(row.FlaggedTerms)
	}
	return r
}

func toDomainReviews(rows []reviewRow) []domain.Review {
	reviews := make([]domain.Review, len(rows))
	for i, row := range rows {
		reviews[i] = row.toDomain()
	}
	return reviews
}

func (r *ProductRepository) reviewsByProduct(ctx context.Context, productID uuid.UUID) ([]domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE product_id = $1 ORDER BY seq`

	var rows []reviewRow
	if err := r.db.SelectContext(ctx, &rows, query, productID); err != nil {
		return nil, storeErr("list reviews", err)
	}

	return toDomainReviews(rows), nil
}

func (r *ProductRepository) allReviews(ctx context.Context) ([]domain.Review, error) {
	query := `
		SELECT r.id, r.product_id, r.author_id, r.author_name, r.rating, r.comment, r.flagged_terms, r.created_at, r.updated_at
		FROM reviews r
		JOIN products p ON p.id = r.product_id AND p.deleted_at IS NULL
		ORDER BY r.product_id, r.seq
	`

	var rows []reviewRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, storeErr("list reviews", err)
	}

	return toDomainReviews(rows), nil
}

// syncReviews makes the reviews table match product.Reviews inside tx.
// Existing rows keep their seq, so insertion order survives updates.
func syncReviews(ctx context.Context, tx *sqlx.Tx, product *domain.Product) error {
	ids := make([]string, len(product.Reviews))
	for i, rv := range product.Reviews {
		ids[i] = rv.ID.String()
	}

	deleteQuery := `DELETE FROM reviews WHERE product_id = $1 AND NOT (id = ANY($2::uuid[]))`
	if _, err := tx.ExecContext(ctx, deleteQuery, product.ID, pq.Array(ids)); err != nil {
		return storeErr("prune reviews", err)
	}

	upsertQuery := `
		INSERT INTO reviews (id, product_id, author_id, author_name, rating, comment, flagged_terms, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE
		SET rating = EXCLUDED.rating,
			comment = EXCLUDED.comment,
			flagged_terms = EXCLUDED.flagged_terms,
			updated_at = EXCLUDED.updated_at
		WHERE reviews.updated_at IS DISTINCT FROM EXCLUDED.updated_at
	`

	for _, rv := range product.Reviews {
		flagged := rv.FlaggedTerms
		if flagged == nil {
			flagged = []string{}
		}

		_, err := tx.ExecContext(
			ctx,
			upsertQuery,
			rv.ID,
			product.ID,
			rv.AuthorID,
			rv.AuthorName,
			rv.Rating,
			rv.Comment,
			pq.Array(flagged),
			rv.CreatedAt,
			rv.UpdatedAt,
		)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
				return domain.ErrConflict
			}
			return storeErr("upsert review", err)
		}
	}

	return nil
}
