package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Pesokrava/storefront_reviews/internal/domain"
)

const productColumns = `id, name, description, price, ratings, num_of_reviews, version, created_at, updated_at, deleted_at`

// ProductRepository implements domain.ProductRepository for PostgreSQL.
// Reviews live in their own table but are only written through Save, together
// with the product's derived rating columns, in one transaction.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new PostgreSQL product repository
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStoreUnavailable, op, err)
}

// Create creates a new product
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (name, description, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, ratings, num_of_reviews, version, created_at, updated_at
	`

	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	err := r.db.QueryRowxContext(
		ctx,
		query,
		product.Name,
		product.Description,
		product.Price,
		product.CreatedAt,
		product.UpdatedAt,
	).Scan(
		&product.ID,
		&product.Ratings,
		&product.NumOfReviews,
		&product.Version,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return storeErr("create product", err)
	}

	product.Reviews = []domain.Review{}
	return nil
}

// GetByID retrieves a product and its reviews in insertion order
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND deleted_at IS NULL`

	var product domain.Product
	if err := r.db.GetContext(ctx, &product, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: product %s", domain.ErrNotFound, id)
		}
		return nil, storeErr("get product", err)
	}

	reviews, err := r.reviewsByProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	product.Reviews = reviews

	return &product, nil
}

// List retrieves a paginated list of products without their reviews
func (r *ProductRepository) List(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	var products []*domain.Product
	if err := r.db.SelectContext(ctx, &products, query, limit, offset); err != nil {
		return nil, storeErr("list products", err)
	}

	return products, nil
}

// ListWithReviews retrieves every product together with its reviews
func (r *ProductRepository) ListWithReviews(ctx context.Context) ([]*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE deleted_at IS NULL
		ORDER BY created_at, id
	`

	var products []*domain.Product
	if err := r.db.SelectContext(ctx, &products, query); err != nil {
		return nil, storeErr("list products", err)
	}

	byID := make(map[uuid.UUID]*domain.Product, len(products))
	for _, p := range products {
		p.Reviews = []domain.Review{}
		byID[p.ID] = p
	}

	reviews, err := r.allReviews(ctx)
	if err != nil {
		return nil, err
	}
	for _, rv := range reviews {
		if p, ok := byID[rv.ProductID]; ok {
			p.Reviews = append(p.Reviews, rv)
		}
	}

	return products, nil
}

// Update updates an existing product's catalogue fields
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, updated_at = $4, version = version + 1
		WHERE id = $5 AND deleted_at IS NULL AND version = $6
		RETURNING version, updated_at, ratings, num_of_reviews
	`

	product.UpdatedAt = time.Now().UTC()

	err := r.db.QueryRowxContext(
		ctx,
		query,
		product.Name,
		product.Description,
		product.Price,
		product.UpdatedAt,
		product.ID,
		product.Version,
	).Scan(&product.Version, &product.UpdatedAt, &product.Ratings, &product.NumOfReviews)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrConflict
		}
		return storeErr("update product", err)
	}

	return nil
}

// Save writes the product's review list and derived rating columns atomically.
// The write is rejected with domain.ErrConflict when the stored version moved on.
func (r *ProductRepository) Save(ctx context.Context, product *domain.Product) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return storeErr("begin transaction", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE products
		SET ratings = $1, num_of_reviews = $2, updated_at = $3, version = version + 1
		WHERE id = $4 AND deleted_at IS NULL AND version = $5
		RETURNING version, updated_at
	`

	var (
		version   int
		updatedAt time.Time
	)
	err = tx.QueryRowxContext(
		ctx,
		query,
		product.Ratings,
		product.NumOfReviews,
		time.Now().UTC(),
		product.ID,
		product.Version,
	).Scan(&version, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrConflict
		}
		return storeErr("update product aggregate", err)
	}

	if err := syncReviews(ctx, tx, product); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return storeErr("commit transaction", err)
	}

	product.Version = version
	product.UpdatedAt = updatedAt
	return nil
}

// Delete soft-deletes a product and removes its reviews
func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return storeErr("begin transaction", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE products
		SET deleted_at = $1, ratings = 0, num_of_reviews = 0, version = version + 1
		WHERE id = $2 AND deleted_at IS NULL
	`

	result, err := tx.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return storeErr("delete product", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storeErr("delete product", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: product %s", domain.ErrNotFound, id)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM reviews WHERE product_id = $1`, id); err != nil {
		return storeErr("delete product reviews", err)
	}

	if err := tx.Commit(); err != nil {
		return storeErr("commit transaction", err)
	}

	return nil
}

// Count returns the total number of products
func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM products WHERE deleted_at IS NULL`

	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, storeErr("count products", err)
	}

	return count, nil
}
