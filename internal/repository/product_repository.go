package repository

import (
	"context"
	"fmt"

	"tienda/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	db     DB
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(db DB, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		db:     db,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

// GetAll retrieves all products with pagination support.
func (r *productRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	query := `
		SELECT id, name, price, category, available, created_at, updated_at
		FROM products
		ORDER BY name
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	query := `
		SELECT id, name, price, category, available, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	var p model.Product
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Price, &p.Category, &p.Available, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return &p, nil
}

// GetByIDs retrieves multiple products by their IDs.
func (r *productRepository) GetByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := `
		SELECT id, name, price, category, available, created_at, updated_at
		FROM products
		WHERE id = ANY($1)
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query products by IDs")
		return nil, fmt.Errorf("failed to query products by IDs: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// Create inserts a new product.
func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
		INSERT INTO products (id, name, price, category, available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query, p.ID, p.Name, p.Price, p.Category, p.Available, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", p.ID).Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	r.logger.Debug().Str("product_id", p.ID).Msg("product created successfully")
	return nil
}

// Update replaces a product's mutable fields.
func (r *productRepository) Update(ctx context.Context, p *model.Product) error {
	query := `
		UPDATE products
		SET name = $2, price = $3, category = $4, available = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, p.ID, p.Name, p.Price, p.Category, p.Available, p.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", p.ID).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	return nil
}

// Delete removes a product.
func (r *productRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	return nil
}

// DebitStock decrements available stock by quantity as a single
// conditional update. The WHERE clause carries the invariant: the row is
// only touched when current availability covers the full quantity, so two
// racing debits can never drive stock negative.
func (r *productRepository) DebitStock(ctx context.Context, tx pgx.Tx, productID string, quantity int) (int, error) {
	query := `
		UPDATE products
		SET available = available - $2, updated_at = NOW()
		WHERE id = $1 AND available >= $2
		RETURNING available
	`

	var row pgx.Row
	if tx != nil {
		row = tx.QueryRow(ctx, query, productID, quantity)
	} else {
		row = r.db.QueryRow(ctx, query, productID, quantity)
	}

	var newAvailable int
	err := row.Scan(&newAvailable)
	if err == nil {
		r.logger.Debug().
			Str("product_id", productID).
			Int("quantity", quantity).
			Int("available", newAvailable).
			Msg("stock debited")
		return newAvailable, nil
	}

	if err != pgx.ErrNoRows {
		r.logger.Error().Err(err).Str("product_id", productID).Msg("failed to debit stock")
		return 0, fmt.Errorf("failed to debit stock: %w", err)
	}

	// No row matched: either the product is gone or stock ran short.
	// Distinguish so callers can surface the right error.
	exists, err := r.productExists(ctx, tx, productID)
	if err != nil {
		return 0, err
	}
	if !exists {
		r.logger.Warn().Str("product_id", productID).Msg("stock debit on missing product")
		return 0, model.ErrProductNotFound
	}

	r.logger.Warn().
		Str("product_id", productID).
		Int("quantity", quantity).
		Msg("stock debit rejected: insufficient availability")
	return 0, model.ErrInsufficientStock
}

func (r *productRepository) productExists(ctx context.Context, tx pgx.Tx, productID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`

	var row pgx.Row
	if tx != nil {
		row = tx.QueryRow(ctx, query, productID)
	} else {
		row = r.db.QueryRow(ctx, query, productID)
	}

	var exists bool
	if err := row.Scan(&exists); err != nil {
		r.logger.Error().Err(err).Str("product_id", productID).Msg("failed to check product existence")
		return false, fmt.Errorf("failed to check product existence: %w", err)
	}
	return exists, nil
}

// scanProducts collects product rows, closing over the shared column order.
func scanProducts(rows pgx.Rows) ([]model.Product, error) {
	var products []model.Product
	for rows.Next() {
		var p model.Product
		err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Category, &p.Available, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}
