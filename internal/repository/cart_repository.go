package repository

import (
	"context"
	"fmt"
	"time"

	"tienda/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	db     DB
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(db DB, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		db:     db,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// Get retrieves a user's cart. A missing cart is returned as an empty one.
func (r *cartRepository) Get(ctx context.Context, userID string) (*model.Cart, error) {
	cart := &model.Cart{UserID: userID, Items: []model.CartItem{}}

	err := r.db.QueryRow(ctx, `SELECT updated_at FROM carts WHERE user_id = $1`, userID).
		Scan(&cart.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return cart, nil
		}
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to query cart")
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT product_id, quantity FROM cart_items WHERE user_id = $1 ORDER BY product_id`, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to query cart items")
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.CartItem
		if err := rows.Scan(&item.ProductID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		cart.Items = append(cart.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return cart, nil
}

// Replace overwrites the full contents of a user's cart.
func (r *cartRepository) Replace(ctx context.Context, userID string, items []model.CartItem) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin cart transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	_, err = tx.Exec(ctx, `
		INSERT INTO carts (user_id, updated_at) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = EXCLUDED.updated_at
	`, userID, now)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to upsert cart")
		return fmt.Errorf("failed to upsert cart: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear cart items: %w", err)
	}

	if len(items) > 0 {
		batch := &pgx.Batch{}
		for _, item := range items {
			batch.Queue(
				`INSERT INTO cart_items (user_id, product_id, quantity) VALUES ($1, $2, $3)`,
				userID, item.ProductID, item.Quantity,
			)
		}

		results := tx.SendBatch(ctx, batch)
		for i := 0; i < len(items); i++ {
			if _, err := results.Exec(); err != nil {
				results.Close()
				r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to insert cart item")
				return fmt.Errorf("failed to insert cart item: %w", err)
			}
		}
		if err := results.Close(); err != nil {
			return fmt.Errorf("failed to close cart batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit cart: %w", err)
	}

	r.logger.Debug().
		Str("user_id", userID).
		Int("items", len(items)).
		Msg("cart replaced")

	return nil
}

// Clear removes all items from a user's cart.
func (r *cartRepository) Clear(ctx context.Context, userID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
