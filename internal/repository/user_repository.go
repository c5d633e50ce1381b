package repository

import (
	"context"
	"fmt"

	"tienda/internal/model"

	"github.com/rs/zerolog"
)

// userRepository implements the UserRepository interface using PostgreSQL.
type userRepository struct {
	db     DB
	logger zerolog.Logger
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(db DB, logger zerolog.Logger) UserRepository {
	return &userRepository{
		db:     db,
		logger: logger.With().Str("repository", "user").Logger(),
	}
}

// GetOrCreate retrieves a user row, inserting it on first sight. The
// upsert keeps this safe under concurrent first requests from the same
// user.
func (r *userRepository) GetOrCreate(ctx context.Context, id string) (*model.User, error) {
	query := `
		INSERT INTO users (id, created_at, updated_at)
		VALUES ($1, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET updated_at = users.updated_at
		RETURNING id, provider_customer_id, created_at, updated_at
	`

	var u model.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.ProviderCustomerID, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", id).Msg("failed to get or create user")
		return nil, fmt.Errorf("failed to get or create user: %w", err)
	}

	return &u, nil
}

// SetProviderCustomerID persists the payment-provider customer reference.
func (r *userRepository) SetProviderCustomerID(ctx context.Context, id, customerID string) error {
	query := `UPDATE users SET provider_customer_id = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, customerID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", id).Msg("failed to set provider customer ID")
		return fmt.Errorf("failed to set provider customer ID: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s not found", id)
	}

	return nil
}
