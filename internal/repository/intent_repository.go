package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"tienda/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// intentRepository implements the IntentRepository interface using PostgreSQL.
// Intent line items are stored as a jsonb column: they are written once,
// read back whole, and never queried field-by-field.
type intentRepository struct {
	db     DB
	logger zerolog.Logger
}

// NewIntentRepository creates a new PostgreSQL-backed checkout intent repository.
func NewIntentRepository(db DB, logger zerolog.Logger) IntentRepository {
	return &intentRepository{
		db:     db,
		logger: logger.With().Str("repository", "intent").Logger(),
	}
}

// Create inserts a new checkout intent.
func (r *intentRepository) Create(ctx context.Context, intent *model.CheckoutIntent) error {
	items, err := json.Marshal(intent.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal intent items: %w", err)
	}

	query := `
		INSERT INTO checkout_intents (id, provider_ref, user_id, items, coupon_code,
			items_price, shipping_price, discount, total_price,
			full_name, street, city, phone, status, created_at, updated_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err = r.db.Exec(ctx, query,
		intent.ID, intent.ProviderRef, intent.UserID, items, intent.CouponCode,
		intent.ItemsPrice, intent.ShippingPrice, intent.Discount, intent.TotalPrice,
		intent.Shipping.FullName, intent.Shipping.Street, intent.Shipping.City, intent.Shipping.Phone,
		intent.Status, intent.CreatedAt, intent.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("intent_id", intent.ID.String()).
			Msg("failed to create checkout intent")
		return fmt.Errorf("failed to create checkout intent: %w", err)
	}

	r.logger.Debug().
		Str("intent_id", intent.ID.String()).
		Str("provider_ref", intent.ProviderRef).
		Msg("checkout intent created")

	return nil
}

// SetProviderRef attaches the provider's payment reference once the
// provider call has succeeded.
func (r *intentRepository) SetProviderRef(ctx context.Context, id uuid.UUID, providerRef string) error {
	query := `UPDATE checkout_intents SET provider_ref = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, providerRef)
	if err != nil {
		r.logger.Error().Err(err).Str("intent_id", id.String()).Msg("failed to set intent provider ref")
		return fmt.Errorf("failed to set intent provider ref: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("checkout intent %s not found", id)
	}

	return nil
}

// GetByProviderRef retrieves an intent by the provider's payment reference.
func (r *intentRepository) GetByProviderRef(ctx context.Context, providerRef string) (*model.CheckoutIntent, error) {
	query := `
		SELECT id, COALESCE(provider_ref, ''), user_id, items, coupon_code,
			items_price, shipping_price, discount, total_price,
			full_name, street, city, phone, status, created_at, updated_at
		FROM checkout_intents
		WHERE provider_ref = $1
	`

	var intent model.CheckoutIntent
	var items []byte
	err := r.db.QueryRow(ctx, query, providerRef).Scan(
		&intent.ID, &intent.ProviderRef, &intent.UserID, &items, &intent.CouponCode,
		&intent.ItemsPrice, &intent.ShippingPrice, &intent.Discount, &intent.TotalPrice,
		&intent.Shipping.FullName, &intent.Shipping.Street, &intent.Shipping.City, &intent.Shipping.Phone,
		&intent.Status, &intent.CreatedAt, &intent.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("provider_ref", providerRef).Msg("checkout intent not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("provider_ref", providerRef).Msg("failed to query checkout intent")
		return nil, fmt.Errorf("failed to query checkout intent: %w", err)
	}

	if err := json.Unmarshal(items, &intent.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal intent items: %w", err)
	}

	return &intent, nil
}

// UpdateStatus writes a new intent status.
func (r *intentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE checkout_intents SET status = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		r.logger.Error().Err(err).Str("intent_id", id.String()).Msg("failed to update intent status")
		return fmt.Errorf("failed to update intent status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("checkout intent %s not found", id)
	}

	return nil
}
