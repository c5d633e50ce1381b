package repository

import (
	"context"
	"fmt"
	"strings"

	"tienda/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// couponRepository implements the CouponRepository interface using PostgreSQL.
type couponRepository struct {
	db     DB
	logger zerolog.Logger
}

// NewCouponRepository creates a new PostgreSQL-backed coupon repository.
func NewCouponRepository(db DB, logger zerolog.Logger) CouponRepository {
	return &couponRepository{
		db:     db,
		logger: logger.With().Str("repository", "coupon").Logger(),
	}
}

const couponColumns = `id, code, kind, value, expires_at, active, created_at, updated_at`

// GetByCode retrieves a coupon by its uppercase-normalised code.
func (r *couponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1`

	var c model.Coupon
	err := r.db.QueryRow(ctx, query, strings.ToUpper(code)).Scan(
		&c.ID, &c.Code, &c.Kind, &c.Value, &c.ExpiresAt, &c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("code", code).Msg("coupon not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("code", code).Msg("failed to query coupon")
		return nil, fmt.Errorf("failed to query coupon: %w", err)
	}

	return &c, nil
}

// GetByID retrieves a coupon by its ID.
func (r *couponRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1`

	var c model.Coupon
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Code, &c.Kind, &c.Value, &c.ExpiresAt, &c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("coupon_id", id.String()).Msg("failed to query coupon")
		return nil, fmt.Errorf("failed to query coupon: %w", err)
	}

	return &c, nil
}

// GetAll retrieves all coupons with pagination support.
func (r *couponRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query coupons")
		return nil, fmt.Errorf("failed to query coupons: %w", err)
	}
	defer rows.Close()

	var coupons []model.Coupon
	for rows.Next() {
		var c model.Coupon
		err := rows.Scan(&c.ID, &c.Code, &c.Kind, &c.Value, &c.ExpiresAt, &c.Active, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan coupon: %w", err)
		}
		coupons = append(coupons, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating coupons: %w", err)
	}

	return coupons, nil
}

// Create inserts a new coupon.
func (r *couponRepository) Create(ctx context.Context, c *model.Coupon) error {
	query := `
		INSERT INTO coupons (id, code, kind, value, expires_at, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		c.ID, strings.ToUpper(c.Code), c.Kind, c.Value, c.ExpiresAt, c.Active, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("code", c.Code).Msg("failed to create coupon")
		return fmt.Errorf("failed to create coupon: %w", err)
	}

	r.logger.Debug().Str("code", c.Code).Msg("coupon created successfully")
	return nil
}

// CreateBatch inserts many coupons, skipping codes that already exist.
func (r *couponRepository) CreateBatch(ctx context.Context, coupons []model.Coupon) (int, error) {
	if len(coupons) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO coupons (id, code, kind, value, expires_at, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (code) DO NOTHING
	`

	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin coupon batch transaction")
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, c := range coupons {
		batch.Queue(query, c.ID, strings.ToUpper(c.Code), c.Kind, c.Value, c.ExpiresAt, c.Active, c.CreatedAt, c.UpdatedAt)
	}

	results := tx.SendBatch(ctx, batch)

	inserted := 0
	for i := 0; i < len(coupons); i++ {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			r.logger.Error().Err(err).Str("code", coupons[i].Code).Msg("failed to insert coupon batch entry")
			return 0, fmt.Errorf("failed to insert coupon %s: %w", coupons[i].Code, err)
		}
		inserted += int(tag.RowsAffected())
	}

	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("failed to close coupon batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Msg("failed to commit coupon batch")
		return 0, fmt.Errorf("failed to commit coupon batch: %w", err)
	}

	r.logger.Info().
		Int("requested", len(coupons)).
		Int("inserted", inserted).
		Msg("coupon batch inserted")

	return inserted, nil
}

// Update replaces a coupon's mutable fields.
func (r *couponRepository) Update(ctx context.Context, c *model.Coupon) error {
	query := `
		UPDATE coupons
		SET kind = $2, value = $3, expires_at = $4, active = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, c.ID, c.Kind, c.Value, c.ExpiresAt, c.Active, c.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("coupon_id", c.ID.String()).Msg("failed to update coupon")
		return fmt.Errorf("failed to update coupon: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrCouponNotFound
	}

	return nil
}

// Delete removes a coupon.
func (r *couponRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("coupon_id", id.String()).Msg("failed to delete coupon")
		return fmt.Errorf("failed to delete coupon: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrCouponNotFound
	}

	return nil
}

// HasRedeemed reports whether the user appears in the coupon's used-by set.
func (r *couponRepository) HasRedeemed(ctx context.Context, couponID uuid.UUID, userID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM coupon_redemptions
			WHERE coupon_id = $1 AND user_id = $2
		)
	`

	var redeemed bool
	err := r.db.QueryRow(ctx, query, couponID, userID).Scan(&redeemed)
	if err != nil {
		r.logger.Error().Err(err).
			Str("coupon_id", couponID.String()).
			Str("user_id", userID).
			Msg("failed to check coupon redemption")
		return false, fmt.Errorf("failed to check coupon redemption: %w", err)
	}

	return redeemed, nil
}

// MarkRedeemed appends the user to the coupon's used-by set. ON CONFLICT
// DO NOTHING makes the add idempotent under concurrent duplicate commits.
func (r *couponRepository) MarkRedeemed(ctx context.Context, couponID uuid.UUID, userID string) error {
	query := `
		INSERT INTO coupon_redemptions (coupon_id, user_id, redeemed_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (coupon_id, user_id) DO NOTHING
	`

	_, err := r.db.Exec(ctx, query, couponID, userID)
	if err != nil {
		r.logger.Error().Err(err).
			Str("coupon_id", couponID.String()).
			Str("user_id", userID).
			Msg("failed to mark coupon redeemed")
		return fmt.Errorf("failed to mark coupon redeemed: %w", err)
	}

	r.logger.Debug().
		Str("coupon_id", couponID.String()).
		Str("user_id", userID).
		Msg("coupon marked redeemed")

	return nil
}
