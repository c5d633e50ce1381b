package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tienda/internal/coupon"
	"tienda/internal/model"
	"tienda/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// couponService implements CouponService.
type couponService struct {
	couponRepo repository.CouponRepository
	loader     coupon.Loader
	logger     zerolog.Logger
	now        func() time.Time
}

// NewCouponService creates a new coupon service. The loader backs the
// bulk-import flow and may be nil when import is not wired.
func NewCouponService(
	couponRepo repository.CouponRepository,
	loader coupon.Loader,
	logger zerolog.Logger,
) CouponService {
	return &couponService{
		couponRepo: couponRepo,
		loader:     loader,
		logger:     logger.With().Str("service", "coupon").Logger(),
		now:        time.Now,
	}
}

// Validate checks a coupon for the given user and subtotal and computes
// the discount. Pure read: the used-by set is only written at order
// materialisation time.
func (s *couponService) Validate(ctx context.Context, code, userID string, subtotal int64) (int64, *model.Coupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return 0, nil, model.ErrCouponNotFound
	}

	c, err := s.couponRepo.GetByCode(ctx, code)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to validate coupon: %w", err)
	}
	if c == nil {
		s.logger.Debug().Str("code", code).Msg("coupon not found")
		return 0, nil, model.ErrCouponNotFound
	}

	// Expiry wins over every other state: an expired coupon is rejected
	// as expired even if it is still flagged active.
	if c.ExpiresAt != nil && c.ExpiresAt.Before(s.now()) {
		s.logger.Debug().Str("code", code).Time("expires_at", *c.ExpiresAt).Msg("coupon expired")
		return 0, nil, model.ErrCouponExpired
	}

	if !c.Active {
		s.logger.Debug().Str("code", code).Msg("coupon inactive")
		return 0, nil, model.ErrCouponInactive
	}

	redeemed, err := s.couponRepo.HasRedeemed(ctx, c.ID, userID)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to validate coupon: %w", err)
	}
	if redeemed {
		s.logger.Debug().Str("code", code).Str("user_id", userID).Msg("coupon already redeemed by user")
		return 0, nil, model.ErrCouponUsed
	}

	discount := ComputeDiscount(c, subtotal)

	s.logger.Debug().
		Str("code", code).
		Int64("subtotal", subtotal).
		Int64("discount", discount).
		Msg("coupon validated")

	return discount, c, nil
}

// ComputeDiscount returns the discount a coupon yields on a subtotal,
// clamped so the discount never exceeds the subtotal.
func ComputeDiscount(c *model.Coupon, subtotal int64) int64 {
	if subtotal <= 0 {
		return 0
	}

	var discount int64
	switch c.Kind {
	case model.CouponKindPercentage:
		// Round half up, integer arithmetic only (COP has no subunits).
		discount = (subtotal*c.Value + 50) / 100
	case model.CouponKindFixed:
		discount = c.Value
	}

	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}

// GetAll retrieves all coupons with pagination.
func (s *couponService) GetAll(ctx context.Context, limit, offset int) ([]model.Coupon, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	coupons, err := s.couponRepo.GetAll(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list coupons")
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}

	return coupons, nil
}

// Create adds a new coupon.
func (s *couponService) Create(ctx context.Context, req *model.CouponRequest) (*model.Coupon, error) {
	if err := validateCouponBounds(req.Kind, req.Value); err != nil {
		return nil, err
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, model.NewDomainError(model.ErrCodeValidation, "coupon code is required")
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := s.now()
	c := &model.Coupon{
		ID:        uuid.New(),
		Code:      code,
		Kind:      req.Kind,
		Value:     req.Value,
		ExpiresAt: req.ExpiresAt,
		Active:    active,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.couponRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}

	s.logger.Info().Str("code", c.Code).Str("kind", c.Kind).Msg("coupon created")
	return c, nil
}

// Patch applies a partial update to a coupon.
func (s *couponService) Patch(ctx context.Context, id uuid.UUID, patch *model.CouponPatch) (*model.Coupon, error) {
	c, err := s.couponRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load coupon: %w", err)
	}
	if c == nil {
		return nil, model.ErrCouponNotFound
	}

	if patch.Kind != nil {
		c.Kind = *patch.Kind
	}
	if patch.Value != nil {
		c.Value = *patch.Value
	}
	if patch.ExpiresAt != nil {
		c.ExpiresAt = patch.ExpiresAt
	}
	if patch.Active != nil {
		c.Active = *patch.Active
	}

	if err := validateCouponBounds(c.Kind, c.Value); err != nil {
		return nil, err
	}

	c.UpdatedAt = s.now()
	if err := s.couponRepo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update coupon: %w", err)
	}

	s.logger.Info().Str("code", c.Code).Msg("coupon updated")
	return c, nil
}

// Delete removes a coupon.
func (s *couponService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.couponRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("coupon_id", id.String()).Msg("coupon deleted")
	return nil
}

// Import bulk-creates coupons from a gzipped code file.
func (s *couponService) Import(ctx context.Context, req *model.CouponImportRequest) (*model.CouponImportResponse, error) {
	if s.loader == nil {
		return nil, fmt.Errorf("coupon import is not configured")
	}

	if err := validateCouponBounds(req.Kind, req.Value); err != nil {
		return nil, err
	}
	if req.FilePath == "" {
		return nil, model.NewDomainError(model.ErrCodeValidation, "file path is required")
	}

	set, err := s.loader.Load(ctx, req.FilePath)
	if err != nil {
		s.logger.Error().Err(err).Str("file", req.FilePath).Msg("failed to load coupon code file")
		return nil, fmt.Errorf("failed to load coupon code file: %w", err)
	}

	now := s.now()
	codes := set.Codes()
	coupons := make([]model.Coupon, 0, len(codes))
	for _, code := range codes {
		coupons = append(coupons, model.Coupon{
			ID:        uuid.New(),
			Code:      code,
			Kind:      req.Kind,
			Value:     req.Value,
			ExpiresAt: req.ExpiresAt,
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	inserted, err := s.couponRepo.CreateBatch(ctx, coupons)
	if err != nil {
		return nil, fmt.Errorf("failed to import coupons: %w", err)
	}

	s.logger.Info().
		Str("file", req.FilePath).
		Int("imported", inserted).
		Int("skipped", len(coupons)-inserted).
		Msg("coupon import completed")

	return &model.CouponImportResponse{
		Imported: inserted,
		Skipped:  len(coupons) - inserted,
	}, nil
}

// validateCouponBounds enforces the discount bounds: percentage 1-100,
// fixed amount at least 1.
func validateCouponBounds(kind string, value int64) error {
	switch kind {
	case model.CouponKindPercentage:
		if value < 1 || value > 100 {
			return model.NewDomainError(model.ErrCodeValidation, "percentage value must be between 1 and 100")
		}
	case model.CouponKindFixed:
		if value < 1 {
			return model.NewDomainError(model.ErrCodeValidation, "fixed value must be at least 1")
		}
	default:
		return model.NewDomainError(model.ErrCodeValidation, "coupon kind must be percentage or fixed")
	}
	return nil
}
