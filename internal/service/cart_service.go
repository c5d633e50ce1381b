package service

import (
	"context"
	"fmt"

	"tienda/internal/model"
	"tienda/internal/repository"

	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// Get retrieves a user's cart.
func (s *cartService) Get(ctx context.Context, userID string) (*model.Cart, error) {
	cart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to get cart")
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return cart, nil
}

// Replace overwrites the cart's contents after validating items. The
// cart is staging only: stock is not reserved here, and checkout
// revalidates everything.
func (s *cartService) Replace(ctx context.Context, userID string, req *model.ReplaceCartRequest) (*model.Cart, error) {
	if req == nil {
		return nil, model.NewDomainError(model.ErrCodeValidation, "cart request is required")
	}

	ids := make([]string, 0, len(req.Items))
	seen := make(map[string]bool, len(req.Items))
	for _, item := range req.Items {
		if item.ProductID == "" {
			return nil, model.NewDomainError(model.ErrCodeValidation, "cart item product ID is required")
		}
		if item.Quantity < 1 {
			return nil, model.ErrInvalidQuantity
		}
		if seen[item.ProductID] {
			return nil, model.NewDomainError(model.ErrCodeValidation, "cart items must reference distinct products")
		}
		seen[item.ProductID] = true
		ids = append(ids, item.ProductID)
	}

	if len(ids) > 0 {
		products, err := s.productRepo.GetByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to validate cart products: %w", err)
		}
		if len(products) != len(ids) {
			return nil, model.ErrProductNotFound
		}
	}

	if err := s.cartRepo.Replace(ctx, userID, req.Items); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to replace cart")
		return nil, fmt.Errorf("failed to replace cart: %w", err)
	}

	return s.cartRepo.Get(ctx, userID)
}

// Clear empties the cart.
func (s *cartService) Clear(ctx context.Context, userID string) error {
	if err := s.cartRepo.Clear(ctx, userID); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
