package handler

import (
	"net/http"

	"tienda/internal/middleware"
	"tienda/internal/model"
	"tienda/internal/service"

	"github.com/rs/zerolog"
)

// CheckoutHandler handles payment-intent creation requests.
type CheckoutHandler struct {
	service service.CheckoutService
	logger  zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(service service.CheckoutService, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger.With().Str("handler", "checkout").Logger(),
	}
}

// CreateIntent handles POST /api/payment/create-intent requests. Prices are
// resolved from the catalogue server-side, so a tampered client price
// never reaches the provider.
func (h *CheckoutHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "authentication required", h.logger)
		return
	}

	var req model.CreateIntentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	resp, err := h.service.BuildIntent(r.Context(), principal.UserID, &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}
