package handler

import (
	"net/http"
	"strings"

	"tienda/internal/middleware"
	"tienda/internal/model"
	"tienda/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CouponHandler handles coupon-related HTTP requests.
type CouponHandler struct {
	service service.CouponService
	logger  zerolog.Logger
}

// NewCouponHandler creates a new coupon handler.
func NewCouponHandler(service service.CouponService, logger zerolog.Logger) *CouponHandler {
	return &CouponHandler{
		service: service,
		logger:  logger.With().Str("handler", "coupon").Logger(),
	}
}

// Validate handles POST /api/coupons/validate requests. Validation is a
// pure read: no usage is recorded until an order materialises.
func (h *CouponHandler) Validate(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "authentication required", h.logger)
		return
	}

	var req model.ValidateCouponRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	discount, coupon, err := h.service.Validate(r.Context(), req.Code, principal.UserID, req.Subtotal)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.ValidateCouponResponse{
		Code:     coupon.Code,
		Kind:     coupon.Kind,
		Value:    coupon.Value,
		Discount: discount,
	})
}

// GetAll handles GET /api/coupons requests (admin).
func (h *CouponHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := parsePagination(r, 20)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	coupons, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, coupons)
}

// Create handles POST /api/coupons requests (admin).
func (h *CouponHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CouponRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	coupon, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, coupon)
}

// Patch handles PATCH /api/coupons/{id} requests (admin).
func (h *CouponHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, err := couponIDFromPath(r)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	var patch model.CouponPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	coupon, err := h.service.Patch(r.Context(), id, &patch)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, coupon)
}

// Delete handles DELETE /api/coupons/{id} requests (admin).
func (h *CouponHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := couponIDFromPath(r)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Import handles POST /api/coupons/import requests (admin).
func (h *CouponHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req model.CouponImportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	result, err := h.service.Import(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func couponIDFromPath(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimPrefix(r.URL.Path, "/api/coupons/")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, model.NewDomainError(model.ErrCodeValidation, "invalid coupon ID")
	}
	return id, nil
}
