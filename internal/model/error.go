package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeProductNotFound   = "PRODUCT_NOT_FOUND"
	ErrCodeCouponNotFound    = "COUPON_NOT_FOUND"
	ErrCodeOrderNotFound     = "ORDER_NOT_FOUND"
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
	ErrCodeCouponInactive    = "COUPON_INACTIVE"
	ErrCodeCouponExpired     = "COUPON_EXPIRED"
	ErrCodeCouponUsed        = "COUPON_ALREADY_USED"
	ErrCodeInvalidQuantity   = "INVALID_QUANTITY"
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	ErrCodeTotalMismatch     = "TOTAL_MISMATCH"
	ErrCodeAmountTooSmall    = "AMOUNT_TOO_SMALL"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeBadSignature      = "SIGNATURE_INVALID"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// DomainError is a business-rule error that maps to a 4xx response.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrProductNotFound   = NewDomainError(ErrCodeProductNotFound, "One or more products not found")
	ErrCouponNotFound    = NewDomainError(ErrCodeCouponNotFound, "Coupon code not found")
	ErrOrderNotFound     = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrInsufficientStock = NewDomainError(ErrCodeInsufficientStock, "Insufficient stock available")
	ErrCouponInactive    = NewDomainError(ErrCodeCouponInactive, "Coupon is no longer active")
	ErrCouponExpired     = NewDomainError(ErrCodeCouponExpired, "Coupon has expired")
	ErrCouponUsed        = NewDomainError(ErrCodeCouponUsed, "Coupon has already been redeemed by this user")
	ErrInvalidQuantity   = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrInvalidTransition = NewDomainError(ErrCodeInvalidTransition, "Invalid order status transition")
	ErrTotalMismatch     = NewDomainError(ErrCodeTotalMismatch, "Submitted total does not match computed total")
	ErrAmountTooSmall    = NewDomainError(ErrCodeAmountTooSmall, "Order total is below the minimum payable amount")
)
