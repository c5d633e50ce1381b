package model

import (
	"time"

	"github.com/google/uuid"
)

// Coupon discount kinds.
const (
	CouponKindPercentage = "percentage"
	CouponKindFixed      = "fixed"
)

// Coupon represents a promotional discount code. Codes are stored
// uppercase; lookups normalise before querying.
type Coupon struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Code      string     `json:"code" db:"code"`
	Kind      string     `json:"kind" db:"kind"`
	Value     int64      `json:"value" db:"value"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty" db:"expires_at"`
	Active    bool       `json:"active" db:"active"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
}

// CouponRequest represents the payload for creating a coupon.
type CouponRequest struct {
	Code      string     `json:"code"`
	Kind      string     `json:"kind"`
	Value     int64      `json:"value"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Active    *bool      `json:"active,omitempty"`
}

// CouponPatch represents a partial update to a coupon. Nil fields are
// left unchanged.
type CouponPatch struct {
	Kind      *string    `json:"kind,omitempty"`
	Value     *int64     `json:"value,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Active    *bool      `json:"active,omitempty"`
}

// ValidateCouponRequest represents the payload for the pure-read coupon
// validation endpoint.
type ValidateCouponRequest struct {
	Code     string `json:"code"`
	Subtotal int64  `json:"subtotal"`
}

// ValidateCouponResponse carries the computed discount for a valid coupon.
type ValidateCouponResponse struct {
	Code     string `json:"code"`
	Kind     string `json:"kind"`
	Value    int64  `json:"value"`
	Discount int64  `json:"discount"`
}

// CouponImportRequest represents the payload for bulk-importing coupon
// codes from a gzipped code file.
type CouponImportRequest struct {
	FilePath  string     `json:"filePath"`
	Kind      string     `json:"kind"`
	Value     int64      `json:"value"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// CouponImportResponse reports the outcome of a bulk import.
type CouponImportResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}
