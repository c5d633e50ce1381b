package model

import "time"

// User mirrors an externally-authenticated identity. The ID is the
// identity provider's subject; ProviderCustomerID is the lazily-created
// payment-provider customer reference reused across checkouts.
type User struct {
	ID                 string    `json:"id" db:"id"`
	ProviderCustomerID *string   `json:"-" db:"provider_customer_id"`
	CreatedAt          time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time `json:"updatedAt" db:"updated_at"`
}
