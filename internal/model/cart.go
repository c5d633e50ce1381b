package model

import "time"

// Cart is the pre-order staging area for a user. It is keyed by user
// identifier; checkout consumes its shape but reads nothing back from it
// after intent creation.
type Cart struct {
	UserID    string     `json:"userId" db:"user_id"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
}

// CartItem is a (product, quantity) pair staged in a cart.
type CartItem struct {
	ProductID string `json:"productId" db:"product_id"`
	Quantity  int    `json:"quantity" db:"quantity"`
}

// ReplaceCartRequest replaces the full contents of a cart.
type ReplaceCartRequest struct {
	Items []CartItem `json:"items"`
}
