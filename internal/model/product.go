package model

import "time"

// Product represents a catalogue product. Price is in COP, which has no
// subunits, so amounts are plain integers.
type Product struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Price     int64     `json:"price" db:"price"`
	Category  string    `json:"category" db:"category"`
	Available int       `json:"available" db:"available"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// ProductRequest represents the payload for creating or updating a product.
type ProductRequest struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Category  string `json:"category"`
	Available int    `json:"available"`
}
