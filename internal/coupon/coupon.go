package coupon

import (
	"context"
)

// CodeSet holds a batch of normalised coupon codes read from a code file.
type CodeSet interface {
	// Contains checks if a coupon code exists in the set.
	Contains(code string) bool

	// Size returns the number of codes in the set.
	Size() int

	// Codes returns all codes in the set.
	Codes() []string
}

// Loader defines the interface for loading gzipped coupon code files,
// one code per line. Used by the admin bulk-import flow.
type Loader interface {
	Load(ctx context.Context, filePath string) (CodeSet, error)
}
