package main

import (
	"compress/gzip"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Generates a sample gzip code file for the coupon bulk-import flow.
// Usage: go run ./scripts/gencodes [output-path]
func main() {
	outPath := filepath.Join("data", "coupons", "codes.gz")
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}

	codes := []string{
		"BIENVENIDO10",
		"ENVIOGRATIS",
		"PROMO15",
		"VERANO2026",
		"NAVIDAD2026",
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		log.Fatalf("failed to create directory: %v", err)
	}

	if err := writeCodeFile(outPath, codes); err != nil {
		log.Fatalf("failed to create %s: %v", outPath, err)
	}

	fmt.Printf("Created %s with %d codes\n", outPath, len(codes))
}

func writeCodeFile(path string, codes []string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gz := gzip.NewWriter(file)
	defer gz.Close()

	for _, code := range codes {
		if _, err := fmt.Fprintln(gz, code); err != nil {
			return fmt.Errorf("failed to write code: %w", err)
		}
	}

	return gz.Close()
}
