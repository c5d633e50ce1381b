package coupon

import (
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestCodeFile creates a gzipped test code file.
func createTestCodeFile(t *testing.T, filename string, codes []string) string {
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, filename)

	file, err := os.Create(filePath)
	require.NoError(t, err)
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	for _, code := range codes {
		_, err := gzipWriter.Write([]byte(code + "\n"))
		require.NoError(t, err)
	}

	return filePath
}

func TestFileLoader_Load_Success(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	testCodes := []string{
		"PROMO2026A",
		"PROMO2026B",
		"ENVIOGRATIS",
		"DESCUENTO10",
	}

	filePath := createTestCodeFile(t, "test_codes.gz", testCodes)

	set, err := loader.Load(context.Background(), filePath)

	require.NoError(t, err)
	require.NotNil(t, set)
	assert.Equal(t, 4, set.Size())

	for _, code := range testCodes {
		assert.True(t, set.Contains(code), "expected code %s to be present", code)
	}
}

func TestFileLoader_Load_NormalisesToUppercase(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	filePath := createTestCodeFile(t, "mixed_case.gz", []string{"promo10", "  Envio5  ", ""})

	set, err := loader.Load(context.Background(), filePath)

	require.NoError(t, err)
	assert.Equal(t, 2, set.Size())
	assert.True(t, set.Contains("PROMO10"))
	assert.True(t, set.Contains("ENVIO5"))
	assert.False(t, set.Contains("promo10"))
}

func TestFileLoader_Load_MissingFile(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	_, err := loader.Load(context.Background(), "/nonexistent/codes.gz")
	assert.Error(t, err)
}

func TestFileLoader_Load_NotGzipped(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "plain.txt")
	require.NoError(t, os.WriteFile(filePath, []byte("PROMO10\n"), 0o644))

	_, err := loader.Load(context.Background(), filePath)
	assert.Error(t, err)
}

func TestFallbackLoader_UsesFileLoaderWhenS3Disabled(t *testing.T) {
	fileLoader := NewFileLoader(zerolog.Nop())
	loader := NewFallbackLoader(nil, fileLoader, "coupons/", false, zerolog.Nop())

	filePath := createTestCodeFile(t, "fallback.gz", []string{"CODE1"})

	set, err := loader.Load(context.Background(), filePath)
	require.NoError(t, err)
	assert.True(t, set.Contains("CODE1"))
}

func TestCodeSet(t *testing.T) {
	set := NewCodeSetFrom("A", "B", "B")

	assert.Equal(t, 2, set.Size())
	assert.True(t, set.Contains("A"))
	assert.False(t, set.Contains("C"))
	assert.ElementsMatch(t, []string{"A", "B"}, set.Codes())
}
