package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tienda/internal/auth"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(t *testing.T, wantPrincipal *auth.Principal) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wantPrincipal != nil {
			p, ok := PrincipalFromContext(r.Context())
			require.True(t, ok)
			assert.Equal(t, *wantPrincipal, p)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestBearerAuth_ValidToken(t *testing.T) {
	tokens := auth.NewTokenStrategy("secret", time.Hour)
	token, err := tokens.IssueToken(auth.Principal{UserID: "user-1", IsAdmin: true})
	require.NoError(t, err)

	want := auth.Principal{UserID: "user-1", IsAdmin: true}
	handler := BearerAuth(tokens, zerolog.Nop())(okHandler(t, &want))

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBearerAuth_MissingToken(t *testing.T) {
	tokens := auth.NewTokenStrategy("secret", time.Hour)
	handler := BearerAuth(tokens, zerolog.Nop())(okHandler(t, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerAuth_InvalidToken(t *testing.T) {
	tokens := auth.NewTokenStrategy("secret", time.Hour)
	handler := BearerAuth(tokens, zerolog.Nop())(okHandler(t, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerAuth_ExemptsHealthAndWebhooks(t *testing.T) {
	tokens := auth.NewTokenStrategy("secret", time.Hour)
	handler := BearerAuth(tokens, zerolog.Nop())(okHandler(t, nil))

	for _, path := range []string{"/health", "/api/webhooks/payment"} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, "path %s", path)
	}
}

func TestRequireAdmin(t *testing.T) {
	handler := RequireAdmin(zerolog.Nop())(okHandler(t, nil))

	// Admin passes.
	req := httptest.NewRequest(http.MethodPost, "/api/products", nil)
	req = req.WithContext(ContextWithPrincipal(req.Context(), auth.Principal{UserID: "a", IsAdmin: true}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Plain user is rejected.
	req = httptest.NewRequest(http.MethodPost, "/api/products", nil)
	req = req.WithContext(ContextWithPrincipal(req.Context(), auth.Principal{UserID: "u"}))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// No principal at all is rejected.
	req = httptest.NewRequest(http.MethodPost, "/api/products", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRecovery(t *testing.T) {
	handler := Recovery(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCORS_Preflight(t *testing.T) {
	handler := CORS(okHandler(t, nil))

	req := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
