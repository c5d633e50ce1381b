package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_CreateIntent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "28000", r.PostForm.Get("amount"))
		assert.Equal(t, "cop", r.PostForm.Get("currency"))
		assert.Equal(t, "cus_1", r.PostForm.Get("customer"))
		assert.Equal(t, "user-1", r.PostForm.Get("metadata[userId]"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "pi_1", "client_secret": "pi_1_secret", "amount": 28000}`))
	}))
	defer server.Close()

	client, err := NewHTTPClient(server.URL, "sk_test", 5*time.Second, zerolog.Nop())
	require.NoError(t, err)

	intent, err := client.CreateIntent(context.Background(), CreateIntentParams{
		Amount:     28000,
		Currency:   "cop",
		CustomerID: "cus_1",
		Metadata:   map[string]string{"userId": "user-1"},
	})

	require.NoError(t, err)
	assert.Equal(t, "pi_1", intent.ID)
	assert.Equal(t, "pi_1_secret", intent.ClientSecret)
	assert.Equal(t, int64(28000), intent.Amount)
}

func TestHTTPClient_GetCustomer_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, err := NewHTTPClient(server.URL, "sk_test", 5*time.Second, zerolog.Nop())
	require.NoError(t, err)

	_, err = client.GetCustomer(context.Background(), "cus_gone")
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}

func TestHTTPClient_CreateCustomer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/customers", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "user-1", r.PostForm.Get("metadata[userId]"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "cus_new"}`))
	}))
	defer server.Close()

	client, err := NewHTTPClient(server.URL, "sk_test", 5*time.Second, zerolog.Nop())
	require.NoError(t, err)

	customer, err := client.CreateCustomer(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "cus_new", customer.ID)
}

func TestHTTPClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": {"message": "boom"}}`))
	}))
	defer server.Close()

	client, err := NewHTTPClient(server.URL, "sk_test", 5*time.Second, zerolog.Nop())
	require.NoError(t, err)

	_, err = client.CreateIntent(context.Background(), CreateIntentParams{Amount: 1000, Currency: "cop"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCustomerNotFound)
}

func TestNewHTTPClient_RejectsRelativeURL(t *testing.T) {
	_, err := NewHTTPClient("not-a-url", "sk_test", 5*time.Second, zerolog.Nop())
	assert.Error(t, err)
}
