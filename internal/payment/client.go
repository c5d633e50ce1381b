package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrCustomerNotFound indicates the provider no longer knows the stored
// customer reference.
var ErrCustomerNotFound = errors.New("payment customer not found")

// Intent is a provider payment intent as returned to the checkout flow.
type Intent struct {
	ID           string
	ClientSecret string
	Amount       int64
}

// Customer is a provider customer record.
type Customer struct {
	ID string
}

// CreateIntentParams carries everything the provider needs to create a
// payment intent. Metadata is opaque to the provider and round-trips back
// on webhook events.
type CreateIntentParams struct {
	Amount     int64
	Currency   string
	CustomerID string
	Metadata   map[string]string
}

// Client exposes the payment-provider operations the checkout flow needs.
type Client interface {
	// CreateCustomer registers a new customer with the provider.
	CreateCustomer(ctx context.Context, userID string) (*Customer, error)

	// GetCustomer verifies a stored customer reference is still valid
	// upstream. Returns ErrCustomerNotFound if the provider dropped it.
	GetCustomer(ctx context.Context, customerID string) (*Customer, error)

	// CreateIntent requests a payment intent for the given amount.
	CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error)
}

// HTTPClient implements Client against the provider's REST API with a
// bounded request timeout. A timeout here fails the checkout request; the
// client may retry since no side effect was committed.
type HTTPClient struct {
	baseURL    *url.URL
	secretKey  string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewHTTPClient creates a provider client with the given timeout.
func NewHTTPClient(baseURL, secretKey string, timeout time.Duration, logger zerolog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse payment provider url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("payment provider url must be absolute")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL:   parsed,
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With().Str("component", "payment-client").Logger(),
	}, nil
}

type customerResponse struct {
	ID string `json:"id"`
}

type intentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
}

// CreateCustomer registers a new customer with the provider.
func (c *HTTPClient) CreateCustomer(ctx context.Context, userID string) (*Customer, error) {
	form := url.Values{}
	form.Set("metadata[userId]", userID)

	var data customerResponse
	if err := c.do(ctx, http.MethodPost, "/v1/customers", form, &data); err != nil {
		return nil, err
	}
	return &Customer{ID: data.ID}, nil
}

// GetCustomer verifies a stored customer reference is still valid upstream.
func (c *HTTPClient) GetCustomer(ctx context.Context, customerID string) (*Customer, error) {
	var data customerResponse
	err := c.do(ctx, http.MethodGet, path.Join("/v1/customers", customerID), nil, &data)
	if err != nil {
		return nil, err
	}
	return &Customer{ID: data.ID}, nil
}

// CreateIntent requests a payment intent for the given amount.
func (c *HTTPClient) CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(params.Amount, 10))
	form.Set("currency", params.Currency)
	if params.CustomerID != "" {
		form.Set("customer", params.CustomerID)
	}
	for k, v := range params.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	var data intentResponse
	if err := c.do(ctx, http.MethodPost, "/v1/payment_intents", form, &data); err != nil {
		return nil, err
	}
	return &Intent{ID: data.ID, ClientSecret: data.ClientSecret, Amount: data.Amount}, nil
}

// do performs a form-encoded provider request and decodes the JSON
// response into out.
func (c *HTTPClient) do(ctx context.Context, method, endpoint string, form url.Values, out any) error {
	target := *c.baseURL
	target.Path = path.Join(target.Path, endpoint)

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, out)
	case resp.StatusCode == http.StatusNotFound:
		return ErrCustomerNotFound
	default:
		raw, _ := io.ReadAll(resp.Body)
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("endpoint", endpoint).
			Str("body", string(raw)).
			Msg("payment provider request failed")
		return fmt.Errorf("payment provider error: %s", resp.Status)
	}
}
