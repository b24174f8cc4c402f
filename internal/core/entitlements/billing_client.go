package entitlements

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
)

const maxBillingResponseBytes = 1 << 20

// BillingClientConfig configures the billing provider HTTP client
type BillingClientConfig struct {
	Logger       *slog.Logger
	BaseURL      string
	APIKey       string
	Timeout      time.Duration
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	RetryMax     int
}

// BillingClient talks to the billing provider's REST API.
// 5xx and 429 responses are retried with backoff; other errors are returned as *BillingError.
type BillingClient struct {
	client  *retryablehttp.Client
	baseURL string
	apiKey  string
}

type purchaseRequest struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
}

type transactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
}

type billingErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// NewBillingClient creates a billing client
func NewBillingClient(cfg BillingClientConfig) (*BillingClient, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid billing API URL %q", cfg.BaseURL)
	}

	client := retryablehttp.NewClient()
	client.HTTPClient.Timeout = 10 * time.Second
	if cfg.Timeout > 0 {
		client.HTTPClient.Timeout = cfg.Timeout
	}
	if cfg.RetryMax > 0 {
		client.RetryMax = cfg.RetryMax
	}
	if cfg.RetryWaitMin > 0 {
		client.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		client.RetryWaitMax = cfg.RetryWaitMax
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	client.Logger = logger

	return &BillingClient{
		client:  client,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
	}, nil
}

// Purchase charges the user for a product. One Idempotency-Key is minted per call
// and resent on every retry, so the provider charges at most once.
func (c *BillingClient) Purchase(ctx context.Context, userID, productID string) (*Transaction, error) {
	body, err := json.Marshal(purchaseRequest{UserID: userID, ProductID: productID})
	if err != nil {
		return nil, fmt.Errorf("failed to encode purchase: %w", err)
	}

	var tx Transaction
	if err := c.do(ctx, http.MethodPost, "/v1/purchases", body, uuid.NewString(), &tx); err != nil {
		return nil, err
	}
	if tx.ID == "" || tx.ProductID == "" {
		return nil, fmt.Errorf("billing provider returned an incomplete transaction")
	}
	return &tx, nil
}

// ListTransactions returns every transaction the provider has for the user
func (c *BillingClient) ListTransactions(ctx context.Context, userID string) ([]Transaction, error) {
	var resp transactionsResponse
	path := "/v1/subscribers/" + url.PathEscape(userID) + "/transactions"
	if err := c.do(ctx, http.MethodGet, path, nil, "", &resp); err != nil {
		return nil, err
	}
	return resp.Transactions, nil
}

func (c *BillingClient) do(ctx context.Context, method, path string, body []byte, idempotencyKey string, out interface{}) error {
	var reqBody interface{}
	if body != nil {
		reqBody = body
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create billing request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("billing request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBillingResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read billing response: %w", err)
	}

	if resp.StatusCode == http.StatusConflict {
		// The store reports a user-abandoned checkout as a conflict
		return ErrPurchaseCancelled
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody billingErrorBody
		_ = json.Unmarshal(raw, &errBody)
		msg := errBody.Message
		if msg == "" {
			msg = errBody.Error
		}
		return &BillingError{StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode billing response: %w", err)
	}
	return nil
}

// DisabledBilling is the provider used when no billing API is configured.
// Every call fails with a 503 BillingError.
type DisabledBilling struct{}

func (DisabledBilling) Purchase(ctx context.Context, userID, productID string) (*Transaction, error) {
	return nil, &BillingError{StatusCode: http.StatusServiceUnavailable, Message: "billing is not configured"}
}

func (DisabledBilling) ListTransactions(ctx context.Context, userID string) ([]Transaction, error) {
	return nil, &BillingError{StatusCode: http.StatusServiceUnavailable, Message: "billing is not configured"}
}
