package entitlements

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBillingClient(t *testing.T, url string) *BillingClient {
	t.Helper()
	c, err := NewBillingClient(BillingClientConfig{
		BaseURL:      url,
		APIKey:       "sk_test",
		RetryMax:     2,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 5 * time.Millisecond,
	})
	require.NoError(t, err)
	return c
}

func TestBillingClient_PurchaseRetriesReuseIdempotencyKey(t *testing.T) {
	var attempts atomic.Int32
	var mu sync.Mutex
	var keys []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/purchases", r.URL.Path)
		mu.Lock()
		keys = append(keys, r.Header.Get("Idempotency-Key"))
		mu.Unlock()
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))

		var body purchaseRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "racer_monthly", body.ProductID)

		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"transaction_id":"tx_1","product_id":"racer_monthly","purchased_at":"2026-06-01T00:00:00Z","expires_at":"2026-07-01T00:00:00Z","is_trial":true}`))
	}))
	defer srv.Close()

	tx, err := newTestBillingClient(t, srv.URL).Purchase(context.Background(), testUserID, "racer_monthly")
	require.NoError(t, err)
	assert.Equal(t, "tx_1", tx.ID)
	assert.True(t, tx.IsTrial)
	require.NotNil(t, tx.ExpiresAt)
	assert.Equal(t, 7, int(tx.ExpiresAt.Month()))
	assert.Equal(t, int32(2), attempts.Load())

	require.Len(t, keys, 2)
	assert.NotEmpty(t, keys[0])
	assert.Equal(t, keys[0], keys[1], "a retried purchase must carry the same idempotency key")

	// A new purchase gets a fresh key
	_, err = newTestBillingClient(t, srv.URL).Purchase(context.Background(), testUserID, "racer_monthly")
	require.NoError(t, err)
	require.Len(t, keys, 3)
	assert.NotEqual(t, keys[0], keys[2])
}

func TestBillingClient_ListTransactionsSendsNoIdempotencyKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Idempotency-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"transactions":[]}`))
	}))
	defer srv.Close()

	txs, err := newTestBillingClient(t, srv.URL).ListTransactions(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestBillingClient_ClientErrorsAreNotRetried(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":"PaymentDeclined","message":"card declined"}`))
	}))
	defer srv.Close()

	_, err := newTestBillingClient(t, srv.URL).Purchase(context.Background(), testUserID, "racer_monthly")
	require.Error(t, err)

	var be *BillingError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, http.StatusPaymentRequired, be.StatusCode)
	assert.Equal(t, "card declined", be.Message)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestBillingClient_ConflictMeansCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	_, err := newTestBillingClient(t, srv.URL).Purchase(context.Background(), testUserID, "racer_monthly")
	assert.ErrorIs(t, err, ErrPurchaseCancelled)
}

func TestBillingClient_ListTransactions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/subscribers/"+testUserID+"/transactions", r.URL.Path)
		_, _ = w.Write([]byte(`{"transactions":[{"transaction_id":"a","product_id":"pro_yearly","purchased_at":"2026-01-01T00:00:00Z"}]}`))
	}))
	defer srv.Close()

	txs, err := newTestBillingClient(t, srv.URL+"/").ListTransactions(context.Background(), testUserID)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "pro_yearly", txs[0].ProductID)
	assert.Nil(t, txs[0].ExpiresAt)
}

func TestNewBillingClient_RejectsBadURL(t *testing.T) {
	_, err := NewBillingClient(BillingClientConfig{BaseURL: "billing.local"})
	assert.Error(t, err)
}

func TestDisabledBilling(t *testing.T) {
	_, err := DisabledBilling{}.Purchase(context.Background(), "u1", "pro_monthly")
	require.Error(t, err)
	assert.True(t, IsBillingError(err))

	_, err = DisabledBilling{}.ListTransactions(context.Background(), "u1")
	assert.True(t, IsBillingError(err))
}
