package entitlement

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Regatta/internal/api/middleware"
	"Regatta/internal/core/entitlements"
)

const testUserID = "11111111-1111-4111-8111-111111111111"

type stubService struct {
	purchase entitlements.PurchaseResult
	restore  *entitlements.Entitlement
	err      error
}

func (s *stubService) ListProducts() []entitlements.Product { return entitlements.ListProducts() }

func (s *stubService) GetEntitlement(ctx context.Context, userID string) (*entitlements.Entitlement, error) {
	if userID == "" {
		return nil, entitlements.ErrUnauthorized
	}
	return &entitlements.Entitlement{UserID: userID, Tier: entitlements.TierFree}, nil
}

func (s *stubService) PurchaseProduct(ctx context.Context, userID, productID string) entitlements.PurchaseResult {
	return s.purchase
}

func (s *stubService) RestorePurchases(ctx context.Context, userID string) (*entitlements.Entitlement, error) {
	return s.restore, s.err
}

func (s *stubService) SweepExpired(ctx context.Context) (int64, error) { return 0, nil }

func purchase(t *testing.T, svc entitlements.Service, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/entitlement/purchase", bytes.NewBufferString(body))
	req = req.WithContext(middleware.SetTestUserID(req.Context(), testUserID))
	w := httptest.NewRecorder()
	NewHandler(svc).HandlePurchase(w, req)
	return w
}

func TestHandlePurchase_StatusFollowsReason(t *testing.T) {
	tests := []struct {
		name   string
		result entitlements.PurchaseResult
		want   int
	}{
		{"success", entitlements.PurchaseResult{Success: true, Entitlement: &entitlements.Entitlement{Tier: entitlements.TierRacer, IsActive: true}}, http.StatusOK},
		{"in progress", entitlements.PurchaseResult{Reason: entitlements.ReasonPurchaseInProgress}, http.StatusConflict},
		{"unknown product", entitlements.PurchaseResult{Reason: entitlements.ReasonUnknownProduct}, http.StatusBadRequest},
		{"billing error is still a 200 result", entitlements.PurchaseResult{Reason: entitlements.ReasonBillingError}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := purchase(t, &stubService{purchase: tt.result}, `{"productId":"racer_monthly"}`)
			assert.Equal(t, tt.want, w.Code)

			var got entitlements.PurchaseResult
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, tt.result.Success, got.Success)
			assert.Equal(t, tt.result.Reason, got.Reason)
		})
	}
}

func TestHandlePurchase_BadBody(t *testing.T) {
	w := purchase(t, &stubService{}, `{"product":"racer_monthly"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleRestore_BillingFailure(t *testing.T) {
	svc := &stubService{err: &entitlements.BillingError{Message: "down", StatusCode: 503}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/entitlement/restore", nil)
	req = req.WithContext(middleware.SetTestUserID(req.Context(), testUserID))
	w := httptest.NewRecorder()
	NewHandler(svc).HandleRestore(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestHandleListProducts(t *testing.T) {
	w := httptest.NewRecorder()
	NewHandler(&stubService{}).HandleListProducts(w, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Products []entitlements.Product `json:"products"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Products, 4)
}
