package entitlement

import (
	"errors"
	"net/http"

	"Regatta/internal/api/handlers"
	"Regatta/internal/api/middleware"
	"Regatta/internal/core/entitlements"
)

// Handler serves the product catalogue and the caller's entitlement
type Handler struct {
	service entitlements.Service
}

// NewHandler creates a new entitlement handler
func NewHandler(service entitlements.Service) *Handler {
	return &Handler{service: service}
}

// PurchaseInput is the body of a purchase request
type PurchaseInput struct {
	ProductID string `json:"productId"`
}

// HandleListProducts returns the pricing catalogue
// GET /api/v1/products
func (h *Handler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, http.StatusOK, map[string]interface{}{"products": h.service.ListProducts()})
}

// HandleGet returns the caller's current entitlement
// GET /api/v1/entitlement
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ent, err := h.service.GetEntitlement(r.Context(), middleware.GetUserID(r))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, ent)
}

// HandlePurchase buys a product. The result reports failure in its body;
// a purchase already in flight for the caller answers 409.
// POST /api/v1/entitlement/purchase
func (h *Handler) HandlePurchase(w http.ResponseWriter, r *http.Request) {
	var in PurchaseInput
	if err := handlers.DecodeJSON(r, &in); err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}

	result := h.service.PurchaseProduct(r.Context(), middleware.GetUserID(r), in.ProductID)

	status := http.StatusOK
	switch result.Reason {
	case entitlements.ReasonPurchaseInProgress:
		status = http.StatusConflict
	case entitlements.ReasonUnauthorized:
		status = http.StatusUnauthorized
	case entitlements.ReasonUnknownProduct:
		status = http.StatusBadRequest
	}
	handlers.WriteJSON(w, status, result)
}

// HandleRestore reconciles the caller's entitlement with prior store transactions
// POST /api/v1/entitlement/restore
func (h *Handler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	ent, err := h.service.RestorePurchases(r.Context(), middleware.GetUserID(r))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, ent)
}

// handleServiceError maps service errors to HTTP responses
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, entitlements.ErrUnauthorized):
		handlers.WriteAuthRequired(w)

	case entitlements.IsBillingError(err):
		handlers.WriteError(w, http.StatusBadGateway, "BillingUnavailable", "The store could not be reached. Try again shortly.")

	default:
		handlers.WriteInternalError(w, r, err)
	}
}
