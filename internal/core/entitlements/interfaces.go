package entitlements

import (
	"context"
	"time"
)

// Service gates paid features behind the user's entitlement
type Service interface {
	ListProducts() []Product
	GetEntitlement(ctx context.Context, userID string) (*Entitlement, error)

	// PurchaseProduct never returns an error; failures are reported in the result.
	// Only one purchase per user may be in flight.
	PurchaseProduct(ctx context.Context, userID, productID string) PurchaseResult

	// RestorePurchases reconciles the stored entitlement with the provider's history
	RestorePurchases(ctx context.Context, userID string) (*Entitlement, error)

	// SweepExpired deactivates every entitlement whose expiry has passed
	SweepExpired(ctx context.Context) (int64, error)
}

// Repository defines the data access interface for entitlements
type Repository interface {
	Get(ctx context.Context, userID string) (*Entitlement, error)
	Upsert(ctx context.Context, e *Entitlement) error
	ExpireLapsed(ctx context.Context, now time.Time) (int64, error)
}

// BillingProvider is the platform store that takes payment
type BillingProvider interface {
	Purchase(ctx context.Context, userID, productID string) (*Transaction, error)
	ListTransactions(ctx context.Context, userID string) ([]Transaction, error)
}
