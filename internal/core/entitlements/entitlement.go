package entitlements

import "time"

// Subscription tiers, lowest first
const (
	TierFree  = "free"
	TierRacer = "racer"
	TierPro   = "pro"
)

// Billing periods
const (
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"
)

// PurchaseResult reasons
const (
	ReasonPurchaseInProgress = "purchase_in_progress"
	ReasonUnknownProduct     = "unknown_product"
	ReasonBillingError       = "billing_error"
	ReasonCancelled          = "cancelled"
	ReasonStoreError         = "store_error"
	ReasonUnauthorized       = "unauthorized"
)

var tierRank = map[string]int{
	TierFree:  0,
	TierRacer: 1,
	TierPro:   2,
}

// Product is a purchasable subscription
type Product struct {
	ID          string `json:"id"`
	Tier        string `json:"tier"`
	Period      string `json:"period"`
	Currency    string `json:"currency"`
	PriceMicros int64  `json:"priceMicros"`
	TrialDays   int    `json:"trialDays"`
}

// Entitlement is the user's current subscription state
type Entitlement struct {
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	UserID     string     `json:"userId"`
	Tier       string     `json:"tier"`
	ProductID  string     `json:"productId,omitempty"`
	IsActive   bool       `json:"isActive"`
	IsTrialing bool       `json:"isTrialing"`
}

// activeAt reports whether the entitlement grants its tier at t
func (e *Entitlement) activeAt(t time.Time) bool {
	if !e.IsActive || e.Tier == TierFree {
		return false
	}
	return e.ExpiresAt == nil || e.ExpiresAt.After(t)
}

func freeEntitlement(userID string, now time.Time) *Entitlement {
	return &Entitlement{
		UserID:    userID,
		Tier:      TierFree,
		UpdatedAt: now,
	}
}

// Transaction is a purchase record from the billing provider
type Transaction struct {
	PurchasedAt time.Time  `json:"purchased_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	ID          string     `json:"transaction_id"`
	ProductID   string     `json:"product_id"`
	IsTrial     bool       `json:"is_trial"`
}

// PurchaseResult is the outcome of PurchaseProduct. Failures carry a Reason
// instead of an error.
type PurchaseResult struct {
	Entitlement *Entitlement `json:"entitlement,omitempty"`
	Reason      string       `json:"reason,omitempty"`
	Success     bool         `json:"success"`
}
