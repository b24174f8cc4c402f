package entitlements

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const restoreTimeout = 30 * time.Second

type entitlementService struct {
	repo    Repository
	billing BillingProvider
	logger  *slog.Logger
	now     func() time.Time

	mu       sync.Mutex
	inflight map[string]string // userID -> productID being purchased

	restores singleflight.Group
}

// NewEntitlementService creates the entitlement gate
func NewEntitlementService(repo Repository, billing BillingProvider, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &entitlementService{
		repo:     repo,
		billing:  billing,
		logger:   logger,
		now:      time.Now,
		inflight: make(map[string]string),
	}
}

func (s *entitlementService) ListProducts() []Product {
	return ListProducts()
}

// GetEntitlement returns the user's entitlement. Users without one, or whose
// subscription has lapsed, read as inactive free.
func (s *entitlementService) GetEntitlement(ctx context.Context, userID string) (*Entitlement, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}

	now := s.now().UTC()
	ent, err := s.repo.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return freeEntitlement(userID, now), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load entitlement: %w", err)
	}

	if !ent.activeAt(now) {
		lapsed := freeEntitlement(userID, ent.UpdatedAt)
		lapsed.ExpiresAt = ent.ExpiresAt
		return lapsed, nil
	}
	return ent, nil
}

func (s *entitlementService) PurchaseProduct(ctx context.Context, userID, productID string) (result PurchaseResult) {
	if userID == "" {
		return PurchaseResult{Reason: ReasonUnauthorized}
	}
	product, ok := LookupProduct(productID)
	if !ok {
		return PurchaseResult{Reason: ReasonUnknownProduct}
	}

	if pending, acquired := s.acquire(userID, productID); !acquired {
		s.logger.Info("purchase rejected, another is pending",
			"user_id", userID,
			"product_id", productID,
			"pending_product_id", pending)
		return PurchaseResult{Reason: ReasonPurchaseInProgress}
	}
	defer s.release(userID)

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("purchase panicked",
				"user_id", userID,
				"product_id", productID,
				"panic", r)
			result = PurchaseResult{Reason: ReasonBillingError}
		}
	}()

	tx, err := s.billing.Purchase(ctx, userID, product.ID)
	if err != nil {
		if errors.Is(err, ErrPurchaseCancelled) {
			return PurchaseResult{Reason: ReasonCancelled}
		}
		s.logger.Error("billing purchase failed",
			"user_id", userID,
			"product_id", productID,
			"error", err)
		return PurchaseResult{Reason: ReasonBillingError}
	}

	ent := s.entitlementFromTransaction(userID, product, tx)
	if err := s.repo.Upsert(ctx, ent); err != nil {
		s.logger.Error("failed to store entitlement",
			"user_id", userID,
			"product_id", productID,
			"transaction_id", tx.ID,
			"error", err)
		return PurchaseResult{Reason: ReasonStoreError}
	}

	s.logger.Info("purchase completed",
		"user_id", userID,
		"product_id", productID,
		"tier", ent.Tier,
		"trialing", ent.IsTrialing)
	return PurchaseResult{Success: true, Entitlement: ent}
}

// RestorePurchases picks the best unexpired transaction from the provider and
// stores it. Concurrent restores for one user share a single provider call.
func (s *entitlementService) RestorePurchases(ctx context.Context, userID string) (*Entitlement, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}

	// The shared call outlives any single caller: it runs detached from the
	// caller's cancellation and bounded by restoreTimeout, while each caller
	// still stops waiting when its own ctx ends.
	ch := s.restores.DoChan(userID, func() (interface{}, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), restoreTimeout)
		defer cancel()
		return s.restore(flightCtx, userID)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			s.logger.Debug("restore shared with concurrent caller", "user_id", userID)
		}
		// Callers must not share one *Entitlement
		ent := *res.Val.(*Entitlement)
		return &ent, nil
	}
}

func (s *entitlementService) restore(ctx context.Context, userID string) (*Entitlement, error) {
	txs, err := s.billing.ListTransactions(ctx, userID)
	if err != nil {
		s.logger.Error("billing restore failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	now := s.now().UTC()
	var best *Entitlement
	for i := range txs {
		product, ok := LookupProduct(txs[i].ProductID)
		if !ok {
			continue
		}
		candidate := s.entitlementFromTransaction(userID, product, &txs[i])
		if !candidate.activeAt(now) {
			continue
		}
		if best == nil || betterEntitlement(candidate, best) {
			best = candidate
		}
	}
	if best == nil {
		best = freeEntitlement(userID, now)
	}

	if err := s.repo.Upsert(ctx, best); err != nil {
		return nil, fmt.Errorf("failed to store restored entitlement: %w", err)
	}

	s.logger.Info("purchases restored",
		"user_id", userID,
		"transactions", len(txs),
		"tier", best.Tier)
	return best, nil
}

func (s *entitlementService) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.ExpireLapsed(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to expire entitlements: %w", err)
	}
	return n, nil
}

func (s *entitlementService) acquire(userID, productID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pending, busy := s.inflight[userID]; busy {
		return pending, false
	}
	s.inflight[userID] = productID
	return "", true
}

func (s *entitlementService) release(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, userID)
}

func (s *entitlementService) entitlementFromTransaction(userID string, product Product, tx *Transaction) *Entitlement {
	return &Entitlement{
		UserID:     userID,
		Tier:       product.Tier,
		ProductID:  product.ID,
		IsActive:   true,
		IsTrialing: tx.IsTrial,
		ExpiresAt:  tx.ExpiresAt,
		UpdatedAt:  s.now().UTC(),
	}
}

// betterEntitlement prefers the higher tier, then the later expiry
func betterEntitlement(a, b *Entitlement) bool {
	if tierRank[a.Tier] != tierRank[b.Tier] {
		return tierRank[a.Tier] > tierRank[b.Tier]
	}
	switch {
	case a.ExpiresAt == nil:
		return b.ExpiresAt != nil
	case b.ExpiresAt == nil:
		return false
	default:
		return a.ExpiresAt.After(*b.ExpiresAt)
	}
}
