package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"codemarket/internal/domain"
	"codemarket/internal/kvstore"

	"go.uber.org/zap"
)

// PurchasesKey is the collection key holding purchase records
const PurchasesKey = "purchases"

// PurchaseRepository defines the interface for purchase record access.
// Records are append-only.
type PurchaseRepository interface {
	Append(ctx context.Context, purchase domain.Purchase) error
	List(ctx context.Context) []domain.Purchase
	ListByBuyer(ctx context.Context, buyer string) []domain.Purchase
}

type purchaseRepository struct {
	store  kvstore.Store
	logger *zap.Logger
	mu     sync.Mutex
}

// NewPurchaseRepository creates a purchase repository backed by store
func NewPurchaseRepository(store kvstore.Store, logger *zap.Logger) PurchaseRepository {
	return &purchaseRepository{store: store, logger: logger}
}

// Append records a purchase
func (r *purchaseRepository) Append(ctx context.Context, purchase domain.Purchase) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	purchases := append(r.load(ctx), purchase)
	if err := kvstore.SetJSON(ctx, r.store, PurchasesKey, purchases); err != nil {
		return fmt.Errorf("failed to append purchase: %w", err)
	}
	return nil
}

// List returns every recorded purchase in insertion order
func (r *purchaseRepository) List(ctx context.Context) []domain.Purchase {
	return r.load(ctx)
}

// ListByBuyer returns the purchases made by buyer. Addresses compare
// case-insensitively since checksummed and lowercase forms are equivalent.
func (r *purchaseRepository) ListByBuyer(ctx context.Context, buyer string) []domain.Purchase {
	out := []domain.Purchase{}
	for _, p := range r.load(ctx) {
		if strings.EqualFold(p.BuyerAddress, buyer) {
			out = append(out, p)
		}
	}
	return out
}

func (r *purchaseRepository) load(ctx context.Context) []domain.Purchase {
	var purchases []domain.Purchase
	if err := kvstore.GetJSON(ctx, r.store, PurchasesKey, &purchases); err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			r.logger.Warn("Stored purchases unreadable, treating as empty",
				zap.String("key", PurchasesKey),
				zap.Error(err),
			)
		}
		return []domain.Purchase{}
	}
	return purchases
}
