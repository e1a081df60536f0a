package service

import (
	"context"
	"errors"
	"fmt"

	"codemarket/internal/cart"
	"codemarket/internal/domain"
	"codemarket/internal/purchase"
	"codemarket/internal/repository"
)

// ErrEmptyCart is returned when checking out a cart with no items
var ErrEmptyCart = errors.New("cart is empty")

// PurchaseService defines the interface for buying listings
type PurchaseService interface {
	Begin(ctx context.Context, buyer, listingID string) (purchase.Snapshot, error)
	Checkout(ctx context.Context, buyer string) (purchase.Snapshot, error)
	Confirm(ctx context.Context, buyer string) (*domain.Purchase, error)
	Cancel(buyer string) (purchase.Snapshot, error)
	Status(buyer string) (purchase.Snapshot, error)
	History(ctx context.Context, buyer string) ([]domain.Purchase, error)
}

type purchaseService struct {
	listings  repository.ListingRepository
	purchases repository.PurchaseRepository
	carts     *cart.Sessions
	workflows *purchase.Registry
}

// NewPurchaseService creates a new instance of PurchaseService
func NewPurchaseService(
	listings repository.ListingRepository,
	purchases repository.PurchaseRepository,
	carts *cart.Sessions,
	workflows *purchase.Registry,
) PurchaseService {
	return &purchaseService{
		listings:  listings,
		purchases: purchases,
		carts:     carts,
		workflows: workflows,
	}
}

// Begin holds the listing for the buyer's confirmation
func (s *purchaseService) Begin(ctx context.Context, buyer, listingID string) (purchase.Snapshot, error) {
	if buyer == "" {
		return purchase.Snapshot{}, domain.ErrWalletDisconnected
	}

	listing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		return purchase.Snapshot{}, fmt.Errorf("failed to begin purchase: %w", err)
	}

	return s.begin(buyer, *listing)
}

// Checkout begins a purchase of the first item in the buyer's cart. The cart
// itself is left untouched.
func (s *purchaseService) Checkout(_ context.Context, buyer string) (purchase.Snapshot, error) {
	if buyer == "" {
		return purchase.Snapshot{}, domain.ErrWalletDisconnected
	}

	first, ok := s.carts.Get(buyer).First()
	if !ok {
		return purchase.Snapshot{}, ErrEmptyCart
	}

	return s.begin(buyer, first)
}

func (s *purchaseService) begin(buyer string, listing domain.Listing) (purchase.Snapshot, error) {
	wf := s.workflows.For(buyer)
	if err := wf.Begin(listing); err != nil {
		return wf.Snapshot(), err
	}
	return wf.Snapshot(), nil
}

// Confirm pays for the listing awaiting confirmation
func (s *purchaseService) Confirm(ctx context.Context, buyer string) (*domain.Purchase, error) {
	if buyer == "" {
		return nil, domain.ErrWalletDisconnected
	}
	return s.workflows.For(buyer).Confirm(ctx)
}

// Cancel discards the listing awaiting confirmation
func (s *purchaseService) Cancel(buyer string) (purchase.Snapshot, error) {
	if buyer == "" {
		return purchase.Snapshot{}, domain.ErrWalletDisconnected
	}
	wf := s.workflows.For(buyer)
	if err := wf.Close(); err != nil {
		return wf.Snapshot(), err
	}
	return wf.Snapshot(), nil
}

func (s *purchaseService) Status(buyer string) (purchase.Snapshot, error) {
	if buyer == "" {
		return purchase.Snapshot{}, domain.ErrWalletDisconnected
	}
	return s.workflows.Snapshot(buyer), nil
}

// History returns the buyer's recorded purchases
func (s *purchaseService) History(ctx context.Context, buyer string) ([]domain.Purchase, error) {
	if buyer == "" {
		return nil, domain.ErrWalletDisconnected
	}
	return s.purchases.ListByBuyer(ctx, buyer), nil
}
