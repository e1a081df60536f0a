package service

import (
	"context"
	"fmt"

	"codemarket/internal/cart"
	"codemarket/internal/domain"
	"codemarket/internal/repository"
)

// CartService defines the interface for per-wallet cart operations
type CartService interface {
	Get(buyer string) (cart.Cart, error)
	Add(ctx context.Context, buyer, listingID string) (cart.Cart, error)
	Remove(buyer, listingID string) (cart.Cart, error)
	Clear(buyer string) (cart.Cart, error)
}

type cartService struct {
	listings repository.ListingRepository
	sessions *cart.Sessions
}

// NewCartService creates a new instance of CartService
func NewCartService(listings repository.ListingRepository, sessions *cart.Sessions) CartService {
	return &cartService{listings: listings, sessions: sessions}
}

func (s *cartService) Get(buyer string) (cart.Cart, error) {
	if buyer == "" {
		return cart.New(), domain.ErrWalletDisconnected
	}
	return s.sessions.Get(buyer), nil
}

// Add puts the listing into the buyer's cart. Adding a listing already in
// the cart leaves it unchanged.
func (s *cartService) Add(ctx context.Context, buyer, listingID string) (cart.Cart, error) {
	if buyer == "" {
		return cart.New(), domain.ErrWalletDisconnected
	}

	listing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		return cart.New(), fmt.Errorf("failed to add to cart: %w", err)
	}

	return s.sessions.Update(buyer, func(c cart.Cart) cart.Cart {
		return c.Add(*listing)
	}), nil
}

func (s *cartService) Remove(buyer, listingID string) (cart.Cart, error) {
	if buyer == "" {
		return cart.New(), domain.ErrWalletDisconnected
	}
	return s.sessions.Update(buyer, func(c cart.Cart) cart.Cart {
		return c.Remove(listingID)
	}), nil
}

func (s *cartService) Clear(buyer string) (cart.Cart, error) {
	if buyer == "" {
		return cart.New(), domain.ErrWalletDisconnected
	}
	return s.sessions.Update(buyer, func(c cart.Cart) cart.Cart {
		return c.Clear()
	}), nil
}
