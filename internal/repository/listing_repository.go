package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"codemarket/internal/domain"
	"codemarket/internal/kvstore"

	"go.uber.org/zap"
)

// ListingsKey is the collection key holding submitted listings
const ListingsKey = "codeListings"

var (
	ErrListingNotFound  = errors.New("listing not found")
	ErrDuplicateListing = errors.New("listing with this id already exists")
	ErrInvalidListing   = errors.New("listing must have an id")
)

// ListingRepository defines the interface for listing data access
type ListingRepository interface {
	GetAll(ctx context.Context) []domain.Listing
	Append(ctx context.Context, listing domain.Listing) error
	FindByID(ctx context.Context, id string) (*domain.Listing, error)
}

type listingRepository struct {
	store  kvstore.Store
	seeds  []domain.Listing
	logger *zap.Logger

	// mu serializes read-modify-write cycles within this process. Writers in
	// other processes sharing the store are not coordinated: last writer wins.
	mu sync.Mutex
}

// NewListingRepository creates a listing repository backed by store. Seed
// listings are served ahead of stored ones and never written back.
func NewListingRepository(store kvstore.Store, logger *zap.Logger, seeds ...domain.Listing) ListingRepository {
	copied := make([]domain.Listing, len(seeds))
	for i, s := range seeds {
		copied[i] = s.Clone()
	}
	return &listingRepository{store: store, seeds: copied, logger: logger}
}

// GetAll returns seed listings followed by stored listings. Missing or
// unreadable stored data is treated as empty.
func (r *listingRepository) GetAll(ctx context.Context) []domain.Listing {
	stored := r.load(ctx)

	all := make([]domain.Listing, 0, len(r.seeds)+len(stored))
	for _, s := range r.seeds {
		all = append(all, s.Clone())
	}
	return append(all, stored...)
}

// Append adds a listing to the stored collection
func (r *listingRepository) Append(ctx context.Context, listing domain.Listing) error {
	if listing.ID == "" {
		return ErrInvalidListing
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.seeds {
		if s.ID == listing.ID {
			return ErrDuplicateListing
		}
	}

	stored := r.load(ctx)
	for _, s := range stored {
		if s.ID == listing.ID {
			return ErrDuplicateListing
		}
	}

	updated := append(stored, listing.Clone())
	if err := kvstore.SetJSON(ctx, r.store, ListingsKey, updated); err != nil {
		return fmt.Errorf("failed to append listing: %w", err)
	}

	return nil
}

// FindByID retrieves a listing by id
func (r *listingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	for _, l := range r.GetAll(ctx) {
		if l.ID == id {
			found := l
			return &found, nil
		}
	}
	return nil, ErrListingNotFound
}

func (r *listingRepository) load(ctx context.Context) []domain.Listing {
	var stored []domain.Listing
	if err := kvstore.GetJSON(ctx, r.store, ListingsKey, &stored); err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			r.logger.Warn("Stored listings unreadable, treating as empty",
				zap.String("key", ListingsKey),
				zap.Error(err),
			)
		}
		return []domain.Listing{}
	}
	return stored
}
