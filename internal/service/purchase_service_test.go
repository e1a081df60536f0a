package service

import (
	"context"
	"testing"
	"time"

	"codemarket/internal/cart"
	"codemarket/internal/domain"
	"codemarket/internal/kvstore"
	"codemarket/internal/purchase"
	"codemarket/internal/repository"
	"codemarket/internal/wallet"
	"codemarket/internal/wallet/stub"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type marketFixture struct {
	wallet    *stub.Wallet
	listings  repository.ListingRepository
	purchases repository.PurchaseRepository
	carts     CartService
	svc       PurchaseService
}

func newMarketFixture() *marketFixture {
	store := kvstore.NewMemoryStore()
	w := stub.New(testAccount)
	listings := repository.NewListingRepository(store, zap.NewNop(), repository.SeedListings(time.Now())...)
	purchases := repository.NewPurchaseRepository(store, zap.NewNop())
	sessions := cart.NewSessions()
	registry := purchase.NewRegistry(w, purchases, zap.NewNop())

	return &marketFixture{
		wallet:    w,
		listings:  listings,
		purchases: purchases,
		carts:     NewCartService(listings, sessions),
		svc:       NewPurchaseService(listings, purchases, sessions, registry),
	}
}

func TestPurchaseService_BuyListing(t *testing.T) {
	f := newMarketFixture()
	ctx := context.Background()

	snap, err := f.svc.Begin(ctx, testAccount, "2")
	require.NoError(t, err)
	assert.Equal(t, purchase.StateAwaitingConfirmation, snap.State)
	assert.Equal(t, "2", snap.Listing.ID)

	p, err := f.svc.Confirm(ctx, testAccount)
	require.NoError(t, err)
	assert.Equal(t, "2", p.Listing.ID)

	history, err := f.svc.History(ctx, testAccount)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, p.TransactionHash, history[0].TransactionHash)

	status, err := f.svc.Status(testAccount)
	require.NoError(t, err)
	assert.Equal(t, purchase.StateIdle, status.State)
}

func TestPurchaseService_CheckoutBuysFirstCartItem(t *testing.T) {
	f := newMarketFixture()
	ctx := context.Background()

	_, err := f.svc.Checkout(ctx, testAccount)
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = f.carts.Add(ctx, testAccount, "2")
	require.NoError(t, err)
	_, err = f.carts.Add(ctx, testAccount, "1")
	require.NoError(t, err)

	snap, err := f.svc.Checkout(ctx, testAccount)
	require.NoError(t, err)
	assert.Equal(t, "2", snap.Listing.ID)

	c, err := f.carts.Get(testAccount)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
}

func TestPurchaseService_RejectedPayment(t *testing.T) {
	f := newMarketFixture()
	ctx := context.Background()
	f.wallet.Fail(wallet.ErrRejected)

	_, err := f.svc.Begin(ctx, testAccount, "1")
	require.NoError(t, err)

	_, err = f.svc.Confirm(ctx, testAccount)
	var txErr *wallet.TransactionError
	assert.ErrorAs(t, err, &txErr)

	history, err := f.svc.History(ctx, testAccount)
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.Empty(t, f.purchases.List(ctx))
}

func TestPurchaseService_Errors(t *testing.T) {
	f := newMarketFixture()
	ctx := context.Background()

	_, err := f.svc.Begin(ctx, "", "1")
	assert.ErrorIs(t, err, domain.ErrWalletDisconnected)

	_, err = f.svc.Begin(ctx, testAccount, "missing")
	assert.ErrorIs(t, err, repository.ErrListingNotFound)

	_, err = f.svc.Confirm(ctx, testAccount)
	assert.ErrorIs(t, err, purchase.ErrNoSelection)

	_, err = f.svc.Begin(ctx, testAccount, "1")
	require.NoError(t, err)
	snap, err := f.svc.Begin(ctx, testAccount, "2")
	assert.ErrorIs(t, err, purchase.ErrPurchasePending)
	assert.Equal(t, "1", snap.Listing.ID)

	snap, err = f.svc.Cancel(testAccount)
	require.NoError(t, err)
	assert.Equal(t, purchase.StateIdle, snap.State)

	_, err = f.svc.History(ctx, "")
	assert.ErrorIs(t, err, domain.ErrWalletDisconnected)
}

func TestCartService(t *testing.T) {
	f := newMarketFixture()
	ctx := context.Background()

	_, err := f.carts.Add(ctx, "", "1")
	assert.ErrorIs(t, err, domain.ErrWalletDisconnected)

	_, err = f.carts.Add(ctx, testAccount, "missing")
	assert.ErrorIs(t, err, repository.ErrListingNotFound)

	c, err := f.carts.Add(ctx, testAccount, "1")
	require.NoError(t, err)
	c, err = f.carts.Add(ctx, testAccount, "1")
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, "0.03", c.Total().StringFixed(2))

	c, err = f.carts.Add(ctx, testAccount, "2")
	require.NoError(t, err)
	assert.Equal(t, "0.06", c.Total().StringFixed(2))

	c, err = f.carts.Remove(testAccount, "1")
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	c, err = f.carts.Clear(testAccount)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}
