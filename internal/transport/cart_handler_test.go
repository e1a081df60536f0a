package transport

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cartOf(t *testing.T, env *testEnv, method, path, token string, body interface{}) CartResponse {
	t.Helper()
	rec := env.do(t, method, path, token, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp CartResponse
	decode(t, rec, &resp)
	return resp
}

func TestCart_RequiresWallet(t *testing.T) {
	env := newTestEnv(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/cart"},
		{http.MethodPost, "/api/cart/items"},
		{http.MethodDelete, "/api/cart/items/1"},
		{http.MethodDelete, "/api/cart"},
		{http.MethodPost, "/api/cart/checkout"},
	} {
		rec := env.do(t, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.path)
		assert.Equal(t, "wallet not connected", errorMessage(t, rec))
	}
}

func TestCart_AddRemoveClear(t *testing.T) {
	env := newTestEnv(t)
	token := env.connect(t, "")

	resp := cartOf(t, env, http.MethodGet, "/api/cart", token, nil)
	assert.Equal(t, 0, resp.Count)
	assert.Equal(t, "0.00", resp.Total)

	resp = cartOf(t, env, http.MethodPost, "/api/cart/items", token, ListingRef{ListingID: "1"})
	assert.Equal(t, 1, resp.Count)

	// Adding twice keeps a single entry
	resp = cartOf(t, env, http.MethodPost, "/api/cart/items", token, ListingRef{ListingID: "1"})
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "0.03", resp.Total)

	resp = cartOf(t, env, http.MethodPost, "/api/cart/items", token, ListingRef{ListingID: "2"})
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "0.06", resp.Total)
	assert.Equal(t, "1", resp.Items[0].ID)

	resp = cartOf(t, env, http.MethodDelete, "/api/cart/items/1", token, nil)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "2", resp.Items[0].ID)

	resp = cartOf(t, env, http.MethodDelete, "/api/cart", token, nil)
	assert.Equal(t, 0, resp.Count)
	assert.Equal(t, "0.00", resp.Total)
}

func TestCart_IsPerWallet(t *testing.T) {
	env := newTestEnv(t)
	alice := env.connect(t, testAccount)
	bob := env.connect(t, otherBuyer)

	cartOf(t, env, http.MethodPost, "/api/cart/items", alice, ListingRef{ListingID: "1"})

	assert.Equal(t, 1, cartOf(t, env, http.MethodGet, "/api/cart", alice, nil).Count)
	assert.Equal(t, 0, cartOf(t, env, http.MethodGet, "/api/cart", bob, nil).Count)
}

func TestCart_AddErrors(t *testing.T) {
	env := newTestEnv(t)
	token := env.connect(t, "")

	rec := env.do(t, http.MethodPost, "/api/cart/items", token, ListingRef{ListingID: "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/cart/items", token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation failed", errorMessage(t, rec))
}

func TestCart_Checkout(t *testing.T) {
	env := newTestEnv(t)
	token := env.connect(t, "")

	rec := env.do(t, http.MethodPost, "/api/cart/checkout", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "cart is empty", errorMessage(t, rec))

	cartOf(t, env, http.MethodPost, "/api/cart/items", token, ListingRef{ListingID: "2"})
	cartOf(t, env, http.MethodPost, "/api/cart/items", token, ListingRef{ListingID: "1"})

	rec = env.do(t, http.MethodPost, "/api/cart/checkout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var status PurchaseStatus
	decode(t, rec, &status)
	assert.Equal(t, "awaiting_confirmation", status.State)
	require.NotNil(t, status.Listing)
	assert.Equal(t, "2", status.Listing.ID)
}
