package transport

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"codemarket/internal/cart"
	"codemarket/internal/kvstore"
	"codemarket/internal/middleware"
	"codemarket/internal/purchase"
	"codemarket/internal/repository"
	"codemarket/internal/service"
	"codemarket/internal/wallet/stub"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testSecret  = "test-secret"
	testAccount = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	otherBuyer  = "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"
)

type testEnv struct {
	router    http.Handler
	wallet    *stub.Wallet
	purchases repository.PurchaseRepository
	sessions  service.SessionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zap.NewNop()
	store := kvstore.NewMemoryStore()
	t.Cleanup(func() { store.Close() })

	w := stub.New(testAccount, otherBuyer)
	listings := repository.NewListingRepository(store, logger, repository.SeedListings(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))...)
	purchases := repository.NewPurchaseRepository(store, logger)
	carts := cart.NewSessions()
	workflows := purchase.NewRegistry(w, purchases, logger)

	sessions := service.NewSessionService(w, testSecret, time.Hour)
	listingService := service.NewListingService(listings, logger)
	cartService := service.NewCartService(listings, carts)
	purchaseService := service.NewPurchaseService(listings, purchases, carts, workflows)

	auth := middleware.AuthMiddleware(testSecret, logger)
	r := chi.NewRouter()
	NewWalletHandler(sessions, logger).RegisterRoutes(r, auth)
	NewListingHandler(listingService, logger).RegisterRoutes(r, auth)
	NewCartHandler(cartService, purchaseService, logger).RegisterRoutes(r, auth)
	NewPurchaseHandler(purchaseService, logger).RegisterRoutes(r, auth)

	return &testEnv{router: r, wallet: w, purchases: purchases, sessions: sessions}
}

// connect returns a bearer token for address
func (e *testEnv) connect(t *testing.T, address string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/wallet/connect", "", ConnectRequest{Address: address})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var session service.Session
	decode(t, rec, &session)
	return session.Token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var response middleware.ErrorResponse
	decode(t, rec, &response)
	return response.Error.Message
}
