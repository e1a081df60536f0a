package transport

import (
	"net/http"

	"codemarket/internal/cart"
	"codemarket/internal/domain"
	"codemarket/internal/middleware"
	"codemarket/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ListingRef names a listing in a request body
type ListingRef struct {
	ListingID string `json:"listingId" validate:"required"`
}

// CartResponse represents the caller's cart
type CartResponse struct {
	Items []domain.Listing `json:"items"`
	Count int              `json:"count"`
	// Total is formatted with two decimals, in ETH
	Total string `json:"total"`
}

func newCartResponse(c cart.Cart) CartResponse {
	return CartResponse{
		Items: c.Items(),
		Count: c.Len(),
		Total: c.Total().StringFixed(2),
	}
}

// CartHandler handles HTTP requests for the connected wallet's cart
type CartHandler struct {
	carts     service.CartService
	purchases service.PurchaseService
	logger    *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(carts service.CartService, purchases service.PurchaseService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		carts:     carts,
		purchases: purchases,
		logger:    logger,
	}
}

// RegisterRoutes registers all cart routes
func (h *CartHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.Get)
		r.Delete("/", h.Clear)
		r.Post("/items", h.AddItem)
		r.Delete("/items/{id}", h.RemoveItem)
		r.Post("/checkout", h.Checkout)
	})
}

// Get returns the cart
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Get(walletAddress(r))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to get cart")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, newCartResponse(c))
}

// AddItem adds a listing to the cart
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req ListingRef
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondWithDecodeError(w, err)
		return
	}

	c, err := h.carts.Add(r.Context(), walletAddress(r), req.ListingID)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to add to cart")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, newCartResponse(c))
}

// RemoveItem removes a listing from the cart
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Remove(walletAddress(r), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to remove from cart")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, newCartResponse(c))
}

// Clear empties the cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Clear(walletAddress(r))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to clear cart")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, newCartResponse(c))
}

// Checkout starts a purchase of the first cart item
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	snap, err := h.purchases.Checkout(r.Context(), walletAddress(r))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to check out")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, newPurchaseStatus(snap))
}
