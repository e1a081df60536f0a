package transport

import (
	"net/http"

	"codemarket/internal/domain"
	"codemarket/internal/middleware"
	"codemarket/internal/purchase"
	"codemarket/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PurchaseStatus represents the purchase workflow of the connected wallet
type PurchaseStatus struct {
	State           string          `json:"state"`
	Listing         *domain.Listing `json:"listing,omitempty"`
	LastTransaction string          `json:"lastTransaction,omitempty"`
	LastError       string          `json:"lastError,omitempty"`
}

func newPurchaseStatus(s purchase.Snapshot) PurchaseStatus {
	status := PurchaseStatus{
		State:           s.State.String(),
		Listing:         s.Listing,
		LastTransaction: s.LastTransaction,
	}
	if s.LastError != nil {
		status.LastError = s.LastError.Error()
	}
	return status
}

// PurchasesResponse lists the caller's purchase records
type PurchasesResponse struct {
	Purchases []domain.Purchase `json:"purchases"`
	Count     int               `json:"count"`
}

// PurchaseHandler handles HTTP requests for buying listings
type PurchaseHandler struct {
	purchases service.PurchaseService
	logger    *zap.Logger
}

// NewPurchaseHandler creates a new PurchaseHandler
func NewPurchaseHandler(purchases service.PurchaseService, logger *zap.Logger) *PurchaseHandler {
	return &PurchaseHandler{
		purchases: purchases,
		logger:    logger,
	}
}

// RegisterRoutes registers all purchase routes
func (h *PurchaseHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)

		r.Route("/api/purchase", func(r chi.Router) {
			r.Get("/", h.Status)
			r.Post("/", h.Begin)
			r.Post("/confirm", h.Confirm)
			r.Post("/cancel", h.Cancel)
		})
		r.Get("/api/purchases", h.History)
	})
}

// Status returns the current workflow state
func (h *PurchaseHandler) Status(w http.ResponseWriter, r *http.Request) {
	snap, err := h.purchases.Status(walletAddress(r))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to get purchase status")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, newPurchaseStatus(snap))
}

// Begin selects a listing for purchase
func (h *PurchaseHandler) Begin(w http.ResponseWriter, r *http.Request) {
	var req ListingRef
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondWithDecodeError(w, err)
		return
	}

	snap, err := h.purchases.Begin(r.Context(), walletAddress(r), req.ListingID)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to begin purchase")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, newPurchaseStatus(snap))
}

// Confirm pays for the selected listing
func (h *PurchaseHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	buyer := walletAddress(r)

	p, err := h.purchases.Confirm(r.Context(), buyer)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to complete purchase")
		return
	}

	h.logger.Info("Listing purchased",
		zap.String("wallet_address", buyer),
		zap.String("listing_id", p.Listing.ID),
		zap.String("tx_hash", p.TransactionHash),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, p)
}

// Cancel abandons the selected listing
func (h *PurchaseHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	snap, err := h.purchases.Cancel(walletAddress(r))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to cancel purchase")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, newPurchaseStatus(snap))
}

// History returns the caller's purchases
func (h *PurchaseHandler) History(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.purchases.History(r.Context(), walletAddress(r))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to list purchases")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, PurchasesResponse{
		Purchases: purchases,
		Count:     len(purchases),
	})
}
