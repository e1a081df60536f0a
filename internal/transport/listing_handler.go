package transport

import (
	"net/http"

	"codemarket/internal/catalog"
	"codemarket/internal/domain"
	"codemarket/internal/middleware"
	"codemarket/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ListingsResponse is a page of the derived catalog
type ListingsResponse struct {
	Listings []domain.Listing `json:"listings"`
	Count    int              `json:"count"`
}

// CategoriesResponse lists every category in use
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// ListingHandler handles HTTP requests for the catalog and submissions
type ListingHandler struct {
	listings service.ListingService
	logger   *zap.Logger
}

// NewListingHandler creates a new ListingHandler
func NewListingHandler(listings service.ListingService, logger *zap.Logger) *ListingHandler {
	return &ListingHandler{
		listings: listings,
		logger:   logger,
	}
}

// RegisterRoutes registers all listing routes
func (h *ListingHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Get("/api/categories", h.Categories)

	r.Route("/api/listings", func(r chi.Router) {
		// Public routes
		r.Get("/", h.Browse)
		r.Get("/{id}", h.Get)

		// Selling needs a connected wallet
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/", h.Submit)
		})
	})
}

// Browse returns listings filtered by q and category, ordered by sort
func (h *ListingHandler) Browse(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	sortBy, err := catalog.ParseSortBy(query.Get("sort"))
	if err != nil {
		middleware.RespondWithValidationErrors(w, []middleware.ValidationError{{
			Field:   "sort",
			Message: "Must be one of newest, price-low, price-high, rating",
		}})
		return
	}

	category := query.Get("category")
	if category == "" {
		category = catalog.AllCategories
	}

	listings := h.listings.Browse(r.Context(), catalog.Filter{
		Query:    query.Get("q"),
		Category: category,
		SortBy:   sortBy,
	})

	middleware.RespondWithJSON(w, http.StatusOK, ListingsResponse{
		Listings: listings,
		Count:    len(listings),
	})
}

// Get returns a single listing
func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	listing, err := h.listings.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "failed to get listing")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, listing)
}

// Categories returns the categories present in the catalog
func (h *ListingHandler) Categories(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, CategoriesResponse{
		Categories: h.listings.Categories(r.Context()),
	})
}

// Submit creates a listing sold by the connected wallet
func (h *ListingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var form service.SubmissionForm

	// Field validation happens in the service so the rules live in one place
	if err := middleware.DecodeJSON(r, &form); err != nil {
		h.logger.Debug("Submission decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	listing, err := h.listings.Submit(r.Context(), walletAddress(r), form)
	if err != nil {
		h.logger.Debug("Submission rejected", zap.Error(err))
		respondWithServiceError(w, h.logger, err, "failed to submit listing")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, listing)
}
