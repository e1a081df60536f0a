package transport

import (
	"net/http"

	"codemarket/internal/middleware"
	"codemarket/internal/service"
	"codemarket/internal/wallet"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ConnectRequest represents the wallet connect payload. An empty address
// selects the wallet's default account.
type ConnectRequest struct {
	Address string `json:"address" validate:"omitempty,eth_addr"`
}

// WalletProfile describes the connected wallet
type WalletProfile struct {
	Address        string `json:"address"`
	DisplayAddress string `json:"displayAddress"`
}

// WalletHandler handles wallet connection requests
type WalletHandler struct {
	sessions service.SessionService
	logger   *zap.Logger
}

// NewWalletHandler creates a new WalletHandler
func NewWalletHandler(sessions service.SessionService, logger *zap.Logger) *WalletHandler {
	return &WalletHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// RegisterRoutes registers all wallet routes
func (h *WalletHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/wallet", func(r chi.Router) {
		r.Post("/connect", h.Connect)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/", h.Profile)
		})
	})
}

// Connect asks the wallet for an account and returns a session token
func (h *WalletHandler) Connect(w http.ResponseWriter, r *http.Request) {
	var req ConnectRequest
	if r.ContentLength != 0 {
		if err := middleware.DecodeAndValidate(r, &req); err != nil {
			h.logger.Debug("Connect validation failed", zap.Error(err))
			respondWithDecodeError(w, err)
			return
		}
	}

	session, err := h.sessions.Connect(r.Context(), req.Address)
	if err != nil {
		h.logger.Info("Wallet connection failed", zap.Error(err))
		respondWithServiceError(w, h.logger, err, "failed to connect wallet")
		return
	}

	h.logger.Info("Wallet connected", zap.String("wallet_address", session.Address))
	middleware.RespondWithJSON(w, http.StatusOK, session)
}

// Profile returns the wallet bound to the session
func (h *WalletHandler) Profile(w http.ResponseWriter, r *http.Request) {
	address := walletAddress(r)
	middleware.RespondWithJSON(w, http.StatusOK, WalletProfile{
		Address:        address,
		DisplayAddress: wallet.FormatAddress(address),
	})
}
