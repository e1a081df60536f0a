package server

import (
	"context"
	"net/http"
	"time"

	"codemarket/internal/kvstore"
	custommiddleware "codemarket/internal/middleware"
	"codemarket/internal/wallet"

	"go.uber.org/zap"
)

const healthTimeout = 3 * time.Second

type HealthResponse struct {
	Status string          `json:"status"`
	Store  ComponentHealth `json:"store"`
	Wallet ComponentHealth `json:"wallet"`
}

type ComponentHealth struct {
	Backend string            `json:"backend"`
	Status  string            `json:"status"`
	Error   string            `json:"error,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// healthHandler reads a key from the store and asks the wallet for its default
// account. Either failing answers 503.
func healthHandler(storeBackend, walletBackend string, store kvstore.Store, w wallet.Collaborator, logger *zap.Logger) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		response := HealthResponse{
			Status: "ok",
			Store:  ComponentHealth{Backend: storeBackend, Status: "up"},
			Wallet: ComponentHealth{Backend: walletBackend, Status: "up"},
		}

		if err := kvstore.Check(ctx, store); err != nil {
			logger.Warn("Store health check failed", zap.Error(err))
			response.Status = "degraded"
			response.Store.Status = "down"
			response.Store.Error = err.Error()
		}
		if db, ok := store.(interface {
			Health(context.Context) map[string]string
		}); ok {
			response.Store.Details = db.Health(ctx)
		}

		if _, err := w.ConnectWallet(ctx, ""); err != nil {
			logger.Warn("Wallet health check failed", zap.Error(err))
			response.Status = "degraded"
			response.Wallet.Status = "down"
			response.Wallet.Error = err.Error()
		}

		status := http.StatusOK
		if response.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		custommiddleware.RespondWithJSON(rw, status, response)
	}
}
