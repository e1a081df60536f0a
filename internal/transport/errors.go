package transport

import (
	"errors"
	"net/http"

	"codemarket/internal/domain"
	"codemarket/internal/middleware"
	"codemarket/internal/purchase"
	"codemarket/internal/repository"
	"codemarket/internal/service"
	"codemarket/internal/wallet"

	"go.uber.org/zap"
)

// respondWithServiceError maps service errors onto HTTP responses. Anything
// unrecognised is logged and reported as fallback with a 500.
func respondWithServiceError(w http.ResponseWriter, logger *zap.Logger, err error, fallback string) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		fields := make([]middleware.ValidationError, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			fields = append(fields, middleware.ValidationError{Field: f.Field, Message: f.Message})
		}
		middleware.RespondWithValidationErrors(w, fields)
		return
	}

	var txErr *wallet.TransactionError
	if errors.As(err, &txErr) {
		if errors.Is(err, domain.ErrWalletDisconnected) {
			middleware.RespondWithError(w, http.StatusUnauthorized, "wallet not connected")
			return
		}
		middleware.RespondWithErrorDetails(w, http.StatusPaymentRequired, "transaction failed", map[string]interface{}{
			"reason": txErr.Err.Error(),
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrWalletDisconnected):
		middleware.RespondWithError(w, http.StatusUnauthorized, "wallet not connected")
	case errors.Is(err, wallet.ErrNoAccounts), errors.Is(err, wallet.ErrRejected):
		middleware.RespondWithError(w, http.StatusUnauthorized, "wallet refused connection")
	case errors.Is(err, wallet.ErrUnknownAccount):
		middleware.RespondWithError(w, http.StatusForbidden, "account not available in wallet")
	case errors.Is(err, wallet.ErrInvalidAddress):
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid wallet address")
	case errors.Is(err, repository.ErrListingNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "listing not found")
	case errors.Is(err, repository.ErrDuplicateListing):
		middleware.RespondWithError(w, http.StatusConflict, "listing with this id already exists")
	case errors.Is(err, purchase.ErrNoSelection),
		errors.Is(err, purchase.ErrPurchaseInProgress),
		errors.Is(err, purchase.ErrPurchasePending),
		errors.Is(err, service.ErrEmptyCart):
		middleware.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		logger.Error(fallback, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}

// respondWithDecodeError reports a request body that failed DecodeAndValidate
func respondWithDecodeError(w http.ResponseWriter, err error) {
	if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
		middleware.RespondWithValidationErrors(w, validationErrors)
		return
	}
	middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
}

// walletAddress returns the connected wallet for r, empty when there is none
func walletAddress(r *http.Request) string {
	address, _ := middleware.GetWalletAddress(r.Context())
	return address
}
