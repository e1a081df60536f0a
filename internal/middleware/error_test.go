package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// Property: the envelope carries the status text, the message, the details and a UTC timestamp
func TestProperty_ErrorEnvelopeCarriesDetails(t *testing.T) {
	properties := gopter.NewProperties(nil)
	statuses := []int{
		http.StatusBadRequest,
		http.StatusUnauthorized,
		http.StatusPaymentRequired,
		http.StatusNotFound,
		http.StatusConflict,
		http.StatusUnsupportedMediaType,
		http.StatusTooManyRequests,
	}

	properties.Property("envelope round-trips through JSON", prop.ForAll(
		func(index int, message string, reason string) bool {
			status := statuses[index%len(statuses)]

			w := httptest.NewRecorder()
			RespondWithErrorDetails(w, status, message, map[string]interface{}{"reason": reason})

			var response ErrorResponse
			if w.Code != status || json.Unmarshal(w.Body.Bytes(), &response) != nil {
				return false
			}
			ts, err := time.Parse(time.RFC3339, response.Error.Timestamp)
			if err != nil || ts.Location() != time.UTC {
				return false
			}
			return response.Error.Code == http.StatusText(status) &&
				response.Error.Message == message &&
				response.Error.Details["reason"] == reason
		},
		gen.IntRange(0, 100),
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRespondWithError_OmitsEmptyDetails(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithError(w, http.StatusUnauthorized, "wallet not connected")

	var raw map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	_, hasDetails := raw["error"]["details"]
	assert.False(t, hasDetails)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestRespondWithValidationErrors(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithValidationErrors(w, []ValidationError{
		{Field: "title", Message: "This field is required"},
		{Field: "tags", Message: "At least one tag is required"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response struct {
		Error struct {
			Message string `json:"message"`
			Details struct {
				ValidationErrors []ValidationError `json:"validation_errors"`
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "validation failed", response.Error.Message)
	assert.Equal(t, []string{"title", "tags"}, []string{
		response.Error.Details.ValidationErrors[0].Field,
		response.Error.Details.ValidationErrors[1].Field,
	})
}

func TestErrorHandlingMiddleware_RecoversPanics(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	handler := chimiddleware.RequestID(ErrorHandlingMiddleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/purchase/confirm", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "internal server error", response.Error.Message)

	entries := logs.FilterMessage("Panic recovered").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/api/purchase/confirm", fields["path"])
	assert.NotEmpty(t, fields["request_id"])
}

func TestErrorHandlingMiddleware_RepanicsOnAbort(t *testing.T) {
	handler := ErrorHandlingMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/listings", nil))
	})
}
