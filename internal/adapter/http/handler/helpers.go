package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/tixeats/walletsettle/internal/adapter/http/dto"
	"github.com/tixeats/walletsettle/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// webhookStatus maps an error class to the status a webhook caller sees.
// 409 and 5xx tell the sender to redeliver; 400 and 422 tell it not to.
func webhookStatus(err error) int {
	if errors.Is(err, domain.ErrConcurrentDuplicate) {
		return http.StatusConflict
	}

	switch domain.Classify(err) {
	case domain.ClassRejected:
		return http.StatusBadRequest
	case domain.ClassFatal:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// mapDomainError maps domain errors to admin API status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrWalletNotFound),
		errors.Is(err, domain.ErrTransactionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrWalletExists):
		return http.StatusConflict
	default:
		return webhookStatus(err)
	}
}

// errorMessage hides internal failures from the caller.
func errorMessage(err error, status int) string {
	if status >= http.StatusInternalServerError {
		return "Internal server error"
	}
	return err.Error()
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
