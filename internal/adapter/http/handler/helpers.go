package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/finwell/cashplan/internal/adapter/http/dto"
	"github.com/finwell/cashplan/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	var inUse *domain.CategoryInUseError
	if errors.As(err, &inUse) {
		return http.StatusConflict
	}

	switch {
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrTransactionNotFound),
		errors.Is(err, domain.ErrScheduleNotFound),
		errors.Is(err, domain.ErrModificationNotFound),
		errors.Is(err, domain.ErrOccurrenceOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrOccurrenceNotPending),
		errors.Is(err, domain.ErrInvalidStateChange),
		errors.Is(err, domain.ErrAccountHasHistory):
		return http.StatusConflict
	case errors.Is(err, domain.ErrEmptyID),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrNegativeAmount),
		errors.Is(err, domain.ErrInvalidFrequency),
		errors.Is(err, domain.ErrInvalidRecurrence),
		errors.Is(err, domain.ErrInvalidOperation),
		errors.Is(err, domain.ErrInvalidAccountType),
		errors.Is(err, domain.ErrTransferNeedsDestination),
		errors.Is(err, domain.ErrUnexpectedDestination),
		errors.Is(err, domain.ErrEmptyOrigin),
		errors.Is(err, domain.ErrCategoryNotFound):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
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

// parseIndexParam parses the occurrence index path parameter.
func parseIndexParam(val string) (int, error) {
	index, err := strconv.Atoi(val)
	if err != nil || index < 0 {
		return 0, errors.New("occurrence index must be a non-negative integer")
	}
	return index, nil
}
