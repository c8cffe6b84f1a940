package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/finwell/cashplan/internal/domain"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"account not found", domain.ErrAccountNotFound, http.StatusNotFound},
		{"transaction not found", domain.ErrTransactionNotFound, http.StatusNotFound},
		{"schedule not found", domain.ErrScheduleNotFound, http.StatusNotFound},
		{"occurrence out of range", domain.ErrOccurrenceOutOfRange, http.StatusNotFound},
		{"occurrence not pending", domain.ErrOccurrenceNotPending, http.StatusConflict},
		{"invalid state change", domain.ErrInvalidStateChange, http.StatusConflict},
		{"account with history", domain.ErrAccountHasHistory, http.StatusConflict},
		{"category in use", &domain.CategoryInUseError{Category: "Food"}, http.StatusConflict},
		{"empty id", domain.ErrEmptyID, http.StatusBadRequest},
		{"invalid amount", domain.ErrInvalidAmount, http.StatusBadRequest},
		{"negative amount", domain.ErrNegativeAmount, http.StatusBadRequest},
		{"invalid frequency", domain.ErrInvalidFrequency, http.StatusBadRequest},
		{"invalid recurrence", domain.ErrInvalidRecurrence, http.StatusBadRequest},
		{"transfer without destination", domain.ErrTransferNeedsDestination, http.StatusBadRequest},
		{"category not found", domain.ErrCategoryNotFound, http.StatusBadRequest},
		{"wrapped sentinel", fmt.Errorf("record: %w", domain.ErrEmptyOrigin), http.StatusBadRequest},
		{"unknown error", fmt.Errorf("database is on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapDomainError(tt.err); got != tt.want {
				t.Fatalf("mapDomainError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestParseIntQuery(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?limit=25&offset=bogus", nil)

	if got := parseIntQuery(r, "limit", 50); got != 25 {
		t.Fatalf("expected 25, got %d", got)
	}
	if got := parseIntQuery(r, "offset", 0); got != 0 {
		t.Fatalf("expected fallback 0 for malformed value, got %d", got)
	}
	if got := parseIntQuery(r, "missing", 7); got != 7 {
		t.Fatalf("expected default 7, got %d", got)
	}
}

func TestParseIndexParam(t *testing.T) {
	if _, err := parseIndexParam("-1"); err == nil {
		t.Fatal("expected error for negative index")
	}
	if _, err := parseIndexParam("three"); err == nil {
		t.Fatal("expected error for non-numeric index")
	}
	index, err := parseIndexParam("12")
	if err != nil {
		t.Fatalf("parseIndexParam(12): %v", err)
	}
	if index != 12 {
		t.Fatalf("expected 12, got %d", index)
	}
}
