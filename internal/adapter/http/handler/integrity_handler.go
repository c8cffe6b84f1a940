package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finwell/cashplan/internal/adapter/http/dto"
	"github.com/finwell/cashplan/internal/usecase"
)

// IntegrityService defines the behavior needed by IntegrityHandler.
type IntegrityService interface {
	CalculateAccountIntegrity(ctx context.Context, accountID string) (*usecase.AccountIntegrity, error)
	CheckAll(ctx context.Context) (*usecase.IntegrityCheckReport, error)
	ResolveDiscrepancy(ctx context.Context, accountID string) (*usecase.AccountIntegrity, error)
}

// IntegrityHandler handles balance integrity HTTP requests.
type IntegrityHandler struct {
	integrity IntegrityService
}

// NewIntegrityHandler creates a new IntegrityHandler.
func NewIntegrityHandler(integrity IntegrityService) *IntegrityHandler {
	return &IntegrityHandler{integrity: integrity}
}

// CheckAll replays every account's history and reports drift.
func (h *IntegrityHandler) CheckAll(w http.ResponseWriter, r *http.Request) {
	report, err := h.integrity.CheckAll(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to check integrity", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.IntegrityReportFromUseCase(report))
}

// Check replays one account's history and reports drift.
func (h *IntegrityHandler) Check(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	integrity, err := h.integrity.CalculateAccountIntegrity(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to check account integrity", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.IntegrityFromUseCase(integrity))
}

// Resolve records an adjustment trace closing the gap between an account's
// replayed and stored balance. The stored balance itself is untouched.
func (h *IntegrityHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	integrity, err := h.integrity.ResolveDiscrepancy(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to resolve discrepancy", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.IntegrityFromUseCase(integrity))
}
