package handler

import (
	"context"
	"net/http"

	"github.com/finwell/cashplan/internal/adapter/http/dto"
	"github.com/finwell/cashplan/internal/usecase"
)

// ProjectionProvider defines the behavior needed by ProjectionHandler.
type ProjectionProvider interface {
	Monthly(ctx context.Context) (*usecase.MonthlyProjection, error)
}

// ProjectionHandler handles cash-flow projection HTTP requests.
type ProjectionHandler struct {
	projections ProjectionProvider
}

// NewProjectionHandler creates a new ProjectionHandler.
func NewProjectionHandler(projections ProjectionProvider) *ProjectionHandler {
	return &ProjectionHandler{projections: projections}
}

// Monthly reports projected monthly income, expenses and net flow derived
// from active schedules.
func (h *ProjectionHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	projection, err := h.projections.Monthly(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute projection", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ProjectionFromUseCase(projection))
}
