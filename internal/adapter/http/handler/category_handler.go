package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finwell/cashplan/internal/adapter/http/dto"
	"github.com/finwell/cashplan/internal/domain"
)

// CategoryService defines the behavior needed by CategoryHandler.
type CategoryService interface {
	ReassignTransactionsCategory(ctx context.Context, fromCategory, toCategory string) (int, error)
	ReassignTransactionsSubCategory(ctx context.Context, category, fromSubCategory, toSubCategory string) (int, error)
	ReassignTransactionsCategoryAndSubcategory(ctx context.Context, fromCategory, toCategory, toSubCategory string) (int, error)
	EnsureCategoryUnused(ctx context.Context, category, subCategory string) error
}

// CategoryHandler handles category maintenance HTTP requests.
type CategoryHandler struct {
	categories CategoryService
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categories CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// Reassign moves every transaction from one category to another, optionally
// forcing a new subcategory at the same time.
func (h *CategoryHandler) Reassign(w http.ResponseWriter, r *http.Request) {
	var req dto.ReassignCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.FromCategory == "" || req.ToCategory == "" {
		writeError(w, http.StatusBadRequest, "missing category", "fromCategory and toCategory are required")
		return
	}

	var (
		updated int
		err     error
	)
	if req.ToSubCategory != "" {
		updated, err = h.categories.ReassignTransactionsCategoryAndSubcategory(
			r.Context(), req.FromCategory, req.ToCategory, req.ToSubCategory)
	} else {
		updated, err = h.categories.ReassignTransactionsCategory(r.Context(), req.FromCategory, req.ToCategory)
	}
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reassign category", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReassignResponse{Updated: updated})
}

// ReassignSubCategory moves transactions between subcategories of one
// category.
func (h *CategoryHandler) ReassignSubCategory(w http.ResponseWriter, r *http.Request) {
	var req dto.ReassignSubCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Category == "" || req.FromSubCategory == "" || req.ToSubCategory == "" {
		writeError(w, http.StatusBadRequest, "missing subcategory", "category, fromSubCategory and toSubCategory are required")
		return
	}

	updated, err := h.categories.ReassignTransactionsSubCategory(
		r.Context(), req.Category, req.FromSubCategory, req.ToSubCategory)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reassign subcategory", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReassignResponse{Updated: updated})
}

// Usage reports whether a category (or one of its subcategories, via the
// subCategory query parameter) is still referenced by transactions or
// schedules. Deleting a referenced category client-side requires reassigning
// first.
func (h *CategoryHandler) Usage(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	subCategory := r.URL.Query().Get("subCategory")

	err := h.categories.EnsureCategoryUnused(r.Context(), category, subCategory)
	if err == nil {
		writeJSON(w, http.StatusOK, dto.CategoryUsageResponse{InUse: false})
		return
	}

	var inUse *domain.CategoryInUseError
	if errors.As(err, &inUse) {
		writeJSON(w, http.StatusOK, dto.CategoryUsageResponse{
			InUse:          true,
			TransactionIDs: inUse.TransactionIDs,
			ScheduleIDs:    inUse.ScheduleIDs,
		})
		return
	}

	writeError(w, mapDomainError(err), "failed to check category usage", err.Error())
}
