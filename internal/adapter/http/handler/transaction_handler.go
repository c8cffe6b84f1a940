package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finwell/cashplan/internal/adapter/http/dto"
	"github.com/finwell/cashplan/internal/domain"
	"github.com/finwell/cashplan/internal/usecase"
)

// TransactionService defines the behavior needed by TransactionHandler.
type TransactionService interface {
	Record(ctx context.Context, input usecase.RecordTransactionInput) (*domain.Transaction, error)
	Update(ctx context.Context, id string, input usecase.UpdateTransactionInput) (*domain.Transaction, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*domain.Transaction, error)
	List(ctx context.Context, criteria usecase.Criteria) ([]*domain.Transaction, error)
	ListByAccount(ctx context.Context, accountID string) ([]*domain.Transaction, error)
}

// TransactionHandler handles transaction-related HTTP requests.
type TransactionHandler struct {
	transactions TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactions TransactionService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

// Create records a new transaction and applies its balance effects.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction", err.Error())
		return
	}

	transaction, err := h.transactions.Record(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to record transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(transaction))
}

// Get retrieves a transaction by ID.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	transaction, err := h.transactions.Get(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(transaction))
}

// Update replaces a transaction, reversing the old balance effect and
// applying the new one.
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.UpdateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction", err.Error())
		return
	}

	transaction, err := h.transactions.Update(r.Context(), id, input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update transaction", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(transaction))
}

// Delete removes a transaction and reverses its balance effect.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.transactions.Delete(r.Context(), id); err != nil {
		writeError(w, mapDomainError(err), "failed to delete transaction", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List lists transactions, optionally filtered by category, subcategory or
// schedule.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	var filters []usecase.Filter
	for field, key := range map[string]string{
		"category":     "category",
		"sub_category": "subCategory",
		"schedule_id":  "scheduleId",
	} {
		if v := r.URL.Query().Get(key); v != "" {
			filters = append(filters, usecase.Filter{Field: field, Operator: usecase.OperatorEqual, Value: v})
		}
	}

	criteria := usecase.NewCriteria(filters...).
		WithOrder("date", usecase.OrderDesc).
		WithPagination(parseIntQuery(r, "limit", 50), parseIntQuery(r, "offset", 0))

	transactions, err := h.transactions.List(r.Context(), criteria)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.TransactionsFromDomain(transactions),
		Total:        int64(len(transactions)),
	})
}

// ListByAccount lists an account's full transaction history.
func (h *TransactionHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")

	transactions, err := h.transactions.ListByAccount(r.Context(), accountID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list account transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.TransactionsFromDomain(transactions),
		Total:        int64(len(transactions)),
	})
}
