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

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	Create(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	Rename(ctx context.Context, id, name string) (*domain.Account, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*domain.Account, error)
	List(ctx context.Context) ([]*domain.Account, error)
}

// AccountAdjuster records balance-forcing adjustment transactions.
type AccountAdjuster interface {
	AccountAdjustment(ctx context.Context, accountID string, newBalance domain.Money) (*domain.Transaction, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accounts AccountService
	adjuster AccountAdjuster
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accounts AccountService, adjuster AccountAdjuster) *AccountHandler {
	return &AccountHandler{accounts: accounts, adjuster: adjuster}
}

// Create opens a new account.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account", err.Error())
		return
	}

	account, err := h.accounts.Create(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create account", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves an account by ID.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	account, err := h.accounts.Get(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List lists all accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts: dto.AccountsFromDomain(accounts),
		Total:    int64(len(accounts)),
	})
}

// Rename changes an account's display name.
func (h *AccountHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.RenameAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.accounts.Rename(r.Context(), id, req.Name)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to rename account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Delete removes an account without transaction history.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.accounts.Delete(r.Context(), id); err != nil {
		writeError(w, mapDomainError(err), "failed to delete account", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Adjust forces an account to the requested stored balance, recording an
// adjustment transaction for the difference. A no-op adjustment returns 200
// with no transaction body.
func (h *AccountHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.AdjustAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	balance, err := domain.MoneyFromString(req.Balance)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid balance", err.Error())
		return
	}

	adjustment, err := h.adjuster.AccountAdjustment(r.Context(), id, balance)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to adjust account", err.Error())
		return
	}

	if adjustment == nil {
		writeJSON(w, http.StatusOK, struct{}{})
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(adjustment))
}
