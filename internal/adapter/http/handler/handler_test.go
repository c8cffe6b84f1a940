package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/finwell/cashplan/internal/adapter/http/handler"
	"github.com/finwell/cashplan/internal/domain"
	"github.com/finwell/cashplan/internal/usecase"
	"github.com/finwell/cashplan/internal/usecase/mocks"
)

// testEnv wires the handlers against real services backed by in-memory
// repositories, so requests exercise the full decode/execute/encode path.
type testEnv struct {
	accountRepo     *mocks.MockAccountRepository
	transactionRepo *mocks.MockTransactionRepository
	scheduleRepo    *mocks.MockScheduleRepository

	router http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		accountRepo:     mocks.NewMockAccountRepository(),
		transactionRepo: mocks.NewMockTransactionRepository(),
		scheduleRepo:    mocks.NewMockScheduleRepository(),
	}

	txManager := mocks.NewMockTransactionManager()
	modificationRepo := mocks.NewMockModificationRepository()
	idGen := mocks.NewMockIDGenerator()

	transactions := usecase.NewTransactionsService(
		txManager, env.accountRepo, env.transactionRepo, env.scheduleRepo,
		nil, idGen, zerolog.Nop(),
	)
	accounts := usecase.NewAccountsService(
		txManager, env.accountRepo, env.transactionRepo, idGen, zerolog.Nop(),
	)
	schedules := usecase.NewScheduleService(
		txManager, env.scheduleRepo, modificationRepo, transactions,
		nil, idGen, zerolog.Nop(),
	)
	integrity := usecase.NewAccountsIntegrityService(
		txManager, env.accountRepo, env.transactionRepo, transactions, zerolog.Nop(),
	)
	projections := usecase.NewProjectionService(
		env.scheduleRepo, modificationRepo, env.accountRepo, mocks.NewMockCache(), zerolog.Nop(),
	)

	r := chi.NewRouter()
	accountHandler := handler.NewAccountHandler(accounts, transactions)
	transactionHandler := handler.NewTransactionHandler(transactions)
	scheduleHandler := handler.NewScheduleHandler(schedules, 30*24*time.Hour)
	categoryHandler := handler.NewCategoryHandler(transactions)
	integrityHandler := handler.NewIntegrityHandler(integrity)
	projectionHandler := handler.NewProjectionHandler(projections)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", accountHandler.Create)
			r.Get("/", accountHandler.List)
			r.Get("/{id}", accountHandler.Get)
			r.Patch("/{id}", accountHandler.Rename)
			r.Delete("/{id}", accountHandler.Delete)
			r.Post("/{id}/adjust", accountHandler.Adjust)
			r.Get("/{id}/transactions", transactionHandler.ListByAccount)
			r.Get("/{id}/integrity", integrityHandler.Check)
			r.Post("/{id}/integrity/resolve", integrityHandler.Resolve)
		})
		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", transactionHandler.Create)
			r.Get("/", transactionHandler.List)
			r.Get("/{id}", transactionHandler.Get)
			r.Put("/{id}", transactionHandler.Update)
			r.Delete("/{id}", transactionHandler.Delete)
		})
		r.Route("/schedules", func(r chi.Router) {
			r.Post("/", scheduleHandler.Create)
			r.Get("/upcoming", scheduleHandler.Upcoming)
			r.Get("/{id}", scheduleHandler.Get)
			r.Route("/{id}/occurrences/{index}", func(r chi.Router) {
				r.Get("/", scheduleHandler.GetOccurrence)
				r.Post("/record", scheduleHandler.RecordOccurrence)
				r.Post("/skip", scheduleHandler.SkipOccurrence)
			})
		})
		r.Route("/categories", func(r chi.Router) {
			r.Post("/reassign", categoryHandler.Reassign)
			r.Get("/{category}/usage", categoryHandler.Usage)
		})
		r.Get("/integrity", integrityHandler.CheckAll)
		r.Get("/projections/monthly", projectionHandler.Monthly)
	})
	env.router = r

	return env
}

func (env *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func (env *testEnv) seedAccount(t *testing.T, id string, accountType domain.AccountType, balance string) {
	t.Helper()

	money, err := domain.MoneyFromString(balance)
	if err != nil {
		t.Fatalf("MoneyFromString(%q): %v", balance, err)
	}
	account, err := domain.NewAccount(id, "account "+id, accountType, money, time.Time{})
	if err != nil {
		t.Fatalf("NewAccount(%s): %v", id, err)
	}
	env.accountRepo.Seed(account)
}
