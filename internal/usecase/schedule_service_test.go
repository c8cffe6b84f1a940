package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/finwell/cashplan/internal/domain"
	"github.com/finwell/cashplan/internal/usecase"
	"github.com/finwell/cashplan/internal/usecase/mocks"
)

type scheduleEnv struct {
	*serviceEnv
	modificationRepo *mocks.MockModificationRepository
	schedules        *usecase.ScheduleService
}

func newScheduleEnv() *scheduleEnv {
	base := newServiceEnv()
	env := &scheduleEnv{
		serviceEnv:       base,
		modificationRepo: mocks.NewMockModificationRepository(),
	}
	env.schedules = usecase.NewScheduleService(
		base.txManager,
		base.scheduleRepo,
		env.modificationRepo,
		base.transactions,
		nil,
		mocks.NewMockIDGenerator(),
		zerolog.Nop(),
	)
	return env
}

func monthlyRentInput(t *testing.T) usecase.CreateScheduleInput {
	t.Helper()
	pattern, err := domain.NewInfinitePattern(
		domain.DayDateOf(2024, time.January, 1),
		domain.MustParseFrequency("1mo"),
	)
	if err != nil {
		t.Fatalf("NewInfinitePattern: %v", err)
	}
	return usecase.CreateScheduleInput{
		Name:         "rent",
		Operation:    domain.OperationExpense,
		Category:     "Housing",
		SubCategory:  "Rent",
		Pattern:      pattern,
		OriginSplits: splits(t, "checking", "950"),
	}
}

func TestScheduleService_CreateAndGetOccurrence(t *testing.T) {
	env := newScheduleEnv()
	env.accountRepo.Seed(mustAccount(t, "checking", domain.AccountAsset, "5000"))

	schedule, err := env.schedules.Create(context.Background(), monthlyRentInput(t))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	occurrence, err := env.schedules.GetOccurrence(context.Background(), schedule.ID(), 2)
	if err != nil {
		t.Fatalf("GetOccurrence: %v", err)
	}
	if occurrence.State != domain.OccurrencePending {
		t.Errorf("state = %s, want pending", occurrence.State)
	}
	if want := domain.DayDateOf(2024, time.March, 1); !occurrence.Date.Equal(want) {
		t.Errorf("date = %s, want %s", occurrence.Date, want)
	}
	if occurrence.Name != "rent" {
		t.Errorf("name = %s, want rent", occurrence.Name)
	}
}

func TestScheduleService_RecordOccurrence(t *testing.T) {
	env := newScheduleEnv()
	checking := mustAccount(t, "checking", domain.AccountAsset, "5000")
	env.accountRepo.Seed(checking)

	schedule, err := env.schedules.Create(context.Background(), monthlyRentInput(t))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	transaction, err := env.schedules.RecordOccurrence(context.Background(), schedule.ID(), 0)
	if err != nil {
		t.Fatalf("RecordOccurrence: %v", err)
	}

	if got := checking.Balance().String(); got != "4050" {
		t.Errorf("balance = %s, want 4050", got)
	}
	if transaction.ScheduleID() != schedule.ID() {
		t.Errorf("schedule id = %s, want %s", transaction.ScheduleID(), schedule.ID())
	}
	if want := domain.DayDateOf(2024, time.January, 1); !transaction.Date().Equal(want) {
		t.Errorf("date = %s, want %s", transaction.Date(), want)
	}

	occurrence, err := env.schedules.GetOccurrence(context.Background(), schedule.ID(), 0)
	if err != nil {
		t.Fatalf("GetOccurrence: %v", err)
	}
	if occurrence.State != domain.OccurrenceCompleted {
		t.Errorf("state = %s, want completed", occurrence.State)
	}

	// Completed occurrences cannot be recorded twice; the money already
	// moved once.
	if _, err := env.schedules.RecordOccurrence(context.Background(), schedule.ID(), 0); !errors.Is(err, domain.ErrOccurrenceNotPending) {
		t.Fatalf("second record err = %v, want ErrOccurrenceNotPending", err)
	}
	if got := checking.Balance().String(); got != "4050" {
		t.Errorf("balance moved on rejected record: %s", got)
	}
}

func TestScheduleService_RecordOccurrence_UsesOverrides(t *testing.T) {
	env := newScheduleEnv()
	checking := mustAccount(t, "checking", domain.AccountAsset, "5000")
	env.accountRepo.Seed(checking)

	schedule, err := env.schedules.Create(context.Background(), monthlyRentInput(t))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Landlord bumped February's rent and moved the due date.
	if err := env.schedules.RescheduleOccurrence(context.Background(), schedule.ID(), 1, domain.DayDateOf(2024, time.February, 5)); err != nil {
		t.Fatalf("RescheduleOccurrence: %v", err)
	}
	if err := env.schedules.ResplitOccurrence(context.Background(), schedule.ID(), 1, splits(t, "checking", "975"), nil); err != nil {
		t.Fatalf("ResplitOccurrence: %v", err)
	}

	transaction, err := env.schedules.RecordOccurrence(context.Background(), schedule.ID(), 1)
	if err != nil {
		t.Fatalf("RecordOccurrence: %v", err)
	}
	if got := transaction.TotalOrigin().String(); got != "975" {
		t.Errorf("amount = %s, want 975", got)
	}
	if want := domain.DayDateOf(2024, time.February, 5); !transaction.Date().Equal(want) {
		t.Errorf("date = %s, want %s", transaction.Date(), want)
	}
	if got := checking.Balance().String(); got != "4025" {
		t.Errorf("balance = %s, want 4025", got)
	}
}

func TestScheduleService_RecordOccurrence_MarkerSharesTransaction(t *testing.T) {
	env := newScheduleEnv()
	env.accountRepo.Seed(mustAccount(t, "checking", domain.AccountAsset, "5000"))

	schedule, err := env.schedules.Create(context.Background(), monthlyRentInput(t))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// The ledger write and the completed marker must share one database
	// transaction. If the marker write fails, the ledger write rolls back
	// with it and the occurrence stays pending, so a retry records the
	// money exactly once instead of twice.
	errStorage := errors.New("storage unavailable")
	var ledgerTxs, markerTxs []usecase.Transaction
	env.transactionRepo.PersistFunc = func(ctx context.Context, tx usecase.Transaction, transaction *domain.Transaction) error {
		ledgerTxs = append(ledgerTxs, tx)
		return nil
	}
	markerWrites := 0
	env.modificationRepo.PersistFunc = func(ctx context.Context, tx usecase.Transaction, mod *domain.RecurrenceModification) error {
		markerTxs = append(markerTxs, tx)
		markerWrites++
		if markerWrites == 1 {
			return errStorage
		}
		env.modificationRepo.Seed(mod)
		return nil
	}

	if _, err := env.schedules.RecordOccurrence(context.Background(), schedule.ID(), 0); !errors.Is(err, errStorage) {
		t.Fatalf("first record err = %v, want errStorage", err)
	}
	if len(ledgerTxs) != 1 || len(markerTxs) != 1 || ledgerTxs[0] != markerTxs[0] {
		t.Fatalf("ledger and marker writes did not share a transaction: %v vs %v", ledgerTxs, markerTxs)
	}
	failed := env.txManager.Transactions[len(env.txManager.Transactions)-1]
	if failed.Committed || !failed.RolledBack {
		t.Errorf("failed attempt: committed = %t, rolled back = %t; want rollback", failed.Committed, failed.RolledBack)
	}

	occurrence, err := env.schedules.GetOccurrence(context.Background(), schedule.ID(), 0)
	if err != nil {
		t.Fatalf("GetOccurrence: %v", err)
	}
	if occurrence.State != domain.OccurrencePending {
		t.Fatalf("state after failed record = %s, want pending", occurrence.State)
	}

	// The retry is the first attempt that sticks.
	if _, err := env.schedules.RecordOccurrence(context.Background(), schedule.ID(), 0); err != nil {
		t.Fatalf("retry: %v", err)
	}
	committed := env.txManager.Transactions[len(env.txManager.Transactions)-1]
	if !committed.Committed {
		t.Error("retry transaction was not committed")
	}
	if len(ledgerTxs) != 2 || len(markerTxs) != 2 || ledgerTxs[1] != markerTxs[1] {
		t.Fatalf("retry writes did not share a transaction: %v vs %v", ledgerTxs, markerTxs)
	}

	// A second retry finds the occurrence completed and moves no money.
	if _, err := env.schedules.RecordOccurrence(context.Background(), schedule.ID(), 0); !errors.Is(err, domain.ErrOccurrenceNotPending) {
		t.Fatalf("record after retry err = %v, want ErrOccurrenceNotPending", err)
	}
	if len(ledgerTxs) != 2 {
		t.Errorf("ledger writes = %d, want 2", len(ledgerTxs))
	}
}

func TestScheduleService_SkipAndReset(t *testing.T) {
	env := newScheduleEnv()
	env.accountRepo.Seed(mustAccount(t, "checking", domain.AccountAsset, "5000"))

	schedule, err := env.schedules.Create(context.Background(), monthlyRentInput(t))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := env.schedules.SkipOccurrence(context.Background(), schedule.ID(), 3); err != nil {
		t.Fatalf("SkipOccurrence: %v", err)
	}
	occurrence, err := env.schedules.GetOccurrence(context.Background(), schedule.ID(), 3)
	if err != nil {
		t.Fatalf("GetOccurrence: %v", err)
	}
	if occurrence.State != domain.OccurrenceSkipped {
		t.Errorf("state = %s, want skipped", occurrence.State)
	}

	// Skipped occurrences can't be recorded.
	if _, err := env.schedules.RecordOccurrence(context.Background(), schedule.ID(), 3); !errors.Is(err, domain.ErrOccurrenceNotPending) {
		t.Fatalf("record skipped err = %v, want ErrOccurrenceNotPending", err)
	}

	if err := env.schedules.ResetOccurrence(context.Background(), schedule.ID(), 3); err != nil {
		t.Fatalf("ResetOccurrence: %v", err)
	}
	occurrence, err = env.schedules.GetOccurrence(context.Background(), schedule.ID(), 3)
	if err != nil {
		t.Fatalf("GetOccurrence after reset: %v", err)
	}
	if occurrence.State != domain.OccurrencePending {
		t.Errorf("state after reset = %s, want pending", occurrence.State)
	}
}

func TestScheduleService_OccurrenceOutOfRange(t *testing.T) {
	env := newScheduleEnv()

	pattern, err := domain.NewCountedPattern(
		domain.DayDateOf(2024, time.January, 1),
		domain.MustParseFrequency("1mo"),
		3,
	)
	if err != nil {
		t.Fatalf("NewCountedPattern: %v", err)
	}
	input := monthlyRentInput(t)
	input.Pattern = pattern

	schedule, err := env.schedules.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := env.schedules.GetOccurrence(context.Background(), schedule.ID(), 3); !errors.Is(err, domain.ErrOccurrenceOutOfRange) {
		t.Errorf("GetOccurrence(3) err = %v, want ErrOccurrenceOutOfRange", err)
	}
	if err := env.schedules.SkipOccurrence(context.Background(), schedule.ID(), 5); !errors.Is(err, domain.ErrOccurrenceOutOfRange) {
		t.Errorf("SkipOccurrence(5) err = %v, want ErrOccurrenceOutOfRange", err)
	}
}

func TestScheduleService_Delete_RemovesModifications(t *testing.T) {
	env := newScheduleEnv()
	env.accountRepo.Seed(mustAccount(t, "checking", domain.AccountAsset, "5000"))

	schedule, err := env.schedules.Create(context.Background(), monthlyRentInput(t))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := env.schedules.SkipOccurrence(context.Background(), schedule.ID(), 0); err != nil {
		t.Fatalf("SkipOccurrence: %v", err)
	}

	if err := env.schedules.Delete(context.Background(), schedule.ID()); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := env.schedules.Get(context.Background(), schedule.ID()); !errors.Is(err, domain.ErrScheduleNotFound) {
		t.Errorf("deleted schedule still found, err = %v", err)
	}
	mods, err := env.modificationRepo.FindBySchedule(context.Background(), schedule.ID())
	if err != nil {
		t.Fatalf("FindBySchedule: %v", err)
	}
	if len(mods) != 0 {
		t.Errorf("modifications survived schedule deletion: %d", len(mods))
	}
}

func TestScheduleService_UpcomingOccurrences(t *testing.T) {
	env := newScheduleEnv()
	env.accountRepo.Seed(mustAccount(t, "checking", domain.AccountAsset, "5000"))

	rent, err := env.schedules.Create(context.Background(), monthlyRentInput(t))
	if err != nil {
		t.Fatalf("Create rent: %v", err)
	}

	oneTime, err := domain.NewOneTimePattern(domain.DayDateOf(2024, time.January, 20))
	if err != nil {
		t.Fatalf("NewOneTimePattern: %v", err)
	}
	input := usecase.CreateScheduleInput{
		Name:         "insurance",
		Operation:    domain.OperationExpense,
		Category:     "Insurance",
		Pattern:      oneTime,
		OriginSplits: splits(t, "checking", "320"),
	}
	if _, err := env.schedules.Create(context.Background(), input); err != nil {
		t.Fatalf("Create insurance: %v", err)
	}

	// Skip February's rent; it must drop out of the projection.
	if err := env.schedules.SkipOccurrence(context.Background(), rent.ID(), 1); err != nil {
		t.Fatalf("SkipOccurrence: %v", err)
	}

	upcoming, err := env.schedules.UpcomingOccurrences(context.Background(), domain.DayDateOf(2024, time.March, 31))
	if err != nil {
		t.Fatalf("UpcomingOccurrences: %v", err)
	}

	// Jan rent, Jan insurance, Mar rent. Feb rent is skipped.
	if len(upcoming) != 3 {
		t.Fatalf("len = %d, want 3: %+v", len(upcoming), upcoming)
	}
	wantNames := []string{"rent", "insurance", "rent"}
	for i, occurrence := range upcoming {
		if occurrence.Name != wantNames[i] {
			t.Errorf("upcoming[%d] = %s, want %s", i, occurrence.Name, wantNames[i])
		}
		if i > 0 && upcoming[i-1].Date.After(occurrence.Date) {
			t.Errorf("upcoming not sorted: %s before %s", upcoming[i-1].Date, occurrence.Date)
		}
	}
}

func TestScheduleService_Update_KeepsRecordedOccurrences(t *testing.T) {
	env := newScheduleEnv()
	checking := mustAccount(t, "checking", domain.AccountAsset, "5000")
	env.accountRepo.Seed(checking)

	schedule, err := env.schedules.Create(context.Background(), monthlyRentInput(t))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	recorded, err := env.schedules.RecordOccurrence(context.Background(), schedule.ID(), 0)
	if err != nil {
		t.Fatalf("RecordOccurrence: %v", err)
	}

	_, err = env.schedules.Update(context.Background(), schedule.ID(), usecase.UpdateScheduleInput{
		Name:         "rent (new lease)",
		Operation:    domain.OperationExpense,
		Category:     "Housing",
		SubCategory:  "Rent",
		OriginSplits: splits(t, "checking", "1100"),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	// The already-recorded transaction keeps its historical values.
	stored, err := env.transactionRepo.FindByID(context.Background(), recorded.ID())
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got := stored.TotalOrigin().String(); got != "950" {
		t.Errorf("recorded amount = %s, want 950", got)
	}

	// Pending occurrences project the new template.
	occurrence, err := env.schedules.GetOccurrence(context.Background(), schedule.ID(), 1)
	if err != nil {
		t.Fatalf("GetOccurrence: %v", err)
	}
	if got := occurrence.OriginSplits[0].Amount.String(); got != "1100" {
		t.Errorf("projected amount = %s, want 1100", got)
	}
	if occurrence.Name != "rent (new lease)" {
		t.Errorf("projected name = %s", occurrence.Name)
	}
}
