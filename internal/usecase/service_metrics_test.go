package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/finwell/cashplan/internal/domain"
	"github.com/finwell/cashplan/internal/infrastructure/metrics"
	"github.com/finwell/cashplan/internal/usecase"
)

func TestTransactionsService_Metrics(t *testing.T) {
	env := newServiceEnv()
	m := metrics.NewWith(prometheus.NewRegistry())
	env.transactions.WithMetrics(m)

	checking := mustAccount(t, "checking", domain.AccountAsset, "1000")
	env.accountRepo.Seed(checking)
	date := domain.DayDateOf(2024, time.March, 15)

	recorded, err := env.transactions.Record(context.Background(), usecase.RecordTransactionInput{
		Name:         "groceries",
		Operation:    domain.OperationExpense,
		Category:     "Food",
		Date:         date,
		OriginSplits: splits(t, "checking", "60"),
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if got := testutil.ToFloat64(m.TransactionsRecorded.WithLabelValues(string(domain.OperationExpense))); got != 1 {
		t.Errorf("transactions recorded = %v, want 1", got)
	}

	if err := env.transactions.Delete(context.Background(), recorded.ID()); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := testutil.ToFloat64(m.TransactionsDeleted); got != 1 {
		t.Errorf("transactions deleted = %v, want 1", got)
	}

	if _, err := env.transactions.AccountAdjustment(context.Background(), "checking", mustMoney(t, "1200")); err != nil {
		t.Fatalf("AccountAdjustment: %v", err)
	}
	if got := testutil.ToFloat64(m.AdjustmentsRecorded); got != 1 {
		t.Errorf("adjustments recorded = %v, want 1", got)
	}

	// A no-op adjustment records nothing and counts nothing.
	if _, err := env.transactions.AccountAdjustment(context.Background(), "checking", checking.Balance()); err != nil {
		t.Fatalf("AccountAdjustment noop: %v", err)
	}
	if got := testutil.ToFloat64(m.AdjustmentsRecorded); got != 1 {
		t.Errorf("adjustments recorded after noop = %v, want 1", got)
	}
}

func TestScheduleService_Metrics(t *testing.T) {
	env := newScheduleEnv()
	m := metrics.NewWith(prometheus.NewRegistry())
	env.schedules.WithMetrics(m)

	env.accountRepo.Seed(mustAccount(t, "checking", domain.AccountAsset, "5000"))

	schedule, err := env.schedules.Create(context.Background(), monthlyRentInput(t))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := testutil.ToFloat64(m.SchedulesActive); got != 1 {
		t.Errorf("schedules active = %v, want 1", got)
	}

	if _, err := env.schedules.RecordOccurrence(context.Background(), schedule.ID(), 0); err != nil {
		t.Fatalf("RecordOccurrence: %v", err)
	}
	if got := testutil.ToFloat64(m.OccurrencesRecorded); got != 1 {
		t.Errorf("occurrences recorded = %v, want 1", got)
	}

	if err := env.schedules.SkipOccurrence(context.Background(), schedule.ID(), 1); err != nil {
		t.Fatalf("SkipOccurrence: %v", err)
	}
	if got := testutil.ToFloat64(m.OccurrencesSkipped); got != 1 {
		t.Errorf("occurrences skipped = %v, want 1", got)
	}

	if err := env.schedules.Delete(context.Background(), schedule.ID()); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := testutil.ToFloat64(m.SchedulesActive); got != 0 {
		t.Errorf("schedules active after delete = %v, want 0", got)
	}
}

func TestIntegrityService_Metrics(t *testing.T) {
	env := newServiceEnv()
	m := metrics.NewWith(prometheus.NewRegistry())
	service := newIntegrityService(env).WithMetrics(m)

	// A stored balance with no history behind it is drift.
	env.accountRepo.Seed(
		mustAccount(t, "clean", domain.AccountAsset, "0"),
		mustAccount(t, "drifted", domain.AccountAsset, "250"),
	)

	report, err := service.CheckAll(context.Background())
	if err != nil {
		t.Fatalf("CheckAll: %v", err)
	}
	if report.Discrepancies != 1 {
		t.Fatalf("discrepancies = %d, want 1", report.Discrepancies)
	}

	if got := testutil.ToFloat64(m.IntegrityChecks); got != 1 {
		t.Errorf("integrity checks = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.IntegrityDiscrepancies); got != 1 {
		t.Errorf("integrity discrepancies = %v, want 1", got)
	}
}
