package domain

import (
	"testing"
	"time"
)

func TestTransactionPrimitives_RoundTrip(t *testing.T) {
	original := mustTransaction(t, TransactionDraft{
		ID:          "t1",
		ScheduleID:  "s1",
		Name:        "groceries",
		Operation:   OperationTransfer,
		Category:    "Food",
		SubCategory: "Groceries",
		Date:        DayDateOf(2024, time.March, 14),
		OriginSplits: []Split{
			{AccountID: "checking", Amount: MoneyFromFloat(60.5)},
			{AccountID: "savings", Amount: MoneyFromFloat(20)},
		},
		DestinationSplits: []Split{{AccountID: "card", Amount: MoneyFromFloat(80.5)}},
		Store:             "Corner Market",
		UpdatedAt:         time.Date(2024, time.March, 14, 9, 30, 0, 0, time.UTC),
	})

	restored, err := TransactionFromPrimitives(original.Primitives())
	if err != nil {
		t.Fatalf("from primitives: %v", err)
	}

	if restored.ID() != original.ID() || restored.ScheduleID() != original.ScheduleID() {
		t.Errorf("identity mismatch: got %q/%q", restored.ID(), restored.ScheduleID())
	}
	if restored.Name() != original.Name() || restored.Store() != original.Store() {
		t.Errorf("name/store mismatch: got %q/%q", restored.Name(), restored.Store())
	}
	if restored.Operation() != original.Operation() {
		t.Errorf("operation: got %q, want %q", restored.Operation(), original.Operation())
	}
	if restored.Category() != original.Category() || restored.SubCategory() != original.SubCategory() {
		t.Errorf("category mismatch: got %q/%q", restored.Category(), restored.SubCategory())
	}
	if !restored.Date().Equal(original.Date()) {
		t.Errorf("date: got %v, want %v", restored.Date(), original.Date())
	}
	if !restored.UpdatedAt().Equal(original.UpdatedAt()) {
		t.Errorf("updatedAt: got %v, want %v", restored.UpdatedAt(), original.UpdatedAt())
	}
	if len(restored.OriginSplits()) != 2 {
		t.Fatalf("origin splits: got %d, want 2", len(restored.OriginSplits()))
	}
	if !restored.TotalOrigin().Equal(original.TotalOrigin()) {
		t.Errorf("total origin: got %s, want %s", restored.TotalOrigin(), original.TotalOrigin())
	}
	if !restored.TotalDestination().Equal(original.TotalDestination()) {
		t.Errorf("total destination: got %s, want %s", restored.TotalDestination(), original.TotalDestination())
	}
}

func TestSchedulePrimitives_RoundTrip(t *testing.T) {
	pattern, err := NewUntilDatePattern(DayDateOf(2024, time.January, 1), MustParseFrequency("2w"), DayDateOf(2024, time.December, 31))
	if err != nil {
		t.Fatalf("pattern: %v", err)
	}

	original, err := NewScheduledTransaction(ScheduleDraft{
		ID:           "s1",
		Name:         "paycheck",
		Operation:    OperationIncome,
		Category:     "Income",
		SubCategory:  "Salary",
		OriginSplits: []Split{{AccountID: "checking", Amount: MoneyFromFloat(1800)}},
		Pattern:      pattern,
		Tags:         []string{"job", "biweekly"},
		UpdatedAt:    time.Date(2024, time.January, 2, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	restored, err := ScheduleFromPrimitives(original.Primitives())
	if err != nil {
		t.Fatalf("from primitives: %v", err)
	}

	if restored.ID() != original.ID() || restored.Name() != original.Name() {
		t.Errorf("identity mismatch: got %q/%q", restored.ID(), restored.Name())
	}
	if restored.Operation() != original.Operation() {
		t.Errorf("operation: got %q, want %q", restored.Operation(), original.Operation())
	}
	if got, want := restored.Tags(), original.Tags(); len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("tags: got %v, want %v", got, want)
	}
	if !restored.UpdatedAt().Equal(original.UpdatedAt()) {
		t.Errorf("updatedAt: got %v, want %v", restored.UpdatedAt(), original.UpdatedAt())
	}

	if restored.Pattern().Type() != original.Pattern().Type() {
		t.Errorf("pattern type: got %q, want %q", restored.Pattern().Type(), original.Pattern().Type())
	}
	if !restored.Pattern().StartDate().Equal(original.Pattern().StartDate()) {
		t.Errorf("start date: got %v, want %v", restored.Pattern().StartDate(), original.Pattern().StartDate())
	}
	origEnd, _ := original.Pattern().EndDate()
	restEnd, _ := restored.Pattern().EndDate()
	if !restEnd.Equal(origEnd) {
		t.Errorf("end date: got %v, want %v", restEnd, origEnd)
	}

	origFreq, _ := original.Pattern().Frequency()
	restFreq, _ := restored.Pattern().Frequency()
	if restFreq.ToNumberOfDays() != origFreq.ToNumberOfDays() {
		t.Errorf("frequency: got %v days, want %v", restFreq.ToNumberOfDays(), origFreq.ToNumberOfDays())
	}
}

func TestAccountPrimitives_RoundTrip(t *testing.T) {
	original, err := NewAccount("a1", "Visa", AccountLiability, MoneyFromFloat(412.07), time.Date(2024, time.May, 2, 8, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("account: %v", err)
	}

	restored, err := AccountFromPrimitives(original.Primitives())
	if err != nil {
		t.Fatalf("from primitives: %v", err)
	}

	if restored.ID() != original.ID() || restored.Name() != original.Name() {
		t.Errorf("identity mismatch: got %q/%q", restored.ID(), restored.Name())
	}
	if restored.Type() != original.Type() {
		t.Errorf("type: got %q, want %q", restored.Type(), original.Type())
	}
	if !restored.Balance().Equal(original.Balance()) {
		t.Errorf("balance: got %s, want %s", restored.Balance(), original.Balance())
	}
	if !restored.UpdatedAt().Equal(original.UpdatedAt()) {
		t.Errorf("updatedAt: got %v, want %v", restored.UpdatedAt(), original.UpdatedAt())
	}
}

func TestModificationPrimitives_RoundTrip(t *testing.T) {
	original, err := NewRecurrenceModification("m1", "s1", 4, DayDateOf(2024, time.May, 1))
	if err != nil {
		t.Fatalf("modification: %v", err)
	}
	original.Reschedule(DayDateOf(2024, time.May, 3))
	if err := original.Resplit([]Split{{AccountID: "checking", Amount: MoneyFromFloat(75)}}, nil); err != nil {
		t.Fatalf("resplit: %v", err)
	}
	if err := original.MarkCompleted(); err != nil {
		t.Fatalf("mark completed: %v", err)
	}

	restored, err := ModificationFromPrimitives(original.Primitives())
	if err != nil {
		t.Fatalf("from primitives: %v", err)
	}

	if restored.ID() != original.ID() || restored.ScheduleID() != original.ScheduleID() {
		t.Errorf("identity mismatch: got %q/%q", restored.ID(), restored.ScheduleID())
	}
	if restored.OccurrenceIndex() != original.OccurrenceIndex() {
		t.Errorf("occurrence index: got %d, want %d", restored.OccurrenceIndex(), original.OccurrenceIndex())
	}
	if !restored.OriginalDate().Equal(original.OriginalDate()) {
		t.Errorf("original date: got %v, want %v", restored.OriginalDate(), original.OriginalDate())
	}
	if restored.State() != OccurrenceCompleted {
		t.Errorf("state: got %q, want %q", restored.State(), OccurrenceCompleted)
	}

	override, ok := restored.DateOverride()
	if !ok || !override.Equal(DayDateOf(2024, time.May, 3)) {
		t.Errorf("date override: got %v (ok=%v)", override, ok)
	}

	origin, destination, ok := restored.SplitOverrides()
	if !ok {
		t.Fatal("expected split overrides")
	}
	if len(origin) != 1 || len(destination) != 0 {
		t.Fatalf("overrides: got %d origin, %d destination", len(origin), len(destination))
	}
	if origin[0].Amount.String() != "75" {
		t.Errorf("override amount: got %s, want 75", origin[0].Amount)
	}
}

func TestPatternPrimitives_RejectsBadCombos(t *testing.T) {
	_, err := PatternFromPrimitives(PatternPrimitives{
		Type:      string(PatternOneTime),
		StartDate: "2024-01-01",
		Frequency: "1mo",
	})
	if err == nil {
		t.Fatal("expected error for one-time pattern with frequency")
	}
}
