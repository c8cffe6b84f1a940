package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRegisterAndCount(t *testing.T) {
	m := New()

	m.TransactionsRecorded.WithLabelValues("expense").Inc()
	m.TransactionsRecorded.WithLabelValues("expense").Inc()
	m.TransactionsRecorded.WithLabelValues("income").Inc()

	if got := testutil.ToFloat64(m.TransactionsRecorded.WithLabelValues("expense")); got != 2 {
		t.Errorf("expense counter = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.TransactionsRecorded.WithLabelValues("income")); got != 1 {
		t.Errorf("income counter = %v, want 1", got)
	}

	m.IntegrityDiscrepancies.Set(3)
	if got := testutil.ToFloat64(m.IntegrityDiscrepancies); got != 3 {
		t.Errorf("discrepancies gauge = %v, want 3", got)
	}
}
