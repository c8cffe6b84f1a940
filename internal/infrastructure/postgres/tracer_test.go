package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/finwell/cashplan/internal/infrastructure/metrics"
)

func TestQueryTracer_CountsQueriesAndErrors(t *testing.T) {
	m := metrics.NewWith(prometheus.NewRegistry())
	tracer := &queryTracer{metrics: m}

	ctx := tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{
		SQL: "SELECT balance FROM accounts WHERE id = $1",
	})
	tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{})

	ctx = tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{
		SQL: "UPDATE accounts SET balance = $1",
	})
	tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{Err: errors.New("connection reset")})

	if got := testutil.ToFloat64(m.DBQueries.WithLabelValues("select")); got != 1 {
		t.Errorf("select queries = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.DBQueries.WithLabelValues("update")); got != 1 {
		t.Errorf("update queries = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.DBErrors.WithLabelValues("update")); got != 1 {
		t.Errorf("update errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.DBErrors.WithLabelValues("select")); got != 0 {
		t.Errorf("select errors = %v, want 0", got)
	}

	// An end without a matching start is ignored.
	tracer.TraceQueryEnd(context.Background(), nil, pgx.TraceQueryEndData{})
}

func TestSQLVerb(t *testing.T) {
	cases := []struct {
		sql  string
		want string
	}{
		{"SELECT 1", "select"},
		{"insert into transactions values ($1)", "insert"},
		{"  DELETE FROM schedules", "delete"},
		{"", "unknown"},
	}
	for _, tc := range cases {
		if got := sqlVerb(tc.sql); got != tc.want {
			t.Errorf("sqlVerb(%q) = %q, want %q", tc.sql, got, tc.want)
		}
	}
}
