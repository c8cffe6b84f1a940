package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/finwell/cashplan/internal/infrastructure/metrics"
)

// queryTracer feeds pgx query events into the database collectors, labeled
// by the query's leading SQL keyword.
type queryTracer struct {
	metrics *metrics.Metrics
}

type queryStartKey struct{}

type queryStart struct {
	verb  string
	begin time.Time
}

func (t *queryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryStartKey{}, queryStart{
		verb:  sqlVerb(data.SQL),
		begin: time.Now(),
	})
}

func (t *queryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(queryStartKey{}).(queryStart)
	if !ok {
		return
	}

	t.metrics.DBQueries.WithLabelValues(start.verb).Inc()
	t.metrics.DBDuration.WithLabelValues(start.verb).Observe(time.Since(start.begin).Seconds())
	if data.Err != nil {
		t.metrics.DBErrors.WithLabelValues(start.verb).Inc()
	}
}

func sqlVerb(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "unknown"
	}
	return strings.ToLower(fields[0])
}
