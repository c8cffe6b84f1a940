package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// Postgres error codes that indicate a transient conflict worth replaying.
const (
	pgErrSerializationFailure = "40001"
	pgErrDeadlock             = "40P01"
)

const (
	retryMaxAttempts     = 3
	retryInitialInterval = 50 * time.Millisecond
	retryMaxInterval     = time.Second
	retryMaxElapsed      = 10 * time.Second
)

// Retrier implements usecase.Retrier with exponential backoff. Balance
// writes lock account rows in sorted order, but concurrent writers can
// still deadlock or serialize-fail; replaying the whole transaction is the
// recovery path.
type Retrier struct {
	logger zerolog.Logger
}

// NewRetrier creates a retrier with default backoff settings.
func NewRetrier(logger zerolog.Logger) *Retrier {
	return &Retrier{logger: logger}
}

// Retry runs op, replaying it on serialization failures and deadlocks until
// it succeeds or the attempt budget runs out. Any other error is returned
// immediately.
func (r *Retrier) Retry(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retryInitialInterval
	b.MaxInterval = retryMaxInterval
	b.MaxElapsedTime = retryMaxElapsed

	wrapped := func() error {
		err := op()
		if err == nil || transientConflict(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	attempt := 0
	notify := func(err error, wait time.Duration) {
		attempt++
		r.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("backoff", wait).
			Msg("transient database conflict, replaying transaction")
	}

	policy := backoff.WithMaxRetries(backoff.WithContext(b, ctx), retryMaxAttempts)
	return backoff.RetryNotify(wrapped, policy, notify)
}

func transientConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgErrSerializationFailure || pgErr.Code == pgErrDeadlock
}
