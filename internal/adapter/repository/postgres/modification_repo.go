package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finwell/cashplan/internal/domain"
	"github.com/finwell/cashplan/internal/usecase"
)

const modificationColumns = `id, schedule_id, occurrence_index, original_date::text, state,
	date_override::text, origin_splits, destination_splits, updated_at`

// ModificationRepository implements usecase.ModificationRepository. One row
// per (schedule, occurrence index), upserted in place so an occurrence never
// accumulates duplicate override records.
type ModificationRepository struct {
	pool *pgxpool.Pool
}

// NewModificationRepository creates a new ModificationRepository.
func NewModificationRepository(pool *pgxpool.Pool) *ModificationRepository {
	return &ModificationRepository{pool: pool}
}

// FindByOccurrence retrieves the modification for one occurrence. A nil
// result without error means the occurrence is unmodified.
func (r *ModificationRepository) FindByOccurrence(ctx context.Context, scheduleID string, occurrenceIndex int) (*domain.RecurrenceModification, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+modificationColumns+" FROM modifications WHERE schedule_id = $1 AND occurrence_index = $2",
		scheduleID, occurrenceIndex)

	mod, err := scanModification(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return mod, err
}

// FindBySchedule retrieves every modification of one schedule.
func (r *ModificationRepository) FindBySchedule(ctx context.Context, scheduleID string) ([]*domain.RecurrenceModification, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+modificationColumns+" FROM modifications WHERE schedule_id = $1 ORDER BY occurrence_index",
		scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mods []*domain.RecurrenceModification
	for rows.Next() {
		mod, err := scanModification(rows)
		if err != nil {
			return nil, err
		}
		mods = append(mods, mod)
	}
	return mods, rows.Err()
}

// Persist inserts or fully replaces a modification.
func (r *ModificationRepository) Persist(ctx context.Context, tx usecase.Transaction, modification *domain.RecurrenceModification) error {
	prims := modification.Primitives()

	var origin, destination []byte
	if prims.OriginSplits != nil || prims.DestinationSplits != nil {
		var err error
		if origin, err = json.Marshal(prims.OriginSplits); err != nil {
			return err
		}
		if destination, err = json.Marshal(prims.DestinationSplits); err != nil {
			return err
		}
	}

	_, err := txQuerier(tx).Exec(ctx, `
		INSERT INTO modifications (
			id, schedule_id, occurrence_index, original_date, state,
			date_override, origin_splits, destination_splits, updated_at
		)
		VALUES ($1, $2, $3, $4::date, $5, $6::date, $7, $8, $9)
		ON CONFLICT (schedule_id, occurrence_index) DO UPDATE SET
			state = EXCLUDED.state,
			date_override = EXCLUDED.date_override,
			origin_splits = EXCLUDED.origin_splits,
			destination_splits = EXCLUDED.destination_splits,
			updated_at = EXCLUDED.updated_at`,
		prims.ID, prims.ScheduleID, prims.OccurrenceIndex, prims.OriginalDate,
		prims.State, nullString(prims.Date), nullBytes(origin), nullBytes(destination),
		modification.UpdatedAt())
	return err
}

// DeleteByOccurrence removes the modification for one occurrence; deleting
// a missing record is a no-op.
func (r *ModificationRepository) DeleteByOccurrence(ctx context.Context, tx usecase.Transaction, scheduleID string, occurrenceIndex int) error {
	_, err := txQuerier(tx).Exec(ctx,
		"DELETE FROM modifications WHERE schedule_id = $1 AND occurrence_index = $2",
		scheduleID, occurrenceIndex)
	return err
}

// DeleteBySchedule removes every modification of one schedule.
func (r *ModificationRepository) DeleteBySchedule(ctx context.Context, tx usecase.Transaction, scheduleID string) error {
	_, err := txQuerier(tx).Exec(ctx, "DELETE FROM modifications WHERE schedule_id = $1", scheduleID)
	return err
}

func scanModification(row pgx.Row) (*domain.RecurrenceModification, error) {
	var (
		prims        domain.ModificationPrimitives
		dateOverride *string
		origin       []byte
		destination  []byte
		updatedAt    time.Time
	)
	err := row.Scan(&prims.ID, &prims.ScheduleID, &prims.OccurrenceIndex,
		&prims.OriginalDate, &prims.State, &dateOverride, &origin, &destination, &updatedAt)
	if err != nil {
		return nil, err
	}

	if dateOverride != nil {
		prims.Date = *dateOverride
	}
	if origin != nil {
		if err := json.Unmarshal(origin, &prims.OriginSplits); err != nil {
			return nil, err
		}
	}
	if destination != nil {
		if err := json.Unmarshal(destination, &prims.DestinationSplits); err != nil {
			return nil, err
		}
	}
	prims.UpdatedAt = updatedAt.Format(time.RFC3339Nano)

	return domain.ModificationFromPrimitives(prims)
}
