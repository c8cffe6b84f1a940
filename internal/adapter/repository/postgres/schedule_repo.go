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

const scheduleColumns = `id, name, operation, category, sub_category, pattern,
	origin_splits, destination_splits, COALESCE(store, ''), tags, updated_at`

var scheduleFilterColumns = map[string]string{
	"id":           "id",
	"name":         "name",
	"operation":    "operation",
	"category":     "category",
	"sub_category": "sub_category",
	"store":        "store",
}

// ScheduleRepository implements usecase.ScheduleRepository. The recurrence
// pattern and split lists are stored as jsonb in their primitives shape.
type ScheduleRepository struct {
	pool *pgxpool.Pool
}

// NewScheduleRepository creates a new ScheduleRepository.
func NewScheduleRepository(pool *pgxpool.Pool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

// FindByID retrieves a schedule by id.
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*domain.ScheduledTransaction, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+scheduleColumns+" FROM schedules WHERE id = $1", id)
	return scanSchedule(row)
}

// FindAll retrieves every schedule.
func (r *ScheduleRepository) FindAll(ctx context.Context) ([]*domain.ScheduledTransaction, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+scheduleColumns+" FROM schedules ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSchedules(rows)
}

// FindByCriteria retrieves schedules matching criteria.
func (r *ScheduleRepository) FindByCriteria(ctx context.Context, criteria usecase.Criteria) ([]*domain.ScheduledTransaction, error) {
	where, args, err := buildWhere(criteria, scheduleFilterColumns)
	if err != nil {
		return nil, err
	}
	suffix, err := buildSuffix(criteria, scheduleFilterColumns)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, "SELECT "+scheduleColumns+" FROM schedules"+where+suffix, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSchedules(rows)
}

// Persist inserts or fully replaces a schedule.
func (r *ScheduleRepository) Persist(ctx context.Context, tx usecase.Transaction, schedule *domain.ScheduledTransaction) error {
	prims := schedule.Primitives()
	pattern, err := json.Marshal(prims.RecurrencePattern)
	if err != nil {
		return err
	}
	origin, err := json.Marshal(prims.OriginSplits)
	if err != nil {
		return err
	}
	destination, err := json.Marshal(prims.DestinationSplits)
	if err != nil {
		return err
	}

	_, err = txQuerier(tx).Exec(ctx, `
		INSERT INTO schedules (
			id, name, operation, category, sub_category, pattern,
			origin_splits, destination_splits, store, tags, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			operation = EXCLUDED.operation,
			category = EXCLUDED.category,
			sub_category = EXCLUDED.sub_category,
			pattern = EXCLUDED.pattern,
			origin_splits = EXCLUDED.origin_splits,
			destination_splits = EXCLUDED.destination_splits,
			store = EXCLUDED.store,
			tags = EXCLUDED.tags,
			updated_at = EXCLUDED.updated_at`,
		prims.ID, prims.Name, prims.Operation, prims.Category, prims.SubCategory,
		pattern, origin, destination, nullString(prims.Store), prims.Tags,
		schedule.UpdatedAt())
	return err
}

// DeleteByID removes a schedule.
func (r *ScheduleRepository) DeleteByID(ctx context.Context, tx usecase.Transaction, id string) error {
	tag, err := txQuerier(tx).Exec(ctx, "DELETE FROM schedules WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrScheduleNotFound
	}
	return nil
}

// Exists reports whether a schedule exists.
func (r *ScheduleRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM schedules WHERE id = $1)", id).Scan(&exists)
	return exists, err
}

func scanSchedule(row pgx.Row) (*domain.ScheduledTransaction, error) {
	var (
		prims       domain.SchedulePrimitives
		pattern     []byte
		origin      []byte
		destination []byte
		updatedAt   time.Time
	)
	err := row.Scan(&prims.ID, &prims.Name, &prims.Operation, &prims.Category,
		&prims.SubCategory, &pattern, &origin, &destination, &prims.Store,
		&prims.Tags, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrScheduleNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(pattern, &prims.RecurrencePattern); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(origin, &prims.OriginSplits); err != nil {
		return nil, err
	}
	if destination != nil {
		if err := json.Unmarshal(destination, &prims.DestinationSplits); err != nil {
			return nil, err
		}
	}
	prims.UpdatedAt = updatedAt.Format(time.RFC3339Nano)

	return domain.ScheduleFromPrimitives(prims)
}

func scanSchedules(rows pgx.Rows) ([]*domain.ScheduledTransaction, error) {
	var schedules []*domain.ScheduledTransaction
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}
	return schedules, rows.Err()
}
