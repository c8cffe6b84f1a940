package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/finwell/cashplan/internal/domain"
	"github.com/finwell/cashplan/internal/infrastructure/metrics"
)

// ScheduleService manages scheduled transaction templates and their
// per-occurrence modification records. Occurrence dates are derived lazily
// from the recurrence pattern; only deviations from the template are stored.
type ScheduleService struct {
	txManager        TransactionManager
	scheduleRepo     ScheduleRepository
	modificationRepo ModificationRepository
	transactions     *TransactionsService
	categories       CategoryLookup
	idGen            IDGenerator
	metrics          *metrics.Metrics
	logger           zerolog.Logger

	projections ProjectionInvalidator
}

// ProjectionInvalidator drops derived figures after a template write.
type ProjectionInvalidator interface {
	Invalidate(ctx context.Context)
}

// NewScheduleService creates a new ScheduleService.
func NewScheduleService(
	txManager TransactionManager,
	scheduleRepo ScheduleRepository,
	modificationRepo ModificationRepository,
	transactions *TransactionsService,
	categories CategoryLookup,
	idGen IDGenerator,
	logger zerolog.Logger,
) *ScheduleService {
	return &ScheduleService{
		txManager:        txManager,
		scheduleRepo:     scheduleRepo,
		modificationRepo: modificationRepo,
		transactions:     transactions,
		categories:       categories,
		idGen:            idGen,
		logger:           logger,
	}
}

// WithMetrics attaches schedule instrumentation. Without it the service
// runs unobserved.
func (s *ScheduleService) WithMetrics(m *metrics.Metrics) *ScheduleService {
	s.metrics = m
	return s
}

// AttachProjections registers the projection cache to invalidate after
// every schedule write. Optional; nil means no cached projections.
func (s *ScheduleService) AttachProjections(p ProjectionInvalidator) {
	s.projections = p
}

func (s *ScheduleService) invalidateProjections(ctx context.Context) {
	if s.projections != nil {
		s.projections.Invalidate(ctx)
	}
}

// CreateScheduleInput represents input for creating a scheduled transaction.
type CreateScheduleInput struct {
	Name              string
	Operation         domain.Operation
	Category          string
	SubCategory       string
	Pattern           *domain.RecurrencePattern
	OriginSplits      []domain.Split
	DestinationSplits []domain.Split
	Store             string
	Tags              []string
}

// Create validates and persists a new scheduled transaction.
func (s *ScheduleService) Create(ctx context.Context, input CreateScheduleInput) (*domain.ScheduledTransaction, error) {
	schedule, err := domain.NewScheduledTransaction(domain.ScheduleDraft{
		ID:                s.idGen.Generate(),
		Name:              input.Name,
		Operation:         input.Operation,
		Category:          input.Category,
		SubCategory:       input.SubCategory,
		Pattern:           input.Pattern,
		OriginSplits:      input.OriginSplits,
		DestinationSplits: input.DestinationSplits,
		Store:             input.Store,
		Tags:              input.Tags,
	})
	if err != nil {
		return nil, err
	}

	if err := s.checkCategory(ctx, input.Category, input.SubCategory); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.scheduleRepo.Persist(ctx, tx, schedule); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.invalidateProjections(ctx)

	if s.metrics != nil {
		s.metrics.SchedulesActive.Inc()
	}
	s.logger.Info().
		Str("schedule_id", schedule.ID()).
		Str("name", schedule.Name()).
		Msg("schedule created")

	return schedule, nil
}

// UpdateScheduleInput represents input for updating a scheduled transaction.
// The pattern is immutable after creation; changing cadence means deleting
// the schedule and creating a new one.
type UpdateScheduleInput struct {
	Name              string
	Operation         domain.Operation
	Category          string
	SubCategory       string
	OriginSplits      []domain.Split
	DestinationSplits []domain.Split
	Store             string
	Tags              []string
}

// Update replaces a schedule's template fields. Already-recorded occurrences
// keep the values they were recorded with; pending occurrences project the
// new template.
func (s *ScheduleService) Update(ctx context.Context, id string, input UpdateScheduleInput) (*domain.ScheduledTransaction, error) {
	schedule, err := s.scheduleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkCategory(ctx, input.Category, input.SubCategory); err != nil {
		return nil, err
	}

	if err := schedule.UpdateOperation(input.Operation); err != nil {
		return nil, err
	}
	if err := schedule.UpdateSplits(input.OriginSplits, input.DestinationSplits); err != nil {
		return nil, err
	}
	schedule.UpdateName(input.Name)
	schedule.UpdateCategory(input.Category, input.SubCategory)
	schedule.UpdateStore(input.Store)
	schedule.UpdateTags(input.Tags)

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.scheduleRepo.Persist(ctx, tx, schedule); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.invalidateProjections(ctx)

	s.logger.Info().Str("schedule_id", id).Msg("schedule updated")

	return schedule, nil
}

// Delete removes a schedule and all of its modification records. Recorded
// transactions survive: they are ledger history, not projections.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	if _, err := s.scheduleRepo.FindByID(ctx, id); err != nil {
		return err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.modificationRepo.DeleteBySchedule(ctx, tx, id); err != nil {
		return err
	}
	if err := s.scheduleRepo.DeleteByID(ctx, tx, id); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.invalidateProjections(ctx)

	if s.metrics != nil {
		s.metrics.SchedulesActive.Dec()
	}
	s.logger.Info().Str("schedule_id", id).Msg("schedule deleted")

	return nil
}

// Get retrieves a schedule by id.
func (s *ScheduleService) Get(ctx context.Context, id string) (*domain.ScheduledTransaction, error) {
	return s.scheduleRepo.FindByID(ctx, id)
}

// List retrieves schedules matching criteria.
func (s *ScheduleService) List(ctx context.Context, criteria Criteria) ([]*domain.ScheduledTransaction, error) {
	return s.scheduleRepo.FindByCriteria(ctx, criteria)
}

// GetOccurrence projects a single occurrence: the template values overlaid
// with any stored modification for that index.
func (s *ScheduleService) GetOccurrence(ctx context.Context, scheduleID string, index int) (*domain.OccurrenceInfo, error) {
	schedule, err := s.scheduleRepo.FindByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	mod, err := s.modificationRepo.FindByOccurrence(ctx, scheduleID, index)
	if err != nil {
		return nil, err
	}

	return schedule.ResolveOccurrence(index, mod)
}

// RecordOccurrence turns a pending occurrence into a real ledger
// transaction and marks the occurrence completed. The projected values
// (with any overrides) become the transaction's values. The completed
// marker is persisted in the same database transaction as the ledger and
// balance writes, so a failure leaves the occurrence pending and the
// ledger untouched.
func (s *ScheduleService) RecordOccurrence(ctx context.Context, scheduleID string, index int) (*domain.Transaction, error) {
	schedule, err := s.scheduleRepo.FindByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	mod, err := s.loadOrCreateModification(ctx, schedule, index)
	if err != nil {
		return nil, err
	}

	occurrence, err := schedule.ResolveOccurrence(index, mod)
	if err != nil {
		return nil, err
	}
	if occurrence.State != domain.OccurrencePending {
		return nil, fmt.Errorf("%w: occurrence %d is %s", domain.ErrOccurrenceNotPending, index, occurrence.State)
	}

	if err := mod.MarkCompleted(); err != nil {
		return nil, err
	}

	transaction, err := s.transactions.RecordAndThen(ctx, RecordTransactionInput{
		ScheduleID:        scheduleID,
		Name:              occurrence.Name,
		Operation:         occurrence.Operation,
		Category:          occurrence.Category,
		SubCategory:       occurrence.SubCategory,
		Date:              occurrence.Date,
		OriginSplits:      occurrence.OriginSplits,
		DestinationSplits: occurrence.DestinationSplits,
		Store:             occurrence.Store,
	}, func(tx Transaction) error {
		return s.modificationRepo.Persist(ctx, tx, mod)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateProjections(ctx)

	if s.metrics != nil {
		s.metrics.OccurrencesRecorded.Inc()
	}
	s.logger.Info().
		Str("schedule_id", scheduleID).
		Int("occurrence", index).
		Str("transaction_id", transaction.ID()).
		Msg("occurrence recorded")

	return transaction, nil
}

// SkipOccurrence marks a pending occurrence skipped; it stops projecting
// but keeps its slot in the occurrence numbering.
func (s *ScheduleService) SkipOccurrence(ctx context.Context, scheduleID string, index int) error {
	if err := s.modifyOccurrence(ctx, scheduleID, index, (*domain.RecurrenceModification).MarkSkipped); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.OccurrencesSkipped.Inc()
	}
	return nil
}

// DeleteOccurrence marks a pending occurrence deleted.
func (s *ScheduleService) DeleteOccurrence(ctx context.Context, scheduleID string, index int) error {
	return s.modifyOccurrence(ctx, scheduleID, index, (*domain.RecurrenceModification).MarkDeleted)
}

// RescheduleOccurrence overrides one occurrence's date without touching the
// pattern or the other occurrences.
func (s *ScheduleService) RescheduleOccurrence(ctx context.Context, scheduleID string, index int, date domain.DayDate) error {
	return s.modifyOccurrence(ctx, scheduleID, index, func(mod *domain.RecurrenceModification) error {
		mod.Reschedule(date)
		return nil
	})
}

// ResplitOccurrence overrides one occurrence's splits.
func (s *ScheduleService) ResplitOccurrence(ctx context.Context, scheduleID string, index int, origin, destination []domain.Split) error {
	return s.modifyOccurrence(ctx, scheduleID, index, func(mod *domain.RecurrenceModification) error {
		return mod.Resplit(origin, destination)
	})
}

// ResetOccurrence discards all overrides and state for one occurrence,
// returning it to a plain pending projection of the template. The record
// itself is removed since a reset occurrence carries no information.
func (s *ScheduleService) ResetOccurrence(ctx context.Context, scheduleID string, index int) error {
	mod, err := s.modificationRepo.FindByOccurrence(ctx, scheduleID, index)
	if err != nil {
		return err
	}
	if mod == nil {
		return nil
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.modificationRepo.DeleteByOccurrence(ctx, tx, scheduleID, index); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.invalidateProjections(ctx)

	s.logger.Info().
		Str("schedule_id", scheduleID).
		Int("occurrence", index).
		Msg("occurrence reset")

	return nil
}

// UpcomingOccurrences projects the pending occurrences of every schedule up
// to and including the bound date, sorted by effective date. Skipped,
// deleted and completed occurrences are excluded.
func (s *ScheduleService) UpcomingOccurrences(ctx context.Context, bound domain.DayDate) ([]*domain.OccurrenceInfo, error) {
	schedules, err := s.scheduleRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	var upcoming []*domain.OccurrenceInfo
	for _, schedule := range schedules {
		mods, err := s.modificationRepo.FindBySchedule(ctx, schedule.ID())
		if err != nil {
			return nil, err
		}
		byIndex := make(map[int]*domain.RecurrenceModification, len(mods))
		for _, mod := range mods {
			byIndex[mod.OccurrenceIndex()] = mod
		}

		index := 0
		for range schedule.Pattern().OccurrencesUntil(bound) {
			occurrence, err := schedule.ResolveOccurrence(index, byIndex[index])
			if err != nil {
				return nil, err
			}
			index++
			if occurrence.State != domain.OccurrencePending {
				continue
			}
			// A date override can push an occurrence past the bound.
			if occurrence.Date.After(bound) {
				continue
			}
			upcoming = append(upcoming, occurrence)
		}
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].Date.Before(upcoming[j].Date)
	})

	return upcoming, nil
}

// modifyOccurrence loads or lazily creates the modification record for one
// occurrence, applies a mutation and persists the result.
func (s *ScheduleService) modifyOccurrence(ctx context.Context, scheduleID string, index int, apply func(*domain.RecurrenceModification) error) error {
	schedule, err := s.scheduleRepo.FindByID(ctx, scheduleID)
	if err != nil {
		return err
	}

	mod, err := s.loadOrCreateModification(ctx, schedule, index)
	if err != nil {
		return err
	}

	if err := apply(mod); err != nil {
		return err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.modificationRepo.Persist(ctx, tx, mod); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	// Occurrence state feeds the projection weighting.
	s.invalidateProjections(ctx)

	return nil
}

// loadOrCreateModification fetches the stored modification record for one
// occurrence, or builds a fresh pending one when none exists yet.
func (s *ScheduleService) loadOrCreateModification(ctx context.Context, schedule *domain.ScheduledTransaction, index int) (*domain.RecurrenceModification, error) {
	date, ok := schedule.Pattern().NthOccurrence(index)
	if !ok {
		return nil, fmt.Errorf("%w: index %d", domain.ErrOccurrenceOutOfRange, index)
	}

	mod, err := s.modificationRepo.FindByOccurrence(ctx, schedule.ID(), index)
	if err != nil {
		return nil, err
	}
	if mod == nil {
		mod, err = domain.NewRecurrenceModification(s.idGen.Generate(), schedule.ID(), index, date)
		if err != nil {
			return nil, err
		}
	}
	return mod, nil
}

func (s *ScheduleService) checkCategory(ctx context.Context, category, subCategory string) error {
	if s.categories == nil {
		return nil
	}

	ok, err := s.categories.CategoryExists(ctx, category)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrCategoryNotFound, category)
	}

	if subCategory == "" {
		return nil
	}
	ok, err = s.categories.SubCategoryExists(ctx, category, subCategory)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %q/%q", domain.ErrCategoryNotFound, category, subCategory)
	}
	return nil
}
