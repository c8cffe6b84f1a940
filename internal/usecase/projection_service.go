package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/finwell/cashplan/internal/domain"
)

const (
	monthlyProjectionCacheKey = "projection:monthly"
	projectionCacheTTL        = 5 * time.Minute
)

// MonthlyProjection is the expected net cash flow for an average month,
// normalized across every active schedule's cadence.
type MonthlyProjection struct {
	Income   domain.Money
	Expenses domain.Money
	Net      domain.Money
}

// ProjectionService derives forward-looking figures from schedule
// templates. Every schedule contributes its real amount scaled by its
// monthly frequency factor, so a weekly groceries template weighs about
// 4.35 times its single-occurrence amount.
type ProjectionService struct {
	scheduleRepo     ScheduleRepository
	modificationRepo ModificationRepository
	accountRepo      AccountRepository
	cache            Cache
	cacheTTL         time.Duration
	logger           zerolog.Logger
}

// NewProjectionService creates a new ProjectionService. cache may be nil;
// projections are then recomputed on every call.
func NewProjectionService(
	scheduleRepo ScheduleRepository,
	modificationRepo ModificationRepository,
	accountRepo AccountRepository,
	cache Cache,
	logger zerolog.Logger,
) *ProjectionService {
	return &ProjectionService{
		scheduleRepo:     scheduleRepo,
		modificationRepo: modificationRepo,
		accountRepo:      accountRepo,
		cache:            cache,
		cacheTTL:         projectionCacheTTL,
		logger:           logger,
	}
}

// SetCacheTTL overrides how long computed projections stay cached.
func (s *ProjectionService) SetCacheTTL(ttl time.Duration) {
	if ttl > 0 {
		s.cacheTTL = ttl
	}
}

// Monthly computes the normalized monthly projection across all schedules.
func (s *ProjectionService) Monthly(ctx context.Context) (*MonthlyProjection, error) {
	if cached := s.fromCache(ctx); cached != nil {
		return cached, nil
	}

	schedules, err := s.scheduleRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	typeOf, err := s.accountTypes(ctx)
	if err != nil {
		return nil, err
	}

	income, expenses := domain.Zero, domain.Zero
	for _, schedule := range schedules {
		weight, err := s.pendingWeight(ctx, schedule)
		if err != nil {
			return nil, err
		}
		if weight.IsZero() {
			continue
		}
		factor := decimal.NewFromFloat(schedule.Pattern().MonthlyFrequencyFactor())
		contribution := schedule.RealAmount(typeOf).Mul(factor).Mul(weight)
		switch {
		case contribution.IsPositive():
			income = income.Add(contribution)
		case contribution.IsNegative():
			expenses = expenses.Add(contribution)
		}
	}

	projection := &MonthlyProjection{
		Income:   income,
		Expenses: expenses,
		Net:      income.Add(expenses),
	}
	s.toCache(ctx, projection)

	return projection, nil
}

// Invalidate drops the cached projection. Callers mutate schedules through
// ScheduleService, which invalidates after every write.
func (s *ProjectionService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, monthlyProjectionCacheKey); err != nil {
		s.logger.Warn().Err(err).Msg("projection cache invalidation failed")
	}
}

// pendingWeight is the fraction of a schedule's occurrences that still
// project forward. Completed, skipped and deleted occurrences no longer
// contribute: a fully recorded one-time schedule weighs zero. Unbounded
// schedules keep full weight, since finitely many resolved occurrences do
// not move an open-ended monthly average.
func (s *ProjectionService) pendingWeight(ctx context.Context, schedule *domain.ScheduledTransaction) (decimal.Decimal, error) {
	total, bounded := schedule.Pattern().TotalOccurrences()
	if !bounded {
		return decimal.NewFromInt(1), nil
	}

	mods, err := s.modificationRepo.FindBySchedule(ctx, schedule.ID())
	if err != nil {
		return decimal.Decimal{}, err
	}

	pending := total
	for _, mod := range mods {
		if mod.State() != domain.OccurrencePending && mod.OccurrenceIndex() < total {
			pending--
		}
	}
	if pending <= 0 {
		return decimal.Decimal{}, nil
	}
	return decimal.NewFromInt(int64(pending)).Div(decimal.NewFromInt(int64(total))), nil
}

func (s *ProjectionService) accountTypes(ctx context.Context) (func(string) domain.AccountType, error) {
	accounts, err := s.accountRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	types := make(map[string]domain.AccountType, len(accounts))
	for _, a := range accounts {
		types[a.ID()] = a.Type()
	}
	return func(id string) domain.AccountType {
		return types[id]
	}, nil
}

func (s *ProjectionService) fromCache(ctx context.Context) *MonthlyProjection {
	if s.cache == nil {
		return nil
	}

	raw, err := s.cache.Get(ctx, monthlyProjectionCacheKey)
	if err != nil || raw == "" {
		return nil
	}

	projection, err := decodeProjection(raw)
	if err != nil {
		s.logger.Warn().Err(err).Msg("dropping malformed cached projection")
		return nil
	}
	return projection
}

func (s *ProjectionService) toCache(ctx context.Context, p *MonthlyProjection) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, monthlyProjectionCacheKey, encodeProjection(p), s.cacheTTL); err != nil {
		s.logger.Warn().Err(err).Msg("projection cache write failed")
	}
}

type projectionPayload struct {
	Income   string `json:"income"`
	Expenses string `json:"expenses"`
	Net      string `json:"net"`
}

func encodeProjection(p *MonthlyProjection) string {
	raw, _ := json.Marshal(projectionPayload{
		Income:   p.Income.String(),
		Expenses: p.Expenses.String(),
		Net:      p.Net.String(),
	})
	return string(raw)
}

func decodeProjection(raw string) (*MonthlyProjection, error) {
	var payload projectionPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, err
	}

	income, err := domain.MoneyFromString(payload.Income)
	if err != nil {
		return nil, err
	}
	expenses, err := domain.MoneyFromString(payload.Expenses)
	if err != nil {
		return nil, err
	}
	net, err := domain.MoneyFromString(payload.Net)
	if err != nil {
		return nil, err
	}

	return &MonthlyProjection{Income: income, Expenses: expenses, Net: net}, nil
}
