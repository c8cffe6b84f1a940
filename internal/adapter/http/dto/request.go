package dto

import (
	"github.com/finwell/cashplan/internal/domain"
	"github.com/finwell/cashplan/internal/usecase"
)

// Split is the wire shape of a transaction split. Amounts travel as decimal
// strings so clients never round them through floats.
type Split struct {
	AccountID string `json:"accountId"`
	Amount    string `json:"amount"`
}

// ToDomainSplits converts wire splits into validated domain splits.
func ToDomainSplits(splits []Split) ([]domain.Split, error) {
	out := make([]domain.Split, 0, len(splits))
	for _, s := range splits {
		amount, err := domain.MoneyFromString(s.Amount)
		if err != nil {
			return nil, err
		}
		split, err := domain.NewSplit(s.AccountID, amount)
		if err != nil {
			return nil, err
		}
		out = append(out, split)
	}
	return out, nil
}

// Pattern is the wire shape of a recurrence pattern.
type Pattern struct {
	Type           string `json:"type"`
	StartDate      string `json:"startDate"`
	Frequency      string `json:"frequency,omitempty"`
	EndDate        string `json:"endDate,omitempty"`
	MaxOccurrences *int   `json:"maxOccurrences,omitempty"`
}

// ToDomain converts the wire pattern into a validated domain pattern.
func (p Pattern) ToDomain() (*domain.RecurrencePattern, error) {
	return domain.PatternFromPrimitives(domain.PatternPrimitives{
		Type:           p.Type,
		StartDate:      p.StartDate,
		Frequency:      p.Frequency,
		EndDate:        p.EndDate,
		MaxOccurrences: p.MaxOccurrences,
	})
}

// CreateAccountRequest represents a request to open an account.
type CreateAccountRequest struct {
	Name           string `json:"name"`
	Type           string `json:"type"`
	InitialBalance string `json:"initialBalance"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() (usecase.CreateAccountInput, error) {
	balance, err := domain.MoneyFromString(r.InitialBalance)
	if err != nil {
		return usecase.CreateAccountInput{}, err
	}
	return usecase.CreateAccountInput{
		Name:           r.Name,
		Type:           domain.AccountType(r.Type),
		InitialBalance: balance,
	}, nil
}

// RenameAccountRequest represents a request to rename an account.
type RenameAccountRequest struct {
	Name string `json:"name"`
}

// AdjustAccountRequest represents a request to force an account to a new
// stored balance via an adjustment transaction.
type AdjustAccountRequest struct {
	Balance string `json:"balance"`
}

// RecordTransactionRequest represents a request to record a transaction.
type RecordTransactionRequest struct {
	Name              string  `json:"name"`
	Operation         string  `json:"operation"`
	Category          string  `json:"category"`
	SubCategory       string  `json:"subCategory"`
	Date              string  `json:"date"`
	OriginSplits      []Split `json:"originSplits"`
	DestinationSplits []Split `json:"destinationSplits,omitempty"`
	Store             string  `json:"store,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *RecordTransactionRequest) ToUseCaseInput() (usecase.RecordTransactionInput, error) {
	date, err := domain.ParseDayDate(r.Date)
	if err != nil {
		return usecase.RecordTransactionInput{}, err
	}
	origin, err := ToDomainSplits(r.OriginSplits)
	if err != nil {
		return usecase.RecordTransactionInput{}, err
	}
	destination, err := ToDomainSplits(r.DestinationSplits)
	if err != nil {
		return usecase.RecordTransactionInput{}, err
	}
	return usecase.RecordTransactionInput{
		Name:              r.Name,
		Operation:         domain.Operation(r.Operation),
		Category:          r.Category,
		SubCategory:       r.SubCategory,
		Date:              date,
		OriginSplits:      origin,
		DestinationSplits: destination,
		Store:             r.Store,
	}, nil
}

// UpdateTransactionRequest represents a request to replace a transaction.
type UpdateTransactionRequest struct {
	Name              string  `json:"name"`
	Operation         string  `json:"operation"`
	Category          string  `json:"category"`
	SubCategory       string  `json:"subCategory"`
	Date              string  `json:"date"`
	OriginSplits      []Split `json:"originSplits"`
	DestinationSplits []Split `json:"destinationSplits,omitempty"`
	Store             string  `json:"store,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateTransactionRequest) ToUseCaseInput() (usecase.UpdateTransactionInput, error) {
	date, err := domain.ParseDayDate(r.Date)
	if err != nil {
		return usecase.UpdateTransactionInput{}, err
	}
	origin, err := ToDomainSplits(r.OriginSplits)
	if err != nil {
		return usecase.UpdateTransactionInput{}, err
	}
	destination, err := ToDomainSplits(r.DestinationSplits)
	if err != nil {
		return usecase.UpdateTransactionInput{}, err
	}
	return usecase.UpdateTransactionInput{
		Name:              r.Name,
		Operation:         domain.Operation(r.Operation),
		Category:          r.Category,
		SubCategory:       r.SubCategory,
		Date:              date,
		OriginSplits:      origin,
		DestinationSplits: destination,
		Store:             r.Store,
	}, nil
}

// CreateScheduleRequest represents a request to create a scheduled
// transaction template.
type CreateScheduleRequest struct {
	Name              string   `json:"name"`
	Operation         string   `json:"operation"`
	Category          string   `json:"category"`
	SubCategory       string   `json:"subCategory"`
	Pattern           Pattern  `json:"recurrencePattern"`
	OriginSplits      []Split  `json:"originSplits"`
	DestinationSplits []Split  `json:"destinationSplits,omitempty"`
	Store             string   `json:"store,omitempty"`
	Tags              []string `json:"tags,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateScheduleRequest) ToUseCaseInput() (usecase.CreateScheduleInput, error) {
	pattern, err := r.Pattern.ToDomain()
	if err != nil {
		return usecase.CreateScheduleInput{}, err
	}
	origin, err := ToDomainSplits(r.OriginSplits)
	if err != nil {
		return usecase.CreateScheduleInput{}, err
	}
	destination, err := ToDomainSplits(r.DestinationSplits)
	if err != nil {
		return usecase.CreateScheduleInput{}, err
	}
	return usecase.CreateScheduleInput{
		Name:              r.Name,
		Operation:         domain.Operation(r.Operation),
		Category:          r.Category,
		SubCategory:       r.SubCategory,
		Pattern:           pattern,
		OriginSplits:      origin,
		DestinationSplits: destination,
		Store:             r.Store,
		Tags:              r.Tags,
	}, nil
}

// UpdateScheduleRequest represents a request to update a schedule's template
// fields. The recurrence pattern is immutable after creation and therefore
// absent here.
type UpdateScheduleRequest struct {
	Name              string   `json:"name"`
	Operation         string   `json:"operation"`
	Category          string   `json:"category"`
	SubCategory       string   `json:"subCategory"`
	OriginSplits      []Split  `json:"originSplits"`
	DestinationSplits []Split  `json:"destinationSplits,omitempty"`
	Store             string   `json:"store,omitempty"`
	Tags              []string `json:"tags,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateScheduleRequest) ToUseCaseInput() (usecase.UpdateScheduleInput, error) {
	origin, err := ToDomainSplits(r.OriginSplits)
	if err != nil {
		return usecase.UpdateScheduleInput{}, err
	}
	destination, err := ToDomainSplits(r.DestinationSplits)
	if err != nil {
		return usecase.UpdateScheduleInput{}, err
	}
	return usecase.UpdateScheduleInput{
		Name:              r.Name,
		Operation:         domain.Operation(r.Operation),
		Category:          r.Category,
		SubCategory:       r.SubCategory,
		OriginSplits:      origin,
		DestinationSplits: destination,
		Store:             r.Store,
		Tags:              r.Tags,
	}, nil
}

// RescheduleOccurrenceRequest moves a single occurrence to a new date.
type RescheduleOccurrenceRequest struct {
	Date string `json:"date"`
}

// ResplitOccurrenceRequest overrides the splits of a single occurrence.
type ResplitOccurrenceRequest struct {
	OriginSplits      []Split `json:"originSplits"`
	DestinationSplits []Split `json:"destinationSplits,omitempty"`
}

// ReassignCategoryRequest retargets transactions from one category to
// another. When ToSubCategory is set the subcategory is rewritten as well.
type ReassignCategoryRequest struct {
	FromCategory  string `json:"fromCategory"`
	ToCategory    string `json:"toCategory"`
	ToSubCategory string `json:"toSubCategory,omitempty"`
}

// ReassignSubCategoryRequest retargets a subcategory within one category.
type ReassignSubCategoryRequest struct {
	Category        string `json:"category"`
	FromSubCategory string `json:"fromSubCategory"`
	ToSubCategory   string `json:"toSubCategory"`
}
