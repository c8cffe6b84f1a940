package dto

import (
	"github.com/finwell/cashplan/internal/domain"
	"github.com/finwell/cashplan/internal/usecase"
)

// ErrorResponse is the shape of every error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Balance   string `json:"balance"`
	UpdatedAt string `json:"updatedAt"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	p := a.Primitives()
	return &AccountResponse{
		ID:        p.ID,
		Name:      p.Name,
		Type:      p.Type,
		Balance:   p.Balance,
		UpdatedAt: p.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse wraps an account listing.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

func splitsFromPrimitives(prims []domain.SplitPrimitives) []Split {
	out := make([]Split, len(prims))
	for i, p := range prims {
		out[i] = Split{AccountID: p.AccountID, Amount: p.Amount}
	}
	return out
}

func splitsFromDomain(splits []domain.Split) []Split {
	out := make([]Split, len(splits))
	for i, s := range splits {
		out[i] = Split{AccountID: s.AccountID, Amount: s.Amount.String()}
	}
	return out
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID                string  `json:"id"`
	ScheduleID        string  `json:"scheduleId,omitempty"`
	Name              string  `json:"name"`
	Operation         string  `json:"operation"`
	Category          string  `json:"category"`
	SubCategory       string  `json:"subCategory"`
	Date              string  `json:"date"`
	OriginSplits      []Split `json:"originSplits"`
	DestinationSplits []Split `json:"destinationSplits,omitempty"`
	Store             string  `json:"store,omitempty"`
	UpdatedAt         string  `json:"updatedAt"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	p := t.Primitives()
	return &TransactionResponse{
		ID:                p.ID,
		ScheduleID:        p.ScheduleID,
		Name:              p.Name,
		Operation:         p.Operation,
		Category:          p.Category,
		SubCategory:       p.SubCategory,
		Date:              p.Date,
		OriginSplits:      splitsFromPrimitives(p.OriginSplits),
		DestinationSplits: splitsFromPrimitives(p.DestinationSplits),
		Store:             p.Store,
		UpdatedAt:         p.UpdatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(transactions []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(transactions))
	for i, t := range transactions {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// ListTransactionsResponse wraps a transaction listing.
type ListTransactionsResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Total        int64                  `json:"total"`
}

// ScheduleResponse represents a scheduled transaction in API responses.
type ScheduleResponse struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Operation         string   `json:"operation"`
	Category          string   `json:"category"`
	SubCategory       string   `json:"subCategory"`
	OriginSplits      []Split  `json:"originSplits"`
	DestinationSplits []Split  `json:"destinationSplits,omitempty"`
	Pattern           Pattern  `json:"recurrencePattern"`
	Store             string   `json:"store,omitempty"`
	Tags              []string `json:"tags,omitempty"`
	UpdatedAt         string   `json:"updatedAt"`
}

// ScheduleFromDomain converts a domain schedule to a response.
func ScheduleFromDomain(s *domain.ScheduledTransaction) *ScheduleResponse {
	p := s.Primitives()
	return &ScheduleResponse{
		ID:                p.ID,
		Name:              p.Name,
		Operation:         p.Operation,
		Category:          p.Category,
		SubCategory:       p.SubCategory,
		OriginSplits:      splitsFromPrimitives(p.OriginSplits),
		DestinationSplits: splitsFromPrimitives(p.DestinationSplits),
		Pattern: Pattern{
			Type:           p.RecurrencePattern.Type,
			StartDate:      p.RecurrencePattern.StartDate,
			Frequency:      p.RecurrencePattern.Frequency,
			EndDate:        p.RecurrencePattern.EndDate,
			MaxOccurrences: p.RecurrencePattern.MaxOccurrences,
		},
		Store:     p.Store,
		Tags:      p.Tags,
		UpdatedAt: p.UpdatedAt,
	}
}

// SchedulesFromDomain converts domain schedules to responses.
func SchedulesFromDomain(schedules []*domain.ScheduledTransaction) []*ScheduleResponse {
	result := make([]*ScheduleResponse, len(schedules))
	for i, s := range schedules {
		result[i] = ScheduleFromDomain(s)
	}
	return result
}

// ListSchedulesResponse wraps a schedule listing.
type ListSchedulesResponse struct {
	Schedules []*ScheduleResponse `json:"schedules"`
	Total     int64               `json:"total"`
}

// OccurrenceResponse represents one resolved schedule occurrence.
type OccurrenceResponse struct {
	ScheduleID        string   `json:"scheduleId"`
	OccurrenceIndex   int      `json:"occurrenceIndex"`
	Date              string   `json:"date"`
	State             string   `json:"state"`
	Name              string   `json:"name"`
	Operation         string   `json:"operation"`
	Category          string   `json:"category"`
	SubCategory       string   `json:"subCategory"`
	OriginSplits      []Split  `json:"originSplits"`
	DestinationSplits []Split  `json:"destinationSplits,omitempty"`
	Store             string   `json:"store,omitempty"`
	Tags              []string `json:"tags,omitempty"`
}

// OccurrenceFromDomain converts a resolved occurrence to a response.
func OccurrenceFromDomain(o *domain.OccurrenceInfo) *OccurrenceResponse {
	return &OccurrenceResponse{
		ScheduleID:        o.ScheduleID,
		OccurrenceIndex:   o.OccurrenceIndex,
		Date:              o.Date.String(),
		State:             string(o.State),
		Name:              o.Name,
		Operation:         string(o.Operation),
		Category:          o.Category,
		SubCategory:       o.SubCategory,
		OriginSplits:      splitsFromDomain(o.OriginSplits),
		DestinationSplits: splitsFromDomain(o.DestinationSplits),
		Store:             o.Store,
		Tags:              o.Tags,
	}
}

// OccurrencesFromDomain converts resolved occurrences to responses.
func OccurrencesFromDomain(occurrences []*domain.OccurrenceInfo) []*OccurrenceResponse {
	result := make([]*OccurrenceResponse, len(occurrences))
	for i, o := range occurrences {
		result[i] = OccurrenceFromDomain(o)
	}
	return result
}

// ListOccurrencesResponse wraps an occurrence listing.
type ListOccurrencesResponse struct {
	Occurrences []*OccurrenceResponse `json:"occurrences"`
	Total       int64                 `json:"total"`
}

// AccountIntegrityResponse reports one account's stored balance against the
// balance replayed from its transaction history.
type AccountIntegrityResponse struct {
	AccountID       string `json:"accountId"`
	AccountName     string `json:"accountName"`
	StoredBalance   string `json:"storedBalance"`
	ExpectedBalance string `json:"expectedBalance"`
	Difference      string `json:"difference"`
	Consistent      bool   `json:"consistent"`
}

// IntegrityFromUseCase converts an integrity result to a response.
func IntegrityFromUseCase(i *usecase.AccountIntegrity) *AccountIntegrityResponse {
	return &AccountIntegrityResponse{
		AccountID:       i.AccountID,
		AccountName:     i.AccountName,
		StoredBalance:   i.StoredBalance.String(),
		ExpectedBalance: i.ExpectedBalance.String(),
		Difference:      i.Difference.String(),
		Consistent:      i.Consistent,
	}
}

// IntegrityReportResponse reports integrity across all accounts.
type IntegrityReportResponse struct {
	Accounts      []*AccountIntegrityResponse `json:"accounts"`
	Discrepancies int                         `json:"discrepancies"`
}

// IntegrityReportFromUseCase converts a full integrity report to a response.
func IntegrityReportFromUseCase(r *usecase.IntegrityCheckReport) *IntegrityReportResponse {
	accounts := make([]*AccountIntegrityResponse, len(r.Accounts))
	for i := range r.Accounts {
		accounts[i] = IntegrityFromUseCase(&r.Accounts[i])
	}
	return &IntegrityReportResponse{
		Accounts:      accounts,
		Discrepancies: r.Discrepancies,
	}
}

// ProjectionResponse reports the projected monthly cash flow.
type ProjectionResponse struct {
	Income   string `json:"income"`
	Expenses string `json:"expenses"`
	Net      string `json:"net"`
}

// ProjectionFromUseCase converts a monthly projection to a response.
func ProjectionFromUseCase(p *usecase.MonthlyProjection) *ProjectionResponse {
	return &ProjectionResponse{
		Income:   p.Income.String(),
		Expenses: p.Expenses.String(),
		Net:      p.Net.String(),
	}
}

// CategoryUsageResponse reports where a category is still referenced.
type CategoryUsageResponse struct {
	InUse          bool     `json:"inUse"`
	TransactionIDs []string `json:"transactionIds,omitempty"`
	ScheduleIDs    []string `json:"scheduleIds,omitempty"`
}

// ReassignResponse reports how many transactions a reassignment touched.
type ReassignResponse struct {
	Updated int `json:"updated"`
}
