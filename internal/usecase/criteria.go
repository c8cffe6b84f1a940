package usecase

// Operator is a filter comparison operator.
type Operator string

const (
	OperatorEqual       Operator = "="
	OperatorNotEqual    Operator = "!="
	OperatorGreaterThan Operator = ">"
	OperatorLessThan    Operator = "<"
	OperatorContains    Operator = "CONTAINS"
)

// OrderType is the sort direction of a criteria query.
type OrderType string

const (
	OrderAsc  OrderType = "asc"
	OrderDesc OrderType = "desc"
	OrderNone OrderType = "none"
)

// Filter matches one field against a value.
type Filter struct {
	Field    string
	Operator Operator
	Value    string
}

// Criteria is the generic filter/sort/paginate descriptor the services issue
// to repositories. Repositories translate it; services never see raw queries.
type Criteria struct {
	Filters   []Filter
	OrderBy   string
	OrderType OrderType
	Limit     int
	Offset    int
}

// NewCriteria builds a criteria with filters only.
func NewCriteria(filters ...Filter) Criteria {
	return Criteria{Filters: filters, OrderType: OrderNone}
}

// WithOrder returns a copy ordered by the given field.
func (c Criteria) WithOrder(field string, order OrderType) Criteria {
	c.OrderBy = field
	c.OrderType = order
	return c
}

// WithPagination returns a copy with limit/offset applied.
func (c Criteria) WithPagination(limit, offset int) Criteria {
	c.Limit = limit
	c.Offset = offset
	return c
}
