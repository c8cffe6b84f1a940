package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/finwell/cashplan/internal/usecase"
)

// querier is the subset of pgx shared by pgxpool.Pool and pgx.Tx, so every
// query can run either on the pool or inside a service-managed transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func txQuerier(tx usecase.Transaction) querier {
	return tx.(*ledgerTx).tx
}

// buildWhere translates criteria filters into a WHERE clause. columns
// whitelists the queryable fields; anything else is rejected rather than
// interpolated.
func buildWhere(criteria usecase.Criteria, columns map[string]string) (string, []any, error) {
	if len(criteria.Filters) == 0 {
		return "", nil, nil
	}

	var (
		conditions []string
		args       []any
	)
	for _, f := range criteria.Filters {
		column, ok := columns[f.Field]
		if !ok {
			return "", nil, fmt.Errorf("unknown filter field %q", f.Field)
		}

		placeholder := "$" + strconv.Itoa(len(args)+1)
		switch f.Operator {
		case usecase.OperatorEqual:
			conditions = append(conditions, column+" = "+placeholder)
			args = append(args, f.Value)
		case usecase.OperatorNotEqual:
			conditions = append(conditions, column+" <> "+placeholder)
			args = append(args, f.Value)
		case usecase.OperatorGreaterThan:
			conditions = append(conditions, column+" > "+placeholder)
			args = append(args, f.Value)
		case usecase.OperatorLessThan:
			conditions = append(conditions, column+" < "+placeholder)
			args = append(args, f.Value)
		case usecase.OperatorContains:
			conditions = append(conditions, column+" ILIKE "+placeholder)
			args = append(args, "%"+f.Value+"%")
		default:
			return "", nil, fmt.Errorf("unknown filter operator %q", f.Operator)
		}
	}

	return " WHERE " + strings.Join(conditions, " AND "), args, nil
}

// buildSuffix appends ORDER BY / LIMIT / OFFSET from the criteria, again
// against the column whitelist.
func buildSuffix(criteria usecase.Criteria, columns map[string]string) (string, error) {
	var sb strings.Builder

	if criteria.OrderBy != "" && criteria.OrderType != usecase.OrderNone {
		column, ok := columns[criteria.OrderBy]
		if !ok {
			return "", fmt.Errorf("unknown order field %q", criteria.OrderBy)
		}
		direction := "ASC"
		if criteria.OrderType == usecase.OrderDesc {
			direction = "DESC"
		}
		sb.WriteString(" ORDER BY " + column + " " + direction)
	}
	if criteria.Limit > 0 {
		sb.WriteString(" LIMIT " + strconv.Itoa(criteria.Limit))
	}
	if criteria.Offset > 0 {
		sb.WriteString(" OFFSET " + strconv.Itoa(criteria.Offset))
	}

	return sb.String(), nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullBytes(b []byte) any {
	if b == nil {
		return nil
	}
	return b
}
