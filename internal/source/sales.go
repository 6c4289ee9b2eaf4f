package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/kardex-extract/internal/types"
)

// Order and cash tables.
const (
	OrdersTable = "PEDIDOS"
	CashTable   = "MOVCAIXA"

	cashDateColumn = "DATA_HORA"
)

var orderColumns = []string{
	"SITUACAO", "NOME_VENDEDOR",
	"VALOR_FINAL", "VL_BRUTO", "DESCONTO_TOTAL", "OUTRAS_DESPESAS",
	"QUANT_TRANSP", "PSEQ_ITEM",
}

// dateOf truncates a date or timestamp column to its date in the given
// dialect.
func dateOf(dialect, col string) string {
	switch dialect {
	case DriverFirebird:
		return "CAST(" + col + " AS DATE)"
	case DriverMySQL:
		return "DATE(" + col + ")"
	default:
		return "date(" + col + ")"
	}
}

// periodFilter restricts col to the inclusive [start, end] date range.
// Either bound may be nil.
func periodFilter(dialect, col string, start, end *time.Time) (string, []any) {
	param := "?"
	if dialect == DriverFirebird {
		param = "CAST(? AS DATE)"
	}

	var conds []string
	var args []any
	if start != nil {
		conds = append(conds, fmt.Sprintf("%s >= %s", dateOf(dialect, col), param))
		args = append(args, start.Format("2006-01-02"))
	}
	if end != nil {
		conds = append(conds, fmt.Sprintf("%s <= %s", dateOf(dialect, col), param))
		args = append(args, end.Format("2006-01-02"))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// OrdersQuery builds the order query on the dateColumn axis.
func OrdersQuery(dialect, dateColumn string, start, end *time.Time) (string, []any, error) {
	if !identifier.MatchString(dateColumn) {
		return "", nil, fmt.Errorf("invalid date column %q", dateColumn)
	}
	col := strings.ToUpper(dateColumn)

	query := fmt.Sprintf("SELECT %s AS DATA, %s FROM %s",
		dateOf(dialect, col), strings.Join(orderColumns, ", "), OrdersTable)
	where, args := periodFilter(dialect, col, start, end)
	return query + where + " ORDER BY 1", args, nil
}

// CreditQuery builds the cash movement query for the period.
func CreditQuery(dialect string, start, end *time.Time) (string, []any) {
	query := fmt.Sprintf("SELECT %s AS DATA, DOCUMENTO, VALOR_APRAZO FROM %s",
		dateOf(dialect, cashDateColumn), CashTable)
	where, args := periodFilter(dialect, cashDateColumn, start, end)
	return query + where + " ORDER BY 1", args
}

// Orders reads the orders dated inside the period.
func (s *Source) Orders(ctx context.Context, dateColumn string, start, end *time.Time) ([]types.Order, error) {
	query, args, err := OrdersQuery(s.desc.Driver, dateColumn, start, end)
	if err != nil {
		return nil, err
	}
	res, err := s.Query(ctx, OrdersTable, query, args...)
	if err != nil {
		return nil, err
	}
	return decodeOrders(res)
}

// Credits reads the cash movements dated inside the period.
func (s *Source) Credits(ctx context.Context, start, end *time.Time) ([]types.CreditEntry, error) {
	query, args := CreditQuery(s.desc.Driver, start, end)
	res, err := s.Query(ctx, CashTable, query, args...)
	if err != nil {
		return nil, err
	}

	idx := res.Index()
	for _, c := range []string{"DATA", "DOCUMENTO", "VALOR_APRAZO"} {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("%s: column %s missing from result", CashTable, c)
		}
	}

	out := make([]types.CreditEntry, 0, len(res.Rows))
	for i, row := range res.Rows {
		date, err := asDate(row[idx["DATA"]])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", CashTable, i+1, err)
		}
		amount, err := asDecimal(row[idx["VALOR_APRAZO"]])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: VALOR_APRAZO: %w", CashTable, i+1, err)
		}
		out = append(out, types.CreditEntry{
			Date:     date,
			Document: asString(row[idx["DOCUMENTO"]]),
			Amount:   amount,
		})
	}
	return out, nil
}

func decodeOrders(res *Result) ([]types.Order, error) {
	idx := res.Index()
	for _, c := range append([]string{"DATA"}, orderColumns...) {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("%s: column %s missing from result", OrdersTable, c)
		}
	}

	out := make([]types.Order, 0, len(res.Rows))
	for i, row := range res.Rows {
		date, err := asDate(row[idx["DATA"]])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", OrdersTable, i+1, err)
		}
		o := types.Order{
			Date:   date,
			Status: asString(row[idx["SITUACAO"]]),
			Seller: asString(row[idx["NOME_VENDEDOR"]]),
		}

		amounts := []struct {
			col string
			dst *decimal.Decimal
		}{
			{"VALOR_FINAL", &o.FinalValue},
			{"VL_BRUTO", &o.GrossValue},
			{"DESCONTO_TOTAL", &o.Discount},
			{"OUTRAS_DESPESAS", &o.Surcharge},
			{"QUANT_TRANSP", &o.TransportQty},
			{"PSEQ_ITEM", &o.ItemCount},
		}
		for _, a := range amounts {
			v, err := asDecimal(row[idx[a.col]])
			if err != nil {
				return nil, fmt.Errorf("%s row %d: %s: %w", OrdersTable, i+1, a.col, err)
			}
			*a.dst = v
		}
		out = append(out, o)
	}
	return out, nil
}
