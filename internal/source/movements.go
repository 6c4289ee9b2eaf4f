package source

import (
	"context"
	"fmt"
	"time"

	"github.com/ginjaninja78/kardex-extract/internal/types"
)

// Ledger table and columns.
const (
	LedgerTable = "KARDEX"

	colStore       = "LOJA"
	colProduct     = "CODIGO_PRODUTO"
	colGrade       = "COD_GRADE"
	colDescription = "DESCRICAO"
	colQtyIn       = "QTDE_ENTRADA"
	colQtyOut      = "QTDE_SAIDA"
	colKind        = "TIPO"
	colColor       = "COD_GRADE_COR"
	colSize        = "COD_GRADE_TAMANHO"
	colHistory     = "HISTORICO"
	colUsername    = "NOME_USUARIO"
	colDate        = "DATA_MOVIMENTO"
	colTime        = "HORA_MOVIMENTO"
	colOrder       = "DOCUMENTO"
)

var ledgerColumns = []string{
	colStore, colProduct, colGrade, colDescription,
	colQtyIn, colQtyOut, colKind,
	colColor, colSize,
	colHistory, colUsername,
	colDate, colTime, colOrder,
}

// MovementQuery builds the ledger query. A nil cutoff reads the whole
// ledger; otherwise only movements dated on or after the cutoff date.
func MovementQuery(dialect string, cutoff *time.Time) (string, []any) {
	query := "SELECT "
	for i, c := range ledgerColumns {
		if i > 0 {
			query += ", "
		}
		query += c
	}
	query += " FROM " + LedgerTable

	var args []any
	if cutoff != nil {
		param := "?"
		if dialect == DriverFirebird {
			param = "CAST(? AS DATE)"
		}
		query += fmt.Sprintf(" WHERE %s >= %s", colDate, param)
		args = append(args, cutoff.Format("2006-01-02"))
	}
	query += fmt.Sprintf(" ORDER BY %s, %s", colDate, colTime)
	return query, args
}

// Movements extracts ledger rows on or after cutoff (all rows when nil).
// An empty result is returned as an empty slice with a nil error; any
// failure is returned as an error.
func (s *Source) Movements(ctx context.Context, cutoff *time.Time) ([]types.MovementRecord, error) {
	query, args := MovementQuery(s.desc.Driver, cutoff)
	res, err := s.Query(ctx, LedgerTable, query, args...)
	if err != nil {
		return nil, err
	}
	return decodeMovements(res)
}

func decodeMovements(res *Result) ([]types.MovementRecord, error) {
	idx := res.Index()
	for _, c := range ledgerColumns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("%s: column %s missing from result", LedgerTable, c)
		}
	}

	records := make([]types.MovementRecord, 0, len(res.Rows))
	for n, row := range res.Rows {
		get := func(col string) any { return row[idx[col]] }

		rec := types.MovementRecord{
			Store:       asString(get(colStore)),
			ProductCode: asString(get(colProduct)),
			GradeCode:   asString(get(colGrade)),
			Description: asString(get(colDescription)),
			Kind:        asString(get(colKind)),
			Color:       asString(get(colColor)),
			Size:        asString(get(colSize)),
			History:     asString(get(colHistory)),
			Username:    asString(get(colUsername)),
			Time:        asClock(get(colTime)),
			OrderNumber: asString(get(colOrder)),
		}

		var err error
		if rec.QtyIn, err = asDecimal(get(colQtyIn)); err != nil {
			return nil, fmt.Errorf("%s row %d: %s: %w", LedgerTable, n+1, colQtyIn, err)
		}
		if rec.QtyOut, err = asDecimal(get(colQtyOut)); err != nil {
			return nil, fmt.Errorf("%s row %d: %s: %w", LedgerTable, n+1, colQtyOut, err)
		}
		if rec.Date, err = asDate(get(colDate)); err != nil {
			return nil, fmt.Errorf("%s row %d: %s: %w", LedgerTable, n+1, colDate, err)
		}

		records = append(records, rec)
	}
	return records, nil
}
