package source

import (
	"context"
	"fmt"

	"github.com/ginjaninja78/kardex-extract/internal/types"
)

const productStockQuery = "SELECT CODIGO, REFERENCIA, NOME, UNIDADE, PRECO_CUST, PRECO_VEND, VR_ESTOQUE_TOTAL, DATA_CADASTRO FROM " +
	TableProducts + " ORDER BY CODIGO"

// ProductStock reads every catalogue product with its total stock value.
func (s *Source) ProductStock(ctx context.Context) ([]types.ProductRecord, error) {
	res, err := s.Query(ctx, TableProducts, productStockQuery)
	if err != nil {
		return nil, err
	}
	return decodeProducts(res)
}

func decodeProducts(res *Result) ([]types.ProductRecord, error) {
	idx := res.Index()
	for _, c := range []string{"CODIGO", "REFERENCIA", "NOME", "UNIDADE", "PRECO_CUST", "PRECO_VEND", "VR_ESTOQUE_TOTAL", "DATA_CADASTRO"} {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("%s: column %s missing from result", TableProducts, c)
		}
	}

	out := make([]types.ProductRecord, 0, len(res.Rows))
	for i, row := range res.Rows {
		p := types.ProductRecord{
			Code:      asString(row[idx["CODIGO"]]),
			Reference: asString(row[idx["REFERENCIA"]]),
			Name:      asString(row[idx["NOME"]]),
			Unit:      asString(row[idx["UNIDADE"]]),
		}

		var err error
		if p.CostPrice, err = asNullDecimal(row[idx["PRECO_CUST"]]); err != nil {
			return nil, fmt.Errorf("%s row %d: PRECO_CUST: %w", TableProducts, i+1, err)
		}
		if p.SellPrice, err = asNullDecimal(row[idx["PRECO_VEND"]]); err != nil {
			return nil, fmt.Errorf("%s row %d: PRECO_VEND: %w", TableProducts, i+1, err)
		}
		if p.StockValue, err = asNullDecimal(row[idx["VR_ESTOQUE_TOTAL"]]); err != nil {
			return nil, fmt.Errorf("%s row %d: VR_ESTOQUE_TOTAL: %w", TableProducts, i+1, err)
		}

		raw := row[idx["DATA_CADASTRO"]]
		if p.RegisteredAt, err = asDate(raw); err != nil {
			p.RegisteredAt = asString(raw)
		}
		out = append(out, p)
	}
	return out, nil
}
