package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/kardex-extract/internal/csvparser"
	"github.com/ginjaninja78/kardex-extract/internal/publish"
	"github.com/ginjaninja78/kardex-extract/internal/types"
	"github.com/ginjaninja78/kardex-extract/pkg/utils"
)

type fakeProducts struct {
	records []types.ProductRecord
	err     error
}

func (f *fakeProducts) ProductStock(context.Context) ([]types.ProductRecord, error) {
	return f.records, f.err
}

func nd(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestProdutosRun(t *testing.T) {
	h := newHarness(t)
	h.cfg.Products.WriteXLSX = true
	pub := &recordingPublisher{}
	h.saida.Publishers = []publish.Publisher{pub}

	prod := &Produtos{Env: h.saida.Env, Products: &fakeProducts{records: []types.ProductRecord{
		{Code: "1", Reference: "R1", Name: "CALCA JEANS 0412", Unit: "UN", CostPrice: nd("10"), SellPrice: nd("25"), StockValue: nd("55")},
		{Code: "2", Reference: "R2", Name: "BLUSA ESTOQUE", Unit: "UN", CostPrice: nd("0"), SellPrice: nd("30"), StockValue: nd("12")},
	}}}

	report, err := prod.Run(context.Background(), true)
	require.NoError(t, err)

	require.Len(t, report.Lines, 2)
	first := report.Lines[0]
	assert.Equal(t, "5.500", first.Quantity.Decimal.StringFixed(3))
	assert.Equal(t, "137.50", first.RetailTotal.Decimal.StringFixed(2))
	assert.Equal(t, "COMPRA", first.Status)
	assert.Equal(t, "PEDIDO 0412", first.Level)

	second := report.Lines[1]
	assert.False(t, second.Quantity.Valid, "zero cost has no quantity")
	assert.False(t, second.RetailTotal.Valid)
	assert.Equal(t, "ESTOQUE", second.Status)

	assert.Equal(t, 1, report.Totals.WithoutCost)
	assert.Equal(t, "67.00", report.Totals.CostTotal.StringFixed(2))
	assert.Equal(t, "137.50", report.Totals.RetailTotal.StringFixed(2))
	assert.Len(t, report.Summary.Warnings, 1)

	data, err := csvparser.Parse(report.Path, csvparser.Settings{})
	require.NoError(t, err)
	assert.Equal(t, types.ProductStockColumns, data.Headers)
	assert.Equal(t, 2, data.RowCount)
	assert.True(t, utils.FileExists(h.cfg.OutputPath("PRODUTOS_ESTOQUE_TOTAIS.xlsx")))

	require.Len(t, pub.tables, 1)
	assert.Equal(t, "PRODUTOS_ESTOQUE_TOTAIS", pub.tables[0].Name)
}

func TestProdutosExtractionFailureWritesNothing(t *testing.T) {
	h := newHarness(t)
	prod := &Produtos{Env: h.saida.Env, Products: &fakeProducts{err: errors.New("connection refused")}}

	_, err := prod.Run(context.Background(), false)
	require.Error(t, err)
	assert.False(t, utils.FileExists(h.cfg.OutputPath("PRODUTOS_ESTOQUE_TOTAIS.csv")))
}
