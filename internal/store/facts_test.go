package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/kardex-extract/internal/csvparser"
	"github.com/ginjaninja78/kardex-extract/internal/types"
)

func nd(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestUpsertCSVReplacesByKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fato_vendas_vendedor_diario.csv")
	header := []string{"Data", "Vendedor", "Venda Líquida"}

	res, err := UpsertCSV(path, header, [][]string{
		{"2024-05-02", "ANA", "10.00"},
		{"2024-05-01", "ANA", "5.00"},
		{"2024-05-01", "BIA", "7.00"},
	}, []string{"Data", "Vendedor"})
	require.NoError(t, err)
	assert.Equal(t, UpsertResult{Inserted: 3, Total: 3}, res)

	res, err = UpsertCSV(path, header, [][]string{
		{"2024-05-01", "BIA", "9.00"},
		{"2024-05-03", "ANA", "1.00"},
	}, []string{"Data", "Vendedor"})
	require.NoError(t, err)
	assert.Equal(t, UpsertResult{Updated: 1, Inserted: 1, Kept: 2, Total: 4}, res)

	data, err := csvparser.Parse(path, csvparser.Settings{})
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"2024-05-01", "ANA", "5.00"},
		{"2024-05-01", "BIA", "9.00"},
		{"2024-05-02", "ANA", "10.00"},
		{"2024-05-03", "ANA", "1.00"},
	}, data.Records)
}

func TestUpsertCSVCarriesOlderColumnSets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fato_vendas_diario.csv")
	require.NoError(t, os.WriteFile(path, []byte("\ufeffData,Desconto\n2024-04-30,3.00\n"), 0644))

	_, err := UpsertCSV(path, []string{"Data", "Desconto", "Crédito Cliente"},
		[][]string{{"2024-05-01", "1.00", "4.00"}}, []string{"Data"})
	require.NoError(t, err)

	data, err := csvparser.Parse(path, csvparser.Settings{})
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"2024-04-30", "3.00", ""},
		{"2024-05-01", "1.00", "4.00"},
	}, data.Records)
}

func TestUpsertCSVRejectsUnknownKey(t *testing.T) {
	_, err := UpsertCSV(filepath.Join(t.TempDir(), "x.csv"), []string{"A"}, nil, []string{"Data"})
	assert.Error(t, err)
}

func TestProductRecords(t *testing.T) {
	lines := []types.ProductStockLine{{
		ProductRecord: types.ProductRecord{Code: "1", Name: "CAMISA 0412", Unit: "UN", CostPrice: nd("3"), SellPrice: nd("7.5")},
		Quantity:      nd("3.333"),
		CostTotal:     nd("10"),
		RetailTotal:   nd("25"),
		Status:        "COMPRA",
		Level:         "PEDIDO 0412",
	}, {
		ProductRecord: types.ProductRecord{Code: "2", Name: "MEIA"},
	}}

	path := filepath.Join(t.TempDir(), "PRODUTOS.csv")
	require.NoError(t, SaveProducts(path, lines))

	data, err := csvparser.Parse(path, csvparser.Settings{})
	require.NoError(t, err)
	assert.Equal(t, types.ProductStockColumns, data.Headers)
	assert.Equal(t, "3.333", data.Rows[0][types.ColProdQuantity])
	assert.Equal(t, "7.50", data.Rows[0][types.ColProdRetailPrice])
	assert.Equal(t, "25.00", data.Rows[0][types.ColProdRetailTotal])
	assert.Equal(t, "PEDIDO 0412", data.Rows[0][types.ColProdLevel])
	assert.Empty(t, data.Rows[1][types.ColProdQuantity])
	assert.Empty(t, data.Rows[1][types.ColProdStatus])
}
