package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/kardex-extract/internal/types"
)

func sampleLine() types.AggregatedLine {
	return types.AggregatedLine{
		GradeCode:    "0042",
		Date:         "2024-05-10",
		Username:     "ANA",
		MovementType: types.MovementSale,
		Store:        "01",
		ProductCode:  "P1",
		Description:  "CAMISA, GOLA V",
		Color:        "AZUL",
		Size:         "M",
		Time:         "09:15:00",
		Quantity:     decimal.NewFromInt(3),
		Unit:         "UN",
		Group:        "VESTUARIO",
		CostPrice:    decimal.NewNullDecimal(decimal.RequireFromString("10")),
		SellPrice:    decimal.NewNullDecimal(decimal.RequireFromString("25.5")),
		Markup:       decimal.RequireFromString("2.55"),
		Revenue:      decimal.RequireFromString("76.5"),
		CostTotal:    decimal.NewFromInt(30),
		GrossProfit:  decimal.RequireFromString("46.5"),
		GrossMargin:  decimal.RequireFromString("60.78"),
	}
}

func TestCSVStoreRoundTrip(t *testing.T) {
	s := NewCSVStore(filepath.Join(t.TempDir(), "SAIDA_GRADE.csv"), nil)
	assert.False(t, s.Exists())

	unknown := sampleLine()
	unknown.GradeCode = "P9_UNICO"
	unknown.CostPrice = decimal.NullDecimal{}
	unknown.SellPrice = decimal.NullDecimal{}
	unknown.Markup, unknown.Revenue, unknown.CostTotal = decimal.Zero, decimal.Zero, decimal.Zero
	unknown.GrossProfit, unknown.GrossMargin = decimal.Zero, decimal.Zero

	require.NoError(t, s.Save([]types.AggregatedLine{sampleLine(), unknown}))
	assert.True(t, s.Exists())

	got, err := s.Load()
	require.NoError(t, err)
	require.Len(t, got, 2)

	want := sampleLine()
	assert.Equal(t, want.Key(), got[0].Key())
	assert.Equal(t, "0042", got[0].GradeCode, "leading zeros preserved")
	assert.Equal(t, want.Description, got[0].Description)
	assert.True(t, want.Quantity.Equal(got[0].Quantity))
	assert.True(t, got[0].SellPrice.Valid)
	assert.True(t, want.SellPrice.Decimal.Equal(got[0].SellPrice.Decimal))
	assert.True(t, want.GrossMargin.Equal(got[0].GrossMargin))

	assert.False(t, got[1].CostPrice.Valid)
	assert.True(t, got[1].Revenue.IsZero())
}

func TestCSVStoreEmptyOutputKeepsHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	s := NewCSVStore(path, nil)
	require.NoError(t, s.Save(nil))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(types.LineColumns, ",")+"\n", string(body))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCSVStoreMissingFile(t *testing.T) {
	got, err := NewCSVStore(filepath.Join(t.TempDir(), "none.csv"), nil).Load()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCSVStoreRejectsCorruptFiles(t *testing.T) {
	dir := t.TempDir()

	noKey := filepath.Join(dir, "nokey.csv")
	require.NoError(t, os.WriteFile(noKey, []byte("COD_GRADE,QUANTIDADE\nG1,1\n"), 0644))
	_, err := NewCSVStore(noKey, nil).Load()
	assert.ErrorContains(t, err, "key column")

	badNumber := filepath.Join(dir, "bad.csv")
	body := "COD_GRADE,DATA_MOVIMENTO,NOME_USUARIO,TIPO_MOVIMENTO,QUANTIDADE\nG1,2024-05-10,ANA,VENDA,abc\n"
	require.NoError(t, os.WriteFile(badNumber, []byte(body), 0644))
	_, err = NewCSVStore(badNumber, nil).Load()
	assert.ErrorContains(t, err, "row 2")
}

func TestCSVStoreColumnSubset(t *testing.T) {
	cols := []string{types.ColGradeCode, types.ColDate, types.ColUsername, types.ColMovementType, types.ColQuantity}
	path := filepath.Join(t.TempDir(), "subset.csv")
	require.NoError(t, NewCSVStore(path, cols).Save([]types.AggregatedLine{sampleLine()}))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "COD_GRADE,DATA_MOVIMENTO,NOME_USUARIO,TIPO_MOVIMENTO,QUANTIDADE", lines[0])
	assert.Equal(t, "0042,2024-05-10,ANA,VENDA,3", lines[1])
}

func TestSaveStockPrefixesSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ESTOQUE_GRADE.csv")
	require.NoError(t, SaveStock(path, []types.StockLine{{
		GradeCode: "G1",
		Size:      "38",
		Balance:   decimal.NewFromInt(4),
		CostValue: decimal.NewFromInt(40),
	}}))

	rec := StockRecords([]types.StockLine{{Size: "38"}})[0]
	for i, c := range types.StockColumns {
		if c == types.ColSize {
			assert.Equal(t, "'38", rec[i])
		}
	}
	assert.FileExists(t, path)
}
