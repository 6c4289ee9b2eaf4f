package xlsxwriter

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteSectionsStacksTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "RelatorioPeriodo.xlsx")
	sections := []Section{
		{
			Header:  []string{"Parâmetro", "Valor"},
			Records: [][]string{{"Data Inicial", "2025-01-01"}},
		},
		{
			Title:          "Detalhe Diário",
			Header:         []string{"Data", "Total Líquido (A)", "Qtde. Pedidos (C)"},
			Records:        [][]string{{"2025-01-01", "150.00", "2"}, {"2025-01-02", "80.5", "1"}},
			NumericColumns: []string{"Total Líquido (A)"},
			IntegerColumns: []string{"Qtde. Pedidos (C)"},
		},
	}
	require.NoError(t, WriteSections(path, sections, Options{SheetName: "Relatorio", ColumnWidth: 20}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	require.Equal(t, "Relatorio", f.GetSheetName(0))

	// Rows: 1 header, 2 param, 3-4 gap, 5 title, 6 header, 7-8 data.
	title, err := f.GetCellValue("Relatorio", "A5")
	require.NoError(t, err)
	assert.Equal(t, "Detalhe Diário", title)

	header, err := f.GetCellValue("Relatorio", "B6")
	require.NoError(t, err)
	assert.Equal(t, "Total Líquido (A)", header)

	gap, err := f.GetCellValue("Relatorio", "A3")
	require.NoError(t, err)
	assert.Empty(t, gap)

	typ, err := f.GetCellType("Relatorio", "B8")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, typ, "money cells are numbers")

	raw, err := f.GetCellValue("Relatorio", "B8", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "80.5", raw)

	date, err := f.GetCellValue("Relatorio", "A7")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", date, "text columns stay text")

	width, err := f.GetColWidth("Relatorio", "C")
	require.NoError(t, err)
	assert.Equal(t, 20.0, width)
}

func TestWriteSectionsWithoutSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vazio.xlsx")
	require.NoError(t, WriteSections(path, nil, Options{}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, DefaultSheet, f.GetSheetName(0))
}
