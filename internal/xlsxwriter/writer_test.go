package xlsxwriter

import (
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteAndReadBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "SAIDA_GRADE.xlsx")
	header := []string{"COD_GRADE", "QUANTIDADE", "FATURAMENTO"}
	records := [][]string{
		{"0042", "3", "76.50"},
		{"G2", "1.5", ""},
	}

	require.NoError(t, Write(path, header, records, Options{
		SheetName:      "SAIDA_GRADE",
		NumericColumns: []string{"QUANTIDADE", "FATURAMENTO"},
		ColumnWidth:    14,
	}))

	rows, err := ReadRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, header, rows[0])
	assert.Equal(t, "0042", rows[1][0], "text column keeps leading zeros")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, "SAIDA_GRADE", f.GetSheetName(0))

	typ, err := f.GetCellType("SAIDA_GRADE", "B2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, typ)
	assert.NotEqual(t, excelize.CellTypeInlineString, typ)
}

func TestWriteHeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, Write(path, []string{"A", "B"}, nil, Options{}))

	rows, err := ReadRows(path)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"A", "B"}}, rows)
}

func TestLongSheetNameIsTruncated(t *testing.T) {
	f, err := build([]string{"A"}, nil, Options{SheetName: "A_VERY_LONG_SHEET_NAME_FOR_THE_PRODUTOS_TABLE"})
	require.NoError(t, err)
	defer f.Close()
	assert.Len(t, f.GetSheetName(0), maxSheetName)
}

func TestLongSheetNameKeepsWholeCharacters(t *testing.T) {
	name := "MOVIMENTAÇÃO_DE_ESTOQUE_POR_GRADE_E_PRODUTO"
	f, err := build([]string{"A"}, nil, Options{SheetName: name})
	require.NoError(t, err)
	defer f.Close()

	got := f.GetSheetName(0)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, maxSheetName, utf8.RuneCountInString(got))
	assert.Equal(t, "MOVIMENTAÇÃO_DE_ESTOQUE_POR_GRA", got)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "AÇÃ", truncateRunes("AÇÃO", 3))
	assert.Equal(t, "curto", truncateRunes("curto", 31))
}

func TestReadTablePadsShortRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "PRODUTOS.xlsx")
	require.NoError(t, Write(path, []string{"CODIGO", "NOME", "STATUS"}, [][]string{
		{"1", "CAMISA", ""},
		{"2", "CALCA", "COMPRA"},
	}, Options{}))

	header, records, err := ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"CODIGO", "NOME", "STATUS"}, header)
	assert.Equal(t, [][]string{{"1", "CAMISA", ""}, {"2", "CALCA", "COMPRA"}}, records)
}
