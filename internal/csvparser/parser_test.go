package csvparser

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestParseReaderStripsBOM(t *testing.T) {
	input := "\xef\xbb\xbfCOD_GRADE,QUANTIDADE\nG1,2\n\nG2,3\n"
	data, err := ParseReader(strings.NewReader(input), Settings{})
	require.NoError(t, err)

	assert.Equal(t, []string{"COD_GRADE", "QUANTIDADE"}, data.Headers)
	require.Equal(t, 2, data.RowCount)
	assert.Equal(t, "G1", data.Rows[0]["COD_GRADE"])
	assert.Equal(t, []string{"G2", "3"}, data.Records[1])
}

func TestParseReaderDecodesLegacyCharset(t *testing.T) {
	encoded, err := charmap.Windows1252.NewEncoder().String("DESCRICAO;COR\nCALÇA JEANS;AÇAÍ\n")
	require.NoError(t, err)

	data, err := ParseReader(bytes.NewBufferString(encoded), Settings{Delimiter: "semicolon", Encoding: "WIN1252"})
	require.NoError(t, err)
	require.Len(t, data.Rows, 1)
	assert.Equal(t, "CALÇA JEANS", data.Rows[0]["DESCRICAO"])
	assert.Equal(t, "AÇAÍ", data.Rows[0]["COR"])
}

func TestParseReaderPadsShortRows(t *testing.T) {
	data, err := ParseReader(strings.NewReader("A,B,C\n1\n"), Settings{})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "", ""}, data.Records[0])
}

func TestParseEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	_, err := Parse(path, Settings{})
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestDecoderRejectsUnknownCharset(t *testing.T) {
	_, err := Decoder("EBCDIC")
	assert.Error(t, err)

	for _, name := range []string{"UTF8", "utf-8", "ISO8859_1", "DOS850", "win1252"} {
		_, err := Decoder(name)
		assert.NoError(t, err, name)
	}
}

func TestHasColumns(t *testing.T) {
	data := &CSVData{Headers: []string{"A", "B"}}
	missing, ok := HasColumns(data, "A", "C")
	assert.False(t, ok)
	assert.Equal(t, "C", missing)
}
