// =============================================================================
// Kardex Extract - CSV Parser Module
// =============================================================================
//
// This module reads the delimited files the tool itself produces (the merged
// movement report, the stock report) and files handed to the upload command.
// It handles:
//   - Different delimiters (comma, semicolon, pipe, tab)
//   - Legacy single-byte encodings (WIN1252, ISO8859_1, DOS850)
//   - A leading UTF-8 byte order mark written by spreadsheet tools
//   - Quoted fields and ragged rows
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrEmpty is returned when the input has no header row.
var ErrEmpty = errors.New("CSV file is empty")

// =============================================================================
// SETTINGS
// =============================================================================

// Settings controls how a file is read.
type Settings struct {
	// Delimiter is one character or one of the names "tab", "pipe",
	// "semicolon". Default: ","
	Delimiter string

	// Encoding is the file charset. Accepts the database charset names
	// (UTF8, WIN1252, ISO8859_1, DOS850) as well as common aliases.
	// Default: UTF-8
	Encoding string
}

// =============================================================================
// CSV DATA STRUCTURE
// =============================================================================

// CSVData represents a parsed file.
type CSVData struct {
	// Headers are the cleaned column names of the first row.
	Headers []string

	// Rows contains the data rows as maps of header -> value.
	Rows []map[string]string

	// Records are the data rows in column order, padded to the header width.
	Records [][]string

	SourceFile  string
	RowCount    int
	ColumnCount int
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a delimited file and returns the parsed data.
//
// PARAMETERS:
//   - filePath: The path to the file.
//   - settings: Delimiter and encoding.
//
// RETURNS:
//   - The parsed data.
//   - ErrEmpty when the file has no header, or a read error.
func Parse(filePath string, settings Settings) (*CSVData, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	data, err := ParseReader(file, settings)
	if err != nil {
		return nil, err
	}
	data.SourceFile = filePath
	return data, nil
}

// ParseReader is Parse over an arbitrary reader.
func ParseReader(r io.Reader, settings Settings) (*CSVData, error) {
	dec, err := Decoder(settings.Encoding)
	if err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(transform.NewReader(bufio.NewReader(r), dec))
	configureReader(csvReader, settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(allRows) == 0 {
		return nil, ErrEmpty
	}

	headers := cleanHeaders(allRows[0])
	data := &CSVData{
		Headers:     headers,
		ColumnCount: len(headers),
	}

	for _, raw := range allRows[1:] {
		if isRowEmpty(raw) {
			continue
		}
		record := make([]string, len(headers))
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(raw) {
				record[i] = raw[i]
			}
			row[h] = record[i]
		}
		data.Records = append(data.Records, record)
		data.Rows = append(data.Rows, row)
	}
	data.RowCount = len(data.Rows)

	return data, nil
}

// Decoder returns the transformer that converts the named charset to UTF-8.
// UTF-8 input may start with a byte order mark, which is dropped.
func Decoder(name string) (transform.Transformer, error) {
	enc, err := lookupEncoding(name)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return unicode.BOMOverride(unicode.UTF8.NewDecoder()), nil
	}
	return enc.NewDecoder(), nil
}

// lookupEncoding maps a charset name to its encoding. A nil encoding means
// UTF-8.
func lookupEncoding(name string) (encoding.Encoding, error) {
	key := strings.ToUpper(strings.NewReplacer("-", "", "_", "", " ", "").Replace(name))
	switch key {
	case "", "UTF8", "UNICODEFSS":
		return nil, nil
	case "WIN1252", "WINDOWS1252", "CP1252":
		return charmap.Windows1252, nil
	case "ISO88591", "LATIN1":
		return charmap.ISO8859_1, nil
	case "DOS850", "CP850", "IBM850":
		return charmap.CodePage850, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings Settings) {
	switch settings.Delimiter {
	case "\\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(settings.Delimiter) > 0 {
			reader.Comma = rune(settings.Delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
}

// cleanHeaders trims surrounding whitespace and quotes from header names.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, h := range headers {
		cleaned[i] = strings.Trim(strings.TrimSpace(h), `"`)
	}
	return cleaned
}

func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// HasColumns reports the first of the wanted headers that is missing.
func HasColumns(data *CSVData, wanted ...string) (string, bool) {
	present := make(map[string]bool, len(data.Headers))
	for _, h := range data.Headers {
		present[h] = true
	}
	for _, w := range wanted {
		if !present[w] {
			return w, false
		}
	}
	return "", true
}
