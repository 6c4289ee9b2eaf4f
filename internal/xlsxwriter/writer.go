// =============================================================================
// Kardex Extract - XLSX Writer
// =============================================================================
//
// This module writes report tables as spreadsheets. Numeric columns are
// stored as numbers so they can be summed; every other column is stored as
// text so codes keep their leading zeros.
//
// LAYOUT:
//   - Row 1 holds the header, bold on a light grey fill, frozen
//   - Data starts at row 2
//   - Numeric cells use the "#,##0.00" format
//
// =============================================================================

package xlsxwriter

import (
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/kardex-extract/pkg/utils"
)

// DefaultSheet is used when Options.SheetName is empty.
const DefaultSheet = "DADOS"

// maxSheetName is the spreadsheet limit on tab names.
const maxSheetName = 31

// Options controls how a table is written.
type Options struct {
	SheetName string

	// NumericColumns are written as numbers when they parse as such.
	NumericColumns []string

	// ColumnWidth applied to every column. Zero keeps the default.
	ColumnWidth float64
}

// Write saves header and records to an XLSX file at path, atomically.
func Write(path string, header []string, records [][]string, opts Options) error {
	f, err := build(header, records, opts)
	if err != nil {
		return err
	}
	defer f.Close()

	return utils.WriteFileAtomic(path, func(w io.Writer) error {
		return f.Write(w)
	})
}

func build(header []string, records [][]string, opts Options) (*excelize.File, error) {
	sheet := opts.SheetName
	if sheet == "" {
		sheet = DefaultSheet
	}
	sheet = truncateRunes(sheet, maxSheetName)

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := writeTable(f, sheet, header, records, opts); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// truncateRunes cuts s to at most n characters without splitting a
// multi-byte rune.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

func writeTable(f *excelize.File, sheet string, header []string, records [][]string, opts Options) error {
	numeric := make(map[int]bool)
	for _, name := range opts.NumericColumns {
		for i, h := range header {
			if h == name {
				numeric[i] = true
			}
		}
	}

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for r, rec := range records {
		row := make([]interface{}, len(rec))
		for i, v := range rec {
			row[i] = v
			if numeric[i] {
				if n, err := strconv.ParseFloat(v, 64); err == nil {
					row[i] = n
				}
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+2, err)
		}
	}

	if len(header) == 0 {
		return nil
	}
	return styleTable(f, sheet, len(header), len(records), numeric, opts.ColumnWidth)
}

// styleTable formats the header and numeric columns and freezes row 1.
func styleTable(f *excelize.File, sheet string, cols, rows int, numeric map[int]bool, width float64) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(cols, 1)
	if err := f.SetCellStyle(sheet, "A1", lastHeader, headerStyle); err != nil {
		return err
	}

	if rows > 0 && len(numeric) > 0 {
		numFmt := "#,##0.00"
		numStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
		if err != nil {
			return fmt.Errorf("failed to create number style: %w", err)
		}
		for col := range numeric {
			top, _ := excelize.CoordinatesToCellName(col+1, 2)
			bottom, _ := excelize.CoordinatesToCellName(col+1, rows+1)
			if err := f.SetCellStyle(sheet, top, bottom, numStyle); err != nil {
				return err
			}
		}
	}

	if width > 0 {
		last, _ := excelize.ColumnNumberToName(cols)
		if err := f.SetColWidth(sheet, "A", last, width); err != nil {
			return err
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// ReadTable splits the first sheet into header and records. Records are
// padded or cut to the header width, since trailing empty cells are not
// returned by the reader.
func ReadTable(path string) ([]string, [][]string, error) {
	rows, err := ReadRows(path)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("spreadsheet %s is empty", path)
	}
	header := rows[0]
	records := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make([]string, len(header))
		copy(rec, row)
		records = append(records, rec)
	}
	return header, records, nil
}

// ReadRows returns every row of the first sheet, header included.
func ReadRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return rows, nil
}
