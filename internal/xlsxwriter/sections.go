package xlsxwriter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/kardex-extract/pkg/utils"
)

// sectionGap is the number of blank rows between two sections.
const sectionGap = 2

// Section is one titled table of a multi-table sheet.
type Section struct {
	// Title is written bold above the header. Empty skips the title row.
	Title   string
	Header  []string
	Records [][]string

	// NumericColumns use "#,##0.00", IntegerColumns use "0".
	NumericColumns []string
	IntegerColumns []string
}

// WriteSections saves sections one below the other on a single sheet,
// atomically.
func WriteSections(path string, sections []Section, opts Options) error {
	sheet := opts.SheetName
	if sheet == "" {
		sheet = DefaultSheet
	}
	sheet = truncateRunes(sheet, maxSheetName)

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	styles, err := newSectionStyles(f)
	if err != nil {
		return err
	}

	widest := 0
	row := 1
	for _, sec := range sections {
		next, err := writeSection(f, sheet, row, sec, styles)
		if err != nil {
			return err
		}
		row = next + sectionGap
		if len(sec.Header) > widest {
			widest = len(sec.Header)
		}
	}

	if opts.ColumnWidth > 0 && widest > 0 {
		last, _ := excelize.ColumnNumberToName(widest)
		if err := f.SetColWidth(sheet, "A", last, opts.ColumnWidth); err != nil {
			return err
		}
	}

	return utils.WriteFileAtomic(path, func(w io.Writer) error {
		return f.Write(w)
	})
}

type sectionStyles struct {
	bold, money, integer int
}

func newSectionStyles(f *excelize.File) (sectionStyles, error) {
	var s sectionStyles
	var err error
	if s.bold, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return s, fmt.Errorf("failed to create bold style: %w", err)
	}
	moneyFmt := "#,##0.00"
	if s.money, err = f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt}); err != nil {
		return s, fmt.Errorf("failed to create number style: %w", err)
	}
	// Built-in format 1 is "0".
	if s.integer, err = f.NewStyle(&excelize.Style{NumFmt: 1}); err != nil {
		return s, fmt.Errorf("failed to create integer style: %w", err)
	}
	return s, nil
}

// writeSection writes sec starting at row and returns the row after it.
func writeSection(f *excelize.File, sheet string, row int, sec Section, st sectionStyles) (int, error) {
	if sec.Title != "" {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetCellValue(sheet, cell, sec.Title); err != nil {
			return 0, err
		}
		if err := f.SetCellStyle(sheet, cell, cell, st.bold); err != nil {
			return 0, err
		}
		row++
	}

	if len(sec.Header) > 0 {
		headerRow := make([]interface{}, len(sec.Header))
		for i, h := range sec.Header {
			headerRow[i] = h
		}
		first, _ := excelize.CoordinatesToCellName(1, row)
		last, _ := excelize.CoordinatesToCellName(len(sec.Header), row)
		if err := f.SetSheetRow(sheet, first, &headerRow); err != nil {
			return 0, fmt.Errorf("failed to write header of %q: %w", sec.Title, err)
		}
		if err := f.SetCellStyle(sheet, first, last, st.bold); err != nil {
			return 0, err
		}
		row++
	}

	style := make(map[int]int)
	for _, name := range sec.NumericColumns {
		if i := indexOf(sec.Header, name); i >= 0 {
			style[i] = st.money
		}
	}
	for _, name := range sec.IntegerColumns {
		if i := indexOf(sec.Header, name); i >= 0 {
			style[i] = st.integer
		}
	}

	for _, rec := range sec.Records {
		values := make([]interface{}, len(rec))
		for i, v := range rec {
			values[i] = v
			if _, ok := style[i]; ok {
				if n, err := strconv.ParseFloat(v, 64); err == nil {
					values[i] = n
				}
			}
		}
		first, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheet, first, &values); err != nil {
			return 0, fmt.Errorf("failed to write row %d: %w", row, err)
		}
		for col, id := range style {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellStyle(sheet, cell, cell, id); err != nil {
				return 0, err
			}
		}
		row++
	}
	return row, nil
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}
