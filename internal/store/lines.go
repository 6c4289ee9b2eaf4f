package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/kardex-extract/internal/csvparser"
	"github.com/ginjaninja78/kardex-extract/internal/types"
	"github.com/ginjaninja78/kardex-extract/pkg/utils"
)

// LineStore is the persisted movement report.
type LineStore interface {
	// Exists reports whether a previous output is present.
	Exists() bool

	// Load reads every persisted line.
	Load() ([]types.AggregatedLine, error)

	// Save replaces the persisted lines. A failed save leaves the previous
	// file untouched.
	Save(lines []types.AggregatedLine) error

	// Path is the location of the persisted file.
	Path() string
}

// CSVStore keeps AggregatedLines in one CSV file.
type CSVStore struct {
	path    string
	columns []string
}

// NewCSVStore returns a store at path emitting columns in order.
// Nil columns means types.LineColumns.
func NewCSVStore(path string, columns []string) *CSVStore {
	if len(columns) == 0 {
		columns = types.LineColumns
	}
	return &CSVStore{path: path, columns: columns}
}

func (s *CSVStore) Path() string { return s.path }

func (s *CSVStore) Exists() bool { return utils.FileExists(s.path) }

// Load reads the persisted lines. A missing file yields no lines.
func (s *CSVStore) Load() ([]types.AggregatedLine, error) {
	data, err := csvparser.Parse(s.path, csvparser.Settings{})
	switch {
	case errors.Is(err, os.ErrNotExist), errors.Is(err, csvparser.ErrEmpty):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("load %s: %w", s.path, err)
	}

	if missing, ok := csvparser.HasColumns(data, types.KeyColumns...); !ok {
		return nil, fmt.Errorf("load %s: key column %s missing", s.path, missing)
	}

	lines := make([]types.AggregatedLine, 0, data.RowCount)
	for i, row := range data.Rows {
		line, err := parseLine(row)
		if err != nil {
			return nil, fmt.Errorf("load %s: row %d: %w", s.path, i+2, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// Save writes lines atomically.
func (s *CSVStore) Save(lines []types.AggregatedLine) error {
	records := LineRecords(lines, s.columns)
	return utils.WriteFileAtomic(s.path, func(w io.Writer) error {
		return WriteCSV(w, s.columns, records)
	})
}

func lineRecord(l types.AggregatedLine, columns []string) []string {
	rec := make([]string, len(columns))
	for i, c := range columns {
		switch c {
		case types.ColStore:
			rec[i] = l.Store
		case types.ColDate:
			rec[i] = l.Date
		case types.ColTime:
			rec[i] = l.Time
		case types.ColUsername:
			rec[i] = l.Username
		case types.ColMovementType:
			rec[i] = string(l.MovementType)
		case types.ColProductCode:
			rec[i] = l.ProductCode
		case types.ColGradeCode:
			rec[i] = l.GradeCode
		case types.ColDescription:
			rec[i] = l.Description
		case types.ColColor:
			rec[i] = l.Color
		case types.ColSize:
			rec[i] = l.Size
		case types.ColUnit:
			rec[i] = l.Unit
		case types.ColGroup:
			rec[i] = l.Group
		case types.ColSubGroup:
			rec[i] = l.SubGroup
		case types.ColBrand:
			rec[i] = l.Brand
		case types.ColQuantity:
			rec[i] = l.Quantity.String()
		case types.ColCostPrice:
			rec[i] = formatNull(l.CostPrice)
		case types.ColSellPrice:
			rec[i] = formatNull(l.SellPrice)
		case types.ColMarkup:
			rec[i] = l.Markup.StringFixed(2)
		case types.ColRevenue:
			rec[i] = l.Revenue.StringFixed(2)
		case types.ColCostTotal:
			rec[i] = l.CostTotal.StringFixed(2)
		case types.ColGrossProfit:
			rec[i] = l.GrossProfit.StringFixed(2)
		case types.ColGrossMargin:
			rec[i] = l.GrossMargin.StringFixed(2)
		}
	}
	return rec
}

func parseLine(row map[string]string) (types.AggregatedLine, error) {
	l := types.AggregatedLine{
		GradeCode:    row[types.ColGradeCode],
		Date:         row[types.ColDate],
		Username:     row[types.ColUsername],
		MovementType: types.MovementType(row[types.ColMovementType]),
		Store:        row[types.ColStore],
		ProductCode:  row[types.ColProductCode],
		Description:  row[types.ColDescription],
		Color:        row[types.ColColor],
		Size:         row[types.ColSize],
		Time:         row[types.ColTime],
		Unit:         row[types.ColUnit],
		Group:        row[types.ColGroup],
		SubGroup:     row[types.ColSubGroup],
		Brand:        row[types.ColBrand],
	}

	var err error
	if l.Quantity, err = parseDecimal(row, types.ColQuantity); err != nil {
		return l, err
	}
	if l.CostPrice, err = parseNull(row, types.ColCostPrice); err != nil {
		return l, err
	}
	if l.SellPrice, err = parseNull(row, types.ColSellPrice); err != nil {
		return l, err
	}
	metrics := []struct {
		col string
		dst *decimal.Decimal
	}{
		{types.ColMarkup, &l.Markup},
		{types.ColRevenue, &l.Revenue},
		{types.ColCostTotal, &l.CostTotal},
		{types.ColGrossProfit, &l.GrossProfit},
		{types.ColGrossMargin, &l.GrossMargin},
	}
	for _, m := range metrics {
		if *m.dst, err = parseDecimal(row, m.col); err != nil {
			return l, err
		}
	}
	return l, nil
}

func parseDecimal(row map[string]string, col string) (decimal.Decimal, error) {
	v := strings.TrimSpace(row[col])
	if v == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("column %s: invalid number %q", col, v)
	}
	return d, nil
}

func parseNull(row map[string]string, col string) (decimal.NullDecimal, error) {
	if strings.TrimSpace(row[col]) == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := parseDecimal(row, col)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

func formatNull(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.StringFixed(2)
}
