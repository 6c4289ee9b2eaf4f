package store

import (
	"io"

	"github.com/ginjaninja78/kardex-extract/internal/types"
	"github.com/ginjaninja78/kardex-extract/pkg/utils"
)

// TextPrefix keeps size codes such as 38 or 040 as text in spreadsheets.
const TextPrefix = "'"

// SaveStock writes the stock report atomically.
func SaveStock(path string, lines []types.StockLine) error {
	records := StockRecords(lines)
	return utils.WriteFileAtomic(path, func(w io.Writer) error {
		return WriteCSV(w, types.StockColumns, records)
	})
}

// StockRecords renders lines in types.StockColumns order.
func StockRecords(lines []types.StockLine) [][]string {
	records := make([][]string, len(lines))
	for i, l := range lines {
		rec := make([]string, len(types.StockColumns))
		for j, c := range types.StockColumns {
			switch c {
			case types.ColStore:
				rec[j] = l.Store
			case types.ColProductCode:
				rec[j] = l.ProductCode
			case types.ColGradeCode:
				rec[j] = l.GradeCode
			case types.ColDescription:
				rec[j] = l.Description
			case types.ColColor:
				rec[j] = l.Color
			case types.ColSize:
				rec[j] = TextPrefix + l.Size
			case types.ColUnit:
				rec[j] = l.Unit
			case types.ColGroup:
				rec[j] = l.Group
			case types.ColSubGroup:
				rec[j] = l.SubGroup
			case types.ColBrand:
				rec[j] = l.Brand
			case types.ColQtyIn:
				rec[j] = l.QtyIn.String()
			case types.ColQtyOut:
				rec[j] = l.QtyOut.String()
			case types.ColBalance:
				rec[j] = l.Balance.String()
			case types.ColUsername:
				rec[j] = l.LastUsername
			case types.ColDate:
				rec[j] = l.LastDate
			case types.ColTime:
				rec[j] = l.LastTime
			case types.ColCostPrice:
				rec[j] = formatNull(l.CostPrice)
			case types.ColSellPrice:
				rec[j] = formatNull(l.SellPrice)
			case types.ColCostValue:
				rec[j] = l.CostValue.StringFixed(2)
			case types.ColSaleValue:
				rec[j] = l.SaleValue.StringFixed(2)
			}
		}
		records[i] = rec
	}
	return records
}

// LineRecords renders movement lines in the given column order.
func LineRecords(lines []types.AggregatedLine, columns []string) [][]string {
	records := make([][]string, len(lines))
	for i, l := range lines {
		records[i] = lineRecord(l, columns)
	}
	return records
}
