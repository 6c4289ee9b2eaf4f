package store

import (
	"io"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/kardex-extract/internal/types"
	"github.com/ginjaninja78/kardex-extract/pkg/utils"
)

// SaveProducts writes the product stock export atomically.
func SaveProducts(path string, lines []types.ProductStockLine) error {
	records := ProductRecords(lines)
	return utils.WriteFileAtomic(path, func(w io.Writer) error {
		return WriteCSV(w, types.ProductStockColumns, records)
	})
}

// ProductRecords renders lines in types.ProductStockColumns order.
func ProductRecords(lines []types.ProductStockLine) [][]string {
	records := make([][]string, len(lines))
	for i, l := range lines {
		rec := make([]string, len(types.ProductStockColumns))
		for j, c := range types.ProductStockColumns {
			switch c {
			case types.ColProdCode:
				rec[j] = l.Code
			case types.ColProdReference:
				rec[j] = l.Reference
			case types.ColProdName:
				rec[j] = l.Name
			case types.ColUnit:
				rec[j] = l.Unit
			case types.ColProdQuantity:
				rec[j] = formatNullPlaces(l.Quantity, 3)
			case types.ColCostPrice:
				rec[j] = formatNull(l.CostPrice)
			case types.ColProdRetailPrice:
				rec[j] = formatNull(l.SellPrice)
			case types.ColProdCostTotal:
				rec[j] = formatNull(l.CostTotal)
			case types.ColProdRetailTotal:
				rec[j] = formatNull(l.RetailTotal)
			case types.ColProdRegistered:
				rec[j] = l.RegisteredAt
			case types.ColProdStatus:
				rec[j] = l.Status
			case types.ColProdLevel:
				rec[j] = l.Level
			}
		}
		records[i] = rec
	}
	return records
}

func formatNullPlaces(d decimal.NullDecimal, places int32) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.StringFixed(places)
}
