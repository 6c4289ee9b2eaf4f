package transform

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/kardex-extract/internal/types"
)

// Product classifications.
const (
	ProductStatusStock    = "ESTOQUE"
	ProductStatusPurchase = "COMPRA"
)

// orderSuffix matches the four character purchase order tag that ends a
// product name, e.g. "CALCA JEANS 0412" or "BLUSA 12XX".
var orderSuffix = regexp.MustCompile(`^[0-9X]{4}$`)

// ProductTotals summarizes a product stock export.
type ProductTotals struct {
	Products    int
	WithoutCost int
	CostTotal   decimal.Decimal
	RetailTotal decimal.Decimal
}

// ClassifyProduct derives STATUS and NIVEL from a product name. Names that
// end in ESTOQUE are stock items; names ending in a four character order
// tag are purchases of that order.
func ClassifyProduct(name string) (status, level string) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	if upper == ProductStatusStock || strings.HasSuffix(upper, " "+ProductStatusStock) {
		return ProductStatusStock, ""
	}
	runes := []rune(upper)
	if len(runes) >= 4 {
		tag := string(runes[len(runes)-4:])
		if orderSuffix.MatchString(tag) {
			return ProductStatusPurchase, "PEDIDO " + tag
		}
	}
	return "", ""
}

// BuildProductStock derives the quantity of every product from its stock
// value and cost. Products without a cost, or with a zero cost, get no
// quantity and no retail total. Quantities are rounded to 3 places and
// money to 2.
func BuildProductStock(records []types.ProductRecord) ([]types.ProductStockLine, ProductTotals) {
	totals := ProductTotals{CostTotal: decimal.Zero, RetailTotal: decimal.Zero}
	lines := make([]types.ProductStockLine, 0, len(records))

	for _, r := range records {
		l := types.ProductStockLine{ProductRecord: r}
		l.Status, l.Level = ClassifyProduct(r.Name)

		if r.StockValue.Valid {
			l.CostTotal = decimal.NewNullDecimal(r.StockValue.Decimal.Round(2))
			totals.CostTotal = totals.CostTotal.Add(r.StockValue.Decimal)
		}

		if !r.CostPrice.Valid || r.CostPrice.Decimal.IsZero() {
			totals.WithoutCost++
		} else if r.StockValue.Valid {
			qty := r.StockValue.Decimal.Div(r.CostPrice.Decimal)
			l.Quantity = decimal.NewNullDecimal(qty.Round(3))
			if r.SellPrice.Valid {
				retail := r.SellPrice.Decimal.Mul(qty)
				l.RetailTotal = decimal.NewNullDecimal(retail.Round(2))
				totals.RetailTotal = totals.RetailTotal.Add(retail)
			}
		}

		lines = append(lines, l)
	}

	totals.Products = len(lines)
	totals.CostTotal = totals.CostTotal.Round(2)
	totals.RetailTotal = totals.RetailTotal.Round(2)
	return lines, totals
}
