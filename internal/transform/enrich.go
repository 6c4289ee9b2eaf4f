package transform

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/kardex-extract/internal/types"
)

// References holds the reference tables read by BuildCatalog.
type References struct {
	Products  []types.Row
	Groups    []types.Row
	Brands    []types.Row
	SubGroups []types.Row
}

// Product is one product resolved against its lookup tables.
type Product struct {
	Unit      string
	Group     string
	SubGroup  string
	Brand     string
	CostPrice decimal.NullDecimal
	SellPrice decimal.NullDecimal
}

// Catalog maps product references to resolved products.
type Catalog struct {
	products map[string]Product
}

// BuildCatalog joins products to groups, brands and sub-groups by code.
// A product reference that appears twice keeps its first row so lookups
// never multiply lines. Unknown codes leave the name empty.
func BuildCatalog(refs References) *Catalog {
	groups := lookup(refs.Groups, "CODIGO", "NOME_GRUPO")
	brands := lookup(refs.Brands, "CODIGO", "NOME_MARCA")
	subGroups := lookup(refs.SubGroups, "CODIGO", "DESCRICAO")

	c := &Catalog{products: make(map[string]Product, len(refs.Products))}
	for _, row := range refs.Products {
		ref := strings.TrimSpace(row["REFERENCIA"])
		if ref == "" {
			continue
		}
		if _, dup := c.products[ref]; dup {
			continue
		}
		c.products[ref] = Product{
			Unit:      row["UNIDADE"],
			Group:     groups[strings.TrimSpace(row["GRUPO"])],
			SubGroup:  subGroups[strings.TrimSpace(row["SUB_GRUPO"])],
			Brand:     brands[strings.TrimSpace(row["MARCA"])],
			CostPrice: parsePrice(row["PRECO_CUST"]),
			SellPrice: parsePrice(row["PRECO_VEND"]),
		}
	}
	return c
}

// Len is the number of distinct products.
func (c *Catalog) Len() int { return len(c.products) }

// Lookup returns the product for a reference code.
func (c *Catalog) Lookup(code string) (Product, bool) {
	if c == nil {
		return Product{}, false
	}
	p, ok := c.products[strings.TrimSpace(code)]
	return p, ok
}

func lookup(rows []types.Row, keyCol, valueCol string) map[string]string {
	m := make(map[string]string, len(rows))
	for _, row := range rows {
		k := strings.TrimSpace(row[keyCol])
		if _, dup := m[k]; k == "" || dup {
			continue
		}
		m[k] = row[valueCol]
	}
	return m
}

func parsePrice(s string) decimal.NullDecimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(strings.Replace(s, ",", ".", 1))
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// =============================================================================
// ENRICHMENT
// =============================================================================

// Enrich fills the reference fields and metrics of every line in place and
// returns how many lines matched a product. No line is ever dropped.
func Enrich(lines []types.AggregatedLine, catalog *Catalog) int {
	matched := 0
	for i := range lines {
		if p, ok := catalog.Lookup(lines[i].ProductCode); ok {
			matched++
			lines[i].Unit = p.Unit
			lines[i].Group = p.Group
			lines[i].SubGroup = p.SubGroup
			lines[i].Brand = p.Brand
			lines[i].CostPrice = p.CostPrice
			lines[i].SellPrice = p.SellPrice
		}
		ApplyMetrics(&lines[i])
	}
	return matched
}

// Metrics are the derived money figures of a line, rounded to two places.
type Metrics struct {
	Markup      decimal.Decimal
	Revenue     decimal.Decimal
	CostTotal   decimal.Decimal
	GrossProfit decimal.Decimal
	GrossMargin decimal.Decimal
}

// ComputeMetrics derives the metrics of quantity at the given prices:
//
//	markup       = sell / cost            (0 when cost is missing or <= 0)
//	revenue      = quantity * sell        (0 when sell is missing)
//	cost_total   = quantity * cost        (0 when cost is missing)
//	gross_profit = revenue - cost_total
//	gross_margin = revenue / cost_total   (0 when cost_total <= 0)
//
// Revenue and cost are rounded before profit and margin are derived.
func ComputeMetrics(quantity decimal.Decimal, cost, sell decimal.NullDecimal) Metrics {
	var m Metrics

	if cost.Valid && sell.Valid && cost.Decimal.IsPositive() {
		m.Markup = sell.Decimal.Div(cost.Decimal).Round(2)
	}
	if sell.Valid {
		m.Revenue = quantity.Mul(sell.Decimal).Round(2)
	}
	if cost.Valid {
		m.CostTotal = quantity.Mul(cost.Decimal).Round(2)
	}
	m.GrossProfit = m.Revenue.Sub(m.CostTotal).Round(2)
	if m.CostTotal.IsPositive() {
		m.GrossMargin = m.Revenue.Div(m.CostTotal).Round(2)
	}
	return m
}

// ApplyMetrics recomputes the metric fields of a line.
func ApplyMetrics(l *types.AggregatedLine) {
	m := ComputeMetrics(l.Quantity, l.CostPrice, l.SellPrice)
	l.Markup = m.Markup
	l.Revenue = m.Revenue
	l.CostTotal = m.CostTotal
	l.GrossProfit = m.GrossProfit
	l.GrossMargin = m.GrossMargin
}
