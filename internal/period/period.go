// =============================================================================
// Kardex Extract - Period Sales Report
// =============================================================================
//
// This module summarizes the orders of a date range. It produces:
//   - A daily detail (net sales, products, orders, averages, discounts,
//     surcharges, gross, returns and customer credit per day)
//   - A summary per weekday, Monday first, every weekday present
//   - Period totals for sales, returns and net sales
//   - Totals per payment type
//   - Order and return counters
//   - Net sales per seller for the period and per day
//
// Which statuses are sales, returns or ignored, which column carries the
// product count and how returns are valued all come from config.PeriodConfig.
//
// =============================================================================

package period

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/kardex-extract/internal/config"
	"github.com/ginjaninja78/kardex-extract/internal/types"
)

// NoSeller names orders without a seller.
const NoSeller = "Sem Vendedor"

// Payment type names.
const (
	PaymentCash   = "Vendas à Vista"
	PaymentTerm   = "Vendas a Prazo"
	PaymentCredit = "Crédito Cliente"
)

// weekdays are the weekday names, Monday first.
var weekdays = []string{
	"Segunda-feira", "Terça-feira", "Quarta-feira", "Quinta-feira",
	"Sexta-feira", "Sábado", "Domingo",
}

// WeekdayName returns the weekday of a YYYY-MM-DD date, or "" when the date
// does not parse.
func WeekdayName(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ""
	}
	// time.Weekday starts on Sunday.
	return weekdays[(int(t.Weekday())+6)%7]
}

// =============================================================================
// REPORT TYPES
// =============================================================================

// DayRow is one row of the daily detail or of the weekday summary.
type DayRow struct {
	Date    string
	Weekday string

	Net       decimal.Decimal
	Products  decimal.Decimal
	Orders    int
	Discount  decimal.Decimal
	Surcharge decimal.Decimal
	Returns   decimal.Decimal
	Credit    decimal.Decimal
}

// Gross is net sales plus discounts less surcharges.
func (r DayRow) Gross() decimal.Decimal {
	return r.Net.Add(r.Discount).Sub(r.Surcharge)
}

// AvgProduct is net sales per product, zero without products.
func (r DayRow) AvgProduct() decimal.Decimal {
	return safeDiv(r.Net, r.Products)
}

// AvgOrder is net sales per order, zero without orders.
func (r DayRow) AvgOrder() decimal.Decimal {
	return safeDiv(r.Net, decimal.NewFromInt(int64(r.Orders)))
}

func (r *DayRow) add(o DayRow) {
	r.Net = r.Net.Add(o.Net)
	r.Products = r.Products.Add(o.Products)
	r.Orders += o.Orders
	r.Discount = r.Discount.Add(o.Discount)
	r.Surcharge = r.Surcharge.Add(o.Surcharge)
	r.Returns = r.Returns.Add(o.Returns)
	r.Credit = r.Credit.Add(o.Credit)
}

// Totals is one column of the period totals table.
type Totals struct {
	Gross     decimal.Decimal
	Discount  decimal.Decimal
	Surcharge decimal.Decimal
	Net       decimal.Decimal
}

// Sub returns t - o field by field.
func (t Totals) Sub(o Totals) Totals {
	return Totals{
		Gross:     t.Gross.Sub(o.Gross),
		Discount:  t.Discount.Sub(o.Discount),
		Surcharge: t.Surcharge.Sub(o.Surcharge),
		Net:       t.Net.Sub(o.Net),
	}
}

// PaymentRow is one row of the payment type table.
type PaymentRow struct {
	Kind    string
	Sales   decimal.Decimal
	Returns decimal.Decimal
}

// Net is sales less returns.
func (p PaymentRow) Net() decimal.Decimal { return p.Sales.Sub(p.Returns) }

// SellerRow is the sales of one seller, for the period (Date empty) or for
// one day.
type SellerRow struct {
	Date    string
	Seller  string
	Sales   decimal.Decimal
	Returns decimal.Decimal
}

// Net is sales less returns.
func (s SellerRow) Net() decimal.Decimal { return s.Sales.Sub(s.Returns) }

// Report is the summarized period.
type Report struct {
	Start, End *time.Time

	Daily    []DayRow
	Weekdays []DayRow

	Sales    Totals
	Returns  Totals
	NetSales Totals

	Payments []PaymentRow

	OrderCount  int
	ReturnCount int

	Sellers     []SellerRow
	SellerDaily []SellerRow

	// Undated orders have no value on the date axis; Excluded orders carry
	// an excluded status. Neither is counted anywhere else.
	Undated  int
	Excluded int
}

// =============================================================================
// BUILDER
// =============================================================================

type sellerKey struct{ date, seller string }

// Builder summarizes orders according to a PeriodConfig.
type Builder struct {
	cfg       config.PeriodConfig
	sale      map[string]bool
	ret       map[string]bool
	excluded  map[string]bool
	transport map[string]bool
}

// NewBuilder prepares the status lookups of cfg.
func NewBuilder(cfg config.PeriodConfig) *Builder {
	return &Builder{
		cfg:       cfg,
		sale:      statusSet(cfg.SaleStatuses),
		ret:       statusSet(cfg.ReturnStatuses),
		excluded:  statusSet(cfg.ExcludedStatuses),
		transport: statusSet(cfg.TransportQuantityStatuses),
	}
}

func statusSet(list []string) map[string]bool {
	set := make(map[string]bool, len(list))
	for _, s := range list {
		set[config.NormalizeStatus(s)] = true
	}
	return set
}

// ReturnValue is the amount a return order takes off sales.
func (b *Builder) ReturnValue(o types.Order) decimal.Decimal {
	if b.cfg.ReturnsBasis == config.ReturnsNet {
		return o.FinalValue
	}
	return o.GrossValue.Sub(o.Discount).Add(o.Surcharge)
}

// Build summarizes orders and credits for the period [start, end]. The
// bounds are only recorded; filtering happens in the query.
func (b *Builder) Build(orders []types.Order, credits []types.CreditEntry, start, end *time.Time) *Report {
	rep := &Report{Start: start, End: end}

	days := make(map[string]*DayRow)
	day := func(date string) *DayRow {
		d, ok := days[date]
		if !ok {
			d = &DayRow{Date: date, Weekday: WeekdayName(date)}
			days[date] = d
		}
		return d
	}

	sellerDays := make(map[sellerKey]*SellerRow)
	sellerDay := func(date, seller string) *SellerRow {
		k := sellerKey{date, seller}
		s, ok := sellerDays[k]
		if !ok {
			s = &SellerRow{Date: date, Seller: seller}
			sellerDays[k] = s
		}
		return s
	}

	for _, o := range orders {
		status := config.NormalizeStatus(o.Status)
		if b.excluded[status] {
			rep.Excluded++
			continue
		}
		if o.Date == "" {
			rep.Undated++
			continue
		}

		seller := o.Seller
		if seller == "" {
			seller = NoSeller
		}

		switch {
		case b.sale[status]:
			d := day(o.Date)
			d.Net = d.Net.Add(o.FinalValue)
			d.Orders++
			d.Discount = d.Discount.Add(o.Discount)
			d.Surcharge = d.Surcharge.Add(o.Surcharge)
			if b.transport[status] {
				d.Products = d.Products.Add(o.TransportQty)
			} else {
				d.Products = d.Products.Add(o.ItemCount)
			}
			s := sellerDay(o.Date, seller)
			s.Sales = s.Sales.Add(o.FinalValue)

		case b.ret[status]:
			value := b.ReturnValue(o)
			d := day(o.Date)
			d.Returns = d.Returns.Add(value)

			gross := o.GrossValue
			if b.cfg.ReturnsBasis == config.ReturnsNet {
				gross = o.FinalValue.Add(o.Discount).Sub(o.Surcharge)
			}
			rep.Returns.Gross = rep.Returns.Gross.Add(gross)
			rep.Returns.Discount = rep.Returns.Discount.Add(o.Discount)
			rep.Returns.Surcharge = rep.Returns.Surcharge.Add(o.Surcharge)
			rep.Returns.Net = rep.Returns.Net.Add(value)
			rep.ReturnCount++

			s := sellerDay(o.Date, seller)
			s.Returns = s.Returns.Add(value)

		default:
			// Other statuses (quotes, cancelled orders) still mark the day.
			day(o.Date)
		}
	}

	creditDoc := config.NormalizeStatus(b.cfg.CreditDocument)
	for _, c := range credits {
		if c.Date == "" || config.NormalizeStatus(c.Document) != creditDoc {
			continue
		}
		d := day(c.Date)
		d.Credit = d.Credit.Add(c.Amount)
	}

	rep.Daily = sortedDays(days)
	rep.Weekdays = weekdaySummary(rep.Daily)
	rep.SellerDaily, rep.Sellers = sellerTables(sellerDays)

	var credit decimal.Decimal
	for _, d := range rep.Daily {
		rep.Sales.Gross = rep.Sales.Gross.Add(d.Gross())
		rep.Sales.Discount = rep.Sales.Discount.Add(d.Discount)
		rep.Sales.Surcharge = rep.Sales.Surcharge.Add(d.Surcharge)
		rep.Sales.Net = rep.Sales.Net.Add(d.Net)
		rep.OrderCount += d.Orders
		credit = credit.Add(d.Credit)
	}
	rep.NetSales = rep.Sales.Sub(rep.Returns)

	rep.Payments = []PaymentRow{
		{Kind: PaymentCash, Sales: rep.Sales.Net.Sub(credit), Returns: rep.Returns.Net},
		{Kind: PaymentTerm},
		{Kind: PaymentCredit, Sales: credit},
	}
	return rep
}

func sortedDays(days map[string]*DayRow) []DayRow {
	out := make([]DayRow, 0, len(days))
	for _, d := range days {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// weekdaySummary folds the daily detail into the seven weekdays.
func weekdaySummary(daily []DayRow) []DayRow {
	out := make([]DayRow, len(weekdays))
	pos := make(map[string]int, len(weekdays))
	for i, name := range weekdays {
		out[i].Weekday = name
		pos[name] = i
	}
	for _, d := range daily {
		if i, ok := pos[d.Weekday]; ok {
			out[i].add(d)
		}
	}
	return out
}

// sellerTables returns the per-day rows sorted by date and seller, and the
// period rows sorted by net sales, highest first.
func sellerTables(rows map[sellerKey]*SellerRow) ([]SellerRow, []SellerRow) {
	daily := make([]SellerRow, 0, len(rows))
	totals := make(map[string]*SellerRow)
	for _, r := range rows {
		daily = append(daily, *r)
		t, ok := totals[r.Seller]
		if !ok {
			t = &SellerRow{Seller: r.Seller}
			totals[r.Seller] = t
		}
		t.Sales = t.Sales.Add(r.Sales)
		t.Returns = t.Returns.Add(r.Returns)
	}
	sort.Slice(daily, func(i, j int) bool {
		if daily[i].Date != daily[j].Date {
			return daily[i].Date < daily[j].Date
		}
		return daily[i].Seller < daily[j].Seller
	})

	period := make([]SellerRow, 0, len(totals))
	for _, t := range totals {
		period = append(period, *t)
	}
	sort.Slice(period, func(i, j int) bool {
		if c := period[i].Net().Cmp(period[j].Net()); c != 0 {
			return c > 0
		}
		return period[i].Seller < period[j].Seller
	})
	return daily, period
}

func safeDiv(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.Div(den)
}
