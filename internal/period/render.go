package period

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/kardex-extract/internal/config"
	"github.com/ginjaninja78/kardex-extract/internal/types"
	"github.com/ginjaninja78/kardex-extract/internal/xlsxwriter"
)

func money(d decimal.Decimal) string { return d.StringFixed(2) }

// dayValue renders one detail column of a day row.
func dayValue(r DayRow, col string) string {
	switch col {
	case types.ColPeriodDate:
		return r.Date
	case types.ColPeriodWeekday:
		return r.Weekday
	case types.ColPeriodNet:
		return money(r.Net)
	case types.ColPeriodProducts:
		return r.Products.String()
	case types.ColPeriodOrders:
		return strconv.Itoa(r.Orders)
	case types.ColPeriodAvgProduct:
		return money(r.AvgProduct())
	case types.ColPeriodAvgOrder:
		return money(r.AvgOrder())
	case types.ColPeriodDiscount:
		return money(r.Discount)
	case types.ColPeriodSurcharge:
		return money(r.Surcharge)
	case types.ColPeriodGross:
		return money(r.Gross())
	case types.ColPeriodReturns:
		return money(r.Returns)
	case types.ColPeriodCredit:
		return money(r.Credit)
	}
	return ""
}

// DailyRecords renders the daily detail in the given column order.
func (r *Report) DailyRecords(columns []string) [][]string {
	return dayRecords(r.Daily, columns)
}

// WeekdayRecords renders the weekday summary. The date column is dropped.
func (r *Report) WeekdayRecords(columns []string) ([]string, [][]string) {
	header := make([]string, 0, len(columns))
	for _, c := range columns {
		if c != types.ColPeriodDate {
			header = append(header, c)
		}
	}
	return header, dayRecords(r.Weekdays, header)
}

func dayRecords(rows []DayRow, columns []string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		rec := make([]string, len(columns))
		for j, c := range columns {
			rec[j] = dayValue(row, c)
		}
		out[i] = rec
	}
	return out
}

// SellerDailyHeader is the column set of the per-day seller table.
var SellerDailyHeader = []string{
	types.ColPeriodDate, types.ColPeriodSeller,
	types.ColPeriodSales, types.ColPeriodReturns, types.ColPeriodNetSales,
}

// SellerDailyRecords renders the per-day seller table.
func (r *Report) SellerDailyRecords() [][]string {
	out := make([][]string, len(r.SellerDaily))
	for i, s := range r.SellerDaily {
		out[i] = []string{s.Date, s.Seller, money(s.Sales), money(s.Returns), money(s.Net())}
	}
	return out
}

// Sections lays the whole report out as spreadsheet sections, in reading
// order.
func (r *Report) Sections(columns []string, cfg config.PeriodConfig) []xlsxwriter.Section {
	weekdayHeader, weekdayRecords := r.WeekdayRecords(columns)

	totalsHeader := []string{"", types.ColPeriodSales, types.ColPeriodReturns, types.ColPeriodNetSales}
	totalsRow := func(label string, field func(Totals) decimal.Decimal) []string {
		return []string{label, money(field(r.Sales)), money(field(r.Returns)), money(field(r.NetSales))}
	}

	payments := make([][]string, len(r.Payments))
	for i, p := range r.Payments {
		payments[i] = []string{p.Kind, money(p.Sales), money(p.Returns), money(p.Net())}
	}

	sellers := make([][]string, len(r.Sellers))
	for i, s := range r.Sellers {
		sellers[i] = []string{s.Seller, money(s.Sales), money(s.Returns), money(s.Net())}
	}

	return []xlsxwriter.Section{
		{
			Header: []string{"Parâmetro", "Valor"},
			Records: [][]string{
				{"Data Inicial", dateOrEmpty(r.Start)},
				{"Data Final", dateOrEmpty(r.End)},
				{"Situações consideradas (A/B/C)", strings.Join(cfg.SaleStatuses, ", ")},
				{"Situações de devolução", strings.Join(cfg.ReturnStatuses, ", ")},
				{"Situações excluídas", strings.Join(cfg.ExcludedStatuses, ", ")},
				{"Base das devoluções", cfg.ReturnsBasis},
			},
		},
		{
			Title:          "Detalhe Diário",
			Header:         columns,
			Records:        r.DailyRecords(columns),
			NumericColumns: pick(columns, types.PeriodMoneyColumns),
			IntegerColumns: pick(columns, types.PeriodCountColumns),
		},
		{
			Title:          "Resumo por dia da Semana",
			Header:         weekdayHeader,
			Records:        weekdayRecords,
			NumericColumns: pick(weekdayHeader, types.PeriodMoneyColumns),
			IntegerColumns: pick(weekdayHeader, types.PeriodCountColumns),
		},
		{
			Title:  "Vendas Total do Período",
			Header: totalsHeader,
			Records: [][]string{
				totalsRow("Total Bruto", func(t Totals) decimal.Decimal { return t.Gross }),
				totalsRow("Descontos", func(t Totals) decimal.Decimal { return t.Discount }),
				totalsRow("Acréscimos", func(t Totals) decimal.Decimal { return t.Surcharge }),
				totalsRow("Total Líquido", func(t Totals) decimal.Decimal { return t.Net }),
			},
			NumericColumns: totalsHeader[1:],
		},
		{
			Title:          "Totais por Tipo de Pagamento",
			Header:         []string{"Tipo de Pagamento", types.ColPeriodSales, types.ColPeriodReturns, types.ColPeriodNetSales},
			Records:        payments,
			NumericColumns: totalsHeader[1:],
		},
		{
			Title:  "Contadores",
			Header: []string{"Métrica", "Qtde"},
			Records: [][]string{
				{"Total de Pedidos", strconv.Itoa(r.OrderCount)},
				{"Total de Devoluções", strconv.Itoa(r.ReturnCount)},
			},
			IntegerColumns: []string{"Qtde"},
		},
		{
			Title:          "Resumo por Vendedor",
			Header:         []string{types.ColPeriodSeller, types.ColPeriodSales, types.ColPeriodReturns, types.ColPeriodNetSales},
			Records:        sellers,
			NumericColumns: totalsHeader[1:],
		},
	}
}

// pick keeps the columns that belong to set, in column order.
func pick(columns, set []string) []string {
	var out []string
	for _, c := range columns {
		for _, m := range set {
			if c == m {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

func dateOrEmpty(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// Suffix names the output file after the period bounds:
// _YYYYMMDD_YYYYMMDD, _YYYYMMDD_ or __YYYYMMDD with an open bound, empty
// without bounds.
func Suffix(start, end *time.Time) string {
	if start == nil && end == nil {
		return ""
	}
	compact := func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("20060102")
	}
	return "_" + compact(start) + "_" + compact(end)
}
