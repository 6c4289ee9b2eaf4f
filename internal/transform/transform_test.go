package transform

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/kardex-extract/internal/config"
	"github.com/ginjaninja78/kardex-extract/internal/types"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func nd(s string) decimal.NullDecimal { return decimal.NewNullDecimal(d(s)) }

func mv(grade, date, user, history, order string, in, out string) types.MovementRecord {
	return types.MovementRecord{
		Store:       "01",
		ProductCode: "P1",
		GradeCode:   grade,
		Description: "CAMISA",
		Username:    user,
		Date:        date,
		Time:        "10:00:00",
		History:     history,
		OrderNumber: order,
		QtyIn:       d(in),
		QtyOut:      d(out),
	}
}

func defaultClassifier() *Classifier {
	return NewClassifier(config.Default().Report)
}

func TestSynthesizeGrade(t *testing.T) {
	records := []types.MovementRecord{
		{ProductCode: "1234", GradeCode: "  "},
		{ProductCode: "1234", GradeCode: "G7"},
	}
	assert.Equal(t, 1, SynthesizeGrades(records))
	assert.Equal(t, "1234_UNICO", records[0].GradeCode)
	assert.Equal(t, "G7", records[1].GradeCode)
}

func TestClassifyCancellationExcludesWholeOrder(t *testing.T) {
	records := []types.MovementRecord{
		mv("G1", "2024-05-10", "ANA", "RETIRADA PEDIDO 55", "55", "0", "2"),
		mv("G1", "2024-05-10", "ANA", "VENDA BALCAO 56", "56", "0", "1"),
		mv("G1", "2024-05-10", "ANA", "VENDA PEDIDO 55", "55", "0", "4"),
		mv("G1", "2024-05-11", "ANA", "CANCELAMENTO PEDIDO 55", "55", "2", "0"),
	}

	got := defaultClassifier().Classify(records)

	require.Len(t, got, 1)
	assert.Equal(t, "56", got[0].Record.OrderNumber)
	assert.Equal(t, types.MovementSale, got[0].Type)
	assert.True(t, d("1").Equal(got[0].Quantity))
}

func TestClassifyCounterSaleRuleCanBeNarrowed(t *testing.T) {
	rc := config.Default().Report
	off := false
	rc.CancellationAppliesToCounterSales = &off

	records := []types.MovementRecord{
		mv("G1", "2024-05-10", "ANA", "VENDA PEDIDO 55", "55", "0", "4"),
		mv("G1", "2024-05-10", "ANA", "RETIRADA PEDIDO 55", "55", "0", "2"),
		mv("G1", "2024-05-11", "ANA", "CANCELADO PEDIDO 55", "55", "0", "0"),
	}
	got := NewClassifier(rc).Classify(records)
	require.Len(t, got, 1)
	assert.True(t, d("4").Equal(got[0].Quantity))
}

func TestClassifyReturnsUseIncomingQuantity(t *testing.T) {
	records := []types.MovementRecord{
		mv("G1", "2024-05-10", "ANA", "DEVOLUCAO DE VENDA", "70", "3", "0"),
		mv("G1", "2024-05-10", "ANA", "devolução pedido 71", "71", "1", "0"),
		mv("G1", "2024-05-10", "ANA", "DEVOLUCAO CANCELADA", "72", "5", "0"),
		mv("G1", "2024-05-10", "ANA", "ENTRADA NOTA", "73", "9", "0"),
	}

	got := defaultClassifier().Classify(records)
	require.Len(t, got, 2)
	for _, c := range got {
		assert.Equal(t, types.MovementReturn, c.Type, "return marker wins over sale marker")
	}
	assert.True(t, d("3").Equal(got[0].Quantity))
	assert.True(t, d("1").Equal(got[1].Quantity))
}

func TestClassifyWithoutReturns(t *testing.T) {
	rc := config.Default().Report
	no := false
	rc.IncludeReturns = &no

	got := NewClassifier(rc).Classify([]types.MovementRecord{
		mv("G1", "2024-05-10", "ANA", "DEVOLUCAO", "1", "3", "0"),
		mv("G1", "2024-05-10", "ANA", "VENDA", "2", "0", "1"),
	})
	require.Len(t, got, 1)
	assert.Equal(t, types.MovementSale, got[0].Type)
}

func TestBlankOrderNumbersAreNotCancelledTogether(t *testing.T) {
	got := defaultClassifier().Classify([]types.MovementRecord{
		mv("G1", "2024-05-10", "ANA", "CANCELAMENTO", "", "1", "0"),
		mv("G1", "2024-05-10", "ANA", "RETIRADA", "", "0", "1"),
	})
	require.Len(t, got, 1)
}

func TestAggregate(t *testing.T) {
	first := mv("G1", "2024-05-10", "ANA", "VENDA", "1", "0", "2")
	first.Time = "09:00:00"
	second := mv("G1", "2024-05-10", "ANA", "VENDA", "2", "0", "3")
	second.Time = "11:00:00"
	second.Color = "VERDE"

	lines := Aggregate([]Classified{
		{Record: first, Type: types.MovementSale, Quantity: first.QtyOut},
		{Record: mv("G2", "2024-05-10", "ANA", "VENDA", "3", "0", "1"), Type: types.MovementSale, Quantity: d("1")},
		{Record: second, Type: types.MovementSale, Quantity: second.QtyOut},
		{Record: first, Type: types.MovementReturn, Quantity: d("1")},
	})

	require.Len(t, lines, 3)
	assert.Equal(t, "G1", lines[0].GradeCode)
	assert.True(t, d("5").Equal(lines[0].Quantity))
	assert.Equal(t, "09:00:00", lines[0].Time)
	assert.Equal(t, "VERDE", lines[0].Color, "blank first value filled by a later movement")
	assert.Equal(t, "CAMISA", lines[0].Description)
	assert.Equal(t, "G2", lines[1].GradeCode)
	assert.Equal(t, types.MovementReturn, lines[2].MovementType, "returns stay separate from sales")
}

func TestAggregateKeepsFirstNonBlankValues(t *testing.T) {
	first := mv("G1", "2024-05-10", "ANA", "VENDA", "1", "0", "1")
	first.Time = ""
	first.Description = " "
	second := mv("G1", "2024-05-10", "ANA", "VENDA", "2", "0", "1")
	second.Time = "14:30:00"
	second.Description = "CAMISA POLO"
	third := mv("G1", "2024-05-10", "ANA", "VENDA", "3", "0", "1")
	third.Time = "16:00:00"
	third.Description = "OUTRA"

	lines := Aggregate([]Classified{
		{Record: first, Type: types.MovementSale, Quantity: d("1")},
		{Record: second, Type: types.MovementSale, Quantity: d("1")},
		{Record: third, Type: types.MovementSale, Quantity: d("1")},
	})

	require.Len(t, lines, 1)
	assert.Equal(t, "14:30:00", lines[0].Time)
	assert.Equal(t, "CAMISA POLO", lines[0].Description)
	assert.Equal(t, "3", lines[0].Quantity.String())
}

func TestDropUndated(t *testing.T) {
	records := []types.MovementRecord{
		mv("G1", "2024-05-09", "ANA", "VENDA", "1", "0", "1"),
		mv("G2", "", "ANA", "VENDA", "2", "0", "1"),
		mv("G3", "  ", "ANA", "VENDA", "3", "0", "1"),
	}

	kept, dropped := DropUndated(records)
	assert.Equal(t, 2, dropped)
	require.Len(t, kept, 1)
	assert.Equal(t, "G1", kept[0].GradeCode)
}

func TestComputeMetrics(t *testing.T) {
	m := ComputeMetrics(d("3"), nd("10"), nd("25.5"))
	assert.Equal(t, "2.55", m.Markup.StringFixed(2))
	assert.Equal(t, "76.50", m.Revenue.StringFixed(2))
	assert.Equal(t, "30.00", m.CostTotal.StringFixed(2))
	assert.Equal(t, "46.50", m.GrossProfit.StringFixed(2))
	assert.Equal(t, "2.55", m.GrossMargin.StringFixed(2))
}

func TestComputeMetricsZeroGuards(t *testing.T) {
	cases := map[string]struct {
		qty        string
		cost, sell decimal.NullDecimal
	}{
		"zero cost":    {"2", nd("0"), nd("10")},
		"missing cost": {"2", decimal.NullDecimal{}, nd("10")},
		"zero qty":     {"0", nd("5"), nd("10")},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			m := ComputeMetrics(d(tc.qty), tc.cost, tc.sell)
			assert.True(t, m.GrossMargin.IsZero())
			if !tc.cost.Valid || tc.cost.Decimal.IsZero() {
				assert.True(t, m.Markup.IsZero())
			}
		})
	}

	none := ComputeMetrics(d("2"), decimal.NullDecimal{}, decimal.NullDecimal{})
	assert.True(t, none.Revenue.IsZero())
	assert.True(t, none.GrossProfit.IsZero())
}

func testCatalog() *Catalog {
	return BuildCatalog(References{
		Products: []types.Row{
			{"REFERENCIA": "P1", "PRECO_CUST": "10", "PRECO_VEND": "25", "UNIDADE": "UN", "GRUPO": "1", "MARCA": "7", "SUB_GRUPO": "3"},
			{"REFERENCIA": "P1", "PRECO_CUST": "99", "PRECO_VEND": "99"},
			{"REFERENCIA": "P2", "PRECO_CUST": "", "PRECO_VEND": "abc", "GRUPO": "404"},
		},
		Groups:    []types.Row{{"CODIGO": "1", "NOME_GRUPO": "VESTUARIO"}},
		Brands:    []types.Row{{"CODIGO": "7", "NOME_MARCA": "ACME"}},
		SubGroups: []types.Row{{"CODIGO": "3", "DESCRICAO": "CAMISAS"}},
	})
}

func TestEnrichNeverDropsLines(t *testing.T) {
	lines := []types.AggregatedLine{
		{ProductCode: "P1", Quantity: d("2")},
		{ProductCode: "P2", Quantity: d("2")},
		{ProductCode: "UNKNOWN", Quantity: d("2")},
	}

	cat := testCatalog()
	matched := Enrich(lines, cat)

	require.Len(t, lines, 3)
	assert.Equal(t, 2, matched)
	assert.Equal(t, 2, cat.Len())

	assert.Equal(t, "VESTUARIO", lines[0].Group)
	assert.Equal(t, "ACME", lines[0].Brand)
	assert.Equal(t, "CAMISAS", lines[0].SubGroup)
	assert.True(t, d("10").Equal(lines[0].CostPrice.Decimal), "first duplicate wins")
	assert.Equal(t, "50.00", lines[0].Revenue.StringFixed(2))

	assert.Empty(t, lines[1].Group)
	assert.False(t, lines[1].CostPrice.Valid)
	assert.False(t, lines[1].SellPrice.Valid)
	assert.True(t, lines[1].Markup.IsZero())

	assert.Empty(t, lines[2].Unit)
	assert.True(t, lines[2].Revenue.IsZero())
}

func TestBuildStock(t *testing.T) {
	records := []types.MovementRecord{
		mv("G1", "2024-05-01", "ANA", "ENTRADA NOTA", "1", "10", "0"),
		mv("G1", "2024-05-03", "BIA", "VENDA", "2", "0", "4"),
		mv("G1", "2024-05-02", "CAIO", "VENDA", "3", "0", "1"),
		mv("G1", "2024-05-04", "ANA", "BALANCO", "4", "100", "0"),
		mv("G2", "2024-05-01", "ANA", "AJUSTE", "5", "0", "0"),
		mv("", "2024-05-01", "ANA", "ENTRADA", "6", "1", "0"),
		mv("", "2024-05-02", "ANA", "VENDA", "7", "0", "3"),
		mv("G3", "2024-05-01", "ANA", "VENDA", "8", "0", "2"),
	}
	records[5].ProductCode = "P9"
	records[6].ProductCode = "P9"

	lines, stats := BuildStock(records, testCatalog(), "BALAN")

	assert.Equal(t, 1, stats.SkippedByHistory)
	assert.Equal(t, 1, stats.SkippedEmpty)
	assert.Equal(t, 2, stats.Synthesized)
	assert.Equal(t, 1, stats.DroppedUnique)

	require.Len(t, lines, 2)
	g1 := lines[0]
	assert.Equal(t, "G1", g1.GradeCode)
	assert.Equal(t, "5", g1.Balance.String())
	assert.Equal(t, "CAIO", g1.LastUsername, "last movement in ledger order")
	assert.Equal(t, "2024-05-03", g1.LastDate, "latest date")
	assert.Equal(t, "50.00", g1.CostValue.StringFixed(2))
	assert.Equal(t, "125.00", g1.SaleValue.StringFixed(2))

	g3 := lines[1]
	assert.Equal(t, "G3", g3.GradeCode)
	assert.True(t, g3.Balance.IsZero(), "negative balance clipped to zero")

	assert.Equal(t, "G1", records[0].GradeCode)
	assert.Empty(t, records[5].GradeCode, "input is not modified")
}

func TestBuildStockLastValuesSkipBlanks(t *testing.T) {
	first := mv("G1", "2024-05-01", "ANA", "ENTRADA", "1", "5", "0")
	first.Description = ""
	second := mv("G1", "2024-05-02", "BIA", "VENDA", "2", "0", "1")
	second.Time = "15:00:00"
	last := mv("G1", "2024-05-03", "", "VENDA", "3", "0", "1")
	last.Time = ""

	lines, _ := BuildStock([]types.MovementRecord{first, second, last}, testCatalog(), "BALAN")

	require.Len(t, lines, 1)
	assert.Equal(t, "BIA", lines[0].LastUsername, "blank user does not overwrite")
	assert.Equal(t, "15:00:00", lines[0].LastTime)
	assert.Equal(t, "2024-05-03", lines[0].LastDate)
	assert.Equal(t, "CAMISA", lines[0].Description, "blank first description filled later")
	assert.Equal(t, "3", lines[0].Balance.String())
}
