package transform

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/kardex-extract/internal/types"
)

// StockStats describes what BuildStock filtered out.
type StockStats struct {
	SkippedByHistory int
	SkippedEmpty     int
	Synthesized      int
	DroppedUnique    int
}

// BuildStock consolidates the ledger into one balance per grade.
//
// Movements whose note contains excludeMarker (inventory counts) and
// movements with no quantity in either direction are ignored. Per grade:
// in and out are summed, descriptive fields come from the first movement
// that carries them, the user and time from the last one that carries them
// and the date is the latest. The
// balance never goes below zero. Synthesized grades with a zero balance are
// dropped. Lines are sorted by grade code.
func BuildStock(records []types.MovementRecord, catalog *Catalog, excludeMarker string) ([]types.StockLine, StockStats) {
	var stats StockStats
	marker := strings.ToUpper(excludeMarker)

	index := make(map[string]int)
	var lines []types.StockLine

	for _, r := range records {
		if marker != "" && strings.Contains(strings.ToUpper(r.History), marker) {
			stats.SkippedByHistory++
			continue
		}
		if !r.QtyIn.IsPositive() && !r.QtyOut.IsPositive() {
			stats.SkippedEmpty++
			continue
		}
		if r.SynthesizeGrade() {
			stats.Synthesized++
		}

		i, ok := index[r.GradeCode]
		if !ok {
			i = len(lines)
			index[r.GradeCode] = i
			lines = append(lines, types.StockLine{
				GradeCode:   r.GradeCode,
				Store:       r.Store,
				ProductCode: r.ProductCode,
				Description: r.Description,
				Color:       r.Color,
				Size:        r.Size,
				QtyIn:       decimal.Zero,
				QtyOut:      decimal.Zero,
			})
		}

		l := &lines[i]
		l.QtyIn = l.QtyIn.Add(r.QtyIn)
		l.QtyOut = l.QtyOut.Add(r.QtyOut)
		fillBlank(&l.Store, r.Store)
		fillBlank(&l.ProductCode, r.ProductCode)
		fillBlank(&l.Description, r.Description)
		fillBlank(&l.Color, r.Color)
		fillBlank(&l.Size, r.Size)
		setIfPresent(&l.LastUsername, r.Username)
		setIfPresent(&l.LastTime, r.Time)
		if r.Date > l.LastDate {
			l.LastDate = r.Date
		}
	}

	out := lines[:0]
	for _, l := range lines {
		l.Balance = decimal.Max(l.QtyIn.Sub(l.QtyOut), decimal.Zero)
		if l.Balance.IsZero() && strings.HasSuffix(l.GradeCode, types.UniqueGradeSuffix) {
			stats.DroppedUnique++
			continue
		}

		if p, ok := catalog.Lookup(l.ProductCode); ok {
			l.Unit = p.Unit
			l.Group = p.Group
			l.SubGroup = p.SubGroup
			l.Brand = p.Brand
			l.CostPrice = p.CostPrice
			l.SellPrice = p.SellPrice
		}
		if l.CostPrice.Valid {
			l.CostValue = l.Balance.Mul(l.CostPrice.Decimal).Round(2)
		}
		if l.SellPrice.Valid {
			l.SaleValue = l.Balance.Mul(l.SellPrice.Decimal).Round(2)
		}
		out = append(out, l)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].GradeCode < out[j].GradeCode })
	return out, stats
}
