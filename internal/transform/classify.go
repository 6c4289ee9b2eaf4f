// =============================================================================
// Kardex Extract - Transformation Engine
// =============================================================================
//
// This package turns ledger rows into report lines:
//   - Grade synthesis for movements without a grade code
//   - Classification into sales and returns from the history note
//   - Grouping by (grade, date, user, movement type)
//   - Enrichment from the product reference tables and derived metrics
//   - Consolidation of the stock-by-grade report
//
// CLASSIFICATION RULES:
//   Pass one collects the order numbers whose notes carry the cancellation
//   marker. Pass two classifies:
//   - return: note has the return marker, no cancellation marker, order not
//     cancelled. The return marker wins over the sale markers.
//   - sale:   note has the counter-sale marker, or the withdrawal marker
//     with no cancellation marker and an order that was not cancelled.
//     Counter sales follow the cancellation rule too unless disabled.
//   Sales move QtyOut, returns move QtyIn.
//
// =============================================================================

package transform

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/kardex-extract/internal/config"
	"github.com/ginjaninja78/kardex-extract/internal/types"
)

// =============================================================================
// CLASSIFIER
// =============================================================================

// Classified is a movement with its type and the quantity it contributes.
type Classified struct {
	Record   types.MovementRecord
	Type     types.MovementType
	Quantity decimal.Decimal
}

// Classifier partitions movements into sales and returns.
type Classifier struct {
	saleCounter  string
	withdrawal   string
	ret          string
	cancellation string

	includeReturns         bool
	cancelAppliesToCounter bool
}

// NewClassifier builds a classifier from the report settings.
func NewClassifier(rc config.ReportConfig) *Classifier {
	return &Classifier{
		saleCounter:            strings.ToUpper(rc.Markers.SaleCounter),
		withdrawal:             strings.ToUpper(rc.Markers.Withdrawal),
		ret:                    strings.ToUpper(rc.Markers.Return),
		cancellation:           strings.ToUpper(rc.Markers.Cancellation),
		includeReturns:         rc.ReturnsIncluded(),
		cancelAppliesToCounter: rc.CounterSalesCancellable(),
	}
}

// CancelledOrders returns the order numbers that have at least one note
// carrying the cancellation marker. Blank order numbers are ignored.
func (c *Classifier) CancelledOrders(records []types.MovementRecord) map[string]bool {
	cancelled := make(map[string]bool)
	for _, r := range records {
		order := strings.TrimSpace(r.OrderNumber)
		if order == "" {
			continue
		}
		if strings.Contains(strings.ToUpper(r.History), c.cancellation) {
			cancelled[order] = true
		}
	}
	return cancelled
}

// Classify returns the sales and returns among records, in input order.
// Records matching neither rule are dropped.
func (c *Classifier) Classify(records []types.MovementRecord) []Classified {
	cancelled := c.CancelledOrders(records)

	out := make([]Classified, 0, len(records))
	for _, r := range records {
		mt, ok := c.classify(r, cancelled)
		if !ok {
			continue
		}
		qty := r.QtyOut
		if mt == types.MovementReturn {
			qty = r.QtyIn
		}
		out = append(out, Classified{Record: r, Type: mt, Quantity: qty})
	}
	return out
}

func (c *Classifier) classify(r types.MovementRecord, cancelled map[string]bool) (types.MovementType, bool) {
	note := strings.ToUpper(r.History)
	voided := strings.Contains(note, c.cancellation) || cancelled[strings.TrimSpace(r.OrderNumber)]

	if strings.Contains(note, c.ret) {
		if !c.includeReturns || voided {
			return "", false
		}
		return types.MovementReturn, true
	}

	if strings.Contains(note, c.saleCounter) {
		if c.cancelAppliesToCounter && voided {
			return "", false
		}
		return types.MovementSale, true
	}

	if strings.Contains(note, c.withdrawal) && !voided {
		return types.MovementSale, true
	}

	return "", false
}

// =============================================================================
// GRADE SYNTHESIS
// =============================================================================

// SynthesizeGrades fills blank grade codes in place and returns how many
// were replaced.
func SynthesizeGrades(records []types.MovementRecord) int {
	n := 0
	for i := range records {
		if records[i].SynthesizeGrade() {
			n++
		}
	}
	return n
}
