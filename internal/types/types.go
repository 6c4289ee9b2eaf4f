// =============================================================================
// Kardex Extract - Shared Types
// =============================================================================
//
// This package contains the types shared by the extraction, transformation,
// merge and persistence modules. Keeping them here avoids import cycles
// between:
//   - source     (produces MovementRecords and reference Rows)
//   - transform  (turns MovementRecords into AggregatedLines)
//   - merge      (upserts AggregatedLines by Key)
//   - store      (persists AggregatedLines and StockLines)
//
// =============================================================================

package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// UniqueGradeSuffix is appended to the product code when a movement has no
// grade code, so every product still has its own grouping key.
const UniqueGradeSuffix = "_UNICO"

// =============================================================================
// MOVEMENT TYPES
// =============================================================================

// MovementType classifies an aggregated line.
type MovementType string

const (
	// MovementSale covers counter sales and withdrawals.
	MovementSale MovementType = "VENDA"

	// MovementReturn covers merchandise returned by the customer.
	MovementReturn MovementType = "DEVOLUCAO"
)

// Valid reports whether t is one of the known movement types.
func (t MovementType) Valid() bool {
	return t == MovementSale || t == MovementReturn
}

// =============================================================================
// MOVEMENT RECORD
// =============================================================================

// MovementRecord is one row of the movement ledger (KARDEX).
type MovementRecord struct {
	Store       string
	ProductCode string

	// GradeCode identifies the product variant. Blank grade codes are
	// replaced by SynthesizeGrade.
	GradeCode string

	Description string

	// QtyIn is the incoming quantity (returns use it).
	QtyIn decimal.Decimal

	// QtyOut is the outgoing quantity (sales use it).
	QtyOut decimal.Decimal

	// Kind is the raw movement type column of the ledger.
	Kind string

	Color    string
	Size     string
	Username string

	// Date is the movement date formatted as YYYY-MM-DD.
	Date string

	// Time is the movement time formatted as HH:MM:SS.
	Time string

	// OrderNumber links the movement to its parent order.
	OrderNumber string

	// History is the free-text note the classifier matches against.
	History string
}

// SynthesizeGrade fills a blank grade code with "{ProductCode}_UNICO".
// It reports whether the grade code was replaced.
func (r *MovementRecord) SynthesizeGrade() bool {
	if strings.TrimSpace(r.GradeCode) != "" {
		return false
	}
	r.GradeCode = strings.TrimSpace(r.ProductCode) + UniqueGradeSuffix
	return true
}

// =============================================================================
// AGGREGATED LINE
// =============================================================================

// Key is the composite business key of an AggregatedLine.
type Key struct {
	GradeCode    string
	Date         string
	Username     string
	MovementType MovementType
}

// AggregatedLine is one output row of the movement report.
type AggregatedLine struct {
	// Key fields.
	GradeCode    string
	Date         string
	Username     string
	MovementType MovementType

	// First-observed descriptive fields.
	Store       string
	ProductCode string
	Description string
	Color       string
	Size        string
	Time        string

	// Quantity is the sum of the moved quantity of the group.
	Quantity decimal.Decimal

	// Enrichment fields. Empty or invalid when the product is unknown.
	Unit      string
	Group     string
	SubGroup  string
	Brand     string
	CostPrice decimal.NullDecimal
	SellPrice decimal.NullDecimal

	// Derived metrics, zero when their inputs are missing.
	Markup      decimal.Decimal
	Revenue     decimal.Decimal
	CostTotal   decimal.Decimal
	GrossProfit decimal.Decimal
	GrossMargin decimal.Decimal
}

// Key returns the composite key of the line.
func (l AggregatedLine) Key() Key {
	return Key{
		GradeCode:    l.GradeCode,
		Date:         l.Date,
		Username:     l.Username,
		MovementType: l.MovementType,
	}
}

// =============================================================================
// STOCK LINE
// =============================================================================

// StockLine is one output row of the stock-by-grade report.
type StockLine struct {
	GradeCode   string
	Store       string
	ProductCode string
	Description string
	Color       string
	Size        string

	QtyIn   decimal.Decimal
	QtyOut  decimal.Decimal
	Balance decimal.Decimal

	LastUsername string
	LastDate     string
	LastTime     string

	Unit      string
	Group     string
	SubGroup  string
	Brand     string
	CostPrice decimal.NullDecimal
	SellPrice decimal.NullDecimal

	// CostValue and SaleValue are the balance valued at cost and sale price.
	CostValue decimal.Decimal
	SaleValue decimal.Decimal
}

// =============================================================================
// REFERENCE ROWS
// =============================================================================

// Row is one row of a reference table with every value rendered as text.
// It is the unit persisted by the reference cache.
type Row map[string]string
