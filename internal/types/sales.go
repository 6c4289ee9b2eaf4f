package types

import "github.com/shopspring/decimal"

// =============================================================================
// ORDERS
// =============================================================================

// Order is one row of the order table (PEDIDOS) inside a report period.
type Order struct {
	// Date is the order date on the configured date axis, YYYY-MM-DD.
	Date   string
	Status string
	Seller string

	FinalValue decimal.Decimal
	GrossValue decimal.Decimal
	Discount   decimal.Decimal
	Surcharge  decimal.Decimal

	// TransportQty and ItemCount are the two ways the order records how
	// many products it carries; which one applies depends on the status.
	TransportQty decimal.Decimal
	ItemCount    decimal.Decimal
}

// CreditEntry is one cash movement (MOVCAIXA) with its deferred amount.
type CreditEntry struct {
	Date     string
	Document string
	Amount   decimal.Decimal
}

// =============================================================================
// PRODUCTS
// =============================================================================

// ProductRecord is one catalogue product with its total stock value.
type ProductRecord struct {
	Code       string
	Reference  string
	Name       string
	Unit       string
	CostPrice  decimal.NullDecimal
	SellPrice  decimal.NullDecimal
	StockValue decimal.NullDecimal

	// RegisteredAt is the registration date, YYYY-MM-DD when parseable.
	RegisteredAt string
}

// ProductStockLine is a product with the quantity derived from its stock
// value and its classification.
type ProductStockLine struct {
	ProductRecord

	// Quantity is StockValue / CostPrice; null without a usable cost.
	Quantity    decimal.NullDecimal
	CostTotal   decimal.NullDecimal
	RetailTotal decimal.NullDecimal

	// Status is ESTOQUE for stock-keeping items, COMPRA for purchase
	// orders and empty otherwise. Level names the order for COMPRA.
	Status string
	Level  string
}
