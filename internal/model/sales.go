package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Field names a canonical column of a sales record.
type Field string

const (
	FieldTransactionID   Field = "transaction_id"
	FieldDate            Field = "date"
	FieldCustomerName    Field = "customer_name"
	FieldProductName     Field = "product_name"
	FieldProductCategory Field = "product_category"
	FieldPricePerUnit    Field = "price_per_unit"
	FieldCostPerUnit     Field = "cost_per_unit"
	FieldQuantity        Field = "quantity"
)

// CanonicalFields lists the input-mappable fields in declaration order.
var CanonicalFields = []Field{
	FieldTransactionID,
	FieldDate,
	FieldCustomerName,
	FieldProductName,
	FieldProductCategory,
	FieldPricePerUnit,
	FieldCostPerUnit,
	FieldQuantity,
}

// RawTable is an untyped table as read from an input file: one header row and
// any number of data rows. Rows may be shorter or longer than the header.
type RawTable struct {
	Source string     `json:"source" yaml:"source"`
	Header []string   `json:"header" yaml:"header"`
	Rows   [][]string `json:"rows" yaml:"rows"`
}

// Len returns the number of data rows.
func (t RawTable) Len() int {
	return len(t.Rows)
}

// CanonicalRecord is a sales transaction after normalization. Every record has
// a valid Date, and all money fields are finite.
type CanonicalRecord struct {
	TransactionID   string          `json:"transaction_id,omitempty" yaml:"transaction_id,omitempty"`
	Date            time.Time       `json:"date" yaml:"date"`
	CustomerName    string          `json:"customer_name,omitempty" yaml:"customer_name,omitempty"`
	ProductName     string          `json:"product_name" yaml:"product_name"`
	ProductCategory string          `json:"product_category,omitempty" yaml:"product_category,omitempty"`
	PricePerUnit    decimal.Decimal `json:"price_per_unit" yaml:"price_per_unit"`
	CostPerUnit     decimal.Decimal `json:"cost_per_unit" yaml:"cost_per_unit"`
	Quantity        int64           `json:"quantity" yaml:"quantity"`

	// Derived columns.
	TotalAmount   decimal.Decimal `json:"total_amount" yaml:"total_amount"`
	ProfitPerUnit decimal.Decimal `json:"profit_per_unit" yaml:"profit_per_unit"`
	TotalProfit   decimal.Decimal `json:"total_profit" yaml:"total_profit"`
	ProfitMargin  decimal.Decimal `json:"profit_margin" yaml:"profit_margin"`

	// Extra carries unmapped input columns keyed by normalized column name.
	Extra map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}
