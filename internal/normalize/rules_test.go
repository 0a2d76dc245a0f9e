package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/sales-analyzer/internal/model"
)

func TestNormalizeColumnName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Date", "date"},
		{"  Unit Price  ", "unit_price"},
		{"PRODUCT NAME", "product_name"},
		{"Price  Per Unit", "price__per_unit"},
		{"qty", "qty"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeColumnName(tt.in))
		})
	}
}

func TestMatchColumn(t *testing.T) {
	tests := []struct {
		col    string
		want   model.Field
		wantOK bool
	}{
		{"transaction_id", model.FieldTransactionID, true},
		{"trx_id", model.FieldTransactionID, true},
		{"id", model.FieldTransactionID, true},
		{"order_date", model.FieldDate, true},
		{"date", model.FieldDate, true},
		{"customer", model.FieldCustomerName, true},
		{"customer_id", model.FieldCustomerName, true},
		{"product", model.FieldProductName, true},
		{"product_name", model.FieldProductName, true},
		{"product_category", model.FieldProductCategory, true},
		{"category", model.FieldProductCategory, true},
		{"unit_price", model.FieldPricePerUnit, true},
		{"price", model.FieldPricePerUnit, true},
		{"cost_per_unit", model.FieldCostPerUnit, true},
		{"unit_cost", model.FieldCostPerUnit, true},
		{"qty", model.FieldQuantity, true},
		{"q", model.FieldQuantity, true},
		{"quantity", model.FieldQuantity, true},
		{"total_amount", "", false},
		{"region", "", false},
		{"price_usd", "", false},
		{"ids", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.col, func(t *testing.T) {
			got, ok := MatchColumn(DefaultRules, tt.col)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchColumn_KeywordPriority(t *testing.T) {
	// Without the canonical-name rules the first keyword wins.
	got, ok := MatchColumn(KeywordRules, "product_category")
	assert.True(t, ok)
	assert.Equal(t, model.FieldProductName, got)

	got, ok = MatchColumn(KeywordRules, "customer_update_date")
	assert.True(t, ok)
	assert.Equal(t, model.FieldDate, got)
}

func TestResolve(t *testing.T) {
	m := Resolve(DefaultRules, []string{"Order Date", "Product", "Region", "Qty"})

	assert.Equal(t, []string{"order_date", "product", "region", "qty"}, m.Columns)
	assert.Equal(t, 0, m.Fields[model.FieldDate])
	assert.Equal(t, 1, m.Fields[model.FieldProductName])
	assert.Equal(t, 3, m.Fields[model.FieldQuantity])
	assert.Equal(t, []int{2}, m.Unmapped)
	assert.Empty(t, m.Shadowed)
	assert.True(t, m.Has(model.FieldDate))
	assert.False(t, m.Has(model.FieldPricePerUnit))
}

func TestResolve_LastColumnWins(t *testing.T) {
	m := Resolve(DefaultRules, []string{"Order Date", "Ship Date", "Product"})

	assert.Equal(t, 1, m.Fields[model.FieldDate])
	assert.Equal(t, []int{0}, m.Shadowed)
}

func TestResolve_CustomRules(t *testing.T) {
	rules := []Rule{
		{Name: "sku", Field: model.FieldProductName, Match: exact("sku")},
	}
	m := Resolve(rules, []string{"SKU", "Date"})

	assert.True(t, m.Has(model.FieldProductName))
	assert.False(t, m.Has(model.FieldDate))
	assert.Equal(t, []int{1}, m.Unmapped)
}
