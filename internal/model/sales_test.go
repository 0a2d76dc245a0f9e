package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawTable_Len(t *testing.T) {
	assert.Equal(t, 0, RawTable{Header: []string{"date"}}.Len())
	assert.Equal(t, 2, RawTable{Rows: [][]string{{"a"}, {"b"}}}.Len())
}

func TestCanonicalFields_Order(t *testing.T) {
	require.Len(t, CanonicalFields, 8)
	assert.Equal(t, FieldTransactionID, CanonicalFields[0])
	assert.Equal(t, FieldQuantity, CanonicalFields[len(CanonicalFields)-1])
}

func TestCanonicalRecord_JSONMoneyAsString(t *testing.T) {
	rec := CanonicalRecord{
		Date:         time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		ProductName:  "Widget",
		PricePerUnit: decimal.RequireFromString("10.50"),
		Quantity:     2,
		TotalAmount:  decimal.RequireFromString("21"),
	}

	b, err := json.Marshal(rec)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "10.5", got["price_per_unit"])
	assert.Equal(t, "21", got["total_amount"])
	assert.Equal(t, "Widget", got["product_name"])
	assert.NotContains(t, got, "customer_name")
	assert.NotContains(t, got, "extra")
}

func TestRun_OmitsEmptyStatsAndError(t *testing.T) {
	b, err := json.Marshal(Run{ID: "r1", Status: RunStatusQueued})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "stats")
	assert.NotContains(t, string(b), "error")
	assert.Contains(t, string(b), `"status":"queued"`)
}
