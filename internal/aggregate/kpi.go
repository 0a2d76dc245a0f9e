// Package aggregate computes dashboard summary views from canonical sales
// records. Every function is pure: inputs are never modified and identical
// inputs give identical outputs.
package aggregate

import (
	"github.com/shopspring/decimal"

	"github.com/sells-group/sales-analyzer/internal/model"
)

var hundred = decimal.NewFromInt(100)

// ComputeKPIs sums revenue, profit and units and derives the average order
// value and overall margin. Money results are rounded to 2 places. An empty
// record set yields all zeros.
func ComputeKPIs(records []model.CanonicalRecord) model.KPIs {
	revenue, profit := decimal.Zero, decimal.Zero
	var units int64
	for _, r := range records {
		revenue = revenue.Add(r.TotalAmount)
		profit = profit.Add(r.TotalProfit)
		units += r.Quantity
	}

	k := model.KPIs{
		TotalRevenue:    revenue.Round(2),
		TotalProfit:     profit.Round(2),
		TotalUnitsSold:  units,
		AvgOrderValue:   decimal.Zero,
		AvgProfitMargin: decimal.Zero,
	}
	if n := len(records); n > 0 {
		k.AvgOrderValue = revenue.Div(decimal.NewFromInt(int64(n))).Round(2)
	}
	k.AvgProfitMargin = margin(profit, revenue).Round(2)
	return k
}

// margin is profit as a percentage of sales, or zero when sales is zero.
func margin(profit, sales decimal.Decimal) decimal.Decimal {
	if sales.IsZero() {
		return decimal.Zero
	}
	return profit.Div(sales).Mul(hundred)
}
