package aggregate

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sells-group/sales-analyzer/internal/model"
	"github.com/sells-group/sales-analyzer/internal/normalize"
)

// rec builds a derived canonical record; date is "2006-01-02".
func rec(date, product, category, price, cost string, qty int64) model.CanonicalRecord {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	r := model.CanonicalRecord{
		Date:            d,
		ProductName:     product,
		ProductCategory: category,
		PricePerUnit:    decimal.RequireFromString(price),
		CostPerUnit:     decimal.RequireFromString(cost),
		Quantity:        qty,
	}
	normalize.Derive(&r)
	return r
}

// sampleRecords spans three months. 2024-01-15 and 2024-02-05 are Mondays
// (ISO weeks 3 and 6), 2024-01-16 is a Tuesday and 2024-03-10 a Sunday (week 10).
func sampleRecords() []model.CanonicalRecord {
	return []model.CanonicalRecord{
		rec("2024-01-15", "Widget", "Tools", "10", "6", 2),
		rec("2024-01-16", "Gadget", "Toys", "25.50", "20", 1),
		rec("2024-02-05", "Widget", "Tools", "10", "6", 3),
		rec("2024-02-05", "Lamp", "", "40", "30", 1),
		rec("2024-03-10", "Gadget", "Toys", "24.50", "20", 4),
	}
}
