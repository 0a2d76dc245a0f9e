package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/sells-group/sales-analyzer/internal/model"
)

// TopProducts ranks products by units sold, highest first, keeping at most n.
// Products with equal units keep the order they first appear in records.
// n <= 0 keeps every product.
func TopProducts(records []model.CanonicalRecord, n int) []model.ProductRank {
	g := groupBy(records, productKey)

	out := make([]model.ProductRank, 0, len(g.keys))
	for _, k := range g.keys {
		t := g.byKey[k]
		out = append(out, model.ProductRank{ProductName: k, TotalQuantity: t.quantity, TotalAmount: t.amount})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalQuantity > out[j].TotalQuantity
	})
	return truncate(out, n)
}

// SalesByCategory sums sales and profit per product category, highest sales
// first. Records without a category are grouped under model.UnknownLabel.
func SalesByCategory(records []model.CanonicalRecord) []model.CategoryRollup {
	g := groupBy(records, categoryKey)

	out := make([]model.CategoryRollup, 0, len(g.keys))
	for _, k := range g.keys {
		t := g.byKey[k]
		out = append(out, model.CategoryRollup{ProductCategory: k, TotalAmount: t.amount, TotalProfit: t.profit})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalAmount.GreaterThan(out[j].TotalAmount)
	})
	return out
}

// MarginByProduct ranks products by profit margin percentage, highest first,
// keeping at most n (n <= 0 keeps all). A product with zero sales has a margin
// of zero. Margins are rounded to 2 places after ranking.
func MarginByProduct(records []model.CanonicalRecord, n int) []model.ProductMargin {
	g := groupBy(records, productKey)

	out := make([]model.ProductMargin, 0, len(g.keys))
	for _, k := range g.keys {
		t := g.byKey[k]
		out = append(out, model.ProductMargin{
			ProductName:  k,
			TotalSales:   t.amount,
			TotalProfit:  t.profit,
			ProfitMargin: margin(t.profit, t.amount),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ProfitMargin.GreaterThan(out[j].ProfitMargin)
	})
	out = truncate(out, n)
	for i := range out {
		out[i].ProfitMargin = out[i].ProfitMargin.Round(2)
	}
	return out
}

// ProductSummary builds one row per product with units, revenue, profit,
// average unit price and the product's most frequent category, ordered by
// revenue, highest first.
func ProductSummary(records []model.CanonicalRecord) []model.ProductSummary {
	g := groupBy(records, productKey)
	categories := categoryModes(records)

	out := make([]model.ProductSummary, 0, len(g.keys))
	for _, k := range g.keys {
		t := g.byKey[k]
		avg := decimal.Zero
		if t.count > 0 {
			avg = t.priceSum.Div(decimal.NewFromInt(t.count)).Round(2)
		}
		out = append(out, model.ProductSummary{
			ProductName:  k,
			UnitsSold:    t.quantity,
			TotalRevenue: t.amount,
			TotalProfit:  t.profit,
			AvgPrice:     avg,
			Category:     categories[k],
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalRevenue.GreaterThan(out[j].TotalRevenue)
	})
	return out
}

// categoryCount tracks how often a category was seen for one product and
// where it first appeared.
type categoryCount struct {
	name  string
	count int
	first int
}

// categoryModes returns the most frequent non-empty category per product. Ties
// go to the category seen first. Products with no category get
// model.UnknownLabel.
func categoryModes(records []model.CanonicalRecord) map[string]string {
	counts := make(map[string][]*categoryCount)
	for i, r := range records {
		product := productKey(r)
		if _, ok := counts[product]; !ok {
			counts[product] = nil
		}
		if r.ProductCategory == "" {
			continue
		}
		var found bool
		for _, c := range counts[product] {
			if c.name == r.ProductCategory {
				c.count++
				found = true
				break
			}
		}
		if !found {
			counts[product] = append(counts[product], &categoryCount{name: r.ProductCategory, count: 1, first: i})
		}
	}

	modes := make(map[string]string, len(counts))
	for product, cats := range counts {
		var best *categoryCount
		for _, c := range cats {
			if best == nil || c.count > best.count || (c.count == best.count && c.first < best.first) {
				best = c
			}
		}
		if best == nil {
			modes[product] = model.UnknownLabel
			continue
		}
		modes[product] = best.name
	}
	return modes
}

func truncate[T any](s []T, n int) []T {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}
