package aggregate

import (
	"sort"

	"github.com/sells-group/sales-analyzer/internal/model"
)

const (
	monthLayout = "2006-01"
	dayLayout   = "2006-01-02"
)

// MonthlyTrend sums sales and profit per calendar month, oldest first.
func MonthlyTrend(records []model.CanonicalRecord) []model.TrendPoint {
	g := groupBy(records, func(r model.CanonicalRecord) string {
		return r.Date.Format(monthLayout)
	})
	keys := sortedKeys(g)

	out := make([]model.TrendPoint, 0, len(keys))
	for _, k := range keys {
		t := g.byKey[k]
		out = append(out, model.TrendPoint{Period: k, TotalAmount: t.amount, TotalProfit: t.profit})
	}
	return out
}

// DailyTrend sums sales and profit per calendar date, oldest first.
func DailyTrend(records []model.CanonicalRecord) []model.DailyPoint {
	g := groupBy(records, func(r model.CanonicalRecord) string {
		return r.Date.Format(dayLayout)
	})
	keys := sortedKeys(g)

	out := make([]model.DailyPoint, 0, len(keys))
	for _, k := range keys {
		t := g.byKey[k]
		out = append(out, model.DailyPoint{Date: k, TotalAmount: t.amount, TotalProfit: t.profit})
	}
	return out
}

// sortedKeys returns the group keys in ascending order. Zero-padded date
// labels sort chronologically.
func sortedKeys(g *groups) []string {
	keys := make([]string, len(g.keys))
	copy(keys, g.keys)
	sort.Strings(keys)
	return keys
}
