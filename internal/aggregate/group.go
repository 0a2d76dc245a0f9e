package aggregate

import (
	"github.com/shopspring/decimal"

	"github.com/sells-group/sales-analyzer/internal/model"
)

// totals accumulates the measures of one group.
type totals struct {
	amount   decimal.Decimal
	profit   decimal.Decimal
	quantity int64
	priceSum decimal.Decimal
	count    int64
}

func (t *totals) add(r model.CanonicalRecord) {
	t.amount = t.amount.Add(r.TotalAmount)
	t.profit = t.profit.Add(r.TotalProfit)
	t.quantity += r.Quantity
	t.priceSum = t.priceSum.Add(r.PricePerUnit)
	t.count++
}

// groups holds totals per key, remembering the order keys were first seen.
type groups struct {
	keys  []string
	byKey map[string]*totals
}

func groupBy(records []model.CanonicalRecord, key func(model.CanonicalRecord) string) *groups {
	g := &groups{byKey: make(map[string]*totals)}
	for _, r := range records {
		k := key(r)
		t, ok := g.byKey[k]
		if !ok {
			t = &totals{amount: decimal.Zero, profit: decimal.Zero, priceSum: decimal.Zero}
			g.byKey[k] = t
			g.keys = append(g.keys, k)
		}
		t.add(r)
	}
	return g
}

func productKey(r model.CanonicalRecord) string {
	return orUnknown(r.ProductName)
}

func categoryKey(r model.CanonicalRecord) string {
	return orUnknown(r.ProductCategory)
}

func orUnknown(s string) string {
	if s == "" {
		return model.UnknownLabel
	}
	return s
}
