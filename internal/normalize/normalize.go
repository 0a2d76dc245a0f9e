package normalize

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sells-group/sales-analyzer/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Report describes one normalization: the surviving records plus how the
// header was resolved and how many rows were dropped.
type Report struct {
	Records  []model.CanonicalRecord
	Mapping  Mapping
	RowsRead int
	Dropped  int
}

// Normalizer applies a rule table to raw tables.
type Normalizer struct {
	rules []Rule
}

// New creates a Normalizer. With no rules, DefaultRules is used.
func New(rules ...Rule) *Normalizer {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Normalizer{rules: rules}
}

// Normalize converts a raw table into canonical records using DefaultRules.
// It fails with *SchemaError when no column maps to date or product_name.
// Rows whose date cannot be parsed are dropped silently.
func Normalize(t model.RawTable) ([]model.CanonicalRecord, error) {
	rep, err := New().Run(t)
	if err != nil {
		return nil, err
	}
	return rep.Records, nil
}

// NormalizeWithReport is Normalize that also returns the column resolution and
// the dropped row count.
func NormalizeWithReport(t model.RawTable) (*Report, error) {
	return New().Run(t)
}

// Run normalizes t. Surviving rows keep their input order.
func (n *Normalizer) Run(t model.RawTable) (*Report, error) {
	m := Resolve(n.rules, t.Header)
	if err := checkRequired(m); err != nil {
		return nil, err
	}

	rep := &Report{
		Mapping:  m,
		RowsRead: len(t.Rows),
		Records:  make([]model.CanonicalRecord, 0, len(t.Rows)),
	}
	for _, row := range t.Rows {
		rec, ok := buildRecord(row, m)
		if !ok {
			rep.Dropped++
			continue
		}
		rep.Records = append(rep.Records, rec)
	}
	return rep, nil
}

func buildRecord(row []string, m Mapping) (model.CanonicalRecord, bool) {
	date, ok := parseDate(cell(row, m, model.FieldDate))
	if !ok {
		return model.CanonicalRecord{}, false
	}

	rec := model.CanonicalRecord{
		TransactionID:   cell(row, m, model.FieldTransactionID),
		Date:            date,
		CustomerName:    cell(row, m, model.FieldCustomerName),
		ProductName:     cell(row, m, model.FieldProductName),
		ProductCategory: cell(row, m, model.FieldProductCategory),
		PricePerUnit:    parseMoney(cell(row, m, model.FieldPricePerUnit)),
		CostPerUnit:     parseMoney(cell(row, m, model.FieldCostPerUnit)),
		Quantity:        parseQuantity(cell(row, m, model.FieldQuantity)),
	}
	if rec.ProductName == "" {
		rec.ProductName = model.UnknownLabel
	}
	Derive(&rec)

	for _, idx := range m.Unmapped {
		if rec.Extra == nil {
			rec.Extra = make(map[string]string, len(m.Unmapped))
		}
		rec.Extra[m.Columns[idx]] = value(row, idx)
	}
	return rec, true
}

// Derive fills the derived money columns of r from its price, cost and quantity.
func Derive(r *model.CanonicalRecord) {
	qty := decimal.NewFromInt(r.Quantity)
	r.TotalAmount = r.PricePerUnit.Mul(qty)
	r.ProfitPerUnit = r.PricePerUnit.Sub(r.CostPerUnit)
	r.TotalProfit = r.ProfitPerUnit.Mul(qty)
	if r.TotalAmount.IsZero() {
		r.ProfitMargin = decimal.Zero
		return
	}
	r.ProfitMargin = r.TotalProfit.Div(r.TotalAmount).Mul(hundred)
}

// cell returns the trimmed value of the column resolved to f, or "" when the
// field is absent or the row is short.
func cell(row []string, m Mapping, f model.Field) string {
	idx, ok := m.Fields[f]
	if !ok {
		return ""
	}
	return value(row, idx)
}

func value(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
