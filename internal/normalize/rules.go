// Package normalize converts loosely structured sales tables into canonical
// records with derived financial columns.
package normalize

import (
	"strings"

	"github.com/sells-group/sales-analyzer/internal/model"
)

// Rule maps a normalized column name to a canonical field when Match returns true.
type Rule struct {
	Name  string
	Field model.Field
	Match func(col string) bool
}

// DefaultRules is the ordered rule table used by Normalize. The first matching
// rule wins for each column. Columns already named after a canonical field
// resolve to that field before any keyword heuristic is tried.
var DefaultRules = append(canonicalRules(), KeywordRules...)

// KeywordRules are the fixed keyword heuristics, in priority order.
var KeywordRules = []Rule{
	{Name: "transaction id", Field: model.FieldTransactionID, Match: exact("transaction_id", "trx_id", "id")},
	{Name: "date", Field: model.FieldDate, Match: contains("date")},
	{Name: "customer", Field: model.FieldCustomerName, Match: contains("customer")},
	{Name: "product", Field: model.FieldProductName, Match: contains("product")},
	{Name: "category", Field: model.FieldProductCategory, Match: contains("category")},
	{Name: "price", Field: model.FieldPricePerUnit, Match: exact("price", "price_per_unit", "unit_price")},
	{Name: "cost", Field: model.FieldCostPerUnit, Match: exact("cost", "cost_per_unit", "unit_cost")},
	{Name: "quantity", Field: model.FieldQuantity, Match: exact("quantity", "qty", "q")},
}

func canonicalRules() []Rule {
	rules := make([]Rule, 0, len(model.CanonicalFields))
	for _, f := range model.CanonicalFields {
		rules = append(rules, Rule{Name: "canonical " + string(f), Field: f, Match: exact(string(f))})
	}
	return rules
}

func exact(names ...string) func(string) bool {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return func(col string) bool {
		_, ok := set[col]
		return ok
	}
}

func contains(sub string) func(string) bool {
	return func(col string) bool {
		return strings.Contains(col, sub)
	}
}

// NormalizeColumnName trims, lower-cases and replaces each space with an underscore.
// " Unit Price " → "unit_price".
func NormalizeColumnName(col string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(col)), " ", "_")
}

// MatchColumn returns the field of the first rule matching the already
// normalized column name.
func MatchColumn(rules []Rule, col string) (model.Field, bool) {
	for _, r := range rules {
		if r.Match(col) {
			return r.Field, true
		}
	}
	return "", false
}

// Mapping is the result of resolving a header row against a rule table.
type Mapping struct {
	// Columns holds the normalized name of every input column, in input order.
	Columns []string
	// Fields maps each resolved canonical field to its column index. When two
	// columns resolve to the same field the later one wins.
	Fields map[model.Field]int
	// Unmapped lists the indexes of columns that matched no rule.
	Unmapped []int
	// Shadowed lists the indexes of columns overwritten by a later column
	// resolving to the same field.
	Shadowed []int
}

// Has reports whether the field was resolved to some column.
func (m Mapping) Has(f model.Field) bool {
	_, ok := m.Fields[f]
	return ok
}

// Resolve maps a header row to canonical fields using rules.
func Resolve(rules []Rule, header []string) Mapping {
	m := Mapping{
		Columns: make([]string, len(header)),
		Fields:  make(map[model.Field]int),
	}
	for i, raw := range header {
		col := NormalizeColumnName(raw)
		m.Columns[i] = col

		field, ok := MatchColumn(rules, col)
		if !ok {
			m.Unmapped = append(m.Unmapped, i)
			continue
		}
		if prev, dup := m.Fields[field]; dup {
			m.Shadowed = append(m.Shadowed, prev)
		}
		m.Fields[field] = i
	}
	return m
}
