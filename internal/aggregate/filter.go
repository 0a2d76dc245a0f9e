package aggregate

import "github.com/sells-group/sales-analyzer/internal/model"

// Categories returns the distinct non-empty product categories in the order
// they first appear.
func Categories(records []model.CanonicalRecord) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, r := range records {
		if r.ProductCategory == "" || seen[r.ProductCategory] {
			continue
		}
		seen[r.ProductCategory] = true
		out = append(out, r.ProductCategory)
	}
	return out
}

// FilterByCategory returns the records of one category. An empty category or
// model.OverallCategory selects everything; model.UnknownLabel also selects
// records with no category. The input slice is never modified.
func FilterByCategory(records []model.CanonicalRecord, category string) []model.CanonicalRecord {
	if category == "" || category == model.OverallCategory {
		return records
	}
	out := make([]model.CanonicalRecord, 0)
	for _, r := range records {
		if categoryKey(r) == category {
			out = append(out, r)
		}
	}
	return out
}
