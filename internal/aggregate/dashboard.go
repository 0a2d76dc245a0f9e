package aggregate

import "github.com/sells-group/sales-analyzer/internal/model"

// DefaultTopN is the ranking length used when Options.TopN is unset.
const DefaultTopN = 10

// Options configures BuildDashboard.
type Options struct {
	Category string // "" or model.OverallCategory for all records
	TopN     int    // ranking length for top products and margins
}

// BuildDashboard filters records by category and computes every summary view
// from the filtered set. The category list is always taken from the full set.
func BuildDashboard(records []model.CanonicalRecord, opts Options) model.Dashboard {
	topN := opts.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}
	category := opts.Category
	if category == "" {
		category = model.OverallCategory
	}

	filtered := FilterByCategory(records, category)
	d := model.Dashboard{
		Category:        category,
		Categories:      Categories(records),
		RecordCount:     len(filtered),
		KPIs:            ComputeKPIs(filtered),
		MonthlyTrend:    MonthlyTrend(filtered),
		DailyTrend:      DailyTrend(filtered),
		WeekdaySales:    WeekdaySales(filtered),
		MonthSales:      MonthSales(filtered),
		Heatmap:         WeeklyHeatmap(filtered),
		TopProducts:     TopProducts(filtered, topN),
		SalesByCategory: SalesByCategory(filtered),
		MarginByProduct: MarginByProduct(filtered, topN),
		ProductSummary:  ProductSummary(filtered),
	}
	if len(d.ProductSummary) > 0 {
		d.BestSeller = d.ProductSummary[0].ProductName
	}
	return d
}
