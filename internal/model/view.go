package model

import "github.com/shopspring/decimal"

// UnknownLabel is the grouping key used for records with no value for the key.
const UnknownLabel = "Unknown"

// OverallCategory selects every record when used as a category filter.
const OverallCategory = "Overall"

// KPIs is the scalar bundle shown at the top of the dashboard.
type KPIs struct {
	TotalRevenue    decimal.Decimal `json:"total_revenue" yaml:"total_revenue"`
	TotalProfit     decimal.Decimal `json:"total_profit" yaml:"total_profit"`
	TotalUnitsSold  int64           `json:"total_units_sold" yaml:"total_units_sold"`
	AvgOrderValue   decimal.Decimal `json:"avg_order_value" yaml:"avg_order_value"`
	AvgProfitMargin decimal.Decimal `json:"avg_profit_margin" yaml:"avg_profit_margin"`
}

// TrendPoint is one calendar month of the monthly trend. Period is "2006-01".
type TrendPoint struct {
	Period      string          `json:"period" yaml:"period"`
	TotalAmount decimal.Decimal `json:"total_amount" yaml:"total_amount"`
	TotalProfit decimal.Decimal `json:"total_profit" yaml:"total_profit"`
}

// DailyPoint is one calendar day of the daily trend. Date is "2006-01-02".
type DailyPoint struct {
	Date        string          `json:"date" yaml:"date"`
	TotalAmount decimal.Decimal `json:"total_amount" yaml:"total_amount"`
	TotalProfit decimal.Decimal `json:"total_profit" yaml:"total_profit"`
}

// ProductRank is a product ordered by units sold.
type ProductRank struct {
	ProductName   string          `json:"product_name" yaml:"product_name"`
	TotalQuantity int64           `json:"total_quantity" yaml:"total_quantity"`
	TotalAmount   decimal.Decimal `json:"total_amount" yaml:"total_amount"`
}

// CategoryRollup sums sales and profit for one product category.
type CategoryRollup struct {
	ProductCategory string          `json:"product_category" yaml:"product_category"`
	TotalAmount     decimal.Decimal `json:"total_amount" yaml:"total_amount"`
	TotalProfit     decimal.Decimal `json:"total_profit" yaml:"total_profit"`
}

// ProductMargin is the profit margin of one product across all its sales.
type ProductMargin struct {
	ProductName  string          `json:"product_name" yaml:"product_name"`
	TotalSales   decimal.Decimal `json:"total_sales" yaml:"total_sales"`
	TotalProfit  decimal.Decimal `json:"total_profit" yaml:"total_profit"`
	ProfitMargin decimal.Decimal `json:"profit_margin_pct" yaml:"profit_margin_pct"`
}

// ProductSummary is one row of the product performance table.
type ProductSummary struct {
	ProductName  string          `json:"product_name" yaml:"product_name"`
	UnitsSold    int64           `json:"units_sold" yaml:"units_sold"`
	TotalRevenue decimal.Decimal `json:"total_revenue" yaml:"total_revenue"`
	TotalProfit  decimal.Decimal `json:"total_profit" yaml:"total_profit"`
	AvgPrice     decimal.Decimal `json:"avg_price" yaml:"avg_price"`
	Category     string          `json:"category" yaml:"category"`
}

// PeriodRollup sums sales for a named calendar bucket such as "Monday" or "March".
type PeriodRollup struct {
	Label       string          `json:"label" yaml:"label"`
	TotalAmount decimal.Decimal `json:"total_amount" yaml:"total_amount"`
}

// Heatmap is a weekday by ISO-week pivot of summed sales. Cells[i][j] is the
// total for Weekdays[i] in Weeks[j]; absent combinations are zero.
type Heatmap struct {
	Weekdays []string            `json:"weekdays" yaml:"weekdays"`
	Weeks    []int               `json:"weeks" yaml:"weeks"`
	Cells    [][]decimal.Decimal `json:"cells" yaml:"cells"`
}

// Dashboard bundles every summary view computed for one (optionally filtered)
// record set.
type Dashboard struct {
	Category        string           `json:"category" yaml:"category"`
	Categories      []string         `json:"categories" yaml:"categories"`
	RecordCount     int              `json:"record_count" yaml:"record_count"`
	KPIs            KPIs             `json:"kpis" yaml:"kpis"`
	MonthlyTrend    []TrendPoint     `json:"monthly_trend" yaml:"monthly_trend"`
	DailyTrend      []DailyPoint     `json:"daily_trend" yaml:"daily_trend"`
	WeekdaySales    []PeriodRollup   `json:"weekday_sales" yaml:"weekday_sales"`
	MonthSales      []PeriodRollup   `json:"month_sales" yaml:"month_sales"`
	Heatmap         Heatmap          `json:"heatmap" yaml:"heatmap"`
	TopProducts     []ProductRank    `json:"top_products" yaml:"top_products"`
	SalesByCategory []CategoryRollup `json:"sales_by_category" yaml:"sales_by_category"`
	MarginByProduct []ProductMargin  `json:"margin_by_product" yaml:"margin_by_product"`
	ProductSummary  []ProductSummary `json:"product_summary" yaml:"product_summary"`
	BestSeller      string           `json:"best_seller,omitempty" yaml:"best_seller,omitempty"`
}
