// Package export writes dashboards and canonical records as JSON, YAML, a
// directory of CSV files, or an XLSX workbook.
package export

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/sells-group/sales-analyzer/internal/model"
)

// Table is one flat view of a dashboard. Cell values are string, int64, int
// or decimal.Decimal.
type Table struct {
	Name   string
	Header []string
	Rows   [][]any
}

// recordColumns is the canonical record column order used for record tables.
var recordColumns = []string{
	"transaction_id",
	"date",
	"customer_name",
	"product_name",
	"product_category",
	"price_per_unit",
	"cost_per_unit",
	"quantity",
	"total_amount",
	"profit_per_unit",
	"total_profit",
	"profit_margin",
}

// Tables flattens a dashboard into tables in a fixed order. When records is
// non-nil a trailing "records" table holds the canonical set.
func Tables(d model.Dashboard, records []model.CanonicalRecord) []Table {
	tables := []Table{
		kpiTable(d),
		{
			Name:   "monthly_trend",
			Header: []string{"period", "total_amount", "total_profit"},
			Rows:   mapRows(d.MonthlyTrend, func(p model.TrendPoint) []any { return []any{p.Period, p.TotalAmount, p.TotalProfit} }),
		},
		{
			Name:   "daily_trend",
			Header: []string{"date", "total_amount", "total_profit"},
			Rows:   mapRows(d.DailyTrend, func(p model.DailyPoint) []any { return []any{p.Date, p.TotalAmount, p.TotalProfit} }),
		},
		{
			Name:   "weekday_sales",
			Header: []string{"weekday", "total_amount"},
			Rows:   mapRows(d.WeekdaySales, periodRow),
		},
		{
			Name:   "month_sales",
			Header: []string{"month", "total_amount"},
			Rows:   mapRows(d.MonthSales, periodRow),
		},
		heatmapTable(d.Heatmap),
		{
			Name:   "top_products",
			Header: []string{"product_name", "total_quantity", "total_amount"},
			Rows: mapRows(d.TopProducts, func(p model.ProductRank) []any {
				return []any{p.ProductName, p.TotalQuantity, p.TotalAmount}
			}),
		},
		{
			Name:   "sales_by_category",
			Header: []string{"product_category", "total_amount", "total_profit"},
			Rows: mapRows(d.SalesByCategory, func(c model.CategoryRollup) []any {
				return []any{c.ProductCategory, c.TotalAmount, c.TotalProfit}
			}),
		},
		{
			Name:   "margin_by_product",
			Header: []string{"product_name", "total_sales", "total_profit", "profit_margin_pct"},
			Rows: mapRows(d.MarginByProduct, func(m model.ProductMargin) []any {
				return []any{m.ProductName, m.TotalSales, m.TotalProfit, m.ProfitMargin}
			}),
		},
		{
			Name:   "product_summary",
			Header: []string{"product_name", "units_sold", "total_revenue", "total_profit", "avg_price", "category"},
			Rows: mapRows(d.ProductSummary, func(s model.ProductSummary) []any {
				return []any{s.ProductName, s.UnitsSold, s.TotalRevenue, s.TotalProfit, s.AvgPrice, s.Category}
			}),
		},
	}
	if records != nil {
		tables = append(tables, RecordTable(records))
	}
	return tables
}

// RecordTable renders canonical records, with pass-through columns dropped.
func RecordTable(records []model.CanonicalRecord) Table {
	return Table{
		Name:   "records",
		Header: recordColumns,
		Rows: mapRows(records, func(r model.CanonicalRecord) []any {
			return []any{
				r.TransactionID,
				r.Date.Format("2006-01-02"),
				r.CustomerName,
				r.ProductName,
				r.ProductCategory,
				r.PricePerUnit,
				r.CostPerUnit,
				r.Quantity,
				r.TotalAmount,
				r.ProfitPerUnit,
				r.TotalProfit,
				r.ProfitMargin,
			}
		}),
	}
}

func kpiTable(d model.Dashboard) Table {
	k := d.KPIs
	return Table{
		Name:   "kpis",
		Header: []string{"metric", "value"},
		Rows: [][]any{
			{"category", d.Category},
			{"record_count", d.RecordCount},
			{"total_revenue", k.TotalRevenue},
			{"total_profit", k.TotalProfit},
			{"total_units_sold", k.TotalUnitsSold},
			{"avg_order_value", k.AvgOrderValue},
			{"avg_profit_margin", k.AvgProfitMargin},
			{"best_seller", d.BestSeller},
		},
	}
}

// heatmapTable has one row per weekday and one column per ISO week.
func heatmapTable(h model.Heatmap) Table {
	header := make([]string, 0, len(h.Weeks)+1)
	header = append(header, "weekday")
	for _, w := range h.Weeks {
		header = append(header, "week_"+strconv.Itoa(w))
	}
	rows := make([][]any, 0, len(h.Weekdays))
	for i, day := range h.Weekdays {
		row := make([]any, 0, len(h.Weeks)+1)
		row = append(row, day)
		if i < len(h.Cells) {
			for _, v := range h.Cells[i] {
				row = append(row, v)
			}
		}
		rows = append(rows, row)
	}
	return Table{Name: "heatmap", Header: header, Rows: rows}
}

func periodRow(p model.PeriodRollup) []any {
	return []any{p.Label, p.TotalAmount}
}

func mapRows[T any](items []T, fn func(T) []any) [][]any {
	rows := make([][]any, len(items))
	for i, item := range items {
		rows[i] = fn(item)
	}
	return rows
}

// formatCell renders a cell value as text.
func formatCell(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case decimal.Decimal:
		return x.String()
	default:
		return ""
	}
}
