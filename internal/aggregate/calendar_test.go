package aggregate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sales-analyzer/internal/model"
)

func labels(rows []model.PeriodRollup) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Label
	}
	return out
}

func strs(ds []decimal.Decimal) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.String()
	}
	return out
}

func TestWeekdaySales(t *testing.T) {
	rows := WeekdaySales(sampleRecords())

	assert.Equal(t, []string{"Monday", "Tuesday", "Sunday"}, labels(rows))
	require.Len(t, rows, 3)
	assert.Equal(t, "90", rows[0].TotalAmount.String())
	assert.Equal(t, "25.5", rows[1].TotalAmount.String())
	assert.Equal(t, "98", rows[2].TotalAmount.String())
}

func TestMonthSales(t *testing.T) {
	records := append(sampleRecords(), rec("2023-01-20", "Widget", "Tools", "5", "1", 1))
	rows := MonthSales(records)

	assert.Equal(t, []string{"January", "February", "March"}, labels(rows))
	require.Len(t, rows, 3)
	assert.Equal(t, "50.5", rows[0].TotalAmount.String())
	assert.Equal(t, "70", rows[1].TotalAmount.String())
}

func TestWeeklyHeatmap(t *testing.T) {
	h := WeeklyHeatmap(sampleRecords())

	assert.Equal(t, []string{"Monday", "Tuesday", "Sunday"}, h.Weekdays)
	assert.Equal(t, []int{3, 6, 10}, h.Weeks)
	require.Len(t, h.Cells, 3)
	assert.Equal(t, []string{"20", "70", "0"}, strs(h.Cells[0]))
	assert.Equal(t, []string{"25.5", "0", "0"}, strs(h.Cells[1]))
	assert.Equal(t, []string{"0", "0", "98"}, strs(h.Cells[2]))
}

func TestCalendarViews_Empty(t *testing.T) {
	assert.Empty(t, WeekdaySales(nil))
	assert.Empty(t, MonthSales(nil))

	h := WeeklyHeatmap(nil)
	assert.Empty(t, h.Weekdays)
	assert.Empty(t, h.Weeks)
	assert.Empty(t, h.Cells)
}
