package aggregate

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sells-group/sales-analyzer/internal/model"
)

var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

// WeekdaySales sums sales per day of the week, Monday first. Days with no
// sales are omitted.
func WeekdaySales(records []model.CanonicalRecord) []model.PeriodRollup {
	sums := make(map[time.Weekday]decimal.Decimal)
	for _, r := range records {
		d := r.Date.Weekday()
		sums[d] = sums[d].Add(r.TotalAmount)
	}

	out := make([]model.PeriodRollup, 0, len(sums))
	for _, d := range weekdayOrder {
		if v, ok := sums[d]; ok {
			out = append(out, model.PeriodRollup{Label: d.String(), TotalAmount: v})
		}
	}
	return out
}

// MonthSales sums sales per month name across all years, January first.
// Months with no sales are omitted.
func MonthSales(records []model.CanonicalRecord) []model.PeriodRollup {
	sums := make(map[time.Month]decimal.Decimal)
	for _, r := range records {
		m := r.Date.Month()
		sums[m] = sums[m].Add(r.TotalAmount)
	}

	out := make([]model.PeriodRollup, 0, len(sums))
	for m := time.January; m <= time.December; m++ {
		if v, ok := sums[m]; ok {
			out = append(out, model.PeriodRollup{Label: m.String(), TotalAmount: v})
		}
	}
	return out
}

// WeeklyHeatmap pivots sales into weekday rows and ISO week number columns.
// Only weekdays and weeks with at least one record appear; empty cells are
// zero.
func WeeklyHeatmap(records []model.CanonicalRecord) model.Heatmap {
	type cellKey struct {
		day  time.Weekday
		week int
	}
	sums := make(map[cellKey]decimal.Decimal)
	days := make(map[time.Weekday]bool)
	weekSet := make(map[int]bool)
	for _, r := range records {
		_, week := r.Date.ISOWeek()
		k := cellKey{day: r.Date.Weekday(), week: week}
		sums[k] = sums[k].Add(r.TotalAmount)
		days[k.day] = true
		weekSet[week] = true
	}

	weeks := make([]int, 0, len(weekSet))
	for w := range weekSet {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)

	h := model.Heatmap{
		Weekdays: make([]string, 0, len(days)),
		Weeks:    weeks,
		Cells:    make([][]decimal.Decimal, 0, len(days)),
	}
	for _, d := range weekdayOrder {
		if !days[d] {
			continue
		}
		row := make([]decimal.Decimal, len(weeks))
		for j, w := range weeks {
			if v, ok := sums[cellKey{day: d, week: w}]; ok {
				row[j] = v
			} else {
				row[j] = decimal.Zero
			}
		}
		h.Weekdays = append(h.Weekdays, d.String())
		h.Cells = append(h.Cells, row)
	}
	return h
}
