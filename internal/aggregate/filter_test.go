package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sales-analyzer/internal/model"
)

func TestCategories(t *testing.T) {
	assert.Equal(t, []string{"Tools", "Toys"}, Categories(sampleRecords()))
	assert.Empty(t, Categories(nil))
}

func TestFilterByCategory(t *testing.T) {
	records := sampleRecords()

	tests := []struct {
		name     string
		category string
		want     int
	}{
		{name: "empty selects all", category: "", want: 5},
		{name: "overall selects all", category: model.OverallCategory, want: 5},
		{name: "tools", category: "Tools", want: 2},
		{name: "toys", category: "Toys", want: 2},
		{name: "unknown selects missing category", category: model.UnknownLabel, want: 1},
		{name: "no match", category: "Garden", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterByCategory(records, tt.category)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestFilterByCategory_PreservesOrderAndInput(t *testing.T) {
	records := sampleRecords()
	before := sampleRecords()

	got := FilterByCategory(records, "Toys")
	require.Len(t, got, 2)
	assert.Equal(t, records[1], got[0])
	assert.Equal(t, records[4], got[1])
	assert.Equal(t, before, records)
}

func TestFilterByCategory_Idempotent(t *testing.T) {
	once := FilterByCategory(sampleRecords(), "Tools")
	twice := FilterByCategory(once, "Tools")
	assert.Equal(t, once, twice)
}
