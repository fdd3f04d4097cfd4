package ledger

import (
	"testing"

	"github.com/Veraticus/pointbook/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestParseFilter(t *testing.T) {
	assert.Equal(t, FilterAll, ParseFilter(""))
	assert.Equal(t, FilterAll, ParseFilter(" ALL "))
	assert.Equal(t, Filter("3"), ParseFilter("3"))
}

func TestFilter_Apply(t *testing.T) {
	transactions := []model.Transaction{
		txn("txn-1", "income", "1", "2024-01-02", 1),
		txn("txn-2", "income", "2", "2024-01-02", 1),
		txn("txn-3", "expense", "1", "2024-01-02", 1),
	}

	assert.Equal(t, []string{"txn-1", "txn-2", "txn-3"}, ids(FilterAll.Apply(transactions)))
	assert.Equal(t, []string{"txn-1", "txn-3"}, ids(Filter("1").Apply(transactions)))
	assert.Empty(t, Filter("99").Apply(transactions))

	all := FilterAll.Apply(transactions)
	all[0].ID = "changed"
	assert.Equal(t, "txn-1", transactions[0].ID)
}

func TestFilter_Label(t *testing.T) {
	idx := model.IndexCategories([]model.Category{{ID: "2", Name: "Chores", Color: "#4ECDC4"}})

	assert.Equal(t, "All records", FilterAll.Label(idx))
	assert.Equal(t, "Chores records", Filter("2").Label(idx))
	assert.Equal(t, model.FallbackCategoryName+" records", Filter("7").Label(idx))
}

func TestCycle(t *testing.T) {
	categories := []model.Category{{ID: "1"}, {ID: "2"}}

	tests := []struct {
		name    string
		current Filter
		step    int
		want    Filter
	}{
		{name: "forward from all", current: FilterAll, step: 1, want: "1"},
		{name: "forward wraps", current: "2", step: 1, want: FilterAll},
		{name: "backward wraps", current: FilterAll, step: -1, want: "2"},
		{name: "stale filter restarts at all", current: "gone", step: 1, want: "1"},
		{name: "zero step keeps current", current: "2", step: 0, want: "2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Cycle(tt.current, categories, tt.step))
		})
	}

	assert.Equal(t, FilterAll, Cycle(FilterAll, nil, 1))
}
