package sheets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/pointbook/internal/ledger"
	"github.com/Veraticus/pointbook/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() Report {
	jan := func(day int) time.Time { return model.DateOnly(2024, time.January, day) }
	transactions := []model.Transaction{
		{ID: "txn-1", Date: jan(3), Type: model.TransactionTypeExpense, CategoryID: "9", Amount: decimal.NewFromInt(40), Note: "snacks", CategoryName: "Treats"},
		{ID: "txn-2", Date: jan(5), Type: model.TransactionTypeIncome, CategoryID: "1", Amount: decimal.NewFromInt(100)},
	}
	categories := model.IndexCategories([]model.Category{{ID: "1", Name: "General", Color: "#9E9E9E"}})
	budget := model.BudgetTarget{ID: "1", Amount: decimal.NewFromInt(50)}

	return Report{
		GeneratedAt: time.Date(2024, time.January, 15, 8, 0, 0, 0, time.UTC),
		Categories:  categories,
		Summary:     ledger.Summarize(transactions, ledger.FilterAll, budget, jan(15)),
	}
}

func TestReport_Rows(t *testing.T) {
	rows := sampleReport().Rows()
	require.Len(t, rows, transactionHeaderRow+1+2)

	assert.Equal(t, []any{"Pointbook Report", "Jan 15, 2024 08:00"}, rows[0])
	assert.Equal(t, []any{"Summary", "All records"}, rows[2])
	assert.Equal(t, []any{"Balance", float64(60)}, rows[3])
	assert.Equal(t, []any{"Still needed", float64(-10)}, rows[10])
	assert.Equal(t, []any{"Achieved %", int64(120)}, rows[11])
	assert.Equal(t, []any{"Status", "On target"}, rows[12])
	assert.Equal(t, []any{"Date", "Type", "Category", "Note", "Amount"}, rows[transactionHeaderRow])

	assert.Equal(t, []any{"2024-01-05", "income", "General", "", float64(100)}, rows[transactionHeaderRow+1])
	assert.Equal(t, []any{"2024-01-03", "expense", "Treats", "snacks", float64(-40)}, rows[transactionHeaderRow+2])
}

func TestReport_RowsUnknownCategory(t *testing.T) {
	r := sampleReport()
	r.Summary.OrderedTransactions[1].CategoryName = ""

	rows := r.Rows()
	assert.Equal(t, model.FallbackCategoryName, rows[transactionHeaderRow+2][2])
}

func TestMockExporter(t *testing.T) {
	m := NewMockExporter()
	require.NoError(t, m.Export(context.Background(), sampleReport()))

	m.ExportFunc = func(context.Context, Report) error { return errors.New("quota exceeded") }
	assert.Error(t, m.Export(context.Background(), sampleReport()))
	assert.Equal(t, 2, m.Calls())
}

var _ Exporter = (*Writer)(nil)
var _ Exporter = (*MockExporter)(nil)
