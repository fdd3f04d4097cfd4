package sheets

import (
	"context"
	"time"

	"github.com/Veraticus/pointbook/internal/ledger"
	"github.com/Veraticus/pointbook/internal/model"
)

// Exporter writes a ledger report somewhere.
type Exporter interface {
	Export(ctx context.Context, report Report) error
}

// Report is everything written to the sheet for one export.
type Report struct {
	GeneratedAt time.Time
	Categories  model.CategoryIndex
	Summary     ledger.Summary
}

// Rows lays the report out as sheet rows: a summary block followed by the
// transactions in display order.
func (r Report) Rows() [][]any {
	s := r.Summary
	values := make([][]any, 0, 16+len(s.OrderedTransactions))

	values = append(values,
		[]any{"Pointbook Report", r.GeneratedAt.Format("Jan 2, 2006 15:04")},
		[]any{},
		[]any{"Summary", s.Filter.Label(r.Categories)},
		[]any{"Balance", s.Balance.InexactFloat64()},
		[]any{"Current month income", s.CurrentMonthIncome.InexactFloat64()},
		[]any{"Current month expense", s.CurrentMonthExpense.InexactFloat64()},
		[]any{},
		[]any{"Budget"},
		[]any{"Monthly target", s.BudgetTarget.InexactFloat64()},
		[]any{"Net flow", s.NetFlow.InexactFloat64()},
		[]any{"Still needed", s.BudgetDifference.InexactFloat64()},
		[]any{"Achieved %", s.BudgetPercent.IntPart()},
		[]any{"Status", s.Status.String()},
		[]any{},
		[]any{"Transactions"},
		[]any{"Date", "Type", "Category", "Note", "Amount"},
	)

	for _, txn := range s.OrderedTransactions {
		values = append(values, []any{
			txn.Date.Format(model.DateLayout),
			string(txn.Type),
			categoryName(r.Categories, txn),
			txn.Note,
			txn.Signed().InexactFloat64(),
		})
	}

	return values
}

// transactionHeaderRow is the zero-based row index of the transaction table header.
const transactionHeaderRow = 15

func categoryName(categories model.CategoryIndex, txn model.Transaction) string {
	if c, ok := categories[txn.CategoryID]; ok {
		return c.Name
	}
	if txn.CategoryName != "" {
		return txn.CategoryName
	}
	return model.FallbackCategoryName
}
