package ledger

import (
	"time"

	"github.com/Veraticus/pointbook/internal/model"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	half    = decimal.NewFromFloat(0.5)
)

// Summary holds every derived value shown for a snapshot and filter.
type Summary struct {
	Filter Filter

	// Balance is all-time income minus expense over the filtered set.
	Balance decimal.Decimal
	// CurrentMonthIncome and CurrentMonthExpense cover the filtered set.
	CurrentMonthIncome  decimal.Decimal
	CurrentMonthExpense decimal.Decimal

	// Budget fields always use the unfiltered set.
	NetFlow          decimal.Decimal
	BudgetTarget     decimal.Decimal
	BudgetDifference decimal.Decimal // target minus net flow; negative means exceeded
	BudgetPercent    decimal.Decimal // rounded half up; zero when the target is zero
	ProgressWidth    decimal.Decimal // never below zero; zero when the target is zero
	Status           Status

	OrderedTransactions []model.Transaction
}

// Totals is an income and expense pair.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Net returns income minus expense.
func (t Totals) Net() decimal.Decimal {
	return t.Income.Sub(t.Expense)
}

func (t *Totals) add(txn model.Transaction) {
	switch txn.Type {
	case model.TransactionTypeIncome:
		t.Income = t.Income.Add(txn.Amount)
	case model.TransactionTypeExpense:
		t.Expense = t.Expense.Add(txn.Amount)
	}
}

// SumTotals adds up income and expense over transactions selected by keep.
// A nil keep selects everything.
func SumTotals(transactions []model.Transaction, keep func(model.Transaction) bool) Totals {
	totals := Totals{Income: decimal.Zero, Expense: decimal.Zero}
	for _, txn := range transactions {
		if keep == nil || keep(txn) {
			totals.add(txn)
		}
	}
	return totals
}

// InMonth reports whether date falls in the same calendar month and year as now.
// The date's own calendar fields are compared, so a stored date is never
// shifted by time zone conversion.
func InMonth(date, now time.Time) bool {
	return date.Year() == now.Year() && date.Month() == now.Month()
}

// Summarize derives the summary for transactions under filter, compared against
// budget, with now deciding which month is current. It does not modify its inputs.
func Summarize(transactions []model.Transaction, filter Filter, budget model.BudgetTarget, now time.Time) Summary {
	filtered := filter.Apply(transactions)
	currentMonth := func(txn model.Transaction) bool {
		return InMonth(txn.Date, now)
	}

	allTime := SumTotals(filtered, nil)
	month := SumTotals(filtered, currentMonth)
	overall := SumTotals(transactions, currentMonth)

	netFlow := overall.Net()
	target := budget.Amount

	percent, width := budgetProgress(netFlow, target)

	return Summary{
		Filter:              filter,
		Balance:             allTime.Net(),
		CurrentMonthIncome:  month.Income,
		CurrentMonthExpense: month.Expense,
		NetFlow:             netFlow,
		BudgetTarget:        target,
		BudgetDifference:    target.Sub(netFlow),
		BudgetPercent:       percent,
		ProgressWidth:       width,
		Status:              ClassifyBudget(netFlow, target),
		OrderedTransactions: SortTransactions(filtered),
	}
}

// SummarizeSnapshot is Summarize over a whole snapshot.
func SummarizeSnapshot(snap model.Snapshot, filter Filter, now time.Time) Summary {
	return Summarize(snap.Transactions, filter, snap.Budget, now)
}

// budgetProgress returns the rounded achievement percentage and the progress
// bar width. A zero target yields zero for both.
func budgetProgress(netFlow, target decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if target.IsZero() {
		return decimal.Zero, decimal.Zero
	}

	ratio := netFlow.Mul(hundred).Div(target)
	percent := ratio.Add(half).Floor()
	width := decimal.Max(decimal.Zero, ratio)
	return percent, width
}
