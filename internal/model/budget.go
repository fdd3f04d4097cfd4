package model

import "github.com/shopspring/decimal"

// DefaultBudgetID is the id of the singleton budget target.
const DefaultBudgetID = "1"

// BudgetTarget is the desired monthly net flow (income minus expense).
// It is not a spending cap, and zero is a meaningful value.
type BudgetTarget struct {
	ID     string
	Amount decimal.Decimal
}

// DefaultBudget is used when no budget has been stored yet.
func DefaultBudget() BudgetTarget {
	return BudgetTarget{ID: DefaultBudgetID, Amount: decimal.Zero}
}
