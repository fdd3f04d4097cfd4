package ledger

import "github.com/shopspring/decimal"

// Status classifies the month's net flow against the budget target.
type Status string

const (
	// StatusOverBudget means the month is in deficit: more spent than earned.
	StatusOverBudget Status = "OVER_BUDGET"
	// StatusBelowTarget means positive net flow that has not reached the target.
	StatusBelowTarget Status = "BELOW_TARGET"
	// StatusOnTarget means net flow has met or exceeded the target.
	StatusOnTarget Status = "ON_TARGET"
)

// ClassifyBudget maps net flow and target to a Status. A negative net flow is
// always StatusOverBudget regardless of target; with a zero target, breaking
// even or better counts as StatusOnTarget.
func ClassifyBudget(netFlow, target decimal.Decimal) Status {
	switch {
	case netFlow.IsNegative():
		return StatusOverBudget
	case netFlow.LessThan(target):
		return StatusBelowTarget
	default:
		return StatusOnTarget
	}
}

// String returns a human readable label.
func (s Status) String() string {
	switch s {
	case StatusOverBudget:
		return "Deficit month"
	case StatusBelowTarget:
		return "Below target"
	case StatusOnTarget:
		return "On target"
	default:
		return string(s)
	}
}
