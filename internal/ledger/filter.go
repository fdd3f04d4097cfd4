// Package ledger derives every number and ordering shown for a ledger snapshot:
// balances, monthly totals, budget progress, and the display order of transactions.
// Everything here is a pure function of its inputs.
package ledger

import (
	"strings"

	"github.com/Veraticus/pointbook/internal/model"
)

// FilterAll selects every transaction regardless of category.
const FilterAll Filter = "all"

// Filter is either FilterAll or a category id. A category id that matches no
// category is valid and selects nothing.
type Filter string

// ParseFilter normalizes user input into a Filter. Empty input means FilterAll.
func ParseFilter(s string) Filter {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, string(FilterAll)) {
		return FilterAll
	}
	return Filter(s)
}

// IsAll reports whether the filter selects every transaction.
func (f Filter) IsAll() bool {
	return f == FilterAll
}

// Matches reports whether txn passes the filter.
func (f Filter) Matches(txn model.Transaction) bool {
	return f.IsAll() || txn.CategoryID == string(f)
}

// Apply returns the transactions that pass the filter in their original order.
// The input slice is never modified.
func (f Filter) Apply(transactions []model.Transaction) []model.Transaction {
	if f.IsAll() {
		out := make([]model.Transaction, len(transactions))
		copy(out, transactions)
		return out
	}

	out := make([]model.Transaction, 0, len(transactions))
	for _, txn := range transactions {
		if f.Matches(txn) {
			out = append(out, txn)
		}
	}
	return out
}

// Label returns the display label for the filter, deriving the category name
// from the id rather than from any UI state.
func (f Filter) Label(categories model.CategoryIndex) string {
	if f.IsAll() {
		return "All records"
	}
	c, _ := categories.Resolve(string(f))
	return c.Name + " records"
}

// Cycle returns the filter step positions away from current in the sequence
// [all, categories...], wrapping at both ends. A current filter that is no
// longer in the sequence restarts from FilterAll.
func Cycle(current Filter, categories []model.Category, step int) Filter {
	options := make([]Filter, 0, len(categories)+1)
	options = append(options, FilterAll)
	for _, c := range categories {
		options = append(options, Filter(c.ID))
	}

	pos := 0
	for i, f := range options {
		if f == current {
			pos = i
			break
		}
	}

	n := len(options)
	next := ((pos+step)%n + n) % n
	return options[next]
}
