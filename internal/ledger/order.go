package ledger

import (
	"regexp"
	"sort"

	"github.com/Veraticus/pointbook/internal/model"
	"github.com/shopspring/decimal"
)

var idSuffixPattern = regexp.MustCompile(`(\d+)$`)

// IDSuffix extracts the trailing run of decimal digits from a transaction id.
// Ids without trailing digits yield zero, so "txn-100b" has suffix 0 while
// "txn-100" has suffix 100. Arbitrarily long suffixes are compared exactly.
func IDSuffix(id string) decimal.Decimal {
	m := idSuffixPattern.FindStringSubmatch(id)
	if m == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(m[1])
	if err != nil {
		return decimal.Zero
	}
	return d
}

type orderedTransaction struct {
	suffix decimal.Decimal
	txn    model.Transaction
}

// displayOrder sorts newest-created first: higher id suffix, then later date.
type displayOrder []orderedTransaction

// Len implements sort.Interface.
func (o displayOrder) Len() int {
	return len(o)
}

// Less implements sort.Interface.
func (o displayOrder) Less(i, j int) bool {
	if c := o[i].suffix.Cmp(o[j].suffix); c != 0 {
		return c > 0
	}
	return o[i].txn.Date.After(o[j].txn.Date)
}

// Swap implements sort.Interface.
func (o displayOrder) Swap(i, j int) {
	o[i], o[j] = o[j], o[i]
}

// SortTransactions returns a copy of transactions in display order. Items equal
// on both keys keep their relative input order, so sorting is idempotent.
func SortTransactions(transactions []model.Transaction) []model.Transaction {
	keyed := make(displayOrder, len(transactions))
	for i, txn := range transactions {
		keyed[i] = orderedTransaction{suffix: IDSuffix(txn.ID), txn: txn}
	}

	sort.Stable(keyed)

	out := make([]model.Transaction, len(keyed))
	for i, k := range keyed {
		out[i] = k.txn
	}
	return out
}
