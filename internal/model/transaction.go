package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType carries the sign of a transaction; amounts are always magnitudes.
type TransactionType string

const (
	// TransactionTypeIncome adds to the balance.
	TransactionTypeIncome TransactionType = "income"
	// TransactionTypeExpense subtracts from the balance.
	TransactionTypeExpense TransactionType = "expense"
)

// DateLayout is the calendar date format used on the wire and in storage.
const DateLayout = "2006-01-02"

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// ParseTransactionType converts user input into a TransactionType.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown transaction type %q (want income or expense)", s)
	}
	return t, nil
}

// Transaction is a single dated income or expense entry.
type Transaction struct {
	Date       time.Time
	ID         string // Usually "txn-<unix millis>"; the trailing digits order the list
	Type       TransactionType
	CategoryID string
	Note       string
	Amount     decimal.Decimal

	// Denormalized display hints returned by the remote API. Empty when the
	// source does not provide them.
	CategoryName  string
	CategoryColor string
}

// Signed returns the amount with the sign implied by the transaction type.
func (t Transaction) Signed() decimal.Decimal {
	if t.Type == TransactionTypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// NewTransactionID generates an id of the form "txn-<unix millis>".
func NewTransactionID(now time.Time) string {
	return fmt.Sprintf("txn-%d", now.UnixMilli())
}

// ParseDate parses a calendar date in DateLayout.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// Validate ensures the transaction can be stored. Amounts must be positive
// magnitudes; the sign lives in Type.
func (t *Transaction) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("transaction id is required")
	}
	if t.Date.IsZero() {
		return fmt.Errorf("transaction %s: date is required", t.ID)
	}
	if !t.Type.Valid() {
		return fmt.Errorf("transaction %s: unknown type %q", t.ID, t.Type)
	}
	if t.CategoryID == "" {
		return fmt.Errorf("transaction %s: category is required", t.ID)
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("transaction %s: amount must be greater than zero, got %s", t.ID, t.Amount)
	}
	return nil
}

// DateOnly returns the calendar day as midnight UTC, the form every stored
// transaction date takes.
func DateOnly(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
