// Package service defines the interfaces shared by ledger backends and their consumers.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/pointbook/internal/model"
	"github.com/shopspring/decimal"
)

// Source loads the entities that make up a ledger snapshot.
type Source interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	ListTransactions(ctx context.Context) ([]model.Transaction, error)
	GetBudget(ctx context.Context) (model.BudgetTarget, error)
}

// Ledger is a Source that also accepts mutations. Both the local SQLite
// storage and the remote API client implement it.
type Ledger interface {
	Source

	// Category operations
	CreateCategory(ctx context.Context, name, color string) (*model.Category, error)
	UpdateCategory(ctx context.Context, category *model.Category) error
	DeleteCategory(ctx context.Context, id string) error

	// Transaction operations
	CreateTransaction(ctx context.Context, txn *model.Transaction) error
	UpdateTransaction(ctx context.Context, txn *model.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
	GetTransaction(ctx context.Context, id string) (*model.Transaction, error)

	// Budget operations
	SetBudget(ctx context.Context, amount decimal.Decimal) error

	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetryOptions returns the retry settings used by network clients.
func DefaultRetryOptions() RetryOptions {
	return RetryOptions{
		MaxAttempts:  3,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
	}
}
