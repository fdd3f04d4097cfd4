package testutil

import (
	"context"
	"fmt"

	"github.com/Veraticus/pointbook/internal/model"
	"github.com/Veraticus/pointbook/internal/service"
	"github.com/shopspring/decimal"
)

// CategoryName names a seeded category.
type CategoryName string

// Category names used across tests. CategoryGeneral is the built-in default.
const (
	CategoryGeneral CategoryName = "General"
	CategoryChores  CategoryName = "Chores"
	CategoryTreats  CategoryName = "Treats"
	CategorySavings CategoryName = "Savings"
)

var basicColors = map[CategoryName]string{
	CategoryChores:  "#00B894",
	CategoryTreats:  "#FD79A8",
	CategorySavings: "#0984E3",
}

type seedTransaction struct {
	category CategoryName
	txn      model.Transaction
}

// Builder collects ledger contents and writes them in one go.
type Builder struct {
	budget       *decimal.Decimal
	order        []CategoryName
	colors       map[CategoryName]string
	transactions []seedTransaction
	err          error
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{colors: make(map[CategoryName]string)}
}

// WithCategory adds a category.
func (b *Builder) WithCategory(name CategoryName, color string) *Builder {
	if _, ok := b.colors[name]; !ok && name != CategoryGeneral {
		b.order = append(b.order, name)
	}
	b.colors[name] = color
	return b
}

// WithBasicCategories adds Chores, Treats and Savings, in that order.
func (b *Builder) WithBasicCategories() *Builder {
	for _, name := range []CategoryName{CategoryChores, CategoryTreats, CategorySavings} {
		b.WithCategory(name, basicColors[name])
	}
	return b
}

// WithIncome adds an income record dated date (YYYY-MM-DD).
func (b *Builder) WithIncome(id string, category CategoryName, date string, amount int64) *Builder {
	return b.with(id, model.TransactionTypeIncome, category, date, amount)
}

// WithExpense adds an expense record dated date (YYYY-MM-DD).
func (b *Builder) WithExpense(id string, category CategoryName, date string, amount int64) *Builder {
	return b.with(id, model.TransactionTypeExpense, category, date, amount)
}

func (b *Builder) with(id string, kind model.TransactionType, category CategoryName, date string, amount int64) *Builder {
	d, err := model.ParseDate(date)
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("record %s: %w", id, err)
	}
	b.transactions = append(b.transactions, seedTransaction{
		category: category,
		txn: model.Transaction{
			ID:     id,
			Date:   d,
			Type:   kind,
			Amount: decimal.NewFromInt(amount),
		},
	})
	return b
}

// WithBudget sets the monthly target.
func (b *Builder) WithBudget(amount int64) *Builder {
	d := decimal.NewFromInt(amount)
	b.budget = &d
	return b
}

// Build writes everything to ledger and returns the created categories by name.
func (b *Builder) Build(ctx context.Context, ledger service.Ledger) (map[CategoryName]model.Category, error) {
	if b.err != nil {
		return nil, b.err
	}

	created := make(map[CategoryName]model.Category, len(b.order)+1)
	created[CategoryGeneral] = model.Category{
		ID:    model.DefaultCategoryID,
		Name:  string(CategoryGeneral),
		Color: model.FallbackCategoryColor,
	}

	for _, name := range b.order {
		cat, err := ledger.CreateCategory(ctx, string(name), b.colors[name])
		if err != nil {
			return nil, fmt.Errorf("failed to create category %q: %w", name, err)
		}
		created[name] = *cat
	}

	for _, seed := range b.transactions {
		cat, ok := created[seed.category]
		if !ok {
			return nil, fmt.Errorf("record %s uses unknown category %q", seed.txn.ID, seed.category)
		}
		txn := seed.txn
		txn.CategoryID = cat.ID
		if err := ledger.CreateTransaction(ctx, &txn); err != nil {
			return nil, fmt.Errorf("failed to create record %s: %w", txn.ID, err)
		}
	}

	if b.budget != nil {
		if err := ledger.SetBudget(ctx, *b.budget); err != nil {
			return nil, fmt.Errorf("failed to set budget: %w", err)
		}
	}

	return created, nil
}
