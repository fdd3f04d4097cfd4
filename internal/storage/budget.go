package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/pointbook/internal/model"
	"github.com/shopspring/decimal"
)

// GetBudget returns the budget target, or the default zero target when none
// is stored.
func (s *SQLiteStorage) GetBudget(ctx context.Context) (model.BudgetTarget, error) {
	if err := validateContext(ctx); err != nil {
		return model.BudgetTarget{}, err
	}

	budget := model.BudgetTarget{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, amount FROM budget WHERE id = ?`, model.DefaultBudgetID,
	).Scan(&budget.ID, &budget.Amount)

	if errors.Is(err, sql.ErrNoRows) {
		return model.DefaultBudget(), nil
	}
	if err != nil {
		return model.BudgetTarget{}, fmt.Errorf("failed to query budget: %w", err)
	}

	return budget, nil
}

// SetBudget stores the monthly net flow target. Negative targets are rejected.
func (s *SQLiteStorage) SetBudget(ctx context.Context, amount decimal.Decimal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBudgetAmount(amount); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO budget (id, amount, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET amount = excluded.amount, updated_at = CURRENT_TIMESTAMP`,
		model.DefaultBudgetID, amount.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to set budget: %w", err)
	}

	slog.Info("updated budget target", "amount", amount.String())
	return nil
}
