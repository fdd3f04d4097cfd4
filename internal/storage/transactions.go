package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/pointbook/internal/common"
	"github.com/Veraticus/pointbook/internal/model"
)

const transactionColumns = `
		t.id, t.date, t.type, t.category_id, t.amount, t.note,
		COALESCE(c.name, ''), COALESCE(c.color_hex, '')`

// ListTransactions returns every transaction with its category display
// fields filled in when the category still exists. Rows come back in
// insertion order; display ordering is left to the ledger package.
func (s *SQLiteStorage) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT` + transactionColumns + `
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		ORDER BY t.rowid`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	slog.Debug("retrieved transactions", "count", len(transactions))
	return transactions, nil
}

// GetTransaction returns a transaction by id, or common.ErrNotFound.
func (s *SQLiteStorage) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	query := `SELECT` + transactionColumns + `
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.id = ?`

	txn, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// CreateTransaction stores a new transaction. An empty id is filled with a
// generated "txn-<millis>" id. The category must exist.
func (s *SQLiteStorage) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if txn != nil && txn.ID == "" {
		txn.ID = model.NewTransactionID(s.now())
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := requireCategory(ctx, tx, txn.CategoryID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO transactions (id, date, type, category_id, amount, note)
			VALUES (?, ?, ?, ?, ?, ?)`,
			txn.ID, txn.Date.Format(model.DateLayout), string(txn.Type), txn.CategoryID, txn.Amount.String(), txn.Note,
		); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("transaction %s: %w", txn.ID, common.ErrDuplicateEntry)
			}
			return fmt.Errorf("failed to create transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("created transaction", "id", txn.ID, "type", txn.Type, "amount", txn.Amount.String())
	return nil
}

// UpdateTransaction overwrites every editable field of an existing transaction.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := requireCategory(ctx, tx, txn.CategoryID); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, `
			UPDATE transactions
			SET date = ?, type = ?, category_id = ?, amount = ?, note = ?
			WHERE id = ?`,
			txn.Date.Format(model.DateLayout), string(txn.Type), txn.CategoryID, txn.Amount.String(), txn.Note, txn.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}
		return requireAffected(result, "transaction", txn.ID)
	})
	if err != nil {
		return err
	}

	slog.Info("updated transaction", "id", txn.ID)
	return nil
}

// DeleteTransaction removes a transaction by id.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if err := requireAffected(result, "transaction", id); err != nil {
		return err
	}

	slog.Info("deleted transaction", "id", id)
	return nil
}

// ImportTransactions inserts transactions in a single database transaction,
// skipping any whose id is already stored. It returns how many were inserted.
func (s *SQLiteStorage) ImportTransactions(ctx context.Context, transactions []model.Transaction) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	for i := range transactions {
		if err := validateTransaction(&transactions[i]); err != nil {
			return 0, fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}

	inserted := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR IGNORE INTO transactions (id, date, type, category_id, amount, note)
			VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		checked := make(map[string]bool)
		for _, txn := range transactions {
			if !checked[txn.CategoryID] {
				if err := requireCategory(ctx, tx, txn.CategoryID); err != nil {
					return err
				}
				checked[txn.CategoryID] = true
			}

			result, err := stmt.ExecContext(ctx,
				txn.ID, txn.Date.Format(model.DateLayout), string(txn.Type), txn.CategoryID, txn.Amount.String(), txn.Note,
			)
			if err != nil {
				return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
			}
			if n, _ := result.RowsAffected(); n > 0 {
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Info("imported transactions", "inserted", inserted, "skipped", len(transactions)-inserted)
	return inserted, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var (
		txn     model.Transaction
		date    string
		txnType string
	)
	err := row.Scan(
		&txn.ID, &date, &txnType, &txn.CategoryID, &txn.Amount, &txn.Note,
		&txn.CategoryName, &txn.CategoryColor,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, err
	}
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to scan transaction: %w", err)
	}

	parsed, err := model.ParseDate(date)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %s: %w", txn.ID, err)
	}
	txn.Date = parsed
	txn.Type = model.TransactionType(txnType)
	return txn, nil
}

func requireCategory(ctx context.Context, q queryer, id string) error {
	ok, err := categoryExists(ctx, q, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("category %s: %w", id, common.ErrUnknownCategory)
	}
	return nil
}
