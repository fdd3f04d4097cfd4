package storage

import (
	"context"
	"testing"

	"github.com/Veraticus/pointbook/internal/common"
	"github.com/Veraticus/pointbook/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStorage_CreateTransaction(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		txn     model.Transaction
	}{
		{
			name: "valid income",
			txn:  testTransaction("txn-2", "income", "1", "2024-01-05", 100),
		},
		{
			name:    "unknown category",
			txn:     testTransaction("txn-3", "income", "77", "2024-01-05", 100),
			wantErr: common.ErrUnknownCategory,
		},
		{
			name:    "zero amount",
			txn:     testTransaction("txn-4", "expense", "1", "2024-01-05", 0),
			wantErr: ErrInvalidTransaction,
		},
		{
			name:    "bad type",
			txn:     testTransaction("txn-5", "gift", "1", "2024-01-05", 10),
			wantErr: ErrInvalidTransaction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, cleanup := createTestStorage(t)
			defer cleanup()
			ctx := context.Background()

			err := store.CreateTransaction(ctx, &tt.txn)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			got, err := store.GetTransaction(ctx, tt.txn.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.txn.ID, got.ID)
			assert.True(t, tt.txn.Amount.Equal(got.Amount))
			assert.Equal(t, "2024-01-05", got.Date.Format(model.DateLayout))
			assert.Equal(t, "General", got.CategoryName)
			assert.Equal(t, model.FallbackCategoryColor, got.CategoryColor)
		})
	}
}

func TestSQLiteStorage_CreateTransaction_Duplicate(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	first := testTransaction("txn-1", "income", "1", "2024-01-05", 10)
	require.NoError(t, store.CreateTransaction(ctx, &first))

	second := testTransaction("txn-1", "expense", "1", "2024-01-06", 20)
	assert.ErrorIs(t, store.CreateTransaction(ctx, &second), common.ErrDuplicateEntry)
}

func TestSQLiteStorage_DecimalAmountsRoundTrip(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	txn := testTransaction("txn-1", "income", "1", "2024-01-05", 0)
	txn.Amount = decimal.RequireFromString("0.1")
	require.NoError(t, store.CreateTransaction(ctx, &txn))

	txn2 := testTransaction("txn-2", "income", "1", "2024-01-05", 0)
	txn2.Amount = decimal.RequireFromString("0.2")
	require.NoError(t, store.CreateTransaction(ctx, &txn2))

	all, err := store.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	sum := all[0].Amount.Add(all[1].Amount)
	assert.Equal(t, "0.3", sum.String())
}

func TestSQLiteStorage_UpdateTransaction(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	txn := testTransaction("txn-1", "income", "1", "2024-01-05", 10)
	require.NoError(t, store.CreateTransaction(ctx, &txn))

	chores, err := store.CreateCategory(ctx, "Chores", "#4ECDC4")
	require.NoError(t, err)

	txn.Type = model.TransactionTypeExpense
	txn.CategoryID = chores.ID
	txn.Note = "broke a vase"
	txn.Amount = decimal.NewFromInt(25)
	require.NoError(t, store.UpdateTransaction(ctx, &txn))

	got, err := store.GetTransaction(ctx, "txn-1")
	require.NoError(t, err)
	assert.Equal(t, model.TransactionTypeExpense, got.Type)
	assert.Equal(t, "Chores", got.CategoryName)
	assert.Equal(t, "broke a vase", got.Note)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(25)))

	ghost := testTransaction("txn-404", "income", "1", "2024-01-05", 10)
	assert.ErrorIs(t, store.UpdateTransaction(ctx, &ghost), common.ErrNotFound)
}

func TestSQLiteStorage_DeleteTransaction(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	txn := testTransaction("txn-1", "income", "1", "2024-01-05", 10)
	require.NoError(t, store.CreateTransaction(ctx, &txn))

	require.NoError(t, store.DeleteTransaction(ctx, "txn-1"))
	assert.ErrorIs(t, store.DeleteTransaction(ctx, "txn-1"), common.ErrNotFound)

	_, err := store.GetTransaction(ctx, "txn-1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteStorage_ImportTransactions(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	existing := testTransaction("txn-1", "income", "1", "2024-01-05", 10)
	require.NoError(t, store.CreateTransaction(ctx, &existing))

	batch := []model.Transaction{
		testTransaction("txn-1", "income", "1", "2024-01-05", 10),
		testTransaction("txn-2", "expense", "1", "2024-01-06", 3),
		testTransaction("txn-3", "income", "1", "2024-01-07", 4),
	}

	inserted, err := store.ImportTransactions(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	all, err := store.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = store.ImportTransactions(ctx, []model.Transaction{
		testTransaction("txn-9", "income", "404", "2024-01-07", 4),
	})
	assert.ErrorIs(t, err, common.ErrUnknownCategory)
}
