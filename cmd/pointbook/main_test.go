package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/pointbook/internal/common"
	"github.com/Veraticus/pointbook/internal/ledger"
	"github.com/Veraticus/pointbook/internal/model"
	"github.com/Veraticus/pointbook/internal/notify"
	"github.com/Veraticus/pointbook/internal/ofx"
	"github.com/Veraticus/pointbook/internal/service"
	"github.com/Veraticus/pointbook/internal/sheets"
	"github.com/Veraticus/pointbook/internal/snapshot"
	"github.com/Veraticus/pointbook/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findSubcommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, sub := range cmd.Commands() {
		if sub.Name() == name {
			return sub
		}
	}
	return nil
}

func TestRootCommands(t *testing.T) {
	for _, name := range []string{
		"summary", "categories", "tx", "budget", "import-ofx",
		"export", "dashboard", "watch", "login", "migrate", "version",
	} {
		t.Run(name, func(t *testing.T) {
			assert.NotNil(t, findSubcommand(rootCmd, name), "%s command should exist", name)
		})
	}
}

func TestCategoriesCmd(t *testing.T) {
	cmd := categoriesCmd()
	for _, name := range []string{"list", "add", "update", "delete"} {
		assert.NotNil(t, findSubcommand(cmd, name), "%s subcommand should exist", name)
	}

	add := findSubcommand(cmd, "add")
	flag := add.Flag("color")
	require.NotNil(t, flag)
	assert.Equal(t, defaultCategoryColor, flag.DefValue)
}

func TestTransactionsCmd(t *testing.T) {
	cmd := transactionsCmd()
	for _, name := range []string{"list", "add", "edit", "delete"} {
		assert.NotNil(t, findSubcommand(cmd, name), "%s subcommand should exist", name)
	}

	add := findSubcommand(cmd, "add")
	assert.Equal(t, "income", add.Flag("type").DefValue)
	assert.Equal(t, model.DefaultCategoryID, add.Flag("category").DefValue)

	edit := findSubcommand(cmd, "edit")
	assert.Empty(t, edit.Flag("type").DefValue)
}

func TestSummaryCmdFlags(t *testing.T) {
	cmd := summaryCmd()
	assert.Equal(t, "all", cmd.Flag("filter").DefValue)
	assert.NotNil(t, cmd.Flag("now"))
}

func TestTransactionFlags_Apply(t *testing.T) {
	tests := []struct {
		check   func(t *testing.T, txn model.Transaction)
		name    string
		args    []string
		wantErr bool
	}{
		{
			name: "all fields",
			args: []string{"--type", "expense", "--amount", "12.5", "--category", "3", "--date", "2024-02-29", "--note", "snacks"},
			check: func(t *testing.T, txn model.Transaction) {
				t.Helper()
				assert.Equal(t, model.TransactionTypeExpense, txn.Type)
				assert.True(t, txn.Amount.Equal(decimal.RequireFromString("12.5")))
				assert.Equal(t, "3", txn.CategoryID)
				assert.Equal(t, "2024-02-29", txn.Date.Format(model.DateLayout))
				assert.Equal(t, "snacks", txn.Note)
			},
		},
		{
			name: "defaults",
			args: []string{"--amount", "1"},
			check: func(t *testing.T, txn model.Transaction) {
				t.Helper()
				assert.Equal(t, model.TransactionTypeIncome, txn.Type)
				assert.Equal(t, model.DefaultCategoryID, txn.CategoryID)
			},
		},
		{name: "bad type", args: []string{"--type", "gift", "--amount", "1"}, wantErr: true},
		{name: "bad amount", args: []string{"--amount", "ten"}, wantErr: true},
		{name: "bad date", args: []string{"--amount", "1", "--date", "31/01/2024"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var flags transactionFlags
			cmd := &cobra.Command{Use: "test"}
			flags.register(cmd, true)
			require.NoError(t, cmd.ParseFlags(tt.args))

			var txn model.Transaction
			err := flags.apply(cmd, &txn)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, txn)
		})
	}
}

func TestParseNow(t *testing.T) {
	got, err := parseNow("2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, model.DateOnly(2024, time.January, 31), got)

	got, err = parseNow("")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), got, time.Minute)

	_, err = parseNow("yesterday")
	assert.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	got, err := parseAmount(" 42.25 ")
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("42.25")))

	_, err = parseAmount("lots")
	assert.ErrorIs(t, err, common.ErrInvalidAmount)
}

func TestFriendly(t *testing.T) {
	assert.NoError(t, friendly(nil))

	err := friendly(common.ErrUnauthorized)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
	assert.Contains(t, err.Error(), "pointbook login")

	plain := errors.New("disk full")
	assert.Equal(t, plain, friendly(plain))
}

func importFixture(id string, amount int64) model.Transaction {
	return model.Transaction{
		ID:         id,
		Date:       model.DateOnly(2024, time.January, 15),
		Type:       model.TransactionTypeExpense,
		CategoryID: model.DefaultCategoryID,
		Amount:     decimal.NewFromInt(amount),
	}
}

// ledgerOnly hides the bulk import method so the per-record path is used.
type ledgerOnly struct {
	service.Ledger
}

func TestImportTransactions(t *testing.T) {
	ctx := context.Background()
	batch := []model.Transaction{importFixture("ofx-1234-A1", 10), importFixture("ofx-1234-A2", 20)}

	t.Run("bulk", func(t *testing.T) {
		store := testutil.SetupTestDB(t, nil).Storage
		n, err := importTransactions(ctx, store, batch, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		n, err = importTransactions(ctx, store, batch, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("per record", func(t *testing.T) {
		store := testutil.SetupTestDB(t, nil).Storage
		require.NoError(t, store.CreateTransaction(ctx, &batch[0]))

		n, err := importTransactions(ctx, ledgerOnly{store}, batch, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		all, err := store.ListTransactions(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("empty", func(t *testing.T) {
		n, err := importTransactions(ctx, nil, nil, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestExpandFilesAndParse(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.ofx")
	require.NoError(t, os.WriteFile(path, []byte("not an ofx file"), 0o600))

	_, err := expandFiles([]string{filepath.Join(dir, "*.qfx")})
	assert.Error(t, err)

	files, err := expandFiles([]string{filepath.Join(dir, "*.ofx")})
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)

	_, err = parseStatements(context.Background(), ofx.NewParser(""), files)
	assert.ErrorContains(t, err, "bad.ofx")
}

func TestExportReport(t *testing.T) {
	ctx := context.Background()
	store := testutil.SetupTestDB(t, nil).Storage
	txn := importFixture("", 15)
	txn.Type = model.TransactionTypeIncome
	require.NoError(t, store.CreateTransaction(ctx, &txn))
	require.NoError(t, store.SetBudget(ctx, decimal.NewFromInt(30)))

	exporter := sheets.NewMockExporter()
	now := model.DateOnly(2024, time.January, 20)
	require.NoError(t, exportReport(ctx, store, exporter, ledger.FilterAll, now))

	require.Equal(t, 1, exporter.Calls())
	report := exporter.Reports[0]
	assert.Equal(t, now, report.GeneratedAt)
	assert.True(t, report.Summary.Balance.Equal(decimal.NewFromInt(15)))
	assert.Equal(t, ledger.StatusBelowTarget, report.Summary.Status)
	assert.Equal(t, "General", report.Categories[model.DefaultCategoryID].Name)

	exporter.ExportFunc = func(context.Context, sheets.Report) error { return errors.New("quota") }
	assert.Error(t, exportReport(ctx, store, exporter, ledger.FilterAll, now))
}

func TestWatcherRefresh(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t, func(b *testutil.Builder) {
		b.WithBasicCategories().WithExpense("txn-7", testutil.CategoryTreats, "2024-01-15", 5)
	})
	store := db.Storage

	var out bytes.Buffer
	w := newWatcher(snapshot.NewReloader(store, snapshot.NewStore()), ledger.FilterAll, &out)
	w.now = func() time.Time { return model.DateOnly(2024, time.January, 20) }

	require.NoError(t, w.refresh(ctx, nil))
	assert.Contains(t, out.String(), "txn-7")

	out.Reset()
	require.NoError(t, w.refresh(ctx, notify.NewChangeMessage(notify.EntityTransaction, notify.ActionCreated, "txn-7")))
	assert.Contains(t, out.String(), "transaction txn-7 created")
	assert.Contains(t, out.String(), "Deficit month")
	assert.Equal(t, 1, strings.Count(out.String(), "Summary"))
}

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	cmd := versionCmd()
	cmd.SetOut(&out)
	cmd.Run(cmd, nil)
	assert.Equal(t, "pointbook dev\n", out.String())
}
