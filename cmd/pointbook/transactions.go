package main

import (
	"fmt"
	"time"

	"github.com/Veraticus/pointbook/internal/cli"
	"github.com/Veraticus/pointbook/internal/common"
	"github.com/Veraticus/pointbook/internal/ledger"
	"github.com/Veraticus/pointbook/internal/model"
	"github.com/Veraticus/pointbook/internal/notify"
	"github.com/spf13/cobra"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transactions", "records"},
		Short:   "Manage ledger records",
		Long:    `List, add, edit, and delete income and expense records.`,
	}

	cmd.AddCommand(listTransactionsCmd())
	cmd.AddCommand(addTransactionCmd())
	cmd.AddCommand(editTransactionCmd())
	cmd.AddCommand(deleteTransactionCmd())

	return cmd
}

func listTransactionsCmd() *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initLedger(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			summary, categories, err := loadSummary(ctx, store, ledger.ParseFilter(filter), time.Now())
			if err != nil {
				return friendly(err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.SubtitleStyle.Render(summary.Filter.Label(categories)))
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTransactions(summary.OrderedTransactions, categories))
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "all", `category id to filter by, or "all"`)

	return cmd
}

// transactionFlags are shared by add and edit.
type transactionFlags struct {
	kind     string
	category string
	amount   string
	date     string
	note     string
}

func (f *transactionFlags) register(cmd *cobra.Command, defaults bool) {
	kindDefault, categoryDefault := "", ""
	if defaults {
		kindDefault, categoryDefault = string(model.TransactionTypeIncome), model.DefaultCategoryID
	}
	cmd.Flags().StringVarP(&f.kind, "type", "t", kindDefault, "income or expense")
	cmd.Flags().StringVarP(&f.category, "category", "c", categoryDefault, "category id")
	cmd.Flags().StringVarP(&f.amount, "amount", "a", "", "positive quantity")
	cmd.Flags().StringVarP(&f.date, "date", "d", "", "date as YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&f.note, "note", "m", "", "free text note")
}

// apply copies the flags that were set onto txn.
func (f *transactionFlags) apply(cmd *cobra.Command, txn *model.Transaction) error {
	if cmd.Flags().Changed("type") || txn.Type == "" {
		kind, err := model.ParseTransactionType(f.kind)
		if err != nil {
			return common.NewUserError("--type must be income or expense", err)
		}
		txn.Type = kind
	}
	if cmd.Flags().Changed("category") || txn.CategoryID == "" {
		txn.CategoryID = f.category
	}
	if cmd.Flags().Changed("amount") {
		amount, err := parseAmount(f.amount)
		if err != nil {
			return err
		}
		txn.Amount = amount
	}
	if cmd.Flags().Changed("date") {
		date, err := model.ParseDate(f.date)
		if err != nil {
			return common.NewUserError("--date must look like 2024-01-31", err)
		}
		txn.Date = date
	}
	if cmd.Flags().Changed("note") {
		txn.Note = f.note
	}
	return nil
}

func addTransactionCmd() *cobra.Command {
	var flags transactionFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a record",
		Example: `  pointbook tx add --type income --amount 25 --note "weekly chores"
  pointbook tx add -t expense -a 10 -c 3 -d 2024-01-31`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			now := time.Now()
			txn := model.Transaction{Date: model.DateOnly(now.Year(), now.Month(), now.Day())}
			if err := flags.apply(cmd, &txn); err != nil {
				return err
			}

			store, err := initLedger(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.CreateTransaction(ctx, &txn); err != nil {
				return friendly(err)
			}

			announce(ctx, notify.NewChangeMessage(notify.EntityTransaction, notify.ActionCreated, txn.ID))
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
				fmt.Sprintf("Added %s %s (%s)", txn.Type, cli.FormatAmount(txn), txn.ID)))
			return nil
		},
	}

	flags.register(cmd, true)
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func editTransactionCmd() *cobra.Command {
	var flags transactionFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initLedger(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			txn, err := store.GetTransaction(ctx, args[0])
			if err != nil {
				return friendly(err)
			}
			if err := flags.apply(cmd, txn); err != nil {
				return err
			}

			if err := store.UpdateTransaction(ctx, txn); err != nil {
				return friendly(err)
			}

			announce(ctx, notify.NewChangeMessage(notify.EntityTransaction, notify.ActionUpdated, txn.ID))
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated %s", txn.ID)))
			return nil
		},
	}

	flags.register(cmd, false)

	return cmd
}

func deleteTransactionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initLedger(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteTransaction(ctx, args[0]); err != nil {
				return friendly(err)
			}

			announce(ctx, notify.NewChangeMessage(notify.EntityTransaction, notify.ActionDeleted, args[0]))
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted %s", args[0])))
			return nil
		},
	}
}
