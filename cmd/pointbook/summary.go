package main

import (
	"fmt"
	"io"

	"github.com/Veraticus/pointbook/internal/cli"
	"github.com/Veraticus/pointbook/internal/ledger"
	"github.com/Veraticus/pointbook/internal/model"
	"github.com/spf13/cobra"
)

func summaryCmd() *cobra.Command {
	var (
		filter string
		now    string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show balance, this month's totals and budget progress",
		Long: `Summarize the ledger for a filter. The balance and this month's totals
cover the filtered records; the budget section always covers every record.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			ref, err := parseNow(now)
			if err != nil {
				return err
			}

			store, err := initLedger(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			summary, categories, err := loadSummary(ctx, store, ledger.ParseFilter(filter), ref)
			if err != nil {
				return friendly(err)
			}

			printSummary(cmd.OutOrStdout(), summary, categories, limit)
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "all", `category id to filter by, or "all"`)
	cmd.Flags().StringVar(&now, "now", "", "reference date for this month's figures (YYYY-MM-DD)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of records to list (0 for all)")

	return cmd
}

func printSummary(w io.Writer, summary ledger.Summary, categories model.CategoryIndex, limit int) {
	txns := summary.OrderedTransactions
	if limit > 0 && len(txns) > limit {
		txns = txns[:limit]
	}

	fmt.Fprintln(w, cli.RenderBox(cli.ChartIcon+" Summary", cli.RenderSummary(summary, categories)))
	fmt.Fprintln(w)
	fmt.Fprintln(w, cli.RenderTransactions(txns, categories))
	if len(txns) < len(summary.OrderedTransactions) {
		fmt.Fprintln(w, cli.SubtleStyle.Render(
			fmt.Sprintf("showing %d of %d records", len(txns), len(summary.OrderedTransactions))))
	}
}
