package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/pointbook/internal/cli"
	"github.com/Veraticus/pointbook/internal/config"
	"github.com/Veraticus/pointbook/internal/ledger"
	"github.com/Veraticus/pointbook/internal/service"
	"github.com/Veraticus/pointbook/internal/sheets"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func exportCmd() *cobra.Command {
	var (
		filter        string
		spreadsheetID string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the summary and records to Google Sheets",
		Long: `Write the current summary and the ordered records to a Google Sheets
spreadsheet. Configure either sheets.service_account_path or the OAuth
client settings (sheets.client_id, sheets.client_secret, sheets.refresh_token).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			sheetsCfg, err := config.LoadSheetsConfig(viper.GetViper())
			if err != nil {
				return err
			}
			if spreadsheetID != "" {
				sheetsCfg.SpreadsheetID = spreadsheetID
			}

			writer, err := sheets.NewWriter(ctx, *sheetsCfg, slog.Default())
			if err != nil {
				return err
			}

			store, err := initLedger(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := exportReport(ctx, store, writer, ledger.ParseFilter(filter), time.Now()); err != nil {
				return friendly(err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Exported to Google Sheets"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "all", `category id to filter by, or "all"`)
	cmd.Flags().StringVar(&spreadsheetID, "spreadsheet-id", "", "existing spreadsheet to write to")

	return cmd
}

func exportReport(ctx context.Context, src service.Source, exporter sheets.Exporter, filter ledger.Filter, now time.Time) error {
	summary, categories, err := loadSummary(ctx, src, filter, now)
	if err != nil {
		return err
	}

	return exporter.Export(ctx, sheets.Report{
		GeneratedAt: now,
		Categories:  categories,
		Summary:     summary,
	})
}
