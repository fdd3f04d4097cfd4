package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/pointbook/internal/cli"
	"github.com/Veraticus/pointbook/internal/common"
	"github.com/Veraticus/pointbook/internal/model"
	"github.com/Veraticus/pointbook/internal/notify"
	"github.com/Veraticus/pointbook/internal/ofx"
	"github.com/Veraticus/pointbook/internal/service"
	"github.com/spf13/cobra"
)

// bulkImporter is implemented by backends that can insert many records at once.
type bulkImporter interface {
	ImportTransactions(ctx context.Context, transactions []model.Transaction) (int, error)
}

func importOFXCmd() *cobra.Command {
	var (
		category string
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import records from OFX/QFX statements",
		Long: `Import records from OFX or QFX files exported from a bank. Credits become
income and debits become expenses. Importing the same statement twice
does not create duplicates.`,
		Example: `  pointbook import-ofx ~/Downloads/checking_jan.qfx
  pointbook import-ofx --category 3 ~/Downloads/*.ofx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			files, err := expandFiles(args)
			if err != nil {
				return err
			}

			parsed, err := parseStatements(ctx, ofx.NewParser(category), files)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Parsed %d records from %d files", len(parsed), len(files))))

			if dryRun {
				fmt.Fprintln(out, cli.RenderTransactions(parsed, nil))
				return nil
			}

			store, err := initLedger(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			inserted, err := importTransactions(ctx, store, parsed, out)
			if err != nil {
				return friendly(err)
			}

			if inserted > 0 {
				msg := notify.NewChangeMessage(notify.EntityTransaction, notify.ActionImported, "")
				msg.Count = inserted
				announce(ctx, msg)
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d new records, %d already present",
				inserted, len(parsed)-inserted)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", model.DefaultCategoryID, "category id for imported records")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and preview without saving")

	return cmd
}

// expandFiles resolves glob patterns, keeping plain paths that exist.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		if _, err := os.Stat(pattern); err == nil {
			files = append(files, pattern)
		} else {
			slog.Warn("No files found matching pattern", "pattern", pattern)
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no files found to import")
	}
	return files, nil
}

// parseStatements parses every file, dropping records repeated across files.
func parseStatements(ctx context.Context, parser *ofx.Parser, files []string) ([]model.Transaction, error) {
	var all []model.Transaction
	seen := make(map[string]bool)

	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		txns, err := parser.ParseFile(ctx, f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}

		for _, txn := range txns {
			if seen[txn.ID] {
				continue
			}
			seen[txn.ID] = true
			all = append(all, txn)
		}
	}
	return all, nil
}

// importTransactions stores records whose ids are not yet in the ledger and
// returns how many were added.
func importTransactions(ctx context.Context, store service.Ledger, transactions []model.Transaction, w io.Writer) (int, error) {
	if len(transactions) == 0 {
		return 0, nil
	}

	if bulk, ok := store.(bulkImporter); ok {
		return bulk.ImportTransactions(ctx, transactions)
	}

	existing, err := store.ListTransactions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load existing records: %w", err)
	}
	present := make(map[string]bool, len(existing))
	for _, txn := range existing {
		present[txn.ID] = true
	}

	bar := cli.NewProgressBar(w, len(transactions), "Importing records...")
	inserted := 0
	for i := range transactions {
		txn := transactions[i]
		if !present[txn.ID] {
			err := store.CreateTransaction(ctx, &txn)
			switch {
			case errors.Is(err, common.ErrDuplicateEntry):
			case err != nil:
				return inserted, fmt.Errorf("failed to import %s: %w", txn.ID, err)
			default:
				inserted++
			}
		}
		if err := bar.Add(1); err != nil {
			slog.Debug("Failed to update progress bar", "error", err)
		}
	}
	return inserted, nil
}
