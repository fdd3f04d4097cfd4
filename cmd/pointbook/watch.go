package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Veraticus/pointbook/internal/cli"
	"github.com/Veraticus/pointbook/internal/common"
	"github.com/Veraticus/pointbook/internal/config"
	"github.com/Veraticus/pointbook/internal/ledger"
	"github.com/Veraticus/pointbook/internal/model"
	"github.com/Veraticus/pointbook/internal/notify"
	"github.com/Veraticus/pointbook/internal/snapshot"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func watchCmd() *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reprint the summary whenever the ledger changes",
		Long: `Subscribe to ledger change notifications on the configured RabbitMQ
broker (notify.url) and print a fresh summary after each change.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.LoadNotifyConfig(viper.GetViper())
			if !cfg.Enabled() {
				return fmt.Errorf("%w: notify.url is required to watch for changes", common.ErrMissingConfig)
			}

			ctx := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Stopped watching").HandleInterrupts(cmd.Context())

			store, err := initLedger(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			client, err := notify.NewClient(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			w := newWatcher(snapshot.NewReloader(store, snapshot.NewStore()), ledger.ParseFilter(filter), cmd.OutOrStdout())
			if err := w.refresh(ctx, nil); err != nil {
				return friendly(err)
			}

			err = client.Consume(ctx, w.refresh)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "all", `category id to filter by, or "all"`)

	return cmd
}

// watcher reloads the snapshot and reprints the summary on each change.
type watcher struct {
	reloader *snapshot.Reloader
	out      io.Writer
	now      func() time.Time
	filter   ledger.Filter
}

func newWatcher(reloader *snapshot.Reloader, filter ledger.Filter, out io.Writer) *watcher {
	return &watcher{reloader: reloader, filter: filter, out: out, now: time.Now}
}

func (w *watcher) refresh(ctx context.Context, change *notify.ChangeMessage) error {
	snap, err := w.reloader.Reload(ctx)
	if err != nil {
		return err
	}

	if change != nil {
		slog.Info("ledger changed", "change", change.String())
		fmt.Fprintln(w.out, cli.SubtleStyle.Render(
			fmt.Sprintf("%s  %s", change.Timestamp.Local().Format(time.Kitchen), change.String())))
	}

	summary := w.reloader.Store().Summary(w.filter, w.now())
	printSummary(w.out, summary, model.IndexCategories(snap.Categories), 10)
	return nil
}
