package main

import (
	"context"
	"log/slog"

	"github.com/Veraticus/pointbook/internal/config"
	"github.com/Veraticus/pointbook/internal/ledger"
	"github.com/Veraticus/pointbook/internal/notify"
	"github.com/Veraticus/pointbook/internal/snapshot"
	"github.com/Veraticus/pointbook/internal/tui"
	"github.com/Veraticus/pointbook/internal/tui/themes"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func dashboardCmd() *cobra.Command {
	var (
		filter string
		theme  string
	)

	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"ui"},
		Short:   "Open the interactive dashboard",
		Long: `Open a full screen view of the ledger. Use left and right to switch
between categories and r to reload. When notify.url is configured the
dashboard reloads by itself whenever another process changes the ledger.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			store, err := initLedger(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			opts := []tui.Option{
				tui.WithFilter(ledger.ParseFilter(filter)),
				tui.WithTheme(themes.GetTheme(theme)),
			}

			if cfg := config.LoadNotifyConfig(viper.GetViper()); cfg.Enabled() {
				client, err := notify.NewClient(cfg)
				if err != nil {
					slog.Warn("live reload disabled", "error", err)
				} else {
					defer func() { _ = client.Close() }()
					changes := make(chan *notify.ChangeMessage)
					go func() {
						defer close(changes)
						_ = client.Consume(ctx, func(ctx context.Context, msg *notify.ChangeMessage) error {
							select {
							case changes <- msg:
								return nil
							case <-ctx.Done():
								return ctx.Err()
							}
						})
					}()
					opts = append(opts, tui.WithChanges(changes))
				}
			}

			return tui.Run(ctx, snapshot.NewReloader(store, snapshot.NewStore()), opts...)
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "all", `category id shown first, or "all"`)
	cmd.Flags().StringVar(&theme, "theme", "default", "color theme (default, catppuccin)")

	return cmd
}
