package main

import (
	"fmt"

	"github.com/Veraticus/pointbook/internal/cli"
	"github.com/Veraticus/pointbook/internal/notify"
	"github.com/spf13/cobra"
)

func budgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Show or set the monthly net flow target",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the monthly target",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initLedger(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			budget, err := store.GetBudget(ctx)
			if err != nil {
				return friendly(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Monthly target: %s\n", cli.BoldStyle.Render(cli.FormatPoints(budget.Amount)))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <amount>",
		Short: "Set the monthly target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}

			store, err := initLedger(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.SetBudget(ctx, amount); err != nil {
				return friendly(err)
			}

			announce(ctx, notify.NewChangeMessage(notify.EntityBudget, notify.ActionUpdated, ""))
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Monthly target set to "+cli.FormatPoints(amount)))
			return nil
		},
	})

	return cmd
}
