package main

import (
	"fmt"

	"github.com/Veraticus/pointbook/internal/cli"
	"github.com/Veraticus/pointbook/internal/model"
	"github.com/Veraticus/pointbook/internal/notify"
	"github.com/spf13/cobra"
)

const defaultCategoryColor = "#74B9FF"

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category", "cat"},
		Short:   "Manage categories",
		Long:    `List, add, update, and delete the categories records are grouped into.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(updateCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initLedger(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			categories, err := store.ListCategories(ctx)
			if err != nil {
				return friendly(fmt.Errorf("failed to get categories: %w", err))
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderCategories(categories))
			return nil
		},
	}
}

func addCategoryCmd() *cobra.Command {
	var color string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initLedger(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			category, err := store.CreateCategory(ctx, args[0], color)
			if err != nil {
				return friendly(err)
			}

			announce(ctx, notify.NewChangeMessage(notify.EntityCategory, notify.ActionCreated, category.ID))
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
				fmt.Sprintf("Created category %q with id %s", category.Name, category.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&color, "color", "c", defaultCategoryColor, "hex color such as #A1B2C3")

	return cmd
}

func updateCategoryCmd() *cobra.Command {
	var (
		name  string
		color string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename or recolor a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if name == "" && color == "" {
				return fmt.Errorf("nothing to update: pass --name and/or --color")
			}

			store, err := initLedger(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			categories, err := store.ListCategories(ctx)
			if err != nil {
				return friendly(err)
			}
			current, ok := model.IndexCategories(categories)[args[0]]
			if !ok {
				return fmt.Errorf("category %s not found", args[0])
			}

			if name != "" {
				current.Name = name
			}
			if color != "" {
				current.Color = color
			}

			if err := store.UpdateCategory(ctx, &current); err != nil {
				return friendly(err)
			}

			announce(ctx, notify.NewChangeMessage(notify.EntityCategory, notify.ActionUpdated, current.ID))
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated category %s", current.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&color, "color", "", "new hex color")

	return cmd
}

func deleteCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category",
		Long: `Delete a category. The default category (id 1) cannot be deleted.
Records in the deleted category are kept and shown as uncategorized.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initLedger(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteCategory(ctx, args[0]); err != nil {
				return friendly(err)
			}

			announce(ctx, notify.NewChangeMessage(notify.EntityCategory, notify.ActionDeleted, args[0]))
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted category %s", args[0])))
			return nil
		},
	}
}
