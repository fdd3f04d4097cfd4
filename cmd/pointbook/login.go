package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/pointbook/internal/api"
	"github.com/Veraticus/pointbook/internal/cli"
	"github.com/Veraticus/pointbook/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func loginCmd() *cobra.Command {
	var (
		username string
		save     bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the ledger API and store the token",
		Long: `Exchange a username and password for an API token. The password is read
from POINTBOOK_PASSWORD or, when unset, from the first line of stdin.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			apiCfg, err := config.LoadAPIConfig(viper.GetViper())
			if err != nil {
				return err
			}

			password := os.Getenv("POINTBOOK_PASSWORD")
			if password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = strings.TrimSpace(line)
			}

			client, err := api.NewClient(apiCfg)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			token, err := client.Login(ctx, username, password)
			if err != nil {
				return friendly(err)
			}

			if !save {
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			}

			path, err := saveToken(token)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Logged in; token saved to "+path))
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "account name")
	cmd.Flags().BoolVar(&save, "save", true, "store the token in the config file")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

// saveToken writes api.token into the active config file, creating one in
// the default location when none exists.
func saveToken(token string) (string, error) {
	viper.Set("api.token", token)

	path := viper.ConfigFileUsed()
	if path == "" {
		path = filepath.Join(config.DefaultConfigDir(), "config.yaml")
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return "", fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := viper.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("failed to save token: %w", err)
	}
	return path, nil
}
