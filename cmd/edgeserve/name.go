package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sagarc03/edgeserve"
	"github.com/sagarc03/edgeserve/config"
	"github.com/sagarc03/edgeserve/keybackend"
)

var nameCmd = &cobra.Command{
	Use:   "name",
	Short: "Manage display names",
	Long:  `Read and write the download names served in Content-Disposition headers.`,
}

var nameSetCmd = &cobra.Command{
	Use:   "set <key> <name>",
	Short: "Set the display name of an object",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.FromContext(cmd.Context())
		if err != nil {
			return err
		}
		return setDisplayName(cmd, cfg.Names, args[0], args[1])
	},
}

var nameGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the display name of an object",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.FromContext(cmd.Context())
		if err != nil {
			return err
		}

		names, closeNames, err := keybackend.NewNameStore(cmd.Context(), cfg.Names)
		if err != nil {
			return err
		}
		defer func() { _ = closeNames() }()

		name, err := names.Get(cmd.Context(), args[0])
		if errors.Is(err, edgeserve.ErrNotFound) {
			return fmt.Errorf("no display name for %s", args[0])
		}
		if err != nil {
			return fmt.Errorf("get display name: %w", err)
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), name)
		return err
	},
}

func init() {
	nameCmd.AddCommand(nameSetCmd, nameGetCmd)
	rootCmd.AddCommand(nameCmd)
}
