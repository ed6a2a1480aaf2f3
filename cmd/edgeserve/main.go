package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sagarc03/edgeserve/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "edgeserve",
	Short:   "Edge file server with display names, response caching and download notifications",
	Long: `edgeserve serves files from a blob store at the edge. Responses carry a
download name from a key-value store, are cached for 30 minutes, and every
successful download is announced to a message broker.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFiles, _ := cmd.Flags().GetStringSlice("env-file")
		if err := config.LoadDotEnv(envFiles...); err != nil {
			return err
		}

		configFiles, _ := cmd.Flags().GetStringSlice("config")
		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringSlice("config", nil, "config file paths, merged left to right (default: ./config.yaml)")
	flags.StringSlice("env-file", nil, "env files to load before reading config (default: ./.env if present)")
	flags.String("blob-type", "", "blob store: filesystem, s3 (env: EDGESERVE_BLOB_TYPE)")
	flags.String("blob-path", "", "filesystem blob store root (env: EDGESERVE_BLOB_PATH)")
	flags.String("names-type", "", "display name store: map, redis, sqlite, postgres (env: EDGESERVE_NAMES_TYPE)")
	flags.String("names-dsn", "", "display name database DSN (env: EDGESERVE_NAMES_DATABASE_DSN)")
	flags.String("log-level", "", "log level: debug, info, warn, error (env: EDGESERVE_LOG_LEVEL)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
