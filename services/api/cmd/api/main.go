package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	_ "go.uber.org/automaxprocs"

	"github.com/example/video-platform/internal/platform/config"
)

var dotenvFiles []string

var rootCmd = &cobra.Command{
	Use:   "api",
	Short: "Video platform API service",
	Long: `api serves the video platform's HTTP API and gRPC health endpoint.

Run without a subcommand to serve. "worker" drains queued video pipeline
events and "migrate" applies database migrations.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadDotEnv(dotenvFiles...)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context(), serveOptions{})
	},
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&dotenvFiles, "env-file", nil, "dotenv files to load (default .env)")
	rootCmd.AddCommand(newServeCmd(), newWorkerCmd(), newMigrateCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
