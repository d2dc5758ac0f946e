package main

import (
	"io"

	"github.com/spf13/cobra"
)

// options holds the persistent flags shared by every command.
type options struct {
	profile    string
	configDir  string
	configFile string

	out    io.Writer
	errOut io.Writer
}

// newRootCmd returns the quotekeeper command tree. Without a subcommand it
// runs the server.
func newRootCmd(out, errOut io.Writer) *cobra.Command {
	opts := &options{out: out, errOut: errOut}

	rootCmd := &cobra.Command{
		Use:   "quotekeeper",
		Short: "Keep, filter and sync a collection of quotes",
		Long: `quotekeeper stores quotes with categories, shows random ones, imports and
exports them as JSON and keeps the collection in step with a remote endpoint.
Without a subcommand it serves the HTTP API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.PersistentFlags().StringVar(&opts.profile, "profile", "", "Config profile (default $APP_ENVIRONMENT or local)")
	rootCmd.PersistentFlags().StringVar(&opts.configDir, "config-dir", "", "Directory holding base.yaml and profile files (default configs)")
	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Extra YAML config file applied after the profile")

	rootCmd.AddCommand(serveCmd(opts))
	rootCmd.AddCommand(randomCmd(opts))
	rootCmd.AddCommand(addCmd(opts))
	rootCmd.AddCommand(listCmd(opts))
	rootCmd.AddCommand(categoriesCmd(opts))
	rootCmd.AddCommand(exportCmd(opts))
	rootCmd.AddCommand(importCmd(opts))
	rootCmd.AddCommand(syncCmd(opts))
	rootCmd.AddCommand(versionCmd(opts))

	return rootCmd
}
