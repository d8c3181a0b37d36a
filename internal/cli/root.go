// Package cli defines the iqama command tree.
package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/iqama/internal/app"
	"github.com/five82/iqama/internal/config"
)

type globalFlags struct {
	configPath string
	prefsPath  string
	envFile    string
	debug      bool
}

func (g *globalFlags) options(cmd *cobra.Command) app.Options {
	return app.Options{
		ConfigPath: g.configPath,
		PrefsPath:  g.prefsPath,
		Debug:      g.debug,
		Stderr:     cmd.ErrOrStderr(),
	}
}

// NewRootCmd builds the iqama command. With no subcommand it opens the
// editor.
func NewRootCmd(ctx context.Context) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "iqama",
		Short: "Edit and sync masjid prayer times",
		Long: `iqama keeps the prayer times of a few masjids in a terminal form.
Edits are saved locally as you type and pushed to a shared record when a
remote is configured (IQAMA_REMOTE_URL, IQAMA_REMOTE_KEY).`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadEnvFile(flags.envFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(ctx, flags.options(cmd))
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	pf.StringVar(&flags.prefsPath, "prefs", "", "preferences file (default ~/.config/iqama/prefs.toml)")
	pf.StringVar(&flags.envFile, "env-file", "", "dotenv file with IQAMA_* overrides (default .env)")
	pf.BoolVar(&flags.debug, "debug", false, "log at debug level")

	root.AddCommand(
		newEditCmd(ctx, flags),
		newShowCmd(flags),
		newSyncCmd(ctx, flags),
		newServeCmd(ctx, flags),
		newLogsCmd(flags),
	)
	return root
}

func newEditCmd(ctx context.Context, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open the prayer times editor (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(ctx, flags.options(cmd))
		},
	}
}

func newShowCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored times and the next prayer per masjid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Show(flags.options(cmd), time.Now(), cmd.OutOrStdout())
		},
	}
}

func newSyncCmd(ctx context.Context, flags *globalFlags) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch the shared record, or seed it from the local copy",
		Long: `sync runs the same startup policy as the editor: when the remote
holds a record it replaces the local copy, otherwise the local copy is pushed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			syncCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return app.Sync(syncCtx, flags.options(cmd), cmd.OutOrStdout())
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "give up after this long")
	return cmd
}

func newServeCmd(ctx context.Context, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run a self-hosted remote store",
		Long: `serve answers the REST calls the editor makes, storing records in
memory or in redis when serve.redis_addr is configured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Serve(ctx, flags.options(cmd))
		},
	}
}

func newLogsCmd(flags *globalFlags) *cobra.Command {
	var lines int
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the end of the iqama log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Logs(flags.options(cmd), lines, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "number of lines to show (0 for all)")
	return cmd
}
