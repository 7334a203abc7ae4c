package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/five82/shelf/internal/app"
)

type rootFlags struct {
	configPath string
	prefsPath  string
	apiURL     string
	debug      bool
}

func (f *rootFlags) options(logToStderr bool) app.Options {
	return app.Options{
		ConfigPath:  f.configPath,
		PrefsPath:   f.prefsPath,
		APIURL:      f.apiURL,
		Debug:       f.debug,
		LogToStderr: logToStderr,
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "shelf: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "shelf",
		Short: "Terminal client for the Intelligent Books library",
		Long: `shelf browses and manages a book catalog, reviews, uploaded documents and
AI summaries served by the library REST API.

Run without arguments to start the interactive interface.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), flags.options(false))
		},
	}
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default ~/.config/shelf/config.toml)")
	cmd.PersistentFlags().StringVar(&flags.prefsPath, "prefs", "", "preferences file (default ~/.config/shelf/prefs.toml)")
	cmd.PersistentFlags().StringVar(&flags.apiURL, "api-url", "", "override api_url")
	cmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "log at debug level")

	cmd.AddCommand(
		newLoginCmd(flags),
		newLogoutCmd(flags),
		newWhoamiCmd(flags),
		newWatchCmd(flags),
		newLogsCmd(flags),
	)
	return cmd
}
