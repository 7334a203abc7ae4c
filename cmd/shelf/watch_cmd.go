package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/five82/shelf/internal/app"
	"github.com/five82/shelf/internal/library"
	"github.com/five82/shelf/internal/watch"
)

func newWatchCmd(flags *rootFlags) *cobra.Command {
	var (
		bookID int64
		ingest bool
	)
	cmd := &cobra.Command{
		Use:   "watch DIR",
		Short: "Upload documents dropped into a directory",
		Long: `Watches DIR and uploads every new file whose extension is listed in
watch_extensions. Files already in DIR are ignored. Requires a session
created with "shelf login". Stops on Ctrl-C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.Setup(flags.options(true))
			if err != nil {
				return err
			}
			defer env.Close()
			if !env.Session.IsAuthenticated() {
				return errors.New(`not signed in; run "shelf login" first`)
			}

			opts := watch.Options{
				Dir:        args[0],
				Extensions: env.Config.WatchExtensions,
				Ingest:     ingest,
				Logger:     env.Logger.Named("watch"),
				OnUpload: func(doc library.Document) {
					fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s (document %d)\n", doc.Filename, doc.ID)
				},
			}
			if cmd.Flags().Changed("book-id") {
				if bookID <= 0 {
					return fmt.Errorf("invalid --book-id %d", bookID)
				}
				opts.BookID = &bookID
			}

			w, err := watch.New(env.Client, opts)
			if err != nil {
				return err
			}
			env.Logger.Debug("watch started", zap.String("dir", args[0]))
			return w.Run(cmd.Context())
		},
	}
	cmd.Flags().Int64Var(&bookID, "book-id", 0, "link uploads to this book")
	cmd.Flags().BoolVar(&ingest, "ingest", false, "request ingestion after each upload")
	return cmd
}
