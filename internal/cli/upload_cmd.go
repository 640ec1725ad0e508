package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newUploadCmd() *cobra.Command {
	var folder string

	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload files to storage without sending a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}
			defer app.Close()

			files, err := openAttachments(args)
			if err != nil {
				return err
			}
			defer closeAttachments(files)

			if folder == "" {
				if sess, ok := app.sessions.Current(); ok {
					folder = app.cfg.Upload.FolderPrefix + "_" + sess.ID
				} else {
					folder = app.cfg.Upload.FolderPrefix + "_DEFAULT"
				}
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			results := app.uploader.UploadMany(ctx, files, folder)

			failed := 0
			for i, res := range results {
				if res.Success {
					fmt.Printf("%s: %s\n", files[i].Name, res.URL)
				} else {
					failed++
					fmt.Printf("%s: FAILED (%s)\n", files[i].Name, res.Error)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d uploads failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "storage folder name (default derived from the session)")

	return cmd
}
