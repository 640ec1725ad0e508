package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nianverse/storechat/internal/config"
	"github.com/nianverse/storechat/internal/version"
)

func newStatusCmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show storechat status and collection progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("Storechat %s (commit %s)\n\n", version.Version, version.Commit)

			fmt.Printf("Config:  %s\n", paths.Config)
			fmt.Printf("Data:    %s\n", paths.Data)
			fmt.Printf("Logs:    %s\n", paths.Logs)
			fmt.Println()

			app, err := buildApp()
			if err != nil {
				return err
			}
			defer app.Close()

			fmt.Printf("API:     %s (timeout %ds)\n", app.cfg.API.BaseURL, app.cfg.API.TimeoutSeconds)
			if app.cfg.Upload.URL != "" {
				fmt.Printf("Upload:  %s (folder prefix %s)\n", app.cfg.Upload.URL, app.cfg.Upload.FolderPrefix)
			} else {
				fmt.Println("Upload:  (not configured)")
			}

			sess, ok := app.sessions.Current()
			if !ok {
				fmt.Println("Session: (none)")
			} else {
				fmt.Printf("Session: %s, expires in %s\n", sess.ID, time.Until(sess.ExpiresAt).Round(time.Minute))
			}

			issues := config.Validate(&app.cfg)
			if len(issues) > 0 {
				fmt.Printf("\nValidation issues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Printf("  - %s: %s\n", issue.Path, issue.Message)
				}
			}

			if refresh {
				if !ok {
					return fmt.Errorf("no active session to refresh")
				}

				ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				result, err := app.orch.Validate(ctx, sess.ID, true)
				if err != nil {
					return err
				}
				fmt.Println()
				renderValidation(result)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "ask the server for current collection progress")

	return cmd
}
