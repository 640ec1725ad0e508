package cli

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

func newSendCmd() *cobra.Command {
	var attach []string

	cmd := &cobra.Command{
		Use:   "send [message]",
		Short: "Send one message to the assistant and print the reply",
		Args:  cobra.MinimumNArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if strings.TrimSpace(text) == "" && len(attach) == 0 {
				return fmt.Errorf("nothing to send: provide a message or --attach")
			}

			app, err := buildApp()
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sess, err := app.sessions.EnsureSession(ctx)
			if err != nil {
				return err
			}

			files, err := openAttachments(attach)
			if err != nil {
				return err
			}
			defer closeAttachments(files)

			result, err := app.orch.SendTurn(ctx, sess.ID, text, files)
			if err != nil {
				return err
			}
			if result == nil {
				return nil
			}

			renderTurn(result)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&attach, "attach", nil, "file to attach (repeatable)")

	return cmd
}
