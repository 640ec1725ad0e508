package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Print the conversation history for the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}
			defer app.Close()

			sess, ok := app.sessions.Current()
			if !ok {
				return fmt.Errorf("no active session")
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			msgs, err := app.orch.LoadHistory(ctx, sess.ID)
			if err != nil {
				faintColor.Println("(could not reach the server, showing local history)")
			}
			if len(msgs) == 0 {
				fmt.Println("No messages yet.")
				return nil
			}
			for _, msg := range msgs {
				renderMessage(msg)
			}
			return nil
		},
	}
}
