package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage the registration session",
	}

	cmd.AddCommand(newSessionShowCmd())
	cmd.AddCommand(newSessionNewCmd())
	cmd.AddCommand(newSessionClearCmd())

	return cmd
}

func newSessionShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}
			defer app.Close()

			sess, ok := app.sessions.Current()
			if !ok {
				fmt.Println("No active session.")
				return nil
			}
			fmt.Printf("Session: %s\n", sess.ID)
			fmt.Printf("Expires: %s (%s from now)\n",
				sess.ExpiresAt.Format(time.RFC3339),
				time.Until(sess.ExpiresAt).Round(time.Minute))
			return nil
		},
	}
}

func newSessionNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Discard the current session and create a fresh one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := app.sessions.Clear(); err != nil {
				return err
			}
			app.tracker.Reset()

			sess, err := app.sessions.EnsureSession(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Created session %s (expires %s)\n", sess.ID, sess.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}
}

func newSessionClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget the current session without creating a new one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.sessions.Clear(); err != nil {
				return err
			}
			app.tracker.Reset()
			fmt.Println("Session cleared.")
			return nil
		},
	}
}
