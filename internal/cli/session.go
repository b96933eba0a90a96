package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Session commands",
	}

	cmd.AddCommand(newSessionWatchCmd())

	return cmd
}

func newSessionWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Keep the session fresh until interrupted",
		Long: `watch runs the session janitor in the foreground: while it runs,
the active session's activity timestamp is refreshed periodically,
and a session idle past the timeout is signed out.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.Accounts.RequireSession(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Println("Watching session; press Ctrl-C to stop.")
			app.Janitor.Run(ctx)
			return nil
		},
	}
}
