package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show usage statistics for the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := app.Accounts.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if stats == nil {
				fmt.Println("No active session.")
				return nil
			}

			out := NewOutput(cfg.Output)
			out.Print(stats)
			return nil
		},
	}
}
