package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/voxnote/voxnote/internal/model"
)

func newPrefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Preference commands",
	}

	cmd.AddCommand(newPrefsShowCmd())
	cmd.AddCommand(newPrefsSetCmd())

	return cmd
}

func newPrefsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the signed-in account's preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := app.Accounts.RequireSession()
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(session.Preferences)
			return nil
		},
	}
}

func newPrefsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set one preference, keeping the others",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, raw := args[0], args[1]

			// Booleans stay booleans; everything else is a string.
			var value any = raw
			if parsed, err := strconv.ParseBool(raw); err == nil {
				value = parsed
			}

			merged, err := app.Accounts.UpdatePreferences(cmd.Context(), model.Preferences{key: value})
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(merged)
			return nil
		},
	}
}
