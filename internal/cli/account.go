package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account management commands",
	}

	cmd.AddCommand(newAccountRegisterCmd())
	cmd.AddCommand(newAccountLoginCmd())
	cmd.AddCommand(newAccountLogoutCmd())
	cmd.AddCommand(newAccountMeCmd())
	cmd.AddCommand(newAccountUpdateCmd())
	cmd.AddCommand(newAccountPasswdCmd())
	cmd.AddCommand(newAccountDeleteCmd())

	return cmd
}

func newAccountRegisterCmd() *cobra.Command {
	var name, email, pass string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := app.Accounts.Register(cmd.Context(), name, email, pass)
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(session)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newAccountLoginCmd() *cobra.Command {
	var email, pass string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with an existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := app.Accounts.Login(cmd.Context(), email, pass)
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(session)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newAccountLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear session data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Accounts.Logout(cmd.Context())
		},
	}
}

func newAccountMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := app.Accounts.RequireSession()
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(session)
			return nil
		},
	}
}

func newAccountUpdateCmd() *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update the signed-in account's name and email",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := app.Accounts.UpdateProfile(cmd.Context(), name, email)
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(session)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newAccountPasswdCmd() *cobra.Command {
	var current, next string

	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change the signed-in account's password",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Accounts.ChangePassword(cmd.Context(), current, next); err != nil {
				return err
			}

			fmt.Println("Password updated.")
			return nil
		},
	}

	cmd.Flags().StringVar(&current, "current", "", "Current password (required)")
	cmd.Flags().StringVar(&next, "new", "", "New password (required)")
	_ = cmd.MarkFlagRequired("current")
	_ = cmd.MarkFlagRequired("new")

	return cmd
}

func newAccountDeleteCmd() *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the signed-in account and its history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return fmt.Errorf("pass --yes to confirm account deletion")
			}
			return app.Accounts.DeleteAccount(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm deletion")

	return cmd
}
