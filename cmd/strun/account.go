package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/strun-app/strun-wallet/internal/app"
	"github.com/strun-app/strun-wallet/internal/config"
	"github.com/strun-app/strun-wallet/internal/model"
)

var (
	loginEmail    string
	loginPassword string
	loginIDToken  string
	loginProvider string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and provision the wallet",
	Long: `Sign in with email and password, or with an OIDC id token.

Examples:
  strun login --email runner@strun.app
  strun login --id-token <google id token>`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.SupabaseAnonKey == "" {
			return errors.New("STRUN_SUPABASE_ANON_KEY is not set")
		}
		return withApp(func(a *app.App) error {
			var (
				user *model.User
				err  error
			)
			if loginIDToken != "" {
				user, err = a.Account.SignInWithIDToken(cmd.Context(), loginProvider, loginIDToken)
			} else {
				if loginEmail == "" {
					return errors.New("--email or --id-token is required")
				}
				password := loginPassword
				if password == "" {
					raw, perr := config.PromptPassword("Password: ")
					if perr != nil {
						return perr
					}
					password = string(raw)
					clear(raw)
				}
				user, err = a.Account.SignInWithPassword(cmd.Context(), loginEmail, password)
			}
			if err != nil {
				return err
			}
			fmt.Printf("Signed in as %s, wallet %s\n", user.Name, user.WalletAddress)
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the local session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			return a.Account.SignOut(cmd.Context())
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			user, err := a.Account.Restore(cmd.Context())
			if err != nil {
				return err
			}
			if user == nil {
				return errors.New("not signed in")
			}
			return printJSON(user)
		})
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the backend profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			p, err := a.Backend.Users.GetProfile(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(p)
		})
	},
}

var profileXPCmd = &cobra.Command{
	Use:   "xp",
	Short: "Show XP history",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			events, err := a.Backend.Users.GetXPHistory(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(events)
		})
	},
}

var profileDisconnectCmd = &cobra.Command{
	Use:   "disconnect-wallet",
	Short: "Unlink the wallet from the backend profile (local keys are kept)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			return a.Account.DisconnectWallet(cmd.Context())
		})
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password (prompted when empty)")
	loginCmd.Flags().StringVar(&loginIDToken, "id-token", "", "OIDC id token")
	loginCmd.Flags().StringVar(&loginProvider, "provider", "google", "OIDC provider of --id-token")

	profileCmd.AddCommand(profileXPCmd)
	profileCmd.AddCommand(profileDisconnectCmd)
}
