package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/strun-app/strun-wallet/internal/app"
	"github.com/strun-app/strun-wallet/internal/config"
	"github.com/strun-app/strun-wallet/internal/logger"
)

// GlobalFlags are flags shared by every command
type GlobalFlags struct {
	Network  string
	LogLevel string
	Verbose  bool
}

var (
	globalFlags GlobalFlags
	cfg         *config.Config
	log         *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "strun",
	Short: "Strun wallet and account client",
	Long: `strun manages the custodial Solana wallet of a Strun account.

Configuration is read from STRUN_* environment variables, for example
STRUN_NETWORK, STRUN_STORE_PATH and STRUN_SUPABASE_ANON_KEY.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if globalFlags.Network != "" {
			os.Setenv("STRUN_NETWORK", globalFlags.Network)
		}
		if globalFlags.Verbose {
			os.Setenv("STRUN_LOG_LEVEL", "debug")
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		log, err = logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
		if err != nil {
			return fmt.Errorf("failed to init logger: %w", err)
		}
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalFlags.Network, "network", "", "cluster: mainnet-beta|devnet|testnet|localnet (overrides STRUN_NETWORK)")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(walletCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(storeCmd)
}

// withApp opens the application for the duration of fn
func withApp(fn func(a *app.App) error) error {
	a, err := app.Open(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
