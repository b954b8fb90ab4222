package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/strun-app/strun-wallet/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local wallet HTTP API on 127.0.0.1:STRUN_PORT",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return withApp(func(a *app.App) error {
			return a.Serve(ctx)
		})
	},
}
