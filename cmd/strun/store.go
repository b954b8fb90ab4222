package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/strun-app/strun-wallet/internal/config"
	"github.com/strun-app/strun-wallet/internal/crypto"
	"github.com/strun-app/strun-wallet/internal/store"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Maintain the local encrypted store",
}

var storeRekeyCmd = &cobra.Command{
	Use:   "rekey",
	Short: "Re-encrypt the store file under a new password",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.StoreBackend != store.BackendFile {
			return fmt.Errorf("rekey needs the %q store backend, configured %q", store.BackendFile, cfg.StoreBackend)
		}

		if _, err := os.Stat(cfg.StorePath); err != nil {
			return fmt.Errorf("failed to find store file: %w", err)
		}

		current, err := cfg.StorePasswordBytes()
		if err != nil {
			return err
		}
		defer clear(current)

		f, err := store.OpenFile(cfg.StorePath, current, crypto.DefaultParams)
		if err != nil {
			return err
		}
		defer f.Close()

		next, err := config.PromptPassword("New password: ")
		if err != nil {
			return err
		}
		defer clear(next)

		confirm, err := config.PromptPassword("Confirm new password: ")
		if err != nil {
			return err
		}
		defer clear(confirm)

		if string(next) != string(confirm) {
			return errors.New("passwords do not match")
		}

		if err := f.Rekey(next, crypto.DefaultParams); err != nil {
			return err
		}
		fmt.Println("store re-encrypted")
		return nil
	},
}

func init() {
	storeCmd.AddCommand(storeRekeyCmd)
}
