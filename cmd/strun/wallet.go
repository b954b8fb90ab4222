package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/strun-app/strun-wallet/internal/app"
	"github.com/strun-app/strun-wallet/internal/model"
)

var (
	airdropAmount string
	historyLimit  int
	historyType   string
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Custodial wallet operations",
}

var walletAddressCmd = &cobra.Command{
	Use:   "address",
	Short: "Show the receive address (creates the wallet on first use)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			address, err := a.Wallet.PublicAddress(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(address)
			return nil
		})
	},
}

var walletBalanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the SOL balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			balance, err := a.Wallet.Balance(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(balance)
		})
	},
}

var walletSendCmd = &cobra.Command{
	Use:   "send <recipient> <amount-sol>",
	Short: "Send SOL and wait for confirmation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := decimal.NewFromString(args[1])
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", args[1], err)
		}
		return withApp(func(a *app.App) error {
			sig, err := a.Wallet.Send(cmd.Context(), args[0], amount)
			if err != nil {
				return err
			}
			fmt.Println(sig)
			return nil
		})
	},
}

var walletAirdropCmd = &cobra.Command{
	Use:   "airdrop",
	Short: "Request test SOL from the faucet",
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := decimal.NewFromString(airdropAmount)
		if err != nil {
			return fmt.Errorf("invalid --amount: %w", err)
		}
		return withApp(func(a *app.App) error {
			sig, err := a.Wallet.RequestTestFunds(cmd.Context(), amount)
			if err != nil {
				return err
			}
			fmt.Println(sig)
			return nil
		})
	},
}

var walletHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List SOL transfers of the wallet",
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &model.LogRequest{Limit: historyLimit}
		if historyType != "" {
			t := model.TransactionType(historyType)
			req.Type = &t
		}
		if err := req.Validate(); err != nil {
			return err
		}
		return withApp(func(a *app.App) error {
			resp, err := a.Wallet.Transactions(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(resp)
		})
	},
}

func init() {
	walletAirdropCmd.Flags().StringVar(&airdropAmount, "amount", "1", "SOL to request")
	walletHistoryCmd.Flags().IntVar(&historyLimit, "limit", 0, "signatures to scan (0 means default)")
	walletHistoryCmd.Flags().StringVar(&historyType, "type", "", "DEBIT (received) or CREDIT (sent)")

	walletCmd.AddCommand(walletAddressCmd, walletBalanceCmd, walletSendCmd, walletAirdropCmd, walletHistoryCmd)
}
