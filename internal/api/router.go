package api

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/strun-app/strun-wallet/internal/handler"
)

// SetupRouter sets up router with handlers
func SetupRouter(walletHandler *handler.WalletHandler) http.Handler {
	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Wallet endpoints
	mux.HandleFunc("/wallet/generate", walletHandler.Generate)
	mux.HandleFunc("/wallet/address", walletHandler.Address)
	mux.HandleFunc("/wallet/balance", walletHandler.GetBalance)
	mux.HandleFunc("/wallet/pay", walletHandler.Pay)
	mux.HandleFunc("/wallet/airdrop", walletHandler.Airdrop)
	mux.HandleFunc("/wallet/transactions", walletHandler.TransactionHistory)

	return mux
}
