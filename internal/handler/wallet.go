package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/strun-app/strun-wallet/internal/client"
	"github.com/strun-app/strun-wallet/internal/model"
	"github.com/strun-app/strun-wallet/wallet"
)

// WalletService is the custodial wallet as seen by the HTTP API
type WalletService interface {
	Generate(ctx context.Context) (string, error)
	AddressQR(ctx context.Context, size int) (*model.AddressResponse, error)
	Balance(ctx context.Context) (*model.BalanceResponse, error)
	Send(ctx context.Context, recipient string, amount decimal.Decimal) (string, error)
	RequestTestFunds(ctx context.Context, amount decimal.Decimal) (string, error)
	Transactions(ctx context.Context, req *model.LogRequest) (*model.LogResponse, error)
}

// WalletHandler serves the local wallet API
type WalletHandler struct {
	wallet WalletService
	logger *zap.Logger
}

// NewWalletHandler creates a new WalletHandler
func NewWalletHandler(w WalletService, logger *zap.Logger) *WalletHandler {
	return &WalletHandler{wallet: w, logger: logger}
}

// Generate handles POST /wallet/generate
// @Summary      Generate new wallet
// @Description  Generates the custodial Solana wallet and stores it
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.GenerateResponse
// @Failure      409  {object}  model.ErrorResponse
// @Router       /wallet/generate [post]
func (h *WalletHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. should be POST", http.StatusMethodNotAllowed)
		return
	}

	address, err := h.wallet.Generate(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(model.GenerateResponse{
		Success: true,
		Message: "Wallet generated successfully",
		Address: address,
	})
}

// Address handles GET /wallet/address
// @Summary      Get receive address
// @Description  Returns the wallet address and a QR code of it (base64 PNG)
// @Tags         wallet
// @Produce      json
// @Param        size  query     int  false  "QR size in pixels"
// @Success      200   {object}  model.AddressResponse
// @Router       /wallet/address [get]
func (h *WalletHandler) Address(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	size := 0
	if s := r.URL.Query().Get("size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 64 || n > 1024 {
			h.badRequest(w, "size must be an integer between 64 and 1024")
			return
		}
		size = n
	}

	resp, err := h.wallet.AddressQR(r.Context(), size)
	if err != nil {
		h.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// GetBalance handles GET /wallet/balance
// @Summary      Get wallet balance
// @Description  Gets SOL balance with an optional USD valuation
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.BalanceResponse
// @Router       /wallet/balance [get]
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	balance, err := h.wallet.Balance(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(balance)
}

// Pay handles POST /wallet/pay
// @Summary      Send SOL
// @Description  Sends SOL to the specified address and waits for confirmation
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.PayRequest  true  "Payment data"
// @Success      200      {object}  model.PayResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      422      {object}  model.ErrorResponse
// @Router       /wallet/pay [post]
func (h *WalletHandler) Pay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req model.PayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, err.Error())
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.fail(w, wallet.ErrInvalidAmount)
		return
	}

	txID, err := h.wallet.Send(r.Context(), req.ToAddress, amount)
	if err != nil {
		h.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(model.PayResponse{TxID: txID})
}

// Airdrop handles POST /wallet/airdrop
// @Summary      Request test SOL
// @Description  Requests SOL from the faucet of a test network (1 SOL by default)
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.AirdropRequest  false  "Airdrop amount"
// @Success      200      {object}  model.PayResponse
// @Failure      403      {object}  model.ErrorResponse
// @Router       /wallet/airdrop [post]
func (h *WalletHandler) Airdrop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req model.AirdropRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.badRequest(w, err.Error())
			return
		}
	}

	amount := decimal.Zero
	if req.Amount != "" {
		a, err := decimal.NewFromString(req.Amount)
		if err != nil {
			h.fail(w, wallet.ErrInvalidAmount)
			return
		}
		amount = a
	}

	txID, err := h.wallet.RequestTestFunds(r.Context(), amount)
	if err != nil {
		h.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(model.PayResponse{TxID: txID})
}

// TransactionHistory handles GET /wallet/transactions
// @Summary      Get wallet transactions
// @Description  Gets SOL transfers of the wallet with filtering capability
// @Tags         wallet
// @Produce      json
// @Param        type       query     string   false  "Transaction type: DEBIT or CREDIT"
// @Param        txId       query     string   false  "Transaction ID"
// @Param        from       query     string   false  "Start date (YYYY-MM-DD)"
// @Param        to         query     string   false  "End date (YYYY-MM-DD)"
// @Param        minAmount  query     string   false  "Minimum amount"
// @Param        maxAmount  query     string   false  "Maximum amount"
// @Param        limit      query     int      false  "Signatures to scan (default 100)"
// @Success      200  {object}  model.LogResponse
// @Router       /wallet/transactions [get]
func (h *WalletHandler) TransactionHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	var req model.LogRequest
	q := r.URL.Query()

	// Parse date parameters (YYYY-MM-DD)
	const dateLayout = "2006-01-02"
	if fromStr := q.Get("from"); fromStr != "" {
		t, err := time.Parse(dateLayout, fromStr)
		if err != nil {
			h.badRequest(w, "invalid from date: use YYYY-MM-DD (e.g. 2006-01-02)")
			return
		}
		req.From = &t
	}
	if toStr := q.Get("to"); toStr != "" {
		t, err := time.Parse(dateLayout, toStr)
		if err != nil {
			h.badRequest(w, "invalid to date: use YYYY-MM-DD (e.g. 2006-01-02)")
			return
		}
		// End of day so filter is inclusive
		t = t.Add(24*time.Hour - time.Nanosecond)
		req.To = &t
	}

	if typeStr := q.Get("type"); typeStr != "" {
		txType := model.TransactionType(typeStr)
		req.Type = &txType
	}
	if txID := q.Get("txId"); txID != "" {
		req.TxID = &txID
	}
	if minAmount := q.Get("minAmount"); minAmount != "" {
		req.MinAmount = &minAmount
	}
	if maxAmount := q.Get("maxAmount"); maxAmount != "" {
		req.MaxAmount = &maxAmount
	}
	if limit := q.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			h.badRequest(w, "limit must be an integer")
			return
		}
		req.Limit = n
	}

	if err := req.Validate(); err != nil {
		h.badRequest(w, err.Error())
		return
	}

	logResp, err := h.wallet.Transactions(r.Context(), &req)
	if err != nil {
		h.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(logResp)
}

func (h *WalletHandler) badRequest(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(model.ErrorResponse{Error: msg, Code: "bad_request"})
}

// fail writes err with the status its type maps to
func (h *WalletHandler) fail(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("wallet request failed", zap.Error(err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{Error: err.Error(), Code: code})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, wallet.ErrInvalidAmount):
		return http.StatusBadRequest, "invalid_amount"
	case wallet.IsInvalidAddress(err):
		return http.StatusBadRequest, "invalid_address"
	case wallet.IsInsufficientFunds(err):
		return http.StatusUnprocessableEntity, "insufficient_funds"
	case wallet.IsCooldown(err):
		return http.StatusTooManyRequests, "cooldown"
	case errors.Is(err, wallet.ErrFaucetUnavailable):
		return http.StatusForbidden, "faucet_unavailable"
	case wallet.IsWalletExists(err):
		return http.StatusConflict, "wallet_exists"
	case wallet.IsWalletCorrupted(err):
		return http.StatusInternalServerError, "wallet_corrupted"
	case client.IsConfirmationTimeout(err):
		return http.StatusGatewayTimeout, "confirmation_timeout"
	case client.IsTransactionFailed(err):
		return http.StatusBadGateway, "transaction_failed"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
