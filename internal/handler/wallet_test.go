package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/strun-app/strun-wallet/internal/client"
	"github.com/strun-app/strun-wallet/internal/model"
	"github.com/strun-app/strun-wallet/wallet"
)

type fakeWallet struct {
	sendErr    error
	sent       decimal.Decimal
	recipient  string
	airdropped decimal.Decimal
	logReq     *model.LogRequest
	qrSize     int
}

func (f *fakeWallet) Generate(context.Context) (string, error) {
	return "", &wallet.WalletExistsError{Address: "Addr1"}
}

func (f *fakeWallet) AddressQR(_ context.Context, size int) (*model.AddressResponse, error) {
	f.qrSize = size
	return &model.AddressResponse{Address: "Addr1", QR: "cG5n"}, nil
}

func (f *fakeWallet) Balance(context.Context) (*model.BalanceResponse, error) {
	return &model.BalanceResponse{Address: "Addr1", SOL: "1.5", Lamports: 1_500_000_000}, nil
}

func (f *fakeWallet) Send(_ context.Context, recipient string, amount decimal.Decimal) (string, error) {
	f.recipient = recipient
	f.sent = amount
	if f.sendErr != nil {
		return "", f.sendErr
	}
	return "sig-pay", nil
}

func (f *fakeWallet) RequestTestFunds(_ context.Context, amount decimal.Decimal) (string, error) {
	f.airdropped = amount
	return "sig-airdrop", nil
}

func (f *fakeWallet) Transactions(_ context.Context, req *model.LogRequest) (*model.LogResponse, error) {
	f.logReq = req
	return &model.LogResponse{Address: "Addr1", Transactions: []model.Transaction{}}, nil
}

func serve(h http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var resp model.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestPay(t *testing.T) {
	fw := &fakeWallet{}
	h := NewWalletHandler(fw, zap.NewNop())

	rec := serve(h.Pay, http.MethodPost, "/wallet/pay", `{"toAddress":"Dest1","amount":"0.25"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.PayResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "sig-pay", resp.TxID)
	assert.Equal(t, "Dest1", fw.recipient)
	assert.True(t, decimal.RequireFromString("0.25").Equal(fw.sent))
}

func TestPayErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid amount", wallet.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
		{"invalid address", &wallet.InvalidAddressError{Address: "x"}, http.StatusBadRequest, "invalid_address"},
		{"insufficient", &wallet.InsufficientFundsError{}, http.StatusUnprocessableEntity, "insufficient_funds"},
		{"cooldown", &wallet.CooldownError{}, http.StatusTooManyRequests, "cooldown"},
		{"timeout", &client.ConfirmationTimeoutError{Signature: "s"}, http.StatusGatewayTimeout, "confirmation_timeout"},
		{"rejected", &client.TransactionFailedError{Signature: "s", Reason: "send"}, http.StatusBadGateway, "transaction_failed"},
		{"corrupted", &wallet.WalletCorruptedError{Reason: "bad key"}, http.StatusInternalServerError, "wallet_corrupted"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewWalletHandler(&fakeWallet{sendErr: tt.err}, zap.NewNop())
			rec := serve(h.Pay, http.MethodPost, "/wallet/pay", `{"toAddress":"Dest1","amount":"1"}`)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}
}

func TestPayRejectsUnparsableAmount(t *testing.T) {
	fw := &fakeWallet{}
	h := NewWalletHandler(fw, zap.NewNop())

	rec := serve(h.Pay, http.MethodPost, "/wallet/pay", `{"toAddress":"Dest1","amount":"ten"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, fw.recipient)

	rec = serve(h.Pay, http.MethodGet, "/wallet/pay", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAirdropDefaultsToZeroAmount(t *testing.T) {
	fw := &fakeWallet{}
	h := NewWalletHandler(fw, zap.NewNop())

	rec := serve(h.Airdrop, http.MethodPost, "/wallet/airdrop", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, fw.airdropped.IsZero())

	rec = serve(h.Airdrop, http.MethodPost, "/wallet/airdrop", `{"amount":"2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decimal.NewFromInt(2).Equal(fw.airdropped))
}

func TestGenerateConflict(t *testing.T) {
	h := NewWalletHandler(&fakeWallet{}, zap.NewNop())
	rec := serve(h.Generate, http.MethodPost, "/wallet/generate", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAddressSize(t *testing.T) {
	fw := &fakeWallet{}
	h := NewWalletHandler(fw, zap.NewNop())

	rec := serve(h.Address, http.MethodGet, "/wallet/address?size=128", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 128, fw.qrSize)

	rec = serve(h.Address, http.MethodGet, "/wallet/address?size=5", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransactionHistoryFilters(t *testing.T) {
	fw := &fakeWallet{}
	h := NewWalletHandler(fw, zap.NewNop())

	rec := serve(h.TransactionHistory, http.MethodGet,
		"/wallet/transactions?type=DEBIT&from=2026-01-01&to=2026-01-31&minAmount=0.1&limit=50", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, fw.logReq)
	assert.Equal(t, model.TransactionTypeDebit, *fw.logReq.Type)
	assert.Equal(t, 50, fw.logReq.Limit)
	assert.Equal(t, 23, fw.logReq.To.Hour())

	rec = serve(h.TransactionHistory, http.MethodGet, "/wallet/transactions?type=SWAP", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h.TransactionHistory, http.MethodGet, "/wallet/transactions?from=01-01-2026", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
