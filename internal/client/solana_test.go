package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type rpcRequest struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
}

// fakeRPC is a minimal JSON-RPC endpoint answering with canned results per method.
type fakeRPC struct {
	mu      sync.Mutex
	results map[string]any
	calls   map[string]int
}

func newFakeRPC(t *testing.T, results map[string]any) (*fakeRPC, *httptest.Server) {
	f := &fakeRPC{results: results, calls: make(map[string]int)}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		f.mu.Lock()
		f.calls[req.Method]++
		result, ok := f.results[req.Method]
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if ok {
			resp["result"] = result
		} else {
			resp["error"] = map[string]any{"code": -32601, "message": "method not found"}
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeRPC) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func testClient(url string, network Network) *SolanaClient {
	return NewSolanaClient(SolanaOptions{
		Network:        network,
		RPCURL:         url,
		RPCTimeout:     time.Second,
		ConfirmTimeout: 200 * time.Millisecond,
		PollInterval:   10 * time.Millisecond,
	}, zap.NewNop())
}

func signedTransfer(t *testing.T, lamports uint64) (*solana.Transaction, solana.PrivateKey, solana.PublicKey) {
	from := solana.NewWallet().PrivateKey
	to := solana.NewWallet().PublicKey()

	tx, err := solana.NewTransaction(
		[]solana.Instruction{system.NewTransferInstruction(lamports, from.PublicKey(), to).Build()},
		solana.Hash{1, 2, 3},
		solana.TransactionPayer(from.PublicKey()),
	)
	require.NoError(t, err)

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(from.PublicKey()) {
			return &from
		}
		return nil
	})
	require.NoError(t, err)
	return tx, from, to
}

func statusResult(status any) map[string]any {
	return map[string]any{
		"context": map[string]any{"slot": 1},
		"value":   []any{status},
	}
}

func TestIsValidAddress(t *testing.T) {
	assert.True(t, IsValidAddress(solana.NewWallet().PublicKey().String()))
	assert.False(t, IsValidAddress("not-an-address"))
	assert.False(t, IsValidAddress(""))
}

func TestGetBalanceInSmallestUnit(t *testing.T) {
	f, srv := newFakeRPC(t, map[string]any{
		"getBalance": map[string]any{"context": map[string]any{"slot": 1}, "value": 1_500_000_000},
	})
	c := testClient(srv.URL, NetworkDevnet)

	lamports, err := c.GetBalanceInSmallestUnit(context.Background(), solana.NewWallet().PublicKey())
	require.NoError(t, err)
	assert.Equal(t, uint64(1_500_000_000), lamports)
	assert.Equal(t, 1, f.count("getBalance"))
}

func TestSubmitAndConfirm(t *testing.T) {
	tx, _, _ := signedTransfer(t, 500_000_000)
	sig := tx.Signatures[0]

	f, srv := newFakeRPC(t, map[string]any{
		"sendTransaction": sig.String(),
		"getSignatureStatuses": statusResult(map[string]any{
			"slot": 10, "confirmations": nil, "err": nil, "confirmationStatus": "confirmed",
		}),
	})
	c := testClient(srv.URL, NetworkDevnet)

	got, err := c.SubmitAndConfirm(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, sig, got)
	assert.Equal(t, 1, f.count("sendTransaction"))
	assert.GreaterOrEqual(t, f.count("getSignatureStatuses"), 1)
}

func TestConfirmRejected(t *testing.T) {
	tx, _, _ := signedTransfer(t, 1)

	_, srv := newFakeRPC(t, map[string]any{
		"sendTransaction": tx.Signatures[0].String(),
		"getSignatureStatuses": statusResult(map[string]any{
			"slot": 10, "confirmations": 0,
			"err":                map[string]any{"InstructionError": []any{0, map[string]any{"Custom": 1}}},
			"confirmationStatus": "processed",
		}),
	})
	c := testClient(srv.URL, NetworkDevnet)

	_, err := c.SubmitAndConfirm(context.Background(), tx)
	require.Error(t, err)
	assert.True(t, IsTransactionFailed(err))
	assert.False(t, IsConfirmationTimeout(err))
}

func TestConfirmTimeout(t *testing.T) {
	tx, _, _ := signedTransfer(t, 1)

	f, srv := newFakeRPC(t, map[string]any{
		"sendTransaction":      tx.Signatures[0].String(),
		"getSignatureStatuses": statusResult(nil),
	})
	c := testClient(srv.URL, NetworkDevnet)

	started := time.Now()
	sig, err := c.SubmitAndConfirm(context.Background(), tx)
	require.Error(t, err)
	assert.True(t, IsConfirmationTimeout(err))
	assert.Equal(t, tx.Signatures[0], sig)
	assert.Less(t, time.Since(started), 2*time.Second)
	// never resubmitted
	assert.Equal(t, 1, f.count("sendTransaction"))
}

func TestSubmitRPCFailure(t *testing.T) {
	tx, _, _ := signedTransfer(t, 1)

	_, srv := newFakeRPC(t, map[string]any{})
	c := testClient(srv.URL, NetworkDevnet)

	_, err := c.Submit(context.Background(), tx)
	require.Error(t, err)
	assert.True(t, IsTransactionFailed(err))
}

func TestRequestAirdrop(t *testing.T) {
	sig := solana.Signature{9, 9, 9}
	f, srv := newFakeRPC(t, map[string]any{"requestAirdrop": sig.String()})

	got, err := testClient(srv.URL, NetworkDevnet).RequestAirdrop(context.Background(), solana.NewWallet().PublicKey(), 1_000_000_000)
	require.NoError(t, err)
	assert.Equal(t, sig, got)

	_, err = testClient(srv.URL, NetworkMainnet).RequestAirdrop(context.Background(), solana.NewWallet().PublicKey(), 1)
	require.Error(t, err)
	assert.Equal(t, 1, f.count("requestAirdrop"))
}

func TestVerifyNetwork(t *testing.T) {
	_, srv := newFakeRPC(t, map[string]any{"getGenesisHash": genesisHashes[NetworkDevnet]})

	require.NoError(t, testClient(srv.URL, NetworkDevnet).VerifyNetwork(context.Background()))

	err := testClient(srv.URL, NetworkMainnet).VerifyNetwork(context.Background())
	assert.ErrorIs(t, err, ErrNetworkMismatch)
}

func TestGetTransactions(t *testing.T) {
	tx, from, to := signedTransfer(t, 250_000_000)
	raw, err := tx.MarshalBinary()
	require.NoError(t, err)
	sig := tx.Signatures[0]

	_, srv := newFakeRPC(t, map[string]any{
		"getSignaturesForAddress": []any{map[string]any{
			"signature": sig.String(), "slot": 5, "err": nil, "memo": nil,
			"blockTime": 1700000000, "confirmationStatus": "finalized",
		}},
		"getTransaction": map[string]any{
			"slot":      5,
			"blockTime": 1700000000,
			"meta": map[string]any{
				"err":          nil,
				"fee":          5000,
				"preBalances":  []any{1_000_000_000, 0, 1},
				"postBalances": []any{1_000_000_000 - 250_000_000 - 5000, 250_000_000, 1},
			},
			"transaction": []any{base64.StdEncoding.EncodeToString(raw), "base64"},
		},
	})
	c := testClient(srv.URL, NetworkDevnet)

	sent, err := c.GetTransactions(context.Background(), from.PublicKey(), 10)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "CREDIT", sent[0].Type)
	assert.Equal(t, "0.250000000", sent[0].Amount)
	assert.Equal(t, "0.000005000", sent[0].FeeSOL)
	assert.Equal(t, to.String(), sent[0].To)
	assert.Equal(t, int64(5), sent[0].BlockNumber)

	received, err := c.GetTransactions(context.Background(), to, 10)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, "DEBIT", received[0].Type)
	assert.Equal(t, "0.250000000", received[0].Amount)
	assert.Equal(t, from.PublicKey().String(), received[0].From)
	assert.Equal(t, "0", received[0].FeeSOL)
}

func TestGetSOLtoUSDRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "solana", r.URL.Query().Get("ids"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"solana":{"usd":142.37}}`))
	}))
	defer srv.Close()

	rate, err := NewCoinGeckoClient(srv.URL, time.Second).GetSOLtoUSDRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "142.37", rate.String())
}
