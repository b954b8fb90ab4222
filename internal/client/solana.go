package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/jpillora/backoff"
	"go.uber.org/zap"

	"github.com/strun-app/strun-wallet/internal/common"
)

const (
	defaultRPCTimeout     = 15 * time.Second
	defaultConfirmTimeout = 60 * time.Second
	defaultPollInterval   = 500 * time.Millisecond
	defaultHistoryLimit   = 100
)

// SolanaOptions configures a SolanaClient.
type SolanaOptions struct {
	Network        Network
	RPCURL         string // empty means the cluster default
	RPCTimeout     time.Duration
	ConfirmTimeout time.Duration
	PollInterval   time.Duration
}

// SolanaClient isolates every direct Solana RPC call. All calls are bounded by RPCTimeout;
// confirmation waits are bounded by ConfirmTimeout.
type SolanaClient struct {
	rpcClient      *rpc.Client
	rpcURL         string
	network        Network
	rpcTimeout     time.Duration
	confirmTimeout time.Duration
	pollInterval   time.Duration
	logger         *zap.Logger
}

// NewSolanaClient creates a new Solana client for the configured cluster.
func NewSolanaClient(opts SolanaOptions, logger *zap.Logger) *SolanaClient {
	rpcURL := opts.RPCURL
	if rpcURL == "" {
		rpcURL = opts.Network.DefaultRPCURL()
	}

	c := &SolanaClient{
		rpcClient:      rpc.New(rpcURL),
		rpcURL:         rpcURL,
		network:        opts.Network,
		rpcTimeout:     opts.RPCTimeout,
		confirmTimeout: opts.ConfirmTimeout,
		pollInterval:   opts.PollInterval,
		logger:         logger.With(zap.String("network", string(opts.Network))),
	}
	if c.rpcTimeout <= 0 {
		c.rpcTimeout = defaultRPCTimeout
	}
	if c.confirmTimeout <= 0 {
		c.confirmTimeout = defaultConfirmTimeout
	}
	if c.pollInterval <= 0 {
		c.pollInterval = defaultPollInterval
	}
	return c
}

// Network returns the configured cluster.
func (c *SolanaClient) Network() Network {
	return c.network
}

// RPCURL returns the endpoint the client talks to.
func (c *SolanaClient) RPCURL() string {
	return c.rpcURL
}

// IsValidAddress validates a Solana address. No network call is made.
func (c *SolanaClient) IsValidAddress(address string) bool {
	return IsValidAddress(address)
}

// IsValidAddress validates a Solana address (base58, 32 bytes).
func IsValidAddress(address string) bool {
	_, err := solana.PublicKeyFromBase58(address)
	return err == nil
}

// VerifyNetwork compares the endpoint's genesis hash with the configured cluster
// so a devnet URL can never silently serve a mainnet wallet or the reverse.
func (c *SolanaClient) VerifyNetwork(ctx context.Context) error {
	if c.network == NetworkLocalnet {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.rpcTimeout)
	defer cancel()

	hash, err := c.rpcClient.GetGenesisHash(ctx)
	if err != nil {
		return fmt.Errorf("failed to get genesis hash: %w", err)
	}

	actual, known := NetworkForGenesis(hash.String())
	if !known || actual != c.network {
		return fmt.Errorf("%w: configured %s, endpoint %s has genesis %s", ErrNetworkMismatch, c.network, c.rpcURL, hash)
	}
	return nil
}

// GetBalanceInSmallestUnit gets SOL balance in lamports
func (c *SolanaClient) GetBalanceInSmallestUnit(ctx context.Context, owner solana.PublicKey) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.rpcTimeout)
	defer cancel()

	balance, err := c.rpcClient.GetBalance(ctx, owner, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("failed to get SOL balance: %w", err)
	}
	return balance.Value, nil
}

// LatestBlockhash gets the blockhash new transactions must reference.
func (c *SolanaClient) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	ctx, cancel := context.WithTimeout(ctx, c.rpcTimeout)
	defer cancel()

	recent, err := c.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("failed to get recent blockhash: %w", err)
	}
	return recent.Value.Blockhash, nil
}

// Submit sends a signed transaction with preflight checks enabled.
func (c *SolanaClient) Submit(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	ctx, cancel := context.WithTimeout(ctx, c.rpcTimeout)
	defer cancel()

	sig, err := c.rpcClient.SendTransactionWithOpts(
		ctx,
		tx,
		rpc.TransactionOpts{
			SkipPreflight:       false, // transaction validation before node
			PreflightCommitment: rpc.CommitmentConfirmed,
		},
	)
	if err != nil {
		var txSig string
		if len(tx.Signatures) > 0 {
			txSig = tx.Signatures[0].String()
		}
		return solana.Signature{}, &TransactionFailedError{Signature: txSig, Reason: "send", Err: err}
	}
	return sig, nil
}

// Confirm polls the signature status until the transaction is confirmed, rejected,
// or ConfirmTimeout elapses. It never resubmits.
func (c *SolanaClient) Confirm(ctx context.Context, sig solana.Signature) error {
	started := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()

	// slow down gradually while the cluster has not seen the signature yet
	poll := &backoff.Backoff{
		Min:    c.pollInterval,
		Max:    4 * c.pollInterval,
		Factor: 1.5,
	}

	for {
		done, err := c.checkStatus(ctx, sig)
		if done {
			return err
		}

		select {
		case <-ctx.Done():
			return &ConfirmationTimeoutError{Signature: sig.String(), Waited: time.Since(started), Err: ctx.Err()}
		case <-time.After(poll.Duration()):
		}
	}
}

// checkStatus reports done=true once the signature has a final answer.
func (c *SolanaClient) checkStatus(ctx context.Context, sig solana.Signature) (bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.rpcTimeout)
	defer cancel()

	out, err := c.rpcClient.GetSignatureStatuses(callCtx, false, sig)
	if err != nil {
		// transient, keep polling until the confirm deadline
		c.logger.Debug("signature status poll failed", zap.String("signature", sig.String()), zap.Error(err))
		return false, nil
	}
	if out == nil || len(out.Value) == 0 || out.Value[0] == nil {
		return false, nil
	}

	status := out.Value[0]
	if status.Err != nil {
		return true, &TransactionFailedError{Signature: sig.String(), Reason: fmt.Sprintf("%v", status.Err)}
	}

	switch status.ConfirmationStatus {
	case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
		return true, nil
	}
	return false, nil
}

// SubmitAndConfirm sends a signed transaction and waits for confirmation.
func (c *SolanaClient) SubmitAndConfirm(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := c.Submit(ctx, tx)
	if err != nil {
		return solana.Signature{}, err
	}

	c.logger.Info("transaction submitted", zap.String("signature", sig.String()))

	if err := c.Confirm(ctx, sig); err != nil {
		return sig, err
	}

	c.logger.Info("transaction confirmed", zap.String("signature", sig.String()))
	return sig, nil
}

// RequestAirdrop asks the cluster faucet for lamports. Mainnet has no faucet.
func (c *SolanaClient) RequestAirdrop(ctx context.Context, owner solana.PublicKey, lamports uint64) (solana.Signature, error) {
	if c.network.IsProduction() {
		return solana.Signature{}, errors.New("airdrop is not available on mainnet-beta")
	}

	ctx, cancel := context.WithTimeout(ctx, c.rpcTimeout)
	defer cancel()

	sig, err := c.rpcClient.RequestAirdrop(ctx, owner, lamports, rpc.CommitmentConfirmed)
	if err != nil {
		return solana.Signature{}, &TransactionFailedError{Reason: "airdrop", Err: err}
	}
	return sig, nil
}

// GetTransactions gets native SOL transfers touching owner, newest signatures first
func (c *SolanaClient) GetTransactions(ctx context.Context, owner solana.PublicKey, limit int) ([]SolanaTransaction, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	sigCtx, cancel := context.WithTimeout(ctx, c.rpcTimeout)
	sigs, err := c.rpcClient.GetSignaturesForAddressWithOpts(
		sigCtx,
		owner,
		&rpc.GetSignaturesForAddressOpts{
			Limit: &limit,
		},
	)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("failed to get signatures: %w", err)
	}

	transactions := make([]SolanaTransaction, 0, len(sigs))
	for _, s := range sigs {
		tx, err := c.getTransaction(ctx, s.Signature)
		if err != nil {
			return nil, err
		}
		if tx == nil {
			continue
		}

		parsed, ok := ParseSOLTransfer(tx, s.Signature, owner)
		if ok {
			transactions = append(transactions, parsed)
		}
	}

	return transactions, nil
}

func (c *SolanaClient) getTransaction(ctx context.Context, sig solana.Signature) (*rpc.GetTransactionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.rpcTimeout)
	defer cancel()

	// maxVersion is hardcoded - new version support requires a library update anyway
	maxVersion := uint64(0)
	tx, err := c.rpcClient.GetTransaction(
		ctx,
		sig,
		&rpc.GetTransactionOpts{
			Encoding:                       solana.EncodingBase64,
			Commitment:                     rpc.CommitmentConfirmed,
			MaxSupportedTransactionVersion: &maxVersion,
		},
	)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get transaction %s: %w", sig, err)
	}
	return tx, nil
}

// SolanaTransaction represents a native SOL transfer
type SolanaTransaction struct {
	Type        string // "DEBIT" received, "CREDIT" sent
	TxID        string
	From        string
	To          string
	Amount      string
	FeeSOL      string // SOL we paid as fee
	Timestamp   time.Time
	BlockNumber int64
	Status      string
}

// ParseSOLTransfer extracts the owner's native transfer from a transaction.
// The fee is separated from the transfer amount when owner paid it; fee-only
// transactions are reported as ok=false.
func ParseSOLTransfer(tx *rpc.GetTransactionResult, signature solana.Signature, owner solana.PublicKey) (SolanaTransaction, bool) {
	if tx == nil || tx.Meta == nil || tx.Transaction == nil {
		return SolanaTransaction{}, false
	}

	decodedTx, err := tx.Transaction.GetTransaction()
	if err != nil || decodedTx == nil {
		return SolanaTransaction{}, false
	}

	timestamp := time.Now()
	if tx.BlockTime != nil {
		timestamp = time.Unix(int64(*tx.BlockTime), 0)
	}

	status := "success"
	if tx.Meta.Err != nil {
		status = "failed"
	}

	accountKeys := decodedTx.Message.AccountKeys
	ownerIndex := -1
	for i, key := range accountKeys {
		if key.Equals(owner) {
			ownerIndex = i
			break
		}
	}
	if ownerIndex < 0 || ownerIndex >= len(tx.Meta.PreBalances) || ownerIndex >= len(tx.Meta.PostBalances) {
		return SolanaTransaction{}, false
	}

	pre, post := tx.Meta.PreBalances[ownerIndex], tx.Meta.PostBalances[ownerIndex]
	delta := int64(post) - int64(pre)

	// fee payer is index 0
	isFeePayer := ownerIndex == 0
	if isFeePayer {
		delta += int64(tx.Meta.Fee)
	}
	if delta == 0 {
		return SolanaTransaction{}, false
	}

	ownerStr := owner.String()
	result := SolanaTransaction{
		TxID:        signature.String(),
		FeeSOL:      "0",
		Timestamp:   timestamp,
		BlockNumber: int64(tx.Slot),
		Status:      status,
	}

	if delta > 0 {
		result.Type = "DEBIT"
		result.Amount = common.FormatSOL(uint64(delta))
		result.To = ownerStr
		result.From = counterparty(accountKeys, tx.Meta.PreBalances, tx.Meta.PostBalances, owner, false)
	} else {
		result.Type = "CREDIT"
		result.Amount = common.FormatSOL(uint64(-delta))
		result.From = ownerStr
		result.To = counterparty(accountKeys, tx.Meta.PreBalances, tx.Meta.PostBalances, owner, true)
		if isFeePayer {
			result.FeeSOL = common.FormatSOL(tx.Meta.Fee)
		}
	}

	return result, true
}

// counterparty finds the first other account whose balance moved the opposite way.
func counterparty(keys []solana.PublicKey, pre, post []uint64, owner solana.PublicKey, gained bool) string {
	for i, key := range keys {
		if i >= len(pre) || i >= len(post) || key.Equals(owner) {
			continue
		}
		if gained && post[i] > pre[i] {
			return key.String()
		}
		if !gained && pre[i] > post[i] {
			return key.String()
		}
	}
	return ""
}
