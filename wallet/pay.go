package wallet

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/strun-app/strun-wallet/internal/client"
	"github.com/strun-app/strun-wallet/internal/common"
)

// Send transfers amount SOL to recipient and waits for confirmation.
// Validation happens before any I/O. A failed or timed-out submission is never retried:
// the transfer may already be recorded, check history before sending again.
func (c *Custodian) Send(ctx context.Context, recipient string, amount decimal.Decimal) (string, error) {
	lamports, err := toLamports(amount)
	if err != nil {
		return "", err
	}

	if !c.ledger.IsValidAddress(recipient) {
		return "", &InvalidAddressError{Address: recipient}
	}
	to, err := solana.PublicKeyFromBase58(recipient)
	if err != nil {
		return "", &InvalidAddressError{Address: recipient}
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if err := c.checkCooldown(); err != nil {
		return "", err
	}

	kp, err := c.EnsureWallet(ctx)
	if err != nil {
		return "", err
	}
	defer kp.Clear()

	balance, err := c.ledger.GetBalanceInSmallestUnit(ctx, kp.PublicKey)
	if err != nil {
		return "", &client.TransactionFailedError{Reason: "balance", Err: err}
	}
	if lamports > balance {
		return "", &InsufficientFundsError{
			Requested: common.LamportsToSOL(lamports),
			Available: common.LamportsToSOL(balance),
		}
	}

	transfer := system.NewTransferInstruction(lamports, kp.PublicKey, to).Build()

	sig, err := c.signAndSubmit(ctx, kp, []solana.Instruction{transfer})
	if err != nil {
		return "", err
	}

	c.lastSend = c.now()
	c.logger.Info("SOL sent",
		zap.String("from", kp.PublicKey.String()),
		zap.String("to", recipient),
		zap.String("amount", amount.String()),
		zap.String("signature", sig.String()))

	return sig.String(), nil
}

func toLamports(amount decimal.Decimal) (uint64, error) {
	if !amount.IsPositive() {
		return 0, ErrInvalidAmount
	}
	lamports, err := common.SOLToLamports(amount)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	return lamports, nil
}

func (c *Custodian) checkCooldown() error {
	if c.opts.Cooldown <= 0 || c.lastSend.IsZero() {
		return nil
	}
	if elapsed := c.now().Sub(c.lastSend); elapsed < c.opts.Cooldown {
		return &CooldownError{Remaining: c.opts.Cooldown - elapsed}
	}
	return nil
}

// signAndSubmit signs with the custodial key as fee payer and submits once.
func (c *Custodian) signAndSubmit(ctx context.Context, kp *Keypair, instructions []solana.Instruction) (solana.Signature, error) {
	blockhash, err := c.ledger.LatestBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, &client.TransactionFailedError{Reason: "blockhash", Err: err}
	}

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(kp.PublicKey))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to create transaction: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(kp.PublicKey) {
			return &kp.PrivateKey
		}
		return nil
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := c.ledger.SubmitAndConfirm(ctx, tx)
	if err != nil {
		return sig, fmt.Errorf("failed to send transaction: %w", err)
	}
	return sig, nil
}
