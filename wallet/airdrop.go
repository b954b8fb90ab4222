package wallet

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultAirdrop is the faucet amount used when none is given.
var DefaultAirdrop = decimal.NewFromInt(1)

// RequestTestFunds asks the test network faucet for SOL and waits for confirmation.
// It fails with ErrFaucetUnavailable on a production network before any network call.
func (c *Custodian) RequestTestFunds(ctx context.Context, amount decimal.Decimal) (string, error) {
	if c.ledger.Network().IsProduction() {
		return "", ErrFaucetUnavailable
	}

	if amount.IsZero() {
		amount = DefaultAirdrop
	}
	lamports, err := toLamports(amount)
	if err != nil {
		return "", err
	}

	kp, err := c.EnsureWallet(ctx)
	if err != nil {
		return "", err
	}
	owner := kp.PublicKey
	kp.Clear()

	sig, err := c.ledger.RequestAirdrop(ctx, owner, lamports)
	if err != nil {
		return "", fmt.Errorf("failed to request airdrop: %w", err)
	}
	if err := c.ledger.Confirm(ctx, sig); err != nil {
		return sig.String(), fmt.Errorf("failed to confirm airdrop: %w", err)
	}

	c.logger.Info("airdrop received",
		zap.String("address", owner.String()),
		zap.String("amount", amount.String()),
		zap.String("signature", sig.String()))

	return sig.String(), nil
}
