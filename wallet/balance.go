package wallet

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/strun-app/strun-wallet/internal/common"
	"github.com/strun-app/strun-wallet/internal/model"
)

// GetBalance returns the balance in SOL. A failed RPC call is logged and reported
// as zero; only a wallet that cannot be resolved is an error.
func (c *Custodian) GetBalance(ctx context.Context) (decimal.Decimal, error) {
	_, lamports, err := c.balance(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return common.LamportsToSOL(lamports), nil
}

// Balance gets wallet balance with an optional USD valuation
func (c *Custodian) Balance(ctx context.Context) (*model.BalanceResponse, error) {
	address, lamports, err := c.balance(ctx)
	if err != nil {
		return nil, err
	}

	resp := &model.BalanceResponse{
		Address:  address,
		SOL:      common.FormatSOL(lamports),
		Lamports: lamports,
	}

	if c.rates != nil {
		rate, err := c.rates.GetSOLtoUSDRate(ctx)
		if err != nil {
			c.logger.Warn("SOL rate unavailable", zap.Error(err))
			return resp, nil
		}
		resp.Rate = rate.String()
		resp.USD = common.LamportsToSOL(lamports).Mul(rate).StringFixed(2)
	}

	return resp, nil
}

func (c *Custodian) balance(ctx context.Context) (string, uint64, error) {
	kp, err := c.EnsureWallet(ctx)
	if err != nil {
		return "", 0, err
	}
	owner := kp.PublicKey
	kp.Clear()

	lamports, err := c.ledger.GetBalanceInSmallestUnit(ctx, owner)
	if err != nil {
		c.logger.Warn("balance unavailable, reporting zero",
			zap.String("address", owner.String()),
			zap.Error(err))
		return owner.String(), 0, nil
	}
	return owner.String(), lamports, nil
}
