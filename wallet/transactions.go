package wallet

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/strun-app/strun-wallet/internal/common"
	"github.com/strun-app/strun-wallet/internal/model"
)

// Transactions gets wallet transfers with filtering, newest first
func (c *Custodian) Transactions(ctx context.Context, req *model.LogRequest) (*model.LogResponse, error) {
	if req == nil {
		req = &model.LogRequest{}
	}

	kp, err := c.EnsureWallet(ctx)
	if err != nil {
		return nil, err
	}
	owner := kp.PublicKey
	kp.Clear()

	solanaTxs, err := c.ledger.GetTransactions(ctx, owner, req.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}

	resultTransactions := make([]model.Transaction, 0, len(solanaTxs))
	for _, tx := range solanaTxs {
		if req.Type != nil && string(*req.Type) != tx.Type {
			continue
		}
		if req.TxID != nil && *req.TxID != tx.TxID {
			continue
		}
		if req.From != nil && tx.Timestamp.Before(*req.From) {
			continue
		}
		if req.To != nil && tx.Timestamp.After(*req.To) {
			continue
		}

		if req.MinAmount != nil {
			cmp, err := common.CompareSOLAmounts(tx.Amount, *req.MinAmount)
			if err != nil {
				return nil, fmt.Errorf("failed to compare min amount: %w", err)
			}
			if cmp < 0 {
				continue
			}
		}
		if req.MaxAmount != nil {
			cmp, err := common.CompareSOLAmounts(tx.Amount, *req.MaxAmount)
			if err != nil {
				return nil, fmt.Errorf("failed to compare max amount: %w", err)
			}
			if cmp > 0 {
				continue
			}
		}

		resultTransactions = append(resultTransactions, model.Transaction{
			Type:        model.TransactionType(tx.Type),
			TxID:        tx.TxID,
			From:        tx.From,
			To:          tx.To,
			Amount:      tx.Amount,
			FeeSOL:      tx.FeeSOL,
			Timestamp:   tx.Timestamp,
			BlockNumber: tx.BlockNumber,
			Status:      tx.Status,
		})
	}

	sort.SliceStable(resultTransactions, func(i, j int) bool {
		return resultTransactions[i].Timestamp.After(resultTransactions[j].Timestamp)
	})

	received, sent := decimal.Zero, decimal.Zero
	for _, tx := range resultTransactions {
		amount, err := common.ParseSOL(tx.Amount)
		if err != nil {
			continue
		}
		switch tx.Type {
		case model.TransactionTypeDebit:
			received = received.Add(amount)
		case model.TransactionTypeCredit:
			sent = sent.Add(amount)
		}
	}

	return &model.LogResponse{
		Address:       owner.String(),
		TotalReceived: received.StringFixed(common.SOLDecimals),
		TotalSent:     sent.StringFixed(common.SOLDecimals),
		Transactions:  resultTransactions,
	}, nil
}
