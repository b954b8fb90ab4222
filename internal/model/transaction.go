package model

import (
	"fmt"
	"time"

	"github.com/strun-app/strun-wallet/internal/common"
)

// TransactionType transaction type
type TransactionType string

const (
	TransactionTypeDebit  TransactionType = "DEBIT"  // SOL received
	TransactionTypeCredit TransactionType = "CREDIT" // SOL sent
)

// Transaction represents a native transfer touching the custodial wallet
type Transaction struct {
	Type        TransactionType `json:"type"`
	TxID        string          `json:"txId"`
	From        string          `json:"from"`
	To          string          `json:"to"`
	Amount      string          `json:"amount"`
	FeeSOL      string          `json:"feeSOL"` // SOL we paid as fee
	Timestamp   time.Time       `json:"timestamp"`
	BlockNumber int64           `json:"blockNumber"`
	Status      string          `json:"status"`
}

// LogResponse represents response for GET /wallet/transactions
type LogResponse struct {
	Address       string        `json:"address"`
	TotalReceived string        `json:"total_received_SOL"`
	TotalSent     string        `json:"total_sent_SOL"`
	Transactions  []Transaction `json:"transactions"`
}

// LogRequest represents filter parameters for GET /wallet/transactions
type LogRequest struct {
	Type      *TransactionType
	TxID      *string
	From      *time.Time
	To        *time.Time
	MinAmount *string
	MaxAmount *string
	Limit     int
}

// Validate validates LogRequest filter parameters.
func (r *LogRequest) Validate() error {
	if r.Type != nil && *r.Type != TransactionTypeDebit && *r.Type != TransactionTypeCredit {
		return fmt.Errorf("type must be DEBIT or CREDIT")
	}
	if r.From != nil && r.To != nil && r.To.Before(*r.From) {
		return fmt.Errorf("to date must be after or equal to from date")
	}
	if r.Limit < 0 || r.Limit > 1000 {
		return fmt.Errorf("limit must be between 0 and 1000")
	}
	if r.MinAmount != nil && r.MaxAmount != nil {
		cmp, err := common.CompareSOLAmounts(*r.MinAmount, *r.MaxAmount)
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
		if cmp == 1 {
			return fmt.Errorf("minAmount must be less than or equal to maxAmount")
		}
	}
	return nil
}
