package model

// PayRequest represents request for POST /wallet/pay
type PayRequest struct {
	ToAddress string `json:"toAddress"`
	Amount    string `json:"amount"`
}

// AirdropRequest represents request for POST /wallet/airdrop
type AirdropRequest struct {
	Amount string `json:"amount,omitempty"`
}

// PayResponse represents response for POST /wallet/pay and /wallet/airdrop
type PayResponse struct {
	TxID string `json:"txId"`
}
