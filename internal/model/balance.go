package model

// BalanceResponse represents response for GET /wallet/balance
type BalanceResponse struct {
	Address  string `json:"address"`
	SOL      string `json:"sol"`
	Lamports uint64 `json:"lamports"`
	Rate     string `json:"rate,omitempty"`
	USD      string `json:"sol_amount_in_usd,omitempty"`
}
