package model

// FundVaultRequest represents the body of POST /rewards/fund
type FundVaultRequest struct {
	TaskID    string  `json:"task_id"`
	RewardSOL float64 `json:"reward_sol"`
}

// Payout is a reward payout record
type Payout struct {
	UserID    string  `json:"user_id"`
	Wallet    string  `json:"wallet,omitempty"`
	AmountSOL float64 `json:"amount_sol"`
	TxSig     string  `json:"tx_sig,omitempty"`
	Status    string  `json:"status,omitempty"`
}

// LeaderboardEntry is one leaderboard row
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	XP          int64  `json:"xp"`
}

// BackendTransaction is a reward/payment record kept by the backend
type BackendTransaction struct {
	ID        int64   `json:"id"`
	Type      string  `json:"type"`
	AmountSOL float64 `json:"amount_sol,omitempty"`
	XP        int64   `json:"xp,omitempty"`
	TxSig     string  `json:"tx_sig,omitempty"`
	CreatedAt string  `json:"created_at,omitempty"`
}
