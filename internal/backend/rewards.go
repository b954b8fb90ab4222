package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/strun-app/strun-wallet/internal/model"
)

// RewardsAPI covers task reward vaults and payouts.
type RewardsAPI struct {
	r Requester
}

// FundVault funds the task's reward vault.
func (rw *RewardsAPI) FundVault(ctx context.Context, taskID string, rewardSOL float64) (*model.Message, error) {
	var msg model.Message
	req := &model.FundVaultRequest{TaskID: taskID, RewardSOL: rewardSOL}
	if err := rw.r.Do(ctx, http.MethodPost, "/rewards/fund", req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Distribute pays the task winners out of the vault.
func (rw *RewardsAPI) Distribute(ctx context.Context, taskID string) (*model.Message, error) {
	var msg model.Message
	if err := rw.r.Do(ctx, http.MethodPost, "/rewards/distribute/"+url.PathEscape(taskID), nil, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Payouts lists the payouts of a task.
func (rw *RewardsAPI) Payouts(ctx context.Context, taskID string) ([]model.Payout, error) {
	var payouts []model.Payout
	if err := rw.r.Do(ctx, http.MethodGet, "/rewards/payouts/"+url.PathEscape(taskID), nil, &payouts); err != nil {
		return nil, err
	}
	return payouts, nil
}

// Winners lists the winners of a task.
func (rw *RewardsAPI) Winners(ctx context.Context, taskID string) ([]model.Payout, error) {
	var winners []model.Payout
	if err := rw.r.Do(ctx, http.MethodGet, "/rewards/winners/"+url.PathEscape(taskID), nil, &winners); err != nil {
		return nil, err
	}
	return winners, nil
}

// LeaderboardAPI covers /leaderboard.
type LeaderboardAPI struct {
	r Requester
}

// Top gets the top limit users by XP.
func (l *LeaderboardAPI) Top(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	var entries []model.LeaderboardEntry
	if err := l.r.Do(ctx, http.MethodGet, fmt.Sprintf("/leaderboard?limit=%d", limit), nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// TransactionsAPI covers backend-side reward/payment records.
type TransactionsAPI struct {
	r Requester
}

// List lists the signed-in user's backend transactions.
func (t *TransactionsAPI) List(ctx context.Context) ([]model.BackendTransaction, error) {
	var txs []model.BackendTransaction
	if err := t.r.Do(ctx, http.MethodGet, "/transactions", nil, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// Create records a transaction on the backend.
func (t *TransactionsAPI) Create(ctx context.Context, tx *model.BackendTransaction) (*model.BackendTransaction, error) {
	var created model.BackendTransaction
	if err := t.r.Do(ctx, http.MethodPost, "/transactions", tx, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
