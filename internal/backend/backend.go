// Package backend wraps the strun backend API endpoints.
package backend

import (
	"context"
	"errors"
)

// ErrNoUser is returned by calls that need the backend user id before the profile was loaded.
var ErrNoUser = errors.New("user is not authenticated")

// Requester performs authenticated JSON calls against the backend.
type Requester interface {
	Do(ctx context.Context, method, endpoint string, in, out any) error
}

// Client groups the backend APIs.
type Client struct {
	Users        *UsersAPI
	Tasks        *TasksAPI
	Proofs       *ProofsAPI
	Rewards      *RewardsAPI
	Leaderboard  *LeaderboardAPI
	Transactions *TransactionsAPI
}

// New creates the backend client on top of an authenticated requester.
func New(r Requester) *Client {
	return &Client{
		Users:        &UsersAPI{r: r},
		Tasks:        &TasksAPI{r: r},
		Proofs:       &ProofsAPI{r: r},
		Rewards:      &RewardsAPI{r: r},
		Leaderboard:  &LeaderboardAPI{r: r},
		Transactions: &TransactionsAPI{r: r},
	}
}
