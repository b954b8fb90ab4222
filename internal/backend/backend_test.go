package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/strun-app/strun-wallet/internal/auth"
	"github.com/strun-app/strun-wallet/internal/gateway"
	"github.com/strun-app/strun-wallet/internal/model"
)

type call struct {
	method   string
	endpoint string
	body     any
}

// recordingRequester records calls and answers with a canned JSON payload.
type recordingRequester struct {
	calls []call
	reply string
}

func (r *recordingRequester) Do(_ context.Context, method, endpoint string, in, out any) error {
	r.calls = append(r.calls, call{method: method, endpoint: endpoint, body: in})
	if out == nil || r.reply == "" {
		return nil
	}
	return json.Unmarshal([]byte(r.reply), out)
}

func TestEndpoints(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		run      func(c *Client) error
		method   string
		endpoint string
	}{
		{"profile", func(c *Client) error { _, err := c.Users.GetProfile(ctx); return err }, http.MethodGet, "/users/profile"},
		{"xp history", func(c *Client) error { _, err := c.Users.GetXPHistory(ctx); return err }, http.MethodGet, "/users/profile/xp-history"},
		{"disconnect", func(c *Client) error { _, err := c.Users.DisconnectWallet(ctx); return err }, http.MethodPost, "/users/wallet/disconnect"},
		{"user by id", func(c *Client) error { _, err := c.Users.GetUserByID(ctx, 7); return err }, http.MethodGet, "/users/7"},
		{"tasks filtered", func(c *Client) error {
			_, err := c.Tasks.List(ctx, model.TaskFilter{Category: "fitness", Status: "open"})
			return err
		}, http.MethodGet, "/tasks?category=fitness&status=open"},
		{"tasks by creator", func(c *Client) error { _, err := c.Tasks.CreatedBy(ctx, 42); return err }, http.MethodGet, "/tasks?created_by=42"},
		{"accept", func(c *Client) error { _, err := c.Tasks.Accept(ctx, "t-1"); return err }, http.MethodPost, "/tasks/t-1/accept"},
		{"accepted", func(c *Client) error { _, err := c.Tasks.Accepted(ctx); return err }, http.MethodGet, "/tasks/user/accepted"},
		{"feed", func(c *Client) error { _, err := c.Proofs.List(ctx, 0, 40); return err }, http.MethodGet, "/proofs?limit=20&offset=40"},
		{"vote", func(c *Client) error { _, err := c.Proofs.Vote(ctx, 3); return err }, http.MethodPost, "/proofs/3/vote"},
		{"repost", func(c *Client) error { _, err := c.Proofs.Repost(ctx, 3); return err }, http.MethodPost, "/proofs/3/repost"},
		{"distribute", func(c *Client) error { _, err := c.Rewards.Distribute(ctx, "t-1"); return err }, http.MethodPost, "/rewards/distribute/t-1"},
		{"winners", func(c *Client) error { _, err := c.Rewards.Winners(ctx, "t-1"); return err }, http.MethodGet, "/rewards/winners/t-1"},
		{"leaderboard", func(c *Client) error { _, err := c.Leaderboard.Top(ctx, 10); return err }, http.MethodGet, "/leaderboard?limit=10"},
		{"transactions", func(c *Client) error { _, err := c.Transactions.List(ctx); return err }, http.MethodGet, "/transactions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recordingRequester{}
			require.NoError(t, tt.run(New(r)))
			require.Len(t, r.calls, 1)
			assert.Equal(t, tt.method, r.calls[0].method)
			assert.Equal(t, tt.endpoint, r.calls[0].endpoint)
		})
	}
}

func TestFundVaultBody(t *testing.T) {
	r := &recordingRequester{}
	_, err := New(r).Rewards.FundVault(context.Background(), "t-9", 0.25)
	require.NoError(t, err)

	body, ok := r.calls[0].body.(*model.FundVaultRequest)
	require.True(t, ok)
	assert.Equal(t, "t-9", body.TaskID)
	assert.Equal(t, 0.25, body.RewardSOL)
}

func TestCurrentIDAfterProfile(t *testing.T) {
	r := &recordingRequester{reply: `{"id":42,"username":"runner","xp":120}`}
	c := New(r)

	_, err := c.Users.CurrentID()
	assert.ErrorIs(t, err, ErrNoUser)

	profile, err := c.Users.GetProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(120), profile.XP)

	id, err := c.Users.CurrentID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	c.Users.Forget()
	_, err = c.Users.CurrentID()
	assert.ErrorIs(t, err, ErrNoUser)
}

type staticSession struct{}

func (staticSession) GetSession(context.Context) (*auth.Session, error) {
	return &auth.Session{AccessToken: "tok"}, nil
}

func (staticSession) RefreshSession(context.Context) (*auth.Session, error) {
	return nil, auth.ErrNoSession
}

func TestThroughGateway(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]model.LeaderboardEntry{{Rank: 1, UserID: "u1", XP: 900}})
	}))
	defer srv.Close()

	gw := gateway.New(gateway.Options{BaseURL: srv.URL + "/api"}, staticSession{}, auth.NewTokenStore(), zap.NewNop())
	entries, err := New(gw).Leaderboard.Top(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(900), entries[0].XP)
}
