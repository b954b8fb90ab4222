package backend

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/strun-app/strun-wallet/internal/model"
)

// UsersAPI covers /users endpoints.
type UsersAPI struct {
	r Requester

	// last profile seen, for routes keyed by backend user id
	mu      sync.RWMutex
	current *model.Profile
}

// GetProfile gets the signed-in user's profile. The backend creates the user on first call.
func (u *UsersAPI) GetProfile(ctx context.Context) (*model.Profile, error) {
	var profile model.Profile
	if err := u.r.Do(ctx, http.MethodGet, "/users/profile", nil, &profile); err != nil {
		return nil, err
	}
	u.remember(&profile)
	return &profile, nil
}

// UpdateProfile updates the signed-in user's profile.
func (u *UsersAPI) UpdateProfile(ctx context.Context, update *model.ProfileUpdate) (*model.Profile, error) {
	var profile model.Profile
	if err := u.r.Do(ctx, http.MethodPut, "/users/profile", update, &profile); err != nil {
		return nil, err
	}
	u.remember(&profile)
	return &profile, nil
}

// GetUserByID gets a public profile.
func (u *UsersAPI) GetUserByID(ctx context.Context, id int64) (*model.Profile, error) {
	var profile model.Profile
	if err := u.r.Do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetXPHistory gets the signed-in user's XP events.
func (u *UsersAPI) GetXPHistory(ctx context.Context) ([]model.XPEvent, error) {
	var events []model.XPEvent
	if err := u.r.Do(ctx, http.MethodGet, "/users/profile/xp-history", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// DisconnectWallet removes the wallet link on the backend. Local keys are untouched.
func (u *UsersAPI) DisconnectWallet(ctx context.Context) (*model.Message, error) {
	var msg model.Message
	if err := u.r.Do(ctx, http.MethodPost, "/users/wallet/disconnect", nil, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// GetSolanaAddress gets the wallet address the backend has on record.
func (u *UsersAPI) GetSolanaAddress(ctx context.Context) (*model.SolanaAddress, error) {
	var addr model.SolanaAddress
	if err := u.r.Do(ctx, http.MethodGet, "/users/solana-address", nil, &addr); err != nil {
		return nil, err
	}
	return &addr, nil
}

// CurrentID returns the backend id of the last loaded profile.
func (u *UsersAPI) CurrentID() (int64, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	if u.current == nil || u.current.ID == 0 {
		return 0, ErrNoUser
	}
	return u.current.ID, nil
}

// Forget drops the remembered profile.
func (u *UsersAPI) Forget() {
	u.mu.Lock()
	u.current = nil
	u.mu.Unlock()
}

func (u *UsersAPI) remember(p *model.Profile) {
	u.mu.Lock()
	u.current = p
	u.mu.Unlock()
}
