package auth

import "sync"

// TokenStore holds the bearer token to use right now. Last writer wins.
type TokenStore struct {
	mu    sync.RWMutex
	token string
}

// NewTokenStore creates an empty token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Set replaces the token. An empty token clears it.
func (t *TokenStore) Set(token string) {
	t.mu.Lock()
	t.token = token
	t.mu.Unlock()
}

// Get returns the cached token, if any.
func (t *TokenStore) Get() (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.token, t.token != ""
}

// Clear drops the cached token.
func (t *TokenStore) Clear() {
	t.Set("")
}

// HandleAuthEvent keeps the cache in sync with the identity provider.
// Register it with GoTrue.OnAuthStateChange.
func (t *TokenStore) HandleAuthEvent(_ Event, session *Session) {
	if session != nil && session.AccessToken != "" {
		t.Set(session.AccessToken)
		return
	}
	t.Clear()
}
