package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/strun-app/strun-wallet/internal/auth"
)

type mockProvider struct {
	mu         sync.Mutex
	session    *auth.Session
	sessionErr error
	refreshed  *auth.Session
	refreshErr error

	getCalls     int
	refreshCalls int
}

func (m *mockProvider) GetSession(context.Context) (*auth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	return m.session, m.sessionErr
}

func (m *mockProvider) RefreshSession(context.Context) (*auth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshCalls++
	return m.refreshed, m.refreshErr
}

type backend struct {
	srv   *httptest.Server
	hits  atomic.Int32
	auth  atomic.Value
	reply func(w http.ResponseWriter, r *http.Request)
}

func newBackend(t *testing.T, reply func(w http.ResponseWriter, r *http.Request)) *backend {
	b := &backend{reply: reply}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.hits.Add(1)
		b.auth.Store(r.Header.Get("Authorization"))
		b.reply(w, r)
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func jsonReply(status int, body string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}
}

func newGateway(url string, p SessionProvider, tokens TokenCache) *Gateway {
	return New(Options{BaseURL: url}, p, tokens, zap.NewNop())
}

func TestResolveTokenFromSession(t *testing.T) {
	tokens := auth.NewTokenStore()
	tokens.Set("stale")
	p := &mockProvider{session: &auth.Session{AccessToken: "fresh"}}

	tok, err := newGateway("http://unused", p, tokens).ResolveToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok)
	assert.Equal(t, 0, p.refreshCalls)

	cached, _ := tokens.Get()
	assert.Equal(t, "fresh", cached)
}

func TestResolveTokenFromRefresh(t *testing.T) {
	tokens := auth.NewTokenStore()
	p := &mockProvider{refreshed: &auth.Session{AccessToken: "renewed"}}

	tok, err := newGateway("http://unused", p, tokens).ResolveToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "renewed", tok)

	cached, _ := tokens.Get()
	assert.Equal(t, "renewed", cached)
}

func TestResolveTokenFallsBackToCache(t *testing.T) {
	b := newBackend(t, jsonReply(http.StatusOK, `{"ok":true}`))
	tokens := auth.NewTokenStore()
	tokens.Set("cached")
	p := &mockProvider{refreshErr: errors.New("refresh failed")}

	var out map[string]bool
	require.NoError(t, newGateway(b.srv.URL, p, tokens).Get(context.Background(), "/users/profile", &out))
	assert.True(t, out["ok"])
	assert.Equal(t, "Bearer cached", b.auth.Load())
}

func TestResolveTokenEmptyRefreshFallsBackToCache(t *testing.T) {
	tokens := auth.NewTokenStore()
	tokens.Set("cached")

	tok, err := newGateway("http://unused", &mockProvider{}, tokens).ResolveToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cached", tok)
}

func TestAuthenticationRequiredSkipsHTTP(t *testing.T) {
	b := newBackend(t, jsonReply(http.StatusOK, `{}`))
	p := &mockProvider{
		sessionErr: errors.New("storage unavailable"),
		refreshErr: auth.ErrNoSession,
	}

	err := newGateway(b.srv.URL, p, auth.NewTokenStore()).Get(context.Background(), "/users/profile", nil)
	require.Error(t, err)
	assert.True(t, IsAuthenticationRequired(err))
	assert.ErrorIs(t, err, auth.ErrNoSession)
	assert.Equal(t, int32(0), b.hits.Load())
}

func TestNonJSONIsProtocolError(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "<html>not json</html>")
	})
	p := &mockProvider{session: &auth.Session{AccessToken: "t"}}

	err := newGateway(b.srv.URL, p, auth.NewTokenStore()).Get(context.Background(), "/tasks", nil)
	require.Error(t, err)
	assert.True(t, IsProtocolError(err))
	assert.False(t, IsApiError(err))

	var pe *ProtocolError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "<html>not json</html>", pe.Excerpt)
}

func TestApiErrorCarriesServerMessage(t *testing.T) {
	b := newBackend(t, jsonReply(http.StatusForbidden, `{"error":"forbidden"}`))
	p := &mockProvider{session: &auth.Session{AccessToken: "t"}}

	err := newGateway(b.srv.URL, p, auth.NewTokenStore()).Get(context.Background(), "/tasks", nil)
	require.Error(t, err)

	var apiErr *ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "forbidden", apiErr.Message)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
}

func TestApiErrorDefaultMessage(t *testing.T) {
	b := newBackend(t, jsonReply(http.StatusInternalServerError, `{"detail":"boom"}`))
	p := &mockProvider{session: &auth.Session{AccessToken: "t"}}

	err := newGateway(b.srv.URL, p, auth.NewTokenStore()).Get(context.Background(), "/tasks", nil)
	var apiErr *ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "API request failed", apiErr.Message)
}

func TestInvalidJSONIsProtocolError(t *testing.T) {
	b := newBackend(t, jsonReply(http.StatusOK, `{"broken":`))
	p := &mockProvider{session: &auth.Session{AccessToken: "t"}}

	err := newGateway(b.srv.URL, p, auth.NewTokenStore()).Get(context.Background(), "/tasks", nil)
	assert.True(t, IsProtocolError(err))
}

func TestEmptyBodyIsEmptyObject(t *testing.T) {
	b := newBackend(t, jsonReply(http.StatusOK, ""))
	p := &mockProvider{session: &auth.Session{AccessToken: "t"}}

	var out map[string]any
	require.NoError(t, newGateway(b.srv.URL, p, auth.NewTokenStore()).Post(context.Background(), "/tasks/1/accept", nil, &out))
	assert.Empty(t, out)
}

func TestTransportFailureIsProtocolError(t *testing.T) {
	b := newBackend(t, jsonReply(http.StatusOK, `{}`))
	url := b.srv.URL
	b.srv.Close()
	p := &mockProvider{session: &auth.Session{AccessToken: "t"}}

	err := newGateway(url, p, auth.NewTokenStore()).Get(context.Background(), "/tasks", nil)
	assert.True(t, IsProtocolError(err))
}

func TestRequestHeadersAndBody(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/users/profile", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
		assert.Greater(t, r.ContentLength, int64(0))

		jsonReply(http.StatusOK, `{"username":"runner"}`)(w, r)
	})
	p := &mockProvider{session: &auth.Session{AccessToken: "t"}}

	var out struct {
		Username string `json:"username"`
	}
	g := newGateway(b.srv.URL+"/api/", p, auth.NewTokenStore())
	require.NoError(t, g.Put(context.Background(), "/users/profile", map[string]string{"username": "runner"}, &out))
	assert.Equal(t, "runner", out.Username)
	assert.Equal(t, "Bearer t", b.auth.Load())
}

type blockingProvider struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
	calls   atomic.Int32
}

func (p *blockingProvider) GetSession(context.Context) (*auth.Session, error) {
	return nil, nil
}

func (p *blockingProvider) RefreshSession(ctx context.Context) (*auth.Session, error) {
	p.calls.Add(1)
	p.once.Do(func() { close(p.started) })
	select {
	case <-p.release:
		return &auth.Session{AccessToken: "refreshed"}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestResolveTokenSurvivesCancelledPeer(t *testing.T) {
	p := &blockingProvider{started: make(chan struct{}), release: make(chan struct{})}
	g := newGateway("http://unused", p, auth.NewTokenStore())

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := g.ResolveToken(ctxA)
		errA <- err
	}()
	<-p.started

	type result struct {
		tok string
		err error
	}
	resB := make(chan result, 1)
	go func() {
		tok, err := g.ResolveToken(context.Background())
		resB <- result{tok, err}
	}()

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(p.release)
	r := <-resB
	require.NoError(t, r.err)
	assert.Equal(t, "refreshed", r.tok)
}

func TestResolveTokenHonoursCallerCancel(t *testing.T) {
	p := &blockingProvider{started: make(chan struct{}), release: make(chan struct{})}
	defer close(p.release)
	g := newGateway("http://unused", p, auth.NewTokenStore())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-p.started
		cancel()
	}()

	_, err := g.ResolveToken(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsAuthenticationRequired(err))
}
