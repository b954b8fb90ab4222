package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	authgo "github.com/supabase-community/auth-go"
	"github.com/supabase-community/auth-go/types"
	"go.uber.org/zap"

	"github.com/strun-app/strun-wallet/internal/store"
)

const (
	defaultHTTPTimeout  = 15 * time.Second
	defaultExpiryLeeway = 30 * time.Second
	defaultSessionTTL   = time.Hour

	statusErrorPrefix = "response status code "
)

// Options configures the GoTrue client.
type Options struct {
	URL          string // project URL, e.g. https://xyz.supabase.co
	AnonKey      string
	Timeout      time.Duration
	ExpiryLeeway time.Duration // a token this close to expiry is not live
}

// GoTrue is a client of the Supabase auth (GoTrue) API built on auth-go.
// The session is persisted in the store under store.KeyAuthSession.
type GoTrue struct {
	api     authgo.Client
	baseURL string
	anonKey string
	leeway  time.Duration
	client  *http.Client
	store   store.Store
	logger  *zap.Logger
	now     func() time.Time

	// serializes session writes
	mu sync.Mutex

	lmu       sync.RWMutex
	listeners map[int]Listener
	nextID    int
}

// NewGoTrue creates a GoTrue client.
func NewGoTrue(opts Options, s store.Store, logger *zap.Logger) *GoTrue {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	leeway := opts.ExpiryLeeway
	if leeway <= 0 {
		leeway = defaultExpiryLeeway
	}

	baseURL := strings.TrimRight(opts.URL, "/") + "/auth/v1"
	httpClient := &http.Client{Timeout: timeout}
	api := authgo.New("", opts.AnonKey).
		WithCustomAuthURL(baseURL).
		WithClient(*httpClient)

	return &GoTrue{
		api:       api,
		baseURL:   baseURL,
		anonKey:   opts.AnonKey,
		leeway:    leeway,
		client:    httpClient,
		store:     s,
		logger:    logger,
		now:       time.Now,
		listeners: make(map[int]Listener),
	}
}

// OnAuthStateChange registers a listener and immediately delivers INITIAL_SESSION.
// The returned function unsubscribes.
func (g *GoTrue) OnAuthStateChange(listener Listener) (unsubscribe func()) {
	g.lmu.Lock()
	id := g.nextID
	g.nextID++
	g.listeners[id] = listener
	g.lmu.Unlock()

	session, err := g.GetSession(context.Background())
	if err != nil {
		g.logger.Warn("failed to load initial session", zap.Error(err))
	}
	listener(EventInitialSession, session)

	return func() {
		g.lmu.Lock()
		delete(g.listeners, id)
		g.lmu.Unlock()
	}
}

func (g *GoTrue) emit(event Event, session *Session) {
	g.lmu.RLock()
	listeners := make([]Listener, 0, len(g.listeners))
	for _, l := range g.listeners {
		listeners = append(listeners, l)
	}
	g.lmu.RUnlock()

	g.logger.Debug("auth state changed", zap.String("event", string(event)))
	for _, l := range listeners {
		l(event, session)
	}
}

// GetSession returns the stored session if its access token is still live, else nil.
func (g *GoTrue) GetSession(ctx context.Context) (*Session, error) {
	session, err := g.loadSession(ctx)
	if err != nil || session == nil {
		return nil, err
	}
	if !session.Live(g.now(), g.leeway) {
		return nil, nil
	}
	return session, nil
}

// RefreshSession exchanges the stored refresh token for a new session.
// A rejected refresh token clears the stored session and signs out.
func (g *GoTrue) RefreshSession(ctx context.Context) (*Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	current, err := g.loadSession(ctx)
	if err != nil {
		return nil, err
	}
	if current == nil || current.RefreshToken == "" {
		return nil, ErrNoSession
	}

	session, err := g.token(types.TokenRequest{GrantType: "refresh_token", RefreshToken: current.RefreshToken})
	if err != nil {
		var authErr *AuthError
		if errors.As(err, &authErr) && (authErr.Status == http.StatusBadRequest || authErr.Status == http.StatusUnauthorized) {
			g.logger.Warn("refresh token rejected, signing out", zap.Error(err))
			if rmErr := g.store.Remove(ctx, store.KeyAuthSession); rmErr != nil {
				g.logger.Error("failed to remove session", zap.Error(rmErr))
			}
			g.emit(EventSignedOut, nil)
		}
		return nil, err
	}

	if err := g.saveSession(ctx, session); err != nil {
		return nil, err
	}
	g.emit(EventTokenRefreshed, session)
	return session, nil
}

// SignInWithPassword signs in with email and password.
func (g *GoTrue) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	return g.signIn(ctx, func() (*Session, error) {
		return g.token(types.TokenRequest{GrantType: "password", Email: email, Password: password})
	})
}

// SignInWithIDToken signs in with an OIDC id token issued by provider (e.g. "google").
func (g *GoTrue) SignInWithIDToken(ctx context.Context, provider, idToken string) (*Session, error) {
	return g.signIn(ctx, func() (*Session, error) {
		return g.idTokenGrant(ctx, provider, idToken)
	})
}

func (g *GoTrue) signIn(ctx context.Context, grant func() (*Session, error)) (*Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	session, err := grant()
	if err != nil {
		return nil, err
	}
	if err := g.saveSession(ctx, session); err != nil {
		return nil, err
	}

	g.logger.Info("signed in", zap.String("user_id", session.User.ID))
	g.emit(EventSignedIn, session)
	return session, nil
}

// SetSession installs an externally obtained token pair. The access token is
// checked against the user endpoint.
func (g *GoTrue) SetSession(ctx context.Context, accessToken, refreshToken string) (*Session, error) {
	if accessToken == "" {
		return nil, &AuthError{Status: http.StatusBadRequest, Message: "access token is required"}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	resp, err := g.api.WithToken(accessToken).GetUser()
	if err != nil {
		return nil, classify(err)
	}
	user := fromUser(resp.User)

	now := g.now()
	expiresAt := tokenExpiry(accessToken)
	if expiresAt.IsZero() {
		expiresAt = now.Add(defaultSessionTTL)
	}

	session := &Session{
		AccessToken:  accessToken,
		TokenType:    "bearer",
		ExpiresIn:    int64(expiresAt.Sub(now).Seconds()),
		ExpiresAt:    expiresAt.Unix(),
		RefreshToken: refreshToken,
		User:         user,
	}
	if err := g.saveSession(ctx, session); err != nil {
		return nil, err
	}
	g.emit(EventSignedIn, session)
	return session, nil
}

// SignOut revokes the session on the server (best effort) and forgets it locally.
func (g *GoTrue) SignOut(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	session, err := g.loadSession(ctx)
	if err != nil {
		g.logger.Warn("failed to load session for sign out", zap.Error(err))
	}
	if session != nil && session.AccessToken != "" {
		if err := g.api.WithToken(session.AccessToken).Logout(); err != nil {
			g.logger.Warn("server sign out failed", zap.Error(classify(err)))
		}
	}

	if err := g.store.Remove(ctx, store.KeyAuthSession); err != nil {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	g.emit(EventSignedOut, nil)
	return nil
}

func (g *GoTrue) token(req types.TokenRequest) (*Session, error) {
	resp, err := g.api.Token(req)
	if err != nil {
		return nil, classify(err)
	}
	return g.completeSession(fromSession(resp.Session))
}

func (g *GoTrue) completeSession(session *Session) (*Session, error) {
	if session.AccessToken == "" {
		return nil, &AuthError{Status: http.StatusBadGateway, Message: "no session returned"}
	}
	if session.ExpiresAt == 0 && session.ExpiresIn > 0 {
		session.ExpiresAt = g.now().Add(time.Duration(session.ExpiresIn) * time.Second).Unix()
	}
	return session, nil
}

// idTokenGrant posts the OIDC id_token grant, which auth-go's Token does not accept.
func (g *GoTrue) idTokenGrant(ctx context.Context, provider, idToken string) (*Session, error) {
	raw, err := json.Marshal(map[string]string{"provider": provider, "id_token": idToken})
	if err != nil {
		return nil, fmt.Errorf("failed to encode auth request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/token?grant_type=id_token", bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to build auth request: %w", err)
	}
	req.Header.Set("apikey", g.anonKey)
	req.Header.Set("Authorization", "Bearer "+g.anonKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach auth server: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read auth response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, newAuthError(resp.StatusCode, body)
	}

	var tr types.TokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("failed to decode auth response: %w", err)
	}
	return g.completeSession(fromSession(tr.Session))
}

// errorBody covers the error shapes GoTrue has used across versions
type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func newAuthError(status int, body []byte) *AuthError {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)
	return &AuthError{
		Status:  status,
		Code:    firstNonEmpty(eb.ErrorCode, eb.Error),
		Message: firstNonEmpty(eb.ErrorDescription, eb.Msg, eb.Message, eb.Error, http.StatusText(status)),
	}
}

// classify turns an auth-go status error ("response status code 400: {...}") into
// an AuthError. Anything else is a transport failure.
func classify(err error) error {
	msg, ok := strings.CutPrefix(err.Error(), statusErrorPrefix)
	if !ok {
		return fmt.Errorf("failed to reach auth server: %w", err)
	}
	code, body, _ := strings.Cut(msg, ":")
	status, convErr := strconv.Atoi(strings.TrimSpace(code))
	if convErr != nil {
		return fmt.Errorf("failed to reach auth server: %w", err)
	}
	return newAuthError(status, []byte(strings.TrimSpace(body)))
}

func fromSession(s types.Session) *Session {
	return &Session{
		AccessToken:  s.AccessToken,
		TokenType:    s.TokenType,
		ExpiresIn:    int64(s.ExpiresIn),
		ExpiresAt:    int64(s.ExpiresAt),
		RefreshToken: s.RefreshToken,
		User:         fromUser(s.User),
	}
}

func fromUser(u types.User) User {
	return User{
		ID:           u.ID.String(),
		Email:        u.Email,
		UserMetadata: u.UserMetadata,
	}
}

func (g *GoTrue) loadSession(ctx context.Context) (*Session, error) {
	raw, ok, err := g.store.Get(ctx, store.KeyAuthSession)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		g.logger.Warn("discarding unreadable stored session", zap.Error(err))
		return nil, nil
	}
	return &session, nil
}

func (g *GoTrue) saveSession(ctx context.Context, session *Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := g.store.Set(ctx, store.KeyAuthSession, string(raw)); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

// tokenExpiry reads the exp claim of a JWT without verifying it.
func tokenExpiry(token string) time.Time {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
