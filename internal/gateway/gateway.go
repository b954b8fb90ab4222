// Package gateway sends authenticated requests to the backend API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/strun-app/strun-wallet/internal/auth"
)

const (
	defaultTimeout       = 20 * time.Second
	defaultErrorMessage  = "API request failed"
	excerptLen           = 200
	maxResponseBodyBytes = 4 << 20
)

var errEmptyRefresh = errors.New("refresh returned no session")

// SessionProvider is the identity provider surface used to resolve tokens.
type SessionProvider interface {
	GetSession(ctx context.Context) (*auth.Session, error)
	RefreshSession(ctx context.Context) (*auth.Session, error)
}

// TokenCache is the in-memory token fallback.
type TokenCache interface {
	Get() (string, bool)
	Set(token string)
}

// Options configures a Gateway.
type Options struct {
	BaseURL string
	Timeout time.Duration
}

// Gateway attaches the best available bearer token to every backend call
// and classifies the answer.
type Gateway struct {
	baseURL  string
	client   *http.Client
	timeout  time.Duration
	provider SessionProvider
	tokens   TokenCache
	logger   *zap.Logger
	group    singleflight.Group
}

// New creates a Gateway.
func New(opts Options, provider SessionProvider, tokens TokenCache, logger *zap.Logger) *Gateway {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Gateway{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		timeout:  timeout,
		provider: provider,
		tokens:   tokens,
		logger:   logger,
	}
}

// ResolveToken returns the freshest obtainable token: live session, then refresh,
// then the cached token. Concurrent callers share one resolution, which is detached
// from any single caller's cancellation and bounded by the gateway timeout.
func (g *Gateway) ResolveToken(ctx context.Context) (string, error) {
	ch := g.group.DoChan("token", func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.timeout)
		defer cancel()
		return g.resolveToken(rctx)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (g *Gateway) resolveToken(ctx context.Context) (string, error) {
	session, err := g.provider.GetSession(ctx)
	if err != nil {
		g.logger.Warn("session lookup failed", zap.Error(err))
	}
	if session != nil && session.AccessToken != "" {
		g.tokens.Set(session.AccessToken)
		return session.AccessToken, nil
	}

	refreshed, err := g.provider.RefreshSession(ctx)
	if err == nil && (refreshed == nil || refreshed.AccessToken == "") {
		err = errEmptyRefresh
	}
	if err == nil {
		g.tokens.Set(refreshed.AccessToken)
		g.logger.Debug("session refreshed")
		return refreshed.AccessToken, nil
	}

	if cached, ok := g.tokens.Get(); ok {
		g.logger.Warn("session refresh failed, using cached token", zap.Error(err))
		return cached, nil
	}
	return "", &AuthenticationRequiredError{Cause: err}
}

// Do calls endpoint (relative to the base URL) with in as JSON body and decodes the payload into out.
// in and out may be nil.
func (g *Gateway) Do(ctx context.Context, method, endpoint string, in, out any) error {
	token, err := g.ResolveToken(ctx)
	if err != nil {
		return err
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	url := g.baseURL + endpoint
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)

	log := g.logger.With(
		zap.String("method", method),
		zap.String("url", url),
		zap.String("request_id", requestID))

	resp, err := g.client.Do(req)
	if err != nil {
		log.Error("request failed", zap.Error(err))
		return &ProtocolError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		log.Error("failed to read response", zap.Error(err))
		return &ProtocolError{Status: resp.StatusCode, Err: err}
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		log.Error("non-JSON response",
			zap.Int("status", resp.StatusCode),
			zap.String("content_type", contentType),
			zap.String("body", excerpt(raw)))
		return &ProtocolError{
			Status:      resp.StatusCode,
			ContentType: contentType,
			Excerpt:     excerpt(raw),
			Err:         errors.New("server returned non-JSON response"),
		}
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}
	if !json.Valid(raw) {
		log.Error("invalid JSON response", zap.Int("status", resp.StatusCode), zap.String("body", excerpt(raw)))
		return &ProtocolError{
			Status:      resp.StatusCode,
			ContentType: contentType,
			Excerpt:     excerpt(raw),
			Err:         errors.New("invalid JSON response from server"),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &ApiError{Status: resp.StatusCode, Message: serverMessage(raw)}
		log.Warn("request rejected", zap.Int("status", resp.StatusCode), zap.String("message", apiErr.Message))
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.Error("unexpected response shape", zap.Error(err), zap.String("body", excerpt(raw)))
		return &ProtocolError{Status: resp.StatusCode, ContentType: contentType, Excerpt: excerpt(raw), Err: err}
	}
	return nil
}

// Get is Do with GET.
func (g *Gateway) Get(ctx context.Context, endpoint string, out any) error {
	return g.Do(ctx, http.MethodGet, endpoint, nil, out)
}

// Post is Do with POST.
func (g *Gateway) Post(ctx context.Context, endpoint string, in, out any) error {
	return g.Do(ctx, http.MethodPost, endpoint, in, out)
}

// Put is Do with PUT.
func (g *Gateway) Put(ctx context.Context, endpoint string, in, out any) error {
	return g.Do(ctx, http.MethodPut, endpoint, in, out)
}

func serverMessage(raw []byte) string {
	var body struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Error) == 0 {
		return defaultErrorMessage
	}

	var msg string
	if err := json.Unmarshal(body.Error, &msg); err == nil && msg != "" {
		return msg
	}
	// {"error":{"message":"..."}}
	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body.Error, &nested); err == nil && nested.Message != "" {
		return nested.Message
	}
	return defaultErrorMessage
}

func excerpt(raw []byte) string {
	if len(raw) > excerptLen {
		return string(raw[:excerptLen])
	}
	return string(raw)
}
