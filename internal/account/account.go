// Package account orchestrates sign-in: identity provider session, bearer token,
// custodial wallet provisioning and backend profile.
package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/strun-app/strun-wallet/internal/auth"
	"github.com/strun-app/strun-wallet/internal/model"
	"github.com/strun-app/strun-wallet/internal/store"
)

// IdentityProvider is the sign-in surface of the identity provider.
type IdentityProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*auth.Session, error)
	SignInWithIDToken(ctx context.Context, provider, idToken string) (*auth.Session, error)
	GetSession(ctx context.Context) (*auth.Session, error)
	RefreshSession(ctx context.Context) (*auth.Session, error)
	SignOut(ctx context.Context) error
}

// Tokens is the in-memory bearer token cache.
type Tokens interface {
	Set(token string)
	Clear()
}

// Wallet provisions the custodial wallet.
type Wallet interface {
	PublicAddress(ctx context.Context) (string, error)
}

// Profiles is the backend user API.
type Profiles interface {
	GetProfile(ctx context.Context) (*model.Profile, error)
	DisconnectWallet(ctx context.Context) (*model.Message, error)
	Forget()
}

// Service signs users in and out.
type Service struct {
	idp      IdentityProvider
	tokens   Tokens
	wallet   Wallet
	profiles Profiles
	cache    *store.Lenient
	logger   *zap.Logger
}

// NewService creates the account service. cache holds the last signed-in user.
func NewService(idp IdentityProvider, tokens Tokens, wallet Wallet, profiles Profiles, cache *store.Lenient, logger *zap.Logger) *Service {
	return &Service{
		idp:      idp,
		tokens:   tokens,
		wallet:   wallet,
		profiles: profiles,
		cache:    cache,
		logger:   logger,
	}
}

// SignInWithPassword signs in with email and password.
func (s *Service) SignInWithPassword(ctx context.Context, email, password string) (*model.User, error) {
	session, err := s.idp.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}
	return s.completeSignIn(ctx, session)
}

// SignInWithIDToken signs in with an OIDC id token (e.g. a Google credential).
func (s *Service) SignInWithIDToken(ctx context.Context, provider, idToken string) (*model.User, error) {
	if idToken == "" {
		return nil, fmt.Errorf("failed to sign in: no %s credential token provided", provider)
	}
	session, err := s.idp.SignInWithIDToken(ctx, provider, idToken)
	if err != nil {
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}
	return s.completeSignIn(ctx, session)
}

func (s *Service) completeSignIn(ctx context.Context, session *auth.Session) (*model.User, error) {
	s.tokens.Set(session.AccessToken)

	address, err := s.wallet.PublicAddress(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to provision wallet: %w", err)
	}
	s.logger.Info("wallet ready", zap.String("address", address))

	user := s.loadUser(ctx, session, address)
	s.saveUser(ctx, user)
	return user, nil
}

// Restore rebuilds the signed-in user from a stored session, refreshing it when the
// access token has expired. It returns nil when there is no usable session, after
// dropping stale local state. A refresh that fails for any other reason keeps the
// local state and returns the error.
func (s *Service) Restore(ctx context.Context) (*model.User, error) {
	session, err := s.idp.GetSession(ctx)
	if err != nil {
		s.logger.Warn("failed to check stored session", zap.Error(err))
	}
	if session == nil {
		session, err = s.idp.RefreshSession(ctx)
		switch {
		case errors.Is(err, auth.ErrNoSession) || auth.IsAuthError(err):
			s.forget(ctx)
			return nil, nil
		case err != nil:
			return nil, fmt.Errorf("failed to refresh session: %w", err)
		case session == nil || session.AccessToken == "":
			s.forget(ctx)
			return nil, nil
		}
		s.logger.Info("session refreshed on restore")
	}

	s.tokens.Set(session.AccessToken)
	user := s.loadUser(ctx, session, "")
	s.saveUser(ctx, user)
	return user, nil
}

func (s *Service) forget(ctx context.Context) {
	s.tokens.Clear()
	s.cache.Remove(ctx, store.KeyUser)
}

// SignOut ends the session and drops the cached user and token. Local wallet keys stay.
func (s *Service) SignOut(ctx context.Context) error {
	err := s.idp.SignOut(ctx)

	s.forget(ctx)
	s.profiles.Forget()

	if err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	s.logger.Info("signed out")
	return nil
}

// DisconnectWallet unlinks the wallet on the backend only. The local keypair is kept
// and stays usable for signing.
func (s *Service) DisconnectWallet(ctx context.Context) error {
	if _, err := s.profiles.DisconnectWallet(ctx); err != nil {
		return fmt.Errorf("failed to disconnect wallet: %w", err)
	}
	s.logger.Warn("wallet disconnected on the backend; the local keypair is retained")
	return nil
}

// CurrentUser returns the cached signed-in user.
func (s *Service) CurrentUser(ctx context.Context) (*model.User, bool) {
	raw, ok := s.cache.Get(ctx, store.KeyUser)
	if !ok {
		return nil, false
	}
	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.logger.Warn("discarding unreadable cached user", zap.Error(err))
		return nil, false
	}
	return &user, true
}

// loadUser prefers backend profile fields and falls back to identity fields.
func (s *Service) loadUser(ctx context.Context, session *auth.Session, walletAddress string) *model.User {
	user := &model.User{
		ID:            session.User.ID,
		Email:         session.User.Email,
		Name:          session.User.DisplayName(),
		Picture:       session.User.MetadataString("picture"),
		WalletAddress: walletAddress,
	}

	profile, err := s.profiles.GetProfile(ctx)
	if err != nil {
		s.logger.Warn("backend profile unavailable, using identity data", zap.Error(err))
		return user
	}

	if profile.DisplayName != "" {
		user.Name = profile.DisplayName
	}
	if profile.AvatarURL != "" {
		user.Picture = profile.AvatarURL
	}
	if profile.WalletAddress != "" {
		user.WalletAddress = profile.WalletAddress
	}
	user.Username = profile.DisplayName
	user.BackendID = profile.ID
	user.XP = profile.XP
	user.ReputationScore = profile.ReputationScore
	return user
}

func (s *Service) saveUser(ctx context.Context, user *model.User) {
	raw, err := json.Marshal(user)
	if err != nil {
		s.logger.Warn("failed to encode user", zap.Error(err))
		return
	}
	s.cache.Set(ctx, store.KeyUser, string(raw))
}
