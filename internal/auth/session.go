package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Event is an identity provider session change.
type Event string

const (
	EventInitialSession Event = "INITIAL_SESSION"
	EventSignedIn       Event = "SIGNED_IN"
	EventTokenRefreshed Event = "TOKEN_REFRESHED"
	EventSignedOut      Event = "SIGNED_OUT"
)

// Listener receives session change events. session is nil when signed out.
type Listener func(event Event, session *Session)

// ErrNoSession is returned when an operation needs a stored session and there is none.
var ErrNoSession = errors.New("no auth session")

// Session is the identity provider session as returned by the token endpoint
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// User is the identity provider user
type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

// MetadataString returns a string field of the user metadata.
func (u User) MetadataString(key string) string {
	v, _ := u.UserMetadata[key].(string)
	return v
}

// DisplayName is the metadata name, falling back to the email local part.
func (u User) DisplayName() string {
	if name := u.MetadataString("name"); name != "" {
		return name
	}
	if name := u.MetadataString("full_name"); name != "" {
		return name
	}
	local, _, _ := strings.Cut(u.Email, "@")
	return local
}

// Expiry returns when the access token expires. Zero means unknown.
func (s *Session) Expiry() time.Time {
	if s.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.Unix(s.ExpiresAt, 0)
}

// Live reports whether the access token is still usable at now, with leeway.
func (s *Session) Live(now time.Time, leeway time.Duration) bool {
	if s == nil || s.AccessToken == "" {
		return false
	}
	exp := s.Expiry()
	return exp.IsZero() || now.Add(leeway).Before(exp)
}

// AuthError is an error answer from the identity provider
type AuthError struct {
	Status  int
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("auth error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("auth error %d: %s", e.Status, e.Message)
}

// IsAuthError checks if err is AuthError
func IsAuthError(err error) bool {
	var target *AuthError
	return errors.As(err, &target)
}
