// Package session holds the authenticated session: the bearer token, the
// claims decoded from it and the device push token.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	gosync "sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nhle/boardsync/internal/credential"
	"github.com/nhle/boardsync/internal/logging"
)

// ErrNoSession is returned when no usable session exists, including while
// an expired session is being torn down.
var ErrNoSession = errors.New("no session")

const (
	tokenKey     = "session_token"
	pushTokenKey = "push_token"
)

// Credentials persists secrets between runs.
type Credentials interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Authenticator exchanges credentials for a token.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// PushRegistrar registers device push tokens with the server.
type PushRegistrar interface {
	RegisterPushToken(ctx context.Context, token, platform string) error
	UnregisterPushToken(ctx context.Context, token string) error
}

// Claims are the fields read from the access token. The signature is not
// verified; the server remains the authority.
type Claims struct {
	UserID    string
	ExpiresAt time.Time
}

// Expired reports whether the token carried an expiry before now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Session is safe for concurrent use. It implements api.TokenSource.
type Session struct {
	creds Credentials
	now   func() time.Time

	mu          gosync.Mutex
	token       string
	claims      Claims
	pushToken   string
	tearingDown bool
	onExpired   []func()
}

// New creates a logged-out session backed by creds.
func New(creds Credentials) *Session {
	return &Session{creds: creds, now: time.Now}
}

// Load restores a session saved by an earlier run. It returns
// ErrNoSession when nothing usable is stored; an expired token is removed.
func (s *Session) Load() error {
	token, err := s.creds.Get(tokenKey)
	if errors.Is(err, credential.ErrNotFound) {
		return ErrNoSession
	}
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}
	push, err := s.creds.Get(pushTokenKey)
	if err != nil && !errors.Is(err, credential.ErrNotFound) {
		return fmt.Errorf("loading push token: %w", err)
	}

	claims := parseClaims(token)
	if claims.Expired(s.now()) {
		logging.Logger.WithField("expired_at", claims.ExpiresAt).Info("stored session expired")
		if err := s.creds.Delete(tokenKey); err != nil {
			return err
		}
		return ErrNoSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.claims = claims
	s.pushToken = push
	s.tearingDown = false
	return nil
}

// Login authenticates and persists the new token.
func (s *Session) Login(ctx context.Context, auth Authenticator, email, password string) error {
	token, err := auth.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("logging in: %w", err)
	}
	if err := s.creds.Set(tokenKey, token); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.claims = parseClaims(token)
	s.tearingDown = false
	logging.Logger.WithField("user", s.claims.UserID).Info("logged in")
	return nil
}

// Token returns the bearer token, or "" when logged out. During teardown
// of an expired session it returns ErrNoSession.
func (s *Session) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tearingDown {
		return "", ErrNoSession
	}
	return s.token, nil
}

// Claims returns the decoded token claims.
func (s *Session) Claims() (Claims, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.claims, s.token != "" && !s.tearingDown
}

// LoggedIn reports whether a token is held.
func (s *Session) LoggedIn() bool {
	_, ok := s.Claims()
	return ok
}

// PushToken returns the registered device push token, if any.
func (s *Session) PushToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pushToken
}

// RegisterPushToken registers token with the server and persists it.
func (s *Session) RegisterPushToken(ctx context.Context, push PushRegistrar, token, platform string) error {
	if err := push.RegisterPushToken(ctx, token, platform); err != nil {
		return fmt.Errorf("registering push token: %w", err)
	}
	if err := s.creds.Set(pushTokenKey, token); err != nil {
		return err
	}
	s.mu.Lock()
	s.pushToken = token
	s.mu.Unlock()
	return nil
}

// OnExpired registers fn to run once when the session expires.
func (s *Session) OnExpired(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onExpired = append(s.onExpired, fn)
}

// Logout unregisters the push token, when push is non-nil, and clears all
// stored credentials. A failed unregister is logged and does not stop the
// logout.
func (s *Session) Logout(ctx context.Context, push PushRegistrar) error {
	pushToken := s.PushToken()
	if push != nil && pushToken != "" {
		if err := push.UnregisterPushToken(ctx, pushToken); err != nil {
			logging.Logger.WithError(err).Warn("unregistering push token failed")
		}
	}

	s.mu.Lock()
	s.token = ""
	s.claims = Claims{}
	s.pushToken = ""
	s.mu.Unlock()
	return s.clear()
}

// Expire tears the session down after the server rejected the token:
// credentials are cleared and the expiry hooks run once. Further calls
// are ignored until the next Login or Load.
func (s *Session) Expire() {
	s.mu.Lock()
	if s.tearingDown {
		s.mu.Unlock()
		return
	}
	s.tearingDown = true
	s.token = ""
	s.claims = Claims{}
	s.pushToken = ""
	hooks := append([]func(){}, s.onExpired...)
	s.mu.Unlock()

	logging.Logger.Warn("session expired")
	if err := s.clear(); err != nil {
		logging.Logger.WithError(err).Error("clearing expired session")
	}
	for _, fn := range hooks {
		fn()
	}
}

func (s *Session) clear() error {
	var errs []error
	for _, key := range []string{tokenKey, pushTokenKey} {
		if err := s.creds.Delete(key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// parseClaims decodes the token payload without verifying it. Tokens that
// are not JWTs yield empty claims.
func parseClaims(token string) Claims {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		logging.Logger.WithError(err).Debug("session token is not a readable JWT")
		return Claims{}
	}

	var c Claims
	switch id := mc["user_id"].(type) {
	case string:
		c.UserID = id
	case float64:
		c.UserID = strconv.FormatFloat(id, 'f', -1, 64)
	}
	if c.UserID == "" {
		c.UserID, _ = mc.GetSubject()
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c
}
