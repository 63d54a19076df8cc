// Package session holds the authenticated identity and credential token of one
// client (a browser session on the web front-end, or the terminal client).
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/ecolink/apiclient"
	apperrors "github.com/jrsteele09/ecolink/internal/errors"
	"github.com/jrsteele09/ecolink/internal/metrics"
	"github.com/jrsteele09/ecolink/tokenstore"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// DefaultKey is the token store key used when a Store owns the whole token store
const DefaultKey = "authToken"

// ErrLoginFailed is the only error Login surfaces; the cause is logged
var ErrLoginFailed = apperrors.ErrLoginFailed

type User struct {
	Name     string
	Email    string
	Type     apiclient.AccountType
	Document string
}

// Authenticator performs the credential exchange against the remote API
type Authenticator interface {
	Login(ctx context.Context, username, password string) (apiclient.LoginResponse, error)
}

type Store struct {
	mu    sync.RWMutex
	user  *User
	token *oauth2.Token

	api     Authenticator
	tokens  tokenstore.Store
	key     string
	metrics *metrics.Metrics
	now     func() time.Time
}

var _ apiclient.TokenSource = (*Store)(nil)

type Option func(*Store)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// WithClock overrides time.Now, used when judging persisted token expiry
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates an empty session. The token is mirrored into tokens under key.
func New(api Authenticator, tokens tokenstore.Store, key string, opts ...Option) *Store {
	if key == "" {
		key = DefaultKey
	}
	s := &Store{
		api:    api,
		tokens: tokens,
		key:    key,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login exchanges the credential pair for a token. On any failure the session is
// left as it was and ErrLoginFailed is returned.
func (s *Store) Login(ctx context.Context, identifier, secret string) error {
	err := s.login(ctx, identifier, secret)
	s.metrics.LoginResult(err)
	if err != nil {
		log.Warn().Err(err).Str("identifier", identifier).Msg("login failed")
		return ErrLoginFailed
	}
	return nil
}

func (s *Store) login(ctx context.Context, identifier, secret string) error {
	if strings.TrimSpace(identifier) == "" || secret == "" {
		return apperrors.Wrapf(apperrors.ErrInvalidInput, "identifier and secret are required")
	}

	resp, err := s.api.Login(ctx, identifier, secret)
	if err != nil {
		return apperrors.Wrapf(err, "[session Login] api login")
	}
	if resp.AccessToken == "" {
		return apperrors.ErrMissingToken
	}
	if resp.Email == "" && resp.Name == "" {
		return apperrors.Wrapf(apperrors.ErrInvalidInput, "[session Login] login response carried no identity")
	}

	if err := s.tokens.Set(s.key, resp.AccessToken); err != nil {
		return apperrors.Wrapf(err, "[session Login] persist token")
	}

	token := &oauth2.Token{
		AccessToken: resp.AccessToken,
		TokenType:   resp.TokenType,
	}
	if exp, ok := jwtExpiry(resp.AccessToken); ok {
		token.Expiry = exp
	}

	s.mu.Lock()
	s.user = &User{
		Name:     resp.Name,
		Email:    resp.Email,
		Type:     resp.Type,
		Document: resp.Document,
	}
	s.token = token
	s.mu.Unlock()

	log.Info().Str("email", resp.Email).Msg("logged in")
	return nil
}

// Logout clears the session and the persisted token. It never fails and may be
// called any number of times.
func (s *Store) Logout() {
	s.mu.Lock()
	s.user = nil
	s.token = nil
	s.mu.Unlock()

	if err := s.tokens.Delete(s.key); err != nil {
		log.Err(err).Str("key", s.key).Msg("failed to remove persisted token")
	}
}

// Restore reloads a persisted token. The identity is not restored, so the session
// stays unauthenticated while outgoing calls carry the token. A persisted JWT whose
// exp has passed is removed and ErrTokenExpired is returned.
func (s *Store) Restore() error {
	raw, err := s.tokens.Get(s.key)
	if errors.Is(err, tokenstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return apperrors.Wrapf(err, "[session Restore] load token")
	}

	token := &oauth2.Token{AccessToken: raw, TokenType: "Bearer"}
	if exp, ok := jwtExpiry(raw); ok {
		if !exp.After(s.now()) {
			if err := s.tokens.Delete(s.key); err != nil {
				log.Err(err).Str("key", s.key).Msg("failed to remove expired token")
			}
			return apperrors.ErrTokenExpired
		}
		token.Expiry = exp
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

// IsAuthenticated is true exactly when a login has succeeded and no logout followed
func (s *Store) IsAuthenticated() bool {
	return s.CurrentUser() != nil
}

// CurrentUser returns a copy of the logged in identity, or nil
func (s *Store) CurrentUser() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Token implements apiclient.TokenSource. It returns nil when no token is held.
func (s *Store) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return nil, nil
	}
	t := *s.token
	return &t, nil
}

// jwtExpiry reads exp from an unverified JWT. Opaque tokens report ok=false.
func jwtExpiry(raw string) (time.Time, bool) {
	claims := jwtlib.MapClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
