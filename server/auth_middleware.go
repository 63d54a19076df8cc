package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/ecolink/collections"
	apperrors "github.com/jrsteele09/ecolink/internal/errors"
	"github.com/jrsteele09/ecolink/server/loginsession"
	"github.com/jrsteele09/ecolink/session"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeySession stores the *loginsession.Session for the request
	ContextKeySession ContextKey = "browser_session"
)

const msgLoginRequired = "Faça login para continuar."

// SessionMiddleware attaches the browser session, creating one and setting the cookie
// when the request has none
func (s *Server) SessionMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bs := s.browserSession(w, r)
		ctx := context.WithValue(r.Context(), ContextKeySession, bs)
		next(w, r.WithContext(ctx))
	}
}

// RequireLogin is middleware for pages that need an authenticated session
func (s *Server) RequireLogin() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			bs := sessionFrom(r)
			if bs == nil || !bs.Auth.IsAuthenticated() {
				redirectWithError(w, r, RouteLogin, msgLoginRequired)
				return
			}
			next(w, r)
		}
	}
}

// sessionFrom returns the session attached by SessionMiddleware
func sessionFrom(r *http.Request) *loginsession.Session {
	bs, _ := r.Context().Value(ContextKeySession).(*loginsession.Session)
	return bs
}

func (s *Server) browserSession(w http.ResponseWriter, r *http.Request) *loginsession.Session {
	now := time.Now()
	maxAge := int(s.config.GetMaxSessionAge().Seconds())

	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()

	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if _, err := uuid.Parse(cookie.Value); err == nil {
			if bs, err := s.loginSessions.Get(cookie.Value); err == nil {
				bs.Touch(now)
				return bs
			}
			// Known cookie, unknown session: the server restarted, so pick up any
			// persisted token
			bs := s.newBrowserSession(cookie.Value, now)
			if err := bs.Auth.Restore(); err != nil {
				if errors.Is(err, apperrors.ErrTokenExpired) {
					log.Info().Str("session", bs.ID).Msg("persisted token expired")
				} else {
					log.Err(err).Str("session", bs.ID).Msg("failed to restore token")
				}
			}
			s.saveBrowserSession(bs)
			s.SetLoginSessionCookie(w, bs.ID, r, maxAge)
			return bs
		}
	}

	bs := s.newBrowserSession(uuid.NewString(), now)
	s.saveBrowserSession(bs)
	s.SetLoginSessionCookie(w, bs.ID, r, maxAge)
	return bs
}

func (s *Server) newBrowserSession(id string, now time.Time) *loginsession.Session {
	bs := &loginsession.Session{
		ID:        id,
		CreatedAt: now,
	}
	bs.API = s.api.WithTokens(bs)
	bs.Auth = session.New(bs.API, s.tokens, tokenKey(id), session.WithMetrics(s.metrics))
	bs.Points = collections.NewService(bs.API,
		collections.WithPageLimit(s.config.GetCollectionsPageLimit()),
		collections.WithMetrics(s.metrics))
	bs.Loader = collections.NewLoader(bs.Points)
	bs.Schedules = collections.NewTracker()
	bs.Touch(now)
	return bs
}

func (s *Server) saveBrowserSession(bs *loginsession.Session) {
	if err := s.loginSessions.Upsert(bs.ID, bs); err != nil {
		log.Err(err).Str("session", bs.ID).Msg("failed to store browser session")
	}
}

// ExpireSessions drops browser sessions idle for longer than the configured maximum
// age, along with their registration drafts and persisted tokens
func (s *Server) ExpireSessions(now time.Time) int {
	expired := s.loginSessions.Expire(now.Add(-s.config.GetMaxSessionAge()))
	for _, id := range expired {
		if err := s.registrations.Delete(id); err != nil {
			log.Err(err).Str("session", id).Msg("failed to delete registration draft")
		}
		if err := s.tokens.Delete(tokenKey(id)); err != nil {
			log.Err(err).Str("session", id).Msg("failed to delete persisted token")
		}
	}
	if len(expired) > 0 {
		log.Info().Int("count", len(expired)).Msg("expired browser sessions")
	}
	return len(expired)
}
