package loginsession

import (
	"sync/atomic"
	"time"

	"github.com/jrsteele09/ecolink/apiclient"
	"github.com/jrsteele09/ecolink/collections"
	"github.com/jrsteele09/ecolink/session"
	"golang.org/x/oauth2"
)

// Session is the per-browser state behind the session cookie
type Session struct {
	ID string

	// Auth holds the token for this browser; API sends it on every call
	Auth *session.Store
	API  *apiclient.Client

	Points    *collections.Service
	Loader    *collections.Loader
	Schedules *collections.Tracker

	CreatedAt time.Time
	lastSeen  atomic.Int64
}

// Touch records activity at t
func (s *Session) Touch(t time.Time) {
	s.lastSeen.Store(t.UnixNano())
}

func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

var _ apiclient.TokenSource = (*Session)(nil)

// Token hands out the current credential of Auth, so API can be built before Auth
// and both still share one token
func (s *Session) Token() (*oauth2.Token, error) {
	if s.Auth == nil {
		return nil, nil
	}
	return s.Auth.Token()
}

type Repo interface {
	Upsert(sessionID string, session *Session) error
	Get(sessionID string) (*Session, error)
	Delete(sessionID string) error
	// Expire removes sessions not seen since cutoff and returns their ids
	Expire(cutoff time.Time) []string
}
