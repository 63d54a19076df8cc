package server

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/jrsteele09/ecolink/apiclient"
	"github.com/jrsteele09/ecolink/internal/config"
	"github.com/jrsteele09/ecolink/internal/metrics"
	"github.com/jrsteele09/ecolink/registration"
	"github.com/jrsteele09/ecolink/server/loginsession"
	"github.com/jrsteele09/ecolink/tokenstore"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env           string // Environment (e.g., "DEV", "PROD")
	mux           *http.ServeMux
	routes        []string
	config        config.Config
	api           *apiclient.Client
	tokens        tokenstore.Store
	metrics       *metrics.Metrics
	loginSessions loginsession.Repo
	registrations registration.Repo

	sessionsMu sync.Mutex
}

// New wires the web front-end. api is the unbound client; each browser session gets
// a copy bound to its own token.
func New(config config.Config, api *apiclient.Client, tokens tokenstore.Store, m *metrics.Metrics, loginSessionRepo loginsession.Repo, registrationRepo registration.Repo) (*Server, error) {
	if api == nil {
		return nil, fmt.Errorf("[Server New] api client is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("[Server New] token store is required")
	}

	if m == nil {
		m = metrics.New()
	}

	s := &Server{
		mux:           http.NewServeMux(),
		config:        config,
		api:           api,
		tokens:        tokens,
		metrics:       m,
		loginSessions: loginSessionRepo,
		registrations: registrationRepo,
	}
	s.env = config.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Str("method", colourMethod(method)).Msg(path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
