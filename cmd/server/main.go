package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/ecolink/apiclient"
	"github.com/jrsteele09/ecolink/internal/config"
	"github.com/jrsteele09/ecolink/internal/logging"
	"github.com/jrsteele09/ecolink/internal/metrics"
	"github.com/jrsteele09/ecolink/registration"
	"github.com/jrsteele09/ecolink/server"
	"github.com/jrsteele09/ecolink/server/loginsession"
	"github.com/jrsteele09/ecolink/tokenstore"
	"github.com/rs/zerolog/log"
)

const sessionSweepInterval = 10 * time.Minute

func main() {
	for {
		if err := run(); err != nil {
			log.Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	logging.Setup(c.GetEnv(), c.GetLogLevel())
	displayAppname(c.GetAppName())

	handler, err := newServer(c)
	if err != nil {
		return err
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go sweepSessions(ctx, handler)

	httpServer := &http.Server{Addr: c.GetPort(), Handler: handler}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- listenAndServe(httpServer)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

func newServer(c config.Config) (*server.Server, error) {
	m := metrics.New()
	api, err := apiclient.New(c.GetAPIBaseURL(), nil,
		apiclient.WithHTTPClient(&http.Client{Timeout: c.GetAPITimeout()}),
		apiclient.WithMetrics(m))
	if err != nil {
		return nil, err
	}

	tokens, err := tokenstore.NewFile(filepath.Join(c.GetDataFolder(), "tokens.json"), c.GetTokenStoreKey())
	if err != nil {
		return nil, err
	}
	log.Info().Str("api", api.BaseURL()).Msg("remote API configured")
	if c.GetTokenStoreKey() == "" {
		log.Warn().Msg("TOKEN_STORE_KEY is not set, tokens are stored unencrypted")
	}

	return server.New(c, api, tokens, m, loginsession.NewInMemoryLoginSessionRepo(), registration.NewInMemoryRepo())
}

func sweepSessions(ctx context.Context, s *server.Server) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.ExpireSessions(now)
		}
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
