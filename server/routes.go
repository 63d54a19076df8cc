package server

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET /{$}", ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare()...))

	// LOGIN
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageUIHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))

	// REGISTRATION
	s.RegisterRouteHandler("GET "+RouteRegister, ChainMiddleware(s.RegisterGetHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteRegisterType, ChainMiddleware(s.RegisterTypeHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteRegisterInfo, ChainMiddleware(s.RegisterInfoHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteRegisterAddress, ChainMiddleware(s.RegisterAddressHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteRegisterBack, ChainMiddleware(s.RegisterBackHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteRegisterSubmit, ChainMiddleware(s.RegisterSubmitHandler(), s.HTMLMiddleWare()...))

	// COLLECTIONS
	s.RegisterRouteHandler("GET "+RoutePoints, ChainMiddleware(s.PointsHandler(), s.HTMLMiddleWare(s.RequireLogin())...))
	s.RegisterRouteHandler("GET "+RouteSchedule, ChainMiddleware(s.ScheduleGetHandler(), s.HTMLMiddleWare(s.RequireLogin())...))
	s.RegisterRouteHandler("POST "+RouteSchedule, ChainMiddleware(s.SchedulePostHandler(), s.HTMLMiddleWare(s.RequireLogin())...))
	s.RegisterRouteHandler("GET "+RouteSchedules, ChainMiddleware(s.SchedulesListHandler(), s.HTMLMiddleWare(s.RequireLogin())...))
	s.RegisterRouteHandler("POST "+RouteScheduleCollected, ChainMiddleware(s.ScheduleCollectedHandler(), s.HTMLMiddleWare(s.RequireLogin())...))

	s.RegisterRouteHandler("GET "+RouteMetrics, s.metrics.Handler())
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())

	s.RegisterRouteHandler("GET "+RouteStaticCSS, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteStaticJS, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))
}

func (s *Server) serveFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filePath := strings.TrimPrefix(r.URL.Path, "/")
		if filePath == "" {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		err := StreamFile(w, r, filePath)
		if err != nil {
			logError(r.Method, filePath, err)
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	}
}

func logError(method, path string, err error) {
	log.Err(err).Str("method", colourMethod(method)).Msg(path)
}
