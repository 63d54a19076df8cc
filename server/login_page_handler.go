package server

import (
	"net/http"
	"strings"
)

const msgLoginFailed = "Credenciais inválidas ou erro na API"

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	PageData
	Email string // Preserve email on error
}

// LoginPageUIHandler displays the login page (GET /login)
func (s *Server) LoginPageUIHandler() http.HandlerFunc {
	loginTmpl := mustParseTemplate("login.html")

	return func(w http.ResponseWriter, r *http.Request) {
		data := LoginPageData{
			PageData: s.pageData(r),
			Email:    r.URL.Query().Get("email"),
		}
		render(w, loginTmpl, http.StatusOK, data)
	}
}

// LoginSubmissionHandler processes the login form submission
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		email := strings.TrimSpace(r.FormValue("email"))
		password := r.FormValue("password")

		bs := sessionFrom(r)
		if err := bs.Auth.Login(r.Context(), email, password); err != nil {
			s.renderLoginError(w, r, msgLoginFailed, email)
			return
		}

		redirectSuccess(w, r, RouteIndex)
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if bs := sessionFrom(r); bs != nil {
			bs.Auth.Logout()
		}
		redirectSuccess(w, r, RouteIndex)
	}
}

// renderLoginError redirects to login page with an error message
func (s *Server) renderLoginError(w http.ResponseWriter, r *http.Request, errorMsg, email string) {
	redirectURL := withQuery(RouteLogin, "error", errorMsg)
	if email != "" {
		redirectURL = withQuery(redirectURL, "email", email)
	}
	redirectSuccess(w, r, redirectURL)
}
