package server_test

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/jrsteele09/ecolink/apiclient"
	"github.com/jrsteele09/ecolink/apiclient/apifakes"
	"github.com/jrsteele09/ecolink/internal/config"
	"github.com/jrsteele09/ecolink/internal/metrics"
	"github.com/jrsteele09/ecolink/registration"
	"github.com/jrsteele09/ecolink/server"
	"github.com/jrsteele09/ecolink/server/loginsession"
	"github.com/jrsteele09/ecolink/tokenstore"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "maria@example.com"
	testPassword = "s3cret!"
	testName     = "Maria Silva"
)

type testFixture struct {
	backend       *apifakes.FakeBackend
	app           *httptest.Server
	server        *server.Server
	tokens        *tokenstore.InMemory
	sessions      *loginsession.InMemoryLoginSessionRepo
	registrations *registration.InMemoryRepo
	metrics       *metrics.Metrics
	client        *http.Client
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	t.Setenv("ENV", "TEST")

	backend := apifakes.NewFakeBackend()
	t.Cleanup(backend.Close)
	backend.AddAccount(testEmail, testPassword, testName)

	m := metrics.New()
	api, err := apiclient.New(backend.URL(), nil, apiclient.WithMetrics(m))
	require.NoError(t, err)

	f := &testFixture{
		backend:       backend,
		tokens:        tokenstore.NewInMemory(),
		sessions:      loginsession.NewInMemoryLoginSessionRepo(),
		registrations: registration.NewInMemoryRepo(),
		metrics:       m,
	}
	f.server, err = server.New(config.New(), api, f.tokens, m, f.sessions, f.registrations)
	require.NoError(t, err)

	f.app = httptest.NewServer(f.server)
	t.Cleanup(f.app.Close)
	f.client = f.newBrowser(t)
	return f
}

// newBrowser returns a client with its own cookie jar that does not follow redirects
func (f *testFixture) newBrowser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (f *testFixture) get(t *testing.T, client *http.Client, path string) (*http.Response, string) {
	t.Helper()
	resp, err := client.Get(f.app.URL + path)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func (f *testFixture) post(t *testing.T, client *http.Client, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := client.PostForm(f.app.URL+path, form)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func (f *testFixture) login(t *testing.T, client *http.Client) {
	t.Helper()
	resp, _ := f.post(t, client, server.RouteAuthLogin, url.Values{"email": {testEmail}, "password": {testPassword}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, server.RouteIndex, resp.Header.Get("Location"))
}

func (f *testFixture) sessionCookie(t *testing.T, client *http.Client) *http.Cookie {
	t.Helper()
	u, err := url.Parse(f.app.URL)
	require.NoError(t, err)
	for _, c := range client.Jar.Cookies(u) {
		if c.Name == "ecolink_sid" {
			return c
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func TestIndex_AnonymousAndLoggedIn(t *testing.T) {
	f := setupTestFixture(t)

	resp, body := f.get(t, f.client, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	require.Equal(t, "SAMEORIGIN", resp.Header.Get("X-Frame-Options"))
	require.Contains(t, body, "Cadastre-se Gratuitamente")
	require.NotContains(t, body, testName)
	require.NotContains(t, body, `<a href="/points">Pontos de Coleta</a>`)

	cookie := f.sessionCookie(t, f.client)
	require.NotEmpty(t, cookie.Value)

	f.login(t, f.client)
	_, body = f.get(t, f.client, "/")
	require.Contains(t, body, "Olá, "+testName)
	require.Contains(t, body, `<a href="/points">Pontos de Coleta</a>`)
	require.Equal(t, cookie.Value, f.sessionCookie(t, f.client).Value)
}

func TestHealthAndMetrics(t *testing.T) {
	f := setupTestFixture(t)

	resp, body := f.get(t, f.client, server.RouteHealth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", body)

	f.login(t, f.client)
	resp, body = f.get(t, f.client, server.RouteMetrics)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, `result="success"`)
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	f := setupTestFixture(t)
	resp, _ := f.get(t, f.client, "/nope")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStaticFiles(t *testing.T) {
	f := setupTestFixture(t)

	resp, body := f.get(t, f.client, "/js/geolocation.js")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "getCurrentPosition")
	require.Equal(t, "text/javascript; charset=utf-8", resp.Header.Get("Content-Type"))
	require.Equal(t, "public, max-age=300, must-revalidate", resp.Header.Get("Cache-Control"))

	resp, _ = f.get(t, f.client, "/css/ecolink.css")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/css; charset=utf-8", resp.Header.Get("Content-Type"))

	resp, _ = f.get(t, f.client, "/css/missing.css")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = f.get(t, f.client, "/js/geolocation.txt")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNew_RequiresAPIClient(t *testing.T) {
	_, err := server.New(config.New(), nil, tokenstore.NewInMemory(), nil, loginsession.NewInMemoryLoginSessionRepo(), registration.NewInMemoryRepo())
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "api client"))
}

func stringsReader(s string) *strings.Reader {
	return strings.NewReader(s)
}
