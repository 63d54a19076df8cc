package server_test

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/jrsteele09/ecolink/server"
	"github.com/stretchr/testify/require"
)

func TestLogin_Success(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, f.client)

	sid := f.sessionCookie(t, f.client).Value
	token, err := f.tokens.Get("authToken:" + sid)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	bs, err := f.sessions.Get(sid)
	require.NoError(t, err)
	require.True(t, bs.Auth.IsAuthenticated())
	require.Equal(t, testName, bs.Auth.CurrentUser().Name)
}

func TestLogin_Failure(t *testing.T) {
	f := setupTestFixture(t)

	resp, _ := f.post(t, f.client, server.RouteAuthLogin, url.Values{"email": {testEmail}, "password": {"wrong"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	require.Equal(t, server.RouteLogin, loc.Path)
	require.Equal(t, "Credenciais inválidas ou erro na API", loc.Query().Get("error"))
	require.Equal(t, testEmail, loc.Query().Get("email"))

	_, body := f.get(t, f.client, loc.RequestURI())
	require.Contains(t, body, "Credenciais inválidas ou erro na API")
	require.Contains(t, body, `value="maria@example.com"`)

	sid := f.sessionCookie(t, f.client).Value
	_, err = f.tokens.Get("authToken:" + sid)
	require.Error(t, err)
}

func TestLogin_HTMXRedirect(t *testing.T) {
	f := setupTestFixture(t)

	req, err := http.NewRequest(http.MethodPost, f.app.URL+server.RouteAuthLogin,
		stringsReader(url.Values{"email": {testEmail}, "password": {testPassword}}.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")

	resp, err := f.client.Do(req)
	require.NoError(t, err)
	readBody(t, resp)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, server.RouteIndex, resp.Header.Get("HX-Redirect"))
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, f.client)
	sid := f.sessionCookie(t, f.client).Value

	for i := 0; i < 2; i++ {
		resp, _ := f.get(t, f.client, server.RouteAuthLogout)
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	}

	_, err := f.tokens.Get("authToken:" + sid)
	require.Error(t, err)
	_, body := f.get(t, f.client, "/")
	require.NotContains(t, body, testName)
}

func TestSessionsAreIsolatedPerBrowser(t *testing.T) {
	f := setupTestFixture(t)
	other := f.newBrowser(t)

	f.login(t, f.client)
	_, body := f.get(t, other, "/")
	require.NotContains(t, body, testName)
	require.NotEqual(t, f.sessionCookie(t, f.client).Value, f.sessionCookie(t, other).Value)
}

// After a restart the browser keeps its cookie; the persisted token is picked up
// again but the identity is not, so login is still required for protected pages
func TestSessionRestoreAfterRestart(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, f.client)
	sid := f.sessionCookie(t, f.client).Value

	require.NoError(t, f.sessions.Delete(sid))

	_, body := f.get(t, f.client, "/")
	require.NotContains(t, body, testName)

	bs, err := f.sessions.Get(sid)
	require.NoError(t, err)
	tok, err := bs.Auth.Token()
	require.NoError(t, err)
	require.NotNil(t, tok)
	require.False(t, bs.Auth.IsAuthenticated())
}

func TestExpireSessions(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, f.client)
	sid := f.sessionCookie(t, f.client).Value

	require.Zero(t, f.server.ExpireSessions(time.Now()))
	require.Equal(t, 1, f.server.ExpireSessions(time.Now().Add(48*time.Hour)))

	_, err := f.sessions.Get(sid)
	require.Error(t, err)
	_, err = f.tokens.Get("authToken:" + sid)
	require.Error(t, err)
}
