package server_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/jrsteele09/ecolink/apiclient"
	"github.com/jrsteele09/ecolink/registration"
	"github.com/jrsteele09/ecolink/server"
	"github.com/stretchr/testify/require"
)

var (
	infoForm = url.Values{
		"email":    {"joao@example.com"},
		"password": {"123456"},
		"name":     {"João Souza"},
		"phone":    {"11987654321"},
		"document": {"12345678901"},
	}
	addressForm = url.Values{
		"address":    {"Rua das Palmeiras"},
		"number":     {"42"},
		"complement": {"Apto 3"},
		"city":       {"São Paulo"},
		"state":      {"sp"},
		"zipCode":    {"01234567"},
	}
)

func (f *testFixture) registrationStep(t *testing.T) registration.Step {
	t.Helper()
	sid := f.sessionCookie(t, f.client).Value
	wf, err := f.registrations.Get(sid)
	require.NoError(t, err)
	return wf.Step()
}

func (f *testFixture) postStep(t *testing.T, path string, form url.Values) *url.URL {
	t.Helper()
	resp, _ := f.post(t, f.client, path, form)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	return loc
}

func TestRegister_FullFlow(t *testing.T) {
	f := setupTestFixture(t)

	resp, body := f.get(t, f.client, server.RouteRegister)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Etapa 1 de 4")

	f.postStep(t, server.RouteRegisterType, url.Values{"type": {"commercial"}})
	require.Equal(t, registration.StepPersonalInfo, f.registrationStep(t))

	f.postStep(t, server.RouteRegisterInfo, infoForm)
	require.Equal(t, registration.StepAddress, f.registrationStep(t))

	f.postStep(t, server.RouteRegisterAddress, addressForm)
	require.Equal(t, registration.StepConfirmation, f.registrationStep(t))

	_, body = f.get(t, f.client, server.RouteRegister)
	require.Contains(t, body, "Etapa 4 de 4")
	require.Contains(t, body, "Rua das Palmeiras, 42, Apto 3")
	require.Contains(t, body, "Comercial")

	loc := f.postStep(t, server.RouteRegisterSubmit, nil)
	require.Equal(t, server.RouteLogin, loc.Path)
	require.NotEmpty(t, loc.Query().Get("success"))

	registered := f.backend.Registered()
	require.Len(t, registered, 1)
	require.Equal(t, apiclient.RegisterRequest{
		Email:    "joao@example.com",
		Name:     "João Souza",
		Type:     apiclient.AccountCommercial,
		Address:  "Rua das Palmeiras, 42, Apto 3",
		Phone:    "11987654321",
		Document: "12345678901",
		Password: "123456",
	}, registered[0])

	// the draft is gone, so the next visit starts over
	_, body = f.get(t, f.client, server.RouteRegister)
	require.Contains(t, body, "Etapa 1 de 4")
}

func TestRegister_ValidationKeepsStep(t *testing.T) {
	f := setupTestFixture(t)

	f.postStep(t, server.RouteRegisterType, url.Values{"type": {"industrial"}})
	require.Equal(t, registration.StepAccountType, f.registrationStep(t))
	_, body := f.get(t, f.client, server.RouteRegister)
	require.Contains(t, body, "Selecione o tipo de conta")

	f.postStep(t, server.RouteRegisterType, url.Values{"type": {"residential"}})
	bad := url.Values{}
	for k, v := range infoForm {
		bad[k] = v
	}
	bad.Set("email", "not-an-email")
	f.postStep(t, server.RouteRegisterInfo, bad)
	require.Equal(t, registration.StepPersonalInfo, f.registrationStep(t))

	_, body = f.get(t, f.client, server.RouteRegister)
	require.Contains(t, body, "Email inválido")
	require.Contains(t, body, `value="João Souza"`)
	require.NotContains(t, body, `value="123456"`)
}

func TestRegister_BackKeepsValues(t *testing.T) {
	f := setupTestFixture(t)

	f.postStep(t, server.RouteRegisterType, url.Values{"type": {"residential"}})
	f.postStep(t, server.RouteRegisterInfo, infoForm)

	partial := url.Values{"address": {"Rua incompleta"}}
	f.postStep(t, server.RouteRegisterBack, partial)
	require.Equal(t, registration.StepPersonalInfo, f.registrationStep(t))

	// a blank password keeps the one already entered
	noPassword := url.Values{}
	for k, v := range infoForm {
		noPassword[k] = v
	}
	noPassword.Del("password")
	f.postStep(t, server.RouteRegisterInfo, noPassword)
	require.Equal(t, registration.StepAddress, f.registrationStep(t))

	_, body := f.get(t, f.client, server.RouteRegister)
	require.Contains(t, body, `value="Rua incompleta"`)
}

func TestRegister_OutOfOrderStep(t *testing.T) {
	f := setupTestFixture(t)

	loc := f.postStep(t, server.RouteRegisterAddress, addressForm)
	require.Equal(t, server.RouteRegister, loc.Path)
	require.NotEmpty(t, loc.Query().Get("error"))
	require.Equal(t, registration.StepAccountType, f.registrationStep(t))

	loc = f.postStep(t, server.RouteRegisterSubmit, nil)
	require.NotEmpty(t, loc.Query().Get("error"))
	require.Empty(t, f.backend.Registered())
}

func TestRegister_SubmitFailureKeepsDraft(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.FailRegistrations(true)

	f.postStep(t, server.RouteRegisterType, url.Values{"type": {"residential"}})
	f.postStep(t, server.RouteRegisterInfo, infoForm)
	f.postStep(t, server.RouteRegisterAddress, addressForm)

	loc := f.postStep(t, server.RouteRegisterSubmit, nil)
	require.Equal(t, server.RouteRegister, loc.Path)
	require.Equal(t, "Erro ao cadastrar. Tente novamente.", loc.Query().Get("error"))
	require.Equal(t, registration.StepConfirmation, f.registrationStep(t))

	_, body := f.get(t, f.client, loc.RequestURI())
	require.Contains(t, body, "Erro ao cadastrar. Tente novamente.")
	require.Contains(t, body, "Etapa 4 de 4")

	f.backend.FailRegistrations(false)
	loc = f.postStep(t, server.RouteRegisterSubmit, nil)
	require.Equal(t, server.RouteLogin, loc.Path)
	require.Len(t, f.backend.Registered(), 1)
}

func TestRegister_SendsSessionToken(t *testing.T) {
	f := setupTestFixture(t)

	// anonymous registration goes out without a credential
	f.postStep(t, server.RouteRegisterType, url.Values{"type": {"residential"}})
	f.postStep(t, server.RouteRegisterInfo, infoForm)
	f.postStep(t, server.RouteRegisterAddress, addressForm)
	f.postStep(t, server.RouteRegisterSubmit, nil)

	f.login(t, f.client)
	f.postStep(t, server.RouteRegisterType, url.Values{"type": {"commercial"}})
	f.postStep(t, server.RouteRegisterInfo, infoForm)
	f.postStep(t, server.RouteRegisterAddress, addressForm)
	loc := f.postStep(t, server.RouteRegisterSubmit, nil)
	require.Equal(t, server.RouteLogin, loc.Path)

	auth := f.backend.RegistrationAuthorizations()
	require.Len(t, auth, 2)
	require.Empty(t, auth[0])
	token, ok := strings.CutPrefix(auth[1], "Bearer ")
	require.True(t, ok, "Authorization on POST /users = %q", auth[1])
	require.True(t, f.backend.Issued(token))
}
