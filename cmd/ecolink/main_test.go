package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/jrsteele09/ecolink/apiclient"
	"github.com/jrsteele09/ecolink/apiclient/apifakes"
	"github.com/jrsteele09/ecolink/internal/config"
	"github.com/jrsteele09/ecolink/internal/utils"
	"github.com/stretchr/testify/require"
)

func setupTestFixture(t *testing.T) (*apifakes.FakeBackend, config.Config) {
	t.Helper()
	backend := apifakes.NewFakeBackend()
	t.Cleanup(backend.Close)
	backend.AddAccount("ana@example.com", "segredo", "Ana")
	backend.SetPoints(
		apiclient.CollectionPoint{ID: 1, Address: "Praça da Sé", Latitude: utils.Ptr(-23.5503), Longitude: utils.Ptr(-46.6339),
			Materials: []apiclient.Material{{Kind: "Metal", Amount: "3", Unit: "kg"}}},
		apiclient.CollectionPoint{ID: 2, Address: "Sem coordenadas"},
	)

	t.Setenv("API_BASE_URL", backend.URL())
	t.Setenv("FOLDER", t.TempDir())
	t.Setenv("TOKEN_STORE_KEY", "test-key")
	return backend, config.New()
}

func runCmd(t *testing.T, c config.Config, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), c, args, &out)
	return out.String(), err
}

func TestLoginPersistsAcrossInvocations(t *testing.T) {
	_, c := setupTestFixture(t)

	out, err := runCmd(t, c, "whoami")
	require.NoError(t, err)
	require.Contains(t, out, "Não autenticado.")

	out, err = runCmd(t, c, "login", "-u", "ana@example.com", "-p", "segredo")
	require.NoError(t, err)
	require.Contains(t, out, "Olá, Ana!")

	out, err = runCmd(t, c, "whoami")
	require.NoError(t, err)
	require.Contains(t, out, "Token salvo.")

	_, err = runCmd(t, c, "logout")
	require.NoError(t, err)
	out, err = runCmd(t, c, "whoami")
	require.NoError(t, err)
	require.Contains(t, out, "Não autenticado.")
}

func TestLoginRejected(t *testing.T) {
	_, c := setupTestFixture(t)

	_, err := runCmd(t, c, "login", "-u", "ana@example.com", "-p", "errada")
	require.ErrorContains(t, err, "invalid credentials")
}

func TestUsage(t *testing.T) {
	_, c := setupTestFixture(t)

	for _, args := range [][]string{nil, {"bogus"}, {"login", "-u", "x"}, {"points", "-lat", "abc"}} {
		_, err := runCmd(t, c, args...)
		require.ErrorIs(t, err, errUsage)
	}
}

func TestPoints(t *testing.T) {
	_, c := setupTestFixture(t)

	out, err := runCmd(t, c, "points", "-lat", "-23.5505", "-lng", "-46.6333")
	require.NoError(t, err)
	require.Contains(t, out, "Ponto 1")
	require.Contains(t, out, "0.1 km")
	require.Contains(t, out, "Metal (3 kg)")
	require.Contains(t, out, "Indisponível")
	require.NotContains(t, out, "Não foi possível obter sua localização")

	out, err = runCmd(t, c, "points", "-q", "sem")
	require.NoError(t, err)
	require.Contains(t, out, "Não foi possível obter sua localização")
	require.Contains(t, out, "Ponto 2")
	require.NotContains(t, out, "Ponto 1")
}
