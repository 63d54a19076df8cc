package tokenstore_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jrsteele09/ecolink/tokenstore"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]tokenstore.Store {
	t.Helper()

	plain, err := tokenstore.NewFile(filepath.Join(t.TempDir(), "tokens.json"), "")
	require.NoError(t, err)
	sealed, err := tokenstore.NewFile(filepath.Join(t.TempDir(), "tokens.json"), "s3cret")
	require.NoError(t, err)

	return map[string]tokenstore.Store{
		"in-memory": tokenstore.NewInMemory(),
		"file":      plain,
		"encrypted": sealed,
	}
}

func TestStore_Lifecycle(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get("authToken")
			require.ErrorIs(t, err, tokenstore.ErrNotFound)

			require.NoError(t, s.Set("authToken", "abc.def"))
			got, err := s.Get("authToken")
			require.NoError(t, err)
			require.Equal(t, "abc.def", got)

			require.NoError(t, s.Set("authToken", "second"))
			got, err = s.Get("authToken")
			require.NoError(t, err)
			require.Equal(t, "second", got)

			require.NoError(t, s.Delete("authToken"))
			require.NoError(t, s.Delete("authToken"))
			_, err = s.Get("authToken")
			require.ErrorIs(t, err, tokenstore.ErrNotFound)
		})
	}
}

func TestStore_EmptyKey(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.Error(t, s.Set("", "x"))
			_, err := s.Get("")
			require.Error(t, err)
			require.Error(t, s.Delete(""))
		})
	}
}

func TestFile_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tokens.json")

	first, err := tokenstore.NewFile(path, "")
	require.NoError(t, err)
	require.NoError(t, first.Set("authToken", "persisted"))

	second, err := tokenstore.NewFile(path, "")
	require.NoError(t, err)
	got, err := second.Get("authToken")
	require.NoError(t, err)
	require.Equal(t, "persisted", got)
}

func TestFile_EncryptedAtRest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")

	s, err := tokenstore.NewFile(path, "s3cret")
	require.NoError(t, err)
	require.NoError(t, s.Set("authToken", "plain-token-value"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.False(t, strings.Contains(string(raw), "plain-token-value"))

	wrongKey, err := tokenstore.NewFile(path, "other")
	require.NoError(t, err)
	_, err = wrongKey.Get("authToken")
	require.Error(t, err)
}
