package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/99designs/keyring"
	"github.com/advising-app/advising-notify/internal/config"
	"github.com/advising-app/advising-notify/internal/storage/sqlite"
	"github.com/stretchr/testify/require"
)

func setupConfig(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(tmp, "state"))
	t.Setenv("ADVISING_NOTIFY_ENV_FILE", filepath.Join(tmp, "none.env"))
	config.Load()
	return tmp
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()

	got, err := s.Get(KeyAuthToken)
	require.NoError(t, err)
	require.Empty(t, got)

	require.NoError(t, s.Set(KeyAuthToken, "token-a"))
	require.NoError(t, s.Set(KeyDeviceToken, "device-a"))
	got, err = s.Get(KeyAuthToken)
	require.NoError(t, err)
	require.Equal(t, "token-a", got)

	require.NoError(t, s.Remove(KeyAuthToken))
	require.NoError(t, s.Remove(KeyAuthToken), "removing an absent key succeeds")
	got, err = s.Get(KeyAuthToken)
	require.NoError(t, err)
	require.Empty(t, got)

	got, err = s.Get(KeyDeviceToken)
	require.NoError(t, err)
	require.Equal(t, "device-a", got)

	_, err = s.Get("")
	require.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestKeyringStore(t *testing.T) {
	exerciseStore(t, NewKeyringStore(keyring.NewArrayKeyring(nil)))
}

func TestNewForBackendSQLite(t *testing.T) {
	tmp := setupConfig(t)

	s, err := NewForBackend(BackendSQLite)
	require.NoError(t, err)
	defer s.Close()
	require.IsType(t, &sqlite.Store{}, s)
	exerciseStore(t, s)

	_, err = os.Stat(filepath.Join(tmp, "state", "advising-notify", credentialsDBFileName))
	require.NoError(t, err)
}

func TestNewForBackendMemory(t *testing.T) {
	setupConfig(t)

	s, err := NewForBackend("MEMORY")
	require.NoError(t, err)
	require.IsType(t, &MemoryStore{}, s)
}

func TestNewForBackendKeyringFallsBackToSQLite(t *testing.T) {
	setupConfig(t)
	orig := openKeyring
	openKeyring = func(string) (Store, error) { return nil, errors.New("no keyring daemon") }
	defer func() { openKeyring = orig }()

	s, err := NewForBackend(BackendKeyring)
	require.NoError(t, err)
	defer s.Close()
	require.IsType(t, &sqlite.Store{}, s)
}

func TestNewForBackendKeyring(t *testing.T) {
	setupConfig(t)
	ring := NewKeyringStore(keyring.NewArrayKeyring(nil))
	orig := openKeyring
	openKeyring = func(string) (Store, error) { return ring, nil }
	defer func() { openKeyring = orig }()

	s, err := NewForBackend(BackendKeyring)
	require.NoError(t, err)
	require.Same(t, ring, s)
}

func TestNewForBackendUnknownUsesSQLite(t *testing.T) {
	setupConfig(t)

	s, err := NewForBackend("etcd")
	require.NoError(t, err)
	defer s.Close()
	require.IsType(t, &sqlite.Store{}, s)
}

func TestNewFromConfig(t *testing.T) {
	setupConfig(t)
	t.Setenv("ADVISING_NOTIFY_TOKEN_BACKEND", "memory")
	config.Load()

	s, err := NewFromConfig()
	require.NoError(t, err)
	require.IsType(t, &MemoryStore{}, s)
}
