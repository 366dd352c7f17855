package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/advising-app/advising-notify/internal/colors"
	"github.com/advising-app/advising-notify/internal/config"
	"github.com/advising-app/advising-notify/internal/storage/sqlite"
)

const (
	// BackendSQLite selects the SQLite key/value file under state_dir.
	BackendSQLite = "sqlite"
	// BackendKeyring selects the operating system keyring.
	BackendKeyring = "keyring"
	// BackendMemory keeps values for the current process only.
	BackendMemory = "memory"

	credentialsDBFileName = "credentials.db"
)

var _ Store = (*sqlite.Store)(nil)

var openKeyring = func(configDir string) (Store, error) { return OpenKeyring(configDir) }

// NewFromConfig creates the store selected by token_backend.
func NewFromConfig() (Store, error) {
	return NewForBackend(config.Get("token_backend", BackendSQLite))
}

// NewForBackend creates a store for the named backend.
//
// A keyring that cannot be opened falls back to SQLite; a SQLite file
// that cannot be opened falls back to memory. Both fallbacks warn.
func NewForBackend(backend string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendKeyring:
		store, err := openKeyring(config.Get("config_dir", ""))
		if err != nil {
			colors.Warning(fmt.Sprintf("failed to open keyring, falling back to sqlite: %v", err))
			return openSQLite()
		}
		return store, nil
	case "", BackendSQLite:
		return openSQLite()
	default:
		colors.Warning(fmt.Sprintf("unknown token backend '%s', falling back to sqlite", backend))
		return openSQLite()
	}
}

func openSQLite() (Store, error) {
	dbPath := filepath.Join(config.Get("state_dir", ""), credentialsDBFileName)
	store, err := sqlite.Open(dbPath)
	if err != nil {
		colors.Warning(fmt.Sprintf("failed to open credential database, credentials will not persist: %v", err))
		return NewMemoryStore(), nil
	}
	return store, nil
}
