package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/julianstephens/timeledger/internal/config"
	"github.com/julianstephens/timeledger/internal/constants"
	"github.com/julianstephens/timeledger/internal/keyring"
	"github.com/julianstephens/timeledger/internal/logger"
	"github.com/julianstephens/timeledger/internal/storage"
	"github.com/julianstephens/timeledger/internal/storage/firestore"
	"github.com/julianstephens/timeledger/internal/storage/postgres"
	"github.com/julianstephens/timeledger/internal/storage/sqlite"
)

// ResolveDatabase picks the database setting: the --database flag, then
// TIMELEDGER_DB_CONNECTION, then the config file.
func ResolveDatabase(flag string, cfg config.Config) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(constants.EnvDBConnection); env != "" {
		return env
	}
	return cfg.Database
}

// OpenStore returns the provider selected by database: "keyring", a
// firestore:// project, a PostgreSQL URI or DSN, or else a SQLite file path.
// The store is not initialized or loaded.
func OpenStore(database string) (storage.Provider, error) {
	database = strings.TrimSpace(database)
	switch {
	case database == constants.DatabaseKeyring:
		connStr, err := keyring.Default().Get()
		if err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				return nil, errors.New("no connection string found in keyring; use 'timeledger keyring set' to store one")
			}
			return nil, err
		}
		// Credentials kept in the keyring may carry a password.
		if err := postgres.ValidateConnString(connStr); err != nil && !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return nil, fmt.Errorf("connection string in keyring: %w", err)
		}
		logger.Debug("Using PostgreSQL connection from keyring")
		return postgres.New(connStr), nil

	case strings.HasPrefix(database, firestore.Scheme):
		project, err := firestore.ParseDSN(database)
		if err != nil {
			return nil, err
		}
		logger.Debug("Using Firestore store", "project", project)
		return firestore.NewStore(project), nil

	case postgres.IsConnString(database):
		if err := postgres.ValidateConnString(database); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, errors.New("connection string contains a password; use .pgpass, PGPASSWORD or 'timeledger keyring set' instead")
			}
			return nil, err
		}
		logger.Debug("Using PostgreSQL store")
		return postgres.New(database), nil

	default:
		path, err := config.ExpandHome(database)
		if err != nil {
			return nil, err
		}
		logger.Debug("Using SQLite store", "path", path)
		return sqlite.NewStore(path), nil
	}
}
