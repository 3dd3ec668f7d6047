// Package cli implements the smartsplit subcommands.
package cli

import (
	"fmt"

	"github.com/google/subcommands"

	"github.com/mmynk/smartsplit/internal/config"
	"github.com/mmynk/smartsplit/internal/storage"
	"github.com/mmynk/smartsplit/internal/storage/jsonfile"
	"github.com/mmynk/smartsplit/internal/storage/sqlite"
)

// Register the subcommands.
func Register(c *subcommands.Commander, cfg *config.Config) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")

	c.Register(&shellCmd{cfg: cfg}, "ledger")
	c.Register(&listCmd{cfg: cfg}, "ledger")

	c.Register(&serveCmd{cfg: cfg}, "server")
	c.Register(&tokenCmd{cfg: cfg}, "server")
}

// OpenStore opens the storage backend selected in cfg.
func OpenStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Backend {
	case config.BackendJSON:
		return jsonfile.New(cfg.DataFile), nil
	case config.BackendSQLite:
		store, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// storeLocation describes where the backend keeps its data, for log lines.
func storeLocation(cfg *config.Config) string {
	if cfg.Backend == config.BackendSQLite {
		return cfg.SQLitePath
	}
	return cfg.DataFile
}
