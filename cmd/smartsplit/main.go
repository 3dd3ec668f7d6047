package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"

	"github.com/mmynk/smartsplit/internal/cli"
	"github.com/mmynk/smartsplit/internal/config"
	"github.com/mmynk/smartsplit/pkg/logging"
)

func main() {
	// Load .env file for local development (ignore errors when absent)
	_ = godotenv.Load()

	cfg := config.Load()
	flag.StringVar(&cfg.Backend, "backend", cfg.Backend, "Storage backend (json, sqlite). Overrides SMARTSPLIT_BACKEND.")
	flag.StringVar(&cfg.DataFile, "data-file", cfg.DataFile, "Path to the JSON data file. Overrides SMARTSPLIT_DATA_FILE.")
	flag.StringVar(&cfg.SQLitePath, "db", cfg.SQLitePath, "Path to the SQLite database. Overrides SMARTSPLIT_SQLITE_PATH.")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error). Overrides LOG_LEVEL.")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	cli.Register(commander, cfg)

	flag.Parse()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(int(subcommands.ExitUsageError))
	}
	logging.Setup(cfg.LogLevel)

	os.Exit(int(commander.Execute(context.Background())))
}
