package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"shipment-tracker/internal/config"
	"shipment-tracker/internal/infrastructure/database/postgres"
	"shipment-tracker/internal/logger"
)

const usage = `Usage: migrate [--dsn DSN] COMMAND [ARGS...]

Commands are goose commands run against the embedded migrations:
  up, up-by-one, up-to VERSION, down, down-to VERSION, redo, reset, status, version

Flags:
`

func main() {
	var dsn string
	pflag.StringVar(&dsn, "dsn", "", "database connection string (defaults to DATABASE_URL / DB_* settings)")
	pflag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if pflag.NArg() < 1 {
		pflag.Usage()
		os.Exit(2)
	}
	command, args := pflag.Arg(0), pflag.Args()[1:]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if dsn != "" {
		cfg.Database.URL = dsn
	}
	if cfg.Database.URL == "" && (cfg.Database.Host == "" || cfg.Database.DBName == "") {
		fmt.Fprintln(os.Stderr, "No database configured: pass --dsn or set DATABASE_URL")
		os.Exit(1)
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := postgres.NewDB(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(context.Background(), command, args...); err != nil {
		logger.Error("Migration failed", zap.String("command", command), zap.Error(err))
		os.Exit(1)
	}
}
