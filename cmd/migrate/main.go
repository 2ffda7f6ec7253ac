// Command migrate manages the PostgreSQL schema.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/retail/backend/internal/infrastructure/config"
	"github.com/retail/backend/internal/infrastructure/logger"
	"github.com/retail/backend/internal/infrastructure/migration"
	"go.uber.org/zap"
)

const usage = `Retail schema migration tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (negative rolls back)
  goto <version>        Migrate to a specific version
  version               Show the applied version
  force <version>       Mark a version as applied without running it
  create <name> [desc]  Write an empty up/down pair into -dir
  list                  List migrations in -dir

Flags:
  -dir string           Read migrations from this directory instead of the embedded set
  -log-level string     debug, info, warn or error (default info)

Connection settings come from config.toml and RETAIL_DATABASE_* variables.`

func main() {
	dir := flag.String("dir", "", "migrations directory (default: embedded)")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{Level: *logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync(log) }()

	if err := run(args, *dir, log); err != nil {
		log.Error("Migration command failed", zap.String("command", args[0]), zap.Error(err))
		_ = logger.Sync(log)
		os.Exit(1)
	}
}

func run(args []string, dir string, log *zap.Logger) error {
	command, rest := args[0], args[1:]

	// file-only commands need no database
	switch command {
	case "create":
		if len(rest) == 0 {
			return fmt.Errorf("usage: migrate create <name> [description]")
		}
		if dir == "" {
			dir = "migrations"
		}
		desc := ""
		if len(rest) > 1 {
			desc = rest[1]
		}
		nm, err := migration.Create(dir, rest[0], desc, time.Now())
		if err != nil {
			return err
		}
		log.Info("Migration created", zap.String("up", nm.UpPath), zap.String("down", nm.DownPath))
		return nil
	case "list":
		if dir == "" {
			dir = "migrations"
		}
		names, err := migration.List(dir)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("migrations only apply to postgres; %s uses auto-migrate", cfg.Database.Driver)
	}

	m, err := migration.OpenSource(cfg.Database.DSN(), dir, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Close migrator", zap.Error(err))
		}
	}()

	switch command {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "step":
		n, err := intArg(rest, "step <n>")
		if err != nil {
			return err
		}
		return m.Steps(n)
	case "goto":
		n, err := intArg(rest, "goto <version>")
		if err != nil {
			return err
		}
		if n < 0 {
			return fmt.Errorf("version cannot be negative")
		}
		return m.GoTo(uint(n))
	case "force":
		n, err := intArg(rest, "force <version>")
		if err != nil {
			return err
		}
		return m.Force(n)
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		log.Info("Schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func intArg(args []string, form string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("usage: migrate %s", form)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", args[0])
	}
	return n, nil
}
