package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/catalogadmin/backend/internal/infrastructure/config"
	"github.com/catalogadmin/backend/internal/infrastructure/logger"
	"github.com/catalogadmin/backend/internal/infrastructure/migration"
	"github.com/catalogadmin/backend/migrations"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {
	var (
		migrationsDir string
		logLevel      string
	)
	flag.StringVar(&migrationsDir, "path", "", "Read migrations from this directory instead of the embedded set")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{Level: logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	if command == "list" {
		var names []string
		if migrationsDir != "" {
			names, err = migration.ListMigrations(os.DirFS(migrationsDir))
		} else {
			names, err = migration.ListMigrations(migrations.FS)
		}
		if err != nil {
			log.Fatal("failed to list migrations", zap.Error(err))
		}
		for _, n := range names {
			fmt.Println("  -", n)
		}
		return
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("failed to ping database", zap.Error(err))
	}

	m, err := migration.New(db, migrationsDir, log)
	if err != nil {
		log.Fatal("failed to create migrator", zap.Error(err))
	}
	defer m.Close()

	switch command {
	case "up":
		err = m.Up()

	case "down":
		err = m.Down()

	case "steps":
		n, convErr := strconv.Atoi(argAt(args, 1, log, "step count"))
		if convErr != nil {
			log.Fatal("invalid step count", zap.String("value", args[1]))
		}
		err = m.Steps(n)

	case "version":
		version, dirty, verr := m.Version()
		if verr != nil {
			log.Fatal("failed to get version", zap.Error(verr))
		}
		log.Info("current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))

	case "force":
		v, convErr := strconv.Atoi(argAt(args, 1, log, "version"))
		if convErr != nil {
			log.Fatal("invalid version number", zap.String("value", args[1]))
		}
		err = m.Force(v)

	default:
		log.Error("unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatal("migration failed", zap.String("command", command), zap.Error(err))
	}
}

func argAt(args []string, i int, log *zap.Logger, what string) string {
	if len(args) <= i {
		log.Fatal(what + " required")
	}
	return args[i]
}

func printUsage() {
	fmt.Println(`Catalog admin database migration tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                Apply all pending migrations
  down              Roll back all migrations
  steps <n>         Apply n migrations (positive=up, negative=down)
  version           Show current migration version
  force <version>   Force set migration version after a failed migration
  list              List available migrations

Flags:
  -path string      Read migrations from a directory instead of the binary
  -log-level string Log level (default: info)

Database settings are read from config.toml and CATALOG_* environment variables.`)
}
