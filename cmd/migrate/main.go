package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/infrastructure/migration"
	"github.com/erp/backoffice/migrations"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultMigrationsDir = "migrations"

func main() {
	var (
		dir      string
		logLevel string
	)
	flag.StringVar(&dir, "path", "", "Read migrations from this directory instead of the embedded set")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	// create and list work on files only
	switch command {
	case "create":
		if len(args) < 2 {
			log.Fatal("Migration name required. Usage: migrate create <name> [description]")
		}
		description := ""
		if len(args) > 2 {
			description = args[2]
		}
		mf, err := migration.CreateMigration(orDefault(dir), args[1], description)
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		log.Info("Migration created",
			zap.String("version", mf.Version),
			zap.String("up_file", mf.UpPath),
			zap.String("down_file", mf.DownPath),
		)
		return
	case "list":
		list, err := migration.ListMigrations(orDefault(dir))
		if err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}
		log.Info("Available migrations", zap.Int("count", len(list)))
		for _, m := range list {
			fmt.Println("  -", m)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if cfg.Database.Driver != config.DriverPostgres {
		log.Fatal("Versioned migrations target postgres; sqlite schemas are created on server start",
			zap.String("driver", cfg.Database.Driver))
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database", zap.Error(err))
	}

	var m *migration.Migrator
	if dir != "" {
		m, err = migration.NewFromDir(db, dir, log)
	} else {
		m, err = migration.New(db, migrations.FS, log)
	}
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer m.Close()

	switch command {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "step":
		n, perr := strconv.Atoi(arg(args, 1, log, "migrate step <n>"))
		if perr != nil {
			log.Fatal("Invalid step count", zap.String("value", args[1]))
		}
		err = m.Steps(n)
	case "goto":
		v, perr := strconv.ParseUint(arg(args, 1, log, "migrate goto <version>"), 10, 32)
		if perr != nil {
			log.Fatal("Invalid version number", zap.String("value", args[1]))
		}
		err = m.GoTo(uint(v))
	case "version":
		var (
			v     uint
			dirty bool
		)
		v, dirty, err = m.Version()
		if err == nil {
			log.Info("Current schema version", zap.Uint("version", v), zap.Bool("dirty", dirty))
		}
	case "force":
		v, perr := strconv.Atoi(arg(args, 1, log, "migrate force <version>"))
		if perr != nil {
			log.Fatal("Invalid version number", zap.String("value", args[1]))
		}
		err = m.Force(v)
	case "drop":
		if !slices.Contains(args[1:], "-confirm") && !slices.Contains(args[1:], "--confirm") {
			log.Fatal("Drop cancelled. Use 'migrate drop -confirm' to confirm.")
		}
		err = m.Drop()
	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal("Migration command failed", zap.String("command", command), zap.Error(err))
	}
}

func orDefault(dir string) string {
	if dir == "" {
		return defaultMigrationsDir
	}
	return dir
}

func arg(args []string, i int, log *zap.Logger, usage string) string {
	if len(args) <= i {
		log.Fatal("Missing argument. Usage: " + usage)
	}
	return args[i]
}

func printUsage() {
	fmt.Println(`Backoffice Schema Migration Tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (positive=up, negative=down)
  goto <version>        Migrate to a specific version
  version               Show current schema version
  force <version>       Force set schema version
  drop -confirm         Drop all database objects
  create <name> [desc]  Create a new migration file pair
  list                  List available migrations

Flags:
  -path string          Migrations directory (default: embedded set; ./migrations for create/list)
  -log-level string     Log level: debug, info, warn, error (default: info)

Environment Variables:
  ERP_DATABASE_HOST, ERP_DATABASE_PORT, ERP_DATABASE_USER,
  ERP_DATABASE_PASSWORD, ERP_DATABASE_DBNAME, ERP_DATABASE_SSLMODE`)
}
