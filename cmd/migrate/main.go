// Command migrate applies or rolls back the investor schema out of band.
//
//	migrate up
//	migrate down [steps]
//	migrate version
//	migrate force <version>
package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"irdesk/internal/platform/config"
	"irdesk/internal/platform/logger"
	"irdesk/internal/platform/postgres"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: migrate up|down [steps]|version|force <version>")
		os.Exit(2)
	}
	if cfg.DatabaseURL == "" {
		log.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	m, err := postgres.NewMigrator(db)
	if err != nil {
		log.Error("failed to build migrator", "error", err)
		os.Exit(1)
	}

	if err := run(m, os.Args[1], os.Args[2:]); err != nil {
		log.Error("migration failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		log.Error("failed to read schema version", "error", err)
		os.Exit(1)
	}
	log.Info("schema version", "version", version, "dirty", dirty)
}

func run(m *migrate.Migrate, cmd string, args []string) error {
	switch cmd {
	case "up":
		return ignoreNoChange(m.Up())
	case "down":
		if len(args) == 0 {
			return ignoreNoChange(m.Down())
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid step count %q", args[0])
		}
		return ignoreNoChange(m.Steps(-n))
	case "version":
		return nil
	case "force":
		if len(args) == 0 {
			return errors.New("force requires a version")
		}
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return m.Force(v)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
