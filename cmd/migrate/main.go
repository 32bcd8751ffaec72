package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/ogurasousui/hrms-attendance/internal/platform/config"
	"github.com/ogurasousui/hrms-attendance/internal/platform/logging"
)

const usage = `usage: migrate [flags] <action>

actions:
  up            apply all pending migrations (default)
  down          roll back all migrations
  steps N       apply N migrations (negative N rolls back)
  force V       mark version V as clean after a failed migration
  version       print the current schema version
  drop          drop every table (requires -yes)
`

func main() {
	var (
		configPath    = flag.String("config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
		migrationsDir = flag.String("dir", "assets/migrations", "directory containing migration files")
		confirmed     = flag.Bool("yes", false, "confirm destructive actions such as drop")
	)
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	cmd, err := parseCommand(flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}
	if cmd.action == "drop" && !*confirmed {
		fmt.Fprintln(os.Stderr, "refusing to drop the schema without -yes")
		os.Exit(2)
	}

	cfgPath := effectiveConfigPath(*configPath)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "path", cfgPath, "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log, os.Stderr)

	if err := runMigration(logger, cmd, *migrationsDir, cfg.Database.DSN()); err != nil {
		logger.Error("migration failed", "action", cmd.action, "error", err)
		os.Exit(1)
	}

	logger.Info("migration completed", "action", cmd.action)
}

type command struct {
	action string
	n      int
}

func parseCommand(args []string) (command, error) {
	if len(args) == 0 {
		return command{action: "up"}, nil
	}

	cmd := command{action: strings.ToLower(args[0])}
	switch cmd.action {
	case "up", "down", "version", "drop":
		if len(args) > 1 {
			return command{}, fmt.Errorf("%s takes no arguments", cmd.action)
		}
	case "steps", "force":
		if len(args) != 2 {
			return command{}, fmt.Errorf("%s requires exactly one integer argument", cmd.action)
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return command{}, fmt.Errorf("%s: invalid argument %q", cmd.action, args[1])
		}
		if cmd.action == "steps" && n == 0 {
			return command{}, fmt.Errorf("steps: N must not be zero")
		}
		cmd.n = n
	default:
		return command{}, fmt.Errorf("unsupported action %q", cmd.action)
	}
	return cmd, nil
}

func effectiveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return "assets/local.yaml"
}

func runMigration(logger *slog.Logger, cmd command, dir, dsn string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve path for %s: %w", dir, err)
	}

	m, err := migrate.New("file://"+filepath.ToSlash(absDir), dsn)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()
	m.Log = migrateLogger{logger: logger}

	switch cmd.action {
	case "up":
		return ignoreNoChange(m.Up())
	case "down":
		return ignoreNoChange(m.Down())
	case "steps":
		return ignoreNoChange(m.Steps(cmd.n))
	case "force":
		return m.Force(cmd.n)
	case "drop":
		return m.Drop()
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			logger.Info("no migration applied")
			return nil
		}
		if err != nil {
			return err
		}
		logger.Info("current schema version", "version", version, "dirty", dirty)
		return nil
	default:
		return fmt.Errorf("unsupported action %q", cmd.action)
	}
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

// migrateLogger は golang-migrate の進捗を slog に流します。
type migrateLogger struct {
	logger *slog.Logger
}

func (l migrateLogger) Printf(format string, v ...any) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l migrateLogger) Verbose() bool {
	return l.logger.Enabled(context.Background(), slog.LevelDebug)
}
