// Package main provides a CLI for applying the database schema.
//
// Usage:
//
//	migrate [-config config.yaml] up
//	migrate down
//	migrate steps -1
//	migrate version
//	migrate force 1
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"retaguarda/internal/infrastructure/config"
	"retaguarda/internal/infrastructure/migration"
	"retaguarda/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: migrate [-config file] up|down|steps N|version|force V\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Storage.Driver != config.DriverPostgres {
		fmt.Printf("migrations apply to the %s driver only (storage.driver=%s)\n", config.DriverPostgres, cfg.Storage.Driver)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Development: true})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	m, err := migration.New(cfg.Database.DSN, cfg.Database.MigrationsPath, log)
	if err != nil {
		log.Fatalw("failed to open migrations", "error", err)
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warnw("failed to close migrator", "error", err)
		}
	}()

	if err := run(m, flag.Args()); err != nil {
		log.Errorw("migration command failed", "command", flag.Arg(0), "error", err)
		os.Exit(1)
	}
}

func run(m *migration.Migrator, args []string) error {
	switch args[0] {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "steps":
		n, err := intArg(args)
		if err != nil {
			return err
		}
		return m.Steps(n)
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version=%d dirty=%t\n", version, dirty)
		return nil
	case "force":
		v, err := intArg(args)
		if err != nil {
			return err
		}
		return m.Force(v)
	}
	return fmt.Errorf("unknown command %q", args[0])
}

func intArg(args []string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("%s requires a numeric argument", args[0])
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, fmt.Errorf("%s: invalid number %q", args[0], args[1])
	}
	return n, nil
}
