// Command migrate runs schema operations for the job board database.
//
//	migrate up                 apply pending SQL migrations
//	migrate auto               GORM AutoMigrate (refused in production-like envs)
//	migrate status             print policy, applied and pending versions
//	migrate down [version]     revert one migration, the newest by default
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"jobboard/internal/config"
	"jobboard/internal/database"

	"gorm.io/gorm"
)

type command func(ctx context.Context, db *gorm.DB, cfg *config.Config, args []string) error

var commands = map[string]command{
	"up":     migrateUp,
	"auto":   migrateAuto,
	"status": migrateStatus,
	"down":   migrateDown,
}

var errUsage = errors.New("usage: migrate [-timeout 5m] <up|auto|status|down> [version]")

func main() {
	timeout := flag.Duration("timeout", 5*time.Minute, "abort the operation after this long")
	flag.Parse()

	if err := run(*timeout, flag.Args()); err != nil {
		log.Fatal(err)
	}
}

func run(timeout time.Duration, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, ok := commands[strings.ToLower(strings.TrimSpace(args[0]))]
	if !ok {
		return errUsage
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.ConnectWithOptions(cfg, database.Options{SkipSchema: true, Attempts: 3})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return cmd(ctx, db, cfg, args[1:])
}

func migrateUp(ctx context.Context, db *gorm.DB, _ *config.Config, _ []string) error {
	if err := database.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("sql migrations failed: %w", err)
	}
	log.Println("sql migrations applied")
	return nil
}

func migrateAuto(ctx context.Context, db *gorm.DB, cfg *config.Config, _ []string) error {
	cfg.DBSchemaMode = database.SchemaModeAuto
	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		return fmt.Errorf("auto schema apply failed: %w", err)
	}
	log.Println("automigrations applied")
	return nil
}

func migrateStatus(ctx context.Context, db *gorm.DB, cfg *config.Config, _ []string) error {
	status, err := database.GetSchemaStatus(ctx, db, cfg)
	if err != nil {
		return fmt.Errorf("schema status failed: %w", err)
	}

	fmt.Printf("mode:     %s (env %q)\n", status.Mode, status.Environment)
	fmt.Printf("sql:      %t\nauto:     %t\n", status.WillRunSQL, status.WillRunAutoMigrate)
	fmt.Printf("applied:  %v\n", status.AppliedVersions)
	for _, m := range status.PendingMigrations {
		fmt.Printf("pending:  %s\n", m.String())
	}
	if status.HistoryProblem != "" {
		fmt.Printf("history:  %s\n", status.HistoryProblem)
	}
	return nil
}

func migrateDown(ctx context.Context, db *gorm.DB, cfg *config.Config, args []string) error {
	var version int
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[0], err)
		}
		version = v
	} else {
		status, err := database.GetSchemaStatus(ctx, db, cfg)
		if err != nil {
			return err
		}
		if len(status.AppliedVersions) == 0 {
			return errors.New("nothing to roll back")
		}
		version = status.AppliedVersions[len(status.AppliedVersions)-1]
	}

	if err := database.RollbackMigration(ctx, db, version); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}
	log.Printf("rolled back migration %06d", version)
	return nil
}
