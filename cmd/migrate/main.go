package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"contacts-function/internal/adapters/storage"
	"contacts-function/internal/config"
	"contacts-function/internal/database"
	"contacts-function/internal/logger"
	"contacts-function/internal/migration"
)

// Schema actions (up, down, status, validate) run against the SQLite store
// named by -db. Data actions (import, export, backup) run against whichever
// backend the environment configures.
func main() {
	var (
		dbPath  = flag.String("db", config.GetEnv("SQLITE_PATH", "./data/contacts.db"), "SQLite table store path")
		action  = flag.String("action", "up", "Action: up, down, status, validate, import, export, backup")
		file    = flag.String("file", "", "Contacts JSON file for import or export (stdout when empty on export)")
		dir     = flag.String("dir", "./backups", "Directory for backup files")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	level := "info"
	if *verbose {
		level = "debug"
	}
	log, err := logger.Setup(level, "text")
	if err != nil {
		logrus.Fatalf("Failed to configure logging: %v", err)
	}

	ctx := context.Background()

	switch *action {
	case "up", "down", "status", "validate":
		err = runSchema(ctx, log, *dbPath, *action)
	case "import", "export", "backup":
		err = runData(ctx, log, *action, *file, *dir)
	default:
		err = fmt.Errorf("unknown action %q", *action)
	}
	if err != nil {
		log.WithError(err).WithField("action", *action).Fatal("Migration tool failed")
	}

	log.Info("Migration tool completed successfully")
}

func runSchema(ctx context.Context, log *logrus.Logger, dbPath, action string) error {
	absDBPath, err := filepath.Abs(dbPath)
	if err != nil {
		return fmt.Errorf("failed to get absolute database path: %w", err)
	}

	dbConfig := &config.DatabaseConfig{Path: absDBPath}
	if err := dbConfig.Validate(); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"db_path": absDBPath,
		"action":  action,
	}).Info("Starting migration tool")

	connConfig := dbConfig.ToConnectionConfig(log)
	connConfig.RunMigrations = false

	cm := database.NewConnectionManager(connConfig)
	if err := cm.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer cm.Close()

	mm := cm.GetMigrationManager()
	switch action {
	case "up":
		return mm.RunMigrations()
	case "down":
		return mm.RollbackMigration()
	case "status":
		status, err := mm.GetMigrationStatus()
		if err != nil {
			return fmt.Errorf("failed to get migration status: %w", err)
		}
		fmt.Printf("Migration Status:\n")
		fmt.Printf("  Version: %d\n", status.Version)
		fmt.Printf("  Applied: %t\n", status.Applied)
		fmt.Printf("  Dirty: %t\n", status.Dirty)
		return nil
	default:
		if err := mm.ValidateSchema(); err != nil {
			return fmt.Errorf("schema validation failed: %w", err)
		}
		fmt.Println("Schema validation passed successfully")
		return nil
	}
}

func runData(ctx context.Context, log *logrus.Logger, action, file, dir string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	table, err := storage.NewFactory(log).Create(ctx, &storage.TableConfig{
		Type:             cfg.Storage.Backend,
		TableName:        cfg.Storage.TableName,
		ConnectionString: cfg.Storage.ConnectionString,
		DatabasePath:     cfg.Database.Path,
	})
	if err != nil {
		return err
	}
	defer table.Close()

	migrator := migration.NewContactMigrator(table, log)

	switch action {
	case "import":
		if file == "" {
			return fmt.Errorf("-file is required for import")
		}
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()

		result, err := migrator.Import(ctx, f)
		if err != nil {
			return err
		}
		for _, warning := range result.Warnings {
			log.Warn(warning)
		}
		fmt.Printf("Imported %d contacts, skipped %d\n", result.Imported, result.Skipped)
		return nil

	case "export":
		out := os.Stdout
		if file != "" {
			f, err := os.Create(file)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		count, err := migrator.Export(ctx, out)
		if err != nil {
			return err
		}
		log.WithField("contacts", count).Info("Contacts exported")
		return nil

	default:
		path, err := migrator.Backup(ctx, dir)
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	}
}
