package service

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"postboard/app/repositories"
	"postboard/internal/config"
	"postboard/internal/database"
	"postboard/internal/seed"

	"github.com/sirupsen/logrus"
)

const defaultSeedCount = 20

// HandleCommand runs a subcommand and returns the process exit code.
func HandleCommand(args []string) int {
	if len(args) < 1 {
		printHelp()
		return 1
	}

	cmd := args[0]
	if cmd == "help" {
		printHelp()
		return 0
	}

	cfg, err := loadConfig()
	if err != nil {
		printf("Error: %v\n", err)
		return 1
	}
	log, err := newLogger(cfg)
	if err != nil {
		printf("Error: %v\n", err)
		return 1
	}

	switch cmd {
	case "serve":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := RunServer(ctx, cfg, log); err != nil {
			log.WithError(err).Error("server stopped")
			return 1
		}
		return 0
	case "init":
		return initStore(cfg, log)
	case "migrate":
		direction := "up"
		if len(args) > 1 {
			direction = args[1]
		}
		return migrateCmd(cfg, log, direction)
	case "seed":
		n := defaultSeedCount
		if len(args) > 1 {
			if n, err = strconv.Atoi(args[1]); err != nil || n < 1 {
				printf("Error: seed count must be a positive number, got %q\n", args[1])
				return 1
			}
		}
		return seedCmd(cfg, log, n)
	case "backup":
		return backup(cfg, log)
	case "restore":
		if len(args) < 2 {
			printf("Error: backup file path required for restore\n")
			return 1
		}
		return restore(cfg, log, args[1])
	case "clean":
		return clean(cfg, log)
	default:
		printf("Unknown command: %s\n\n", cmd)
		printHelp()
		return 1
	}
}

func printHelp() {
	printf(`Usage: postboard <command> [options]

Commands:
  serve                 Run the blog service
  init                  Create an empty database (badger) or apply the schema (postgres)
  migrate [up|down|version]
                        Manage the postgres schema
  seed [n]              Generate n fake posts with comments (default %d)
  backup                Create a backup of the badger database
  restore <file>        Restore the badger database from a backup
  clean                 Delete all data
  help                  Display this help message
  version               Show version information

Configuration is read from the environment and an optional .env file
(POSTBOARD_STORE, DATABASE_URL, POSTBOARD_BADGER_PATH, POSTBOARD_ADDR, ...).
`, defaultSeedCount)
}

// initStore creates an empty database.
func initStore(cfg config.Config, log logrus.FieldLogger) int {
	if cfg.Store == config.StorePostgres {
		return migrateCmd(cfg, log, "up")
	}

	if pathExists(cfg.Badger.Path) {
		printf("Database already exists. Use 'clean' first if you want to reinitialize.\n")
		return 0
	}
	store, err := repositories.OpenBadger(cfg.Badger.Path, nil)
	if err != nil {
		printf("Failed to initialize database: %v\n", err)
		return 1
	}
	defer store.Close()

	printf("Database initialized successfully\n")
	return 0
}

func migrateCmd(cfg config.Config, log logrus.FieldLogger, direction string) int {
	if cfg.Store != config.StorePostgres {
		printf("Error: migrations apply to the postgres store (POSTBOARD_STORE=postgres)\n")
		return 1
	}

	m, err := database.NewMigrator(cfg.DB.URL, log)
	if err != nil {
		printf("Failed to prepare migrations: %v\n", err)
		return 1
	}
	defer m.Close()

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		if !confirm("Roll back every migration? All data will be lost.") {
			printf("Operation cancelled\n")
			return 1
		}
		err = m.Down()
	case "version":
		version, dirty, ok, verr := m.Version()
		if verr != nil {
			printf("Failed to read schema version: %v\n", verr)
			return 1
		}
		if !ok {
			printf("No migrations applied\n")
			return 0
		}
		printf("Schema version %d (dirty: %t)\n", version, dirty)
		return 0
	default:
		printf("Unknown migrate direction: %s\n", direction)
		return 1
	}
	if err != nil {
		printf("Migration failed: %v\n", err)
		return 1
	}
	printf("Migrations applied (%s)\n", direction)
	return 0
}

func seedCmd(cfg config.Config, log logrus.FieldLogger, n int) int {
	ctx := context.Background()
	app, err := OpenApp(ctx, cfg, log)
	if err != nil {
		printf("Failed to open store: %v\n", err)
		return 1
	}
	defer app.Close()

	res, err := seed.New(app.Posts, app.Comments, time.Now().UnixNano()).Run(ctx, n)
	if err != nil {
		printf("Seeding stopped after %d posts: %v\n", res.Posts, err)
		return 1
	}
	printf("Seeded %d posts and %d comments\n", res.Posts, res.Comments)
	return 0
}

// backup writes a full badger backup into the backup directory.
func backup(cfg config.Config, log logrus.FieldLogger) int {
	if cfg.Store != config.StoreBadger {
		printf("Error: backup supports the badger store only; use pg_dump for postgres\n")
		return 1
	}
	if !pathExists(cfg.Badger.Path) {
		printf("No database exists to backup\n")
		return 1
	}
	if err := os.MkdirAll(cfg.BackupDir, 0755); err != nil {
		printf("Failed to create backup directory: %v\n", err)
		return 1
	}

	store, err := repositories.OpenBadger(cfg.Badger.Path, nil)
	if err != nil {
		printf("Failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	backupFile := filepath.Join(cfg.BackupDir, fmt.Sprintf("backup_%d.db", time.Now().UnixNano()))
	f, err := os.Create(backupFile)
	if err != nil {
		printf("Failed to create backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	version, err := store.Backup(f)
	if err != nil {
		printf("Failed to backup database: %v\n", err)
		return 1
	}
	log.WithFields(logrus.Fields{"file": backupFile, "version": version}).Info("backup written")
	printf("Database backed up successfully to %s\n", backupFile)
	return 0
}

// restore replaces the badger database with the contents of backupFile.
func restore(cfg config.Config, log logrus.FieldLogger, backupFile string) int {
	if cfg.Store != config.StoreBadger {
		printf("Error: restore supports the badger store only; use pg_restore for postgres\n")
		return 1
	}

	fi, err := os.Stat(backupFile)
	if err != nil {
		printf("Backup file does not exist: %s\n", backupFile)
		return 1
	}
	if fi.Size() == 0 {
		printf("Backup file is empty: %s\n", backupFile)
		return 1
	}

	if pathExists(cfg.Badger.Path) {
		if !confirm("Existing database found. Do you want to replace it?") {
			printf("Operation cancelled\n")
			return 1
		}
		if err := os.RemoveAll(cfg.Badger.Path); err != nil {
			printf("Failed to remove existing database: %v\n", err)
			return 1
		}
	}

	f, err := os.Open(backupFile)
	if err != nil {
		printf("Failed to open backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	store, err := repositories.OpenBadger(cfg.Badger.Path, nil)
	if err != nil {
		printf("Failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	err = func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic occurred during restore: %v", r)
			}
		}()
		return store.Restore(f)
	}()
	if err != nil {
		printf("Failed to restore database: %v\n", err)
		return 1
	}
	log.WithField("file", backupFile).Info("backup restored")
	printf("Database restored successfully\n")
	return 0
}

// clean deletes all data after confirmation.
func clean(cfg config.Config, log logrus.FieldLogger) int {
	if cfg.Store == config.StorePostgres {
		return migrateCmd(cfg, log, "down")
	}

	if !pathExists(cfg.Badger.Path) {
		printf("Database is already clean (does not exist)\n")
		return 0
	}
	if !confirm("Are you sure you want to clean the database? This cannot be undone.") {
		printf("Operation cancelled\n")
		return 0
	}
	if err := os.RemoveAll(cfg.Badger.Path); err != nil {
		printf("Failed to clean database: %v\n", err)
		return 1
	}
	printf("Database cleaned successfully\n")
	return 0
}
