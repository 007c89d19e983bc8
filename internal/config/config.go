// Package config loads the service configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreBadger   = "badger"
)

// Config is the full service configuration.
type Config struct {
	Addr   string
	Store  string
	Badger BadgerConfig
	DB     DBConfig
	Log    LogConfig

	MigrateOnStart bool
	BackupDir      string
}

type BadgerConfig struct {
	Path string
}

type DBConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// Default returns the configuration used when no variables are set.
func Default() Config {
	return Config{
		Addr:   ":8080",
		Store:  StoreBadger,
		Badger: BadgerConfig{Path: "data/badger"},
		DB: DBConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Log:            LogConfig{Level: "info", Format: "text"},
		MigrateOnStart: true,
		BackupDir:      "data/backups",
	}
}

// Load reads the given .env files (missing files are skipped) and then the
// process environment. Variables already set in the environment win.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()
	var errs []error

	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}
	flag := func(key string, dst *bool) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}

	str("POSTBOARD_ADDR", &cfg.Addr)
	str("POSTBOARD_STORE", &cfg.Store)
	str("POSTBOARD_BADGER_PATH", &cfg.Badger.Path)
	str("DATABASE_URL", &cfg.DB.URL)
	num("POSTBOARD_DB_MAX_OPEN", &cfg.DB.MaxOpenConns)
	num("POSTBOARD_DB_MAX_IDLE", &cfg.DB.MaxIdleConns)
	dur("POSTBOARD_DB_CONN_LIFETIME", &cfg.DB.ConnMaxLifetime)
	str("POSTBOARD_LOG_LEVEL", &cfg.Log.Level)
	str("POSTBOARD_LOG_FORMAT", &cfg.Log.Format)
	flag("POSTBOARD_MIGRATE_ON_START", &cfg.MigrateOnStart)
	str("POSTBOARD_BACKUP_DIR", &cfg.BackupDir)

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings that cannot be defaulted.
func (c Config) Validate() error {
	switch c.Store {
	case StoreBadger:
		if c.Badger.Path == "" {
			return errors.New("POSTBOARD_BADGER_PATH must not be empty")
		}
	case StorePostgres:
		if c.DB.URL == "" {
			return errors.New("DATABASE_URL is required when POSTBOARD_STORE=postgres")
		}
	default:
		return fmt.Errorf("unknown store %q (want %s or %s)", c.Store, StorePostgres, StoreBadger)
	}
	if c.DB.MaxOpenConns < 0 || c.DB.MaxIdleConns < 0 {
		return errors.New("pool sizes must not be negative")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}
