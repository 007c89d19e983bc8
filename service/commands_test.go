package service

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"postboard/app/models"
	"postboard/app/repositories"
	"postboard/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestEnv points the commands at a badger store in a temp dir and
// captures their output.
func setupTestEnv(t *testing.T) (*config.Config, *bytes.Buffer) {
	tmpDir := t.TempDir()
	cfg := config.Default()
	cfg.Badger.Path = filepath.Join(tmpDir, "badger")
	cfg.BackupDir = filepath.Join(tmpDir, "backups")
	cfg.Log.Level = "error"

	var out bytes.Buffer
	oldStdout, oldStdin, oldLog, oldLoad := stdout, stdin, logOutput, loadConfig
	stdout, stdin, logOutput = &out, strings.NewReader(""), io.Discard
	loadConfig = func() (config.Config, error) { return cfg, nil }
	t.Cleanup(func() {
		stdout, stdin, logOutput, loadConfig = oldStdout, oldStdin, oldLog, oldLoad
	})
	return &cfg, &out
}

func answer(input string) {
	stdin = strings.NewReader(input)
}

func countPosts(t *testing.T, path string) int {
	store, err := repositories.OpenBadger(path, nil)
	require.NoError(t, err)
	defer store.Close()

	posts, err := store.Posts().List(context.Background())
	require.NoError(t, err)
	return len(posts)
}

func TestHandleCommand(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		expectedOutput string
		expectedExit   int
	}{
		{"no arguments", []string{}, "Usage: postboard <command>", 1},
		{"help command", []string{"help"}, "Usage: postboard <command>", 0},
		{"unknown command", []string{"unknown"}, "Unknown command: unknown", 1},
		{"restore without file", []string{"restore"}, "Error: backup file path required for restore", 1},
		{"seed with bad count", []string{"seed", "many"}, "seed count must be a positive number", 1},
		{"migrate on badger", []string{"migrate"}, "migrations apply to the postgres store", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out := setupTestEnv(t)

			code := HandleCommand(tt.args)
			assert.Equal(t, tt.expectedExit, code)
			assert.Contains(t, out.String(), tt.expectedOutput)
		})
	}
}

func TestConfigError(t *testing.T) {
	_, out := setupTestEnv(t)
	loadConfig = func() (config.Config, error) {
		return config.FromEnv(func(key string) string {
			if key == "POSTBOARD_STORE" {
				return "mysql"
			}
			return ""
		})
	}

	assert.Equal(t, 1, HandleCommand([]string{"seed"}))
	assert.Contains(t, out.String(), "unknown store")
}

func TestInitStore(t *testing.T) {
	cfg, out := setupTestEnv(t)

	assert.Equal(t, 0, HandleCommand([]string{"init"}))
	assert.Contains(t, out.String(), "Database initialized successfully")
	assert.DirExists(t, cfg.Badger.Path)

	out.Reset()
	assert.Equal(t, 0, HandleCommand([]string{"init"}))
	assert.Contains(t, out.String(), "Database already exists")
}

func TestSeed(t *testing.T) {
	cfg, out := setupTestEnv(t)

	assert.Equal(t, 0, HandleCommand([]string{"seed", "4"}))
	assert.Contains(t, out.String(), "Seeded 4 posts")
	assert.Equal(t, 4, countPosts(t, cfg.Badger.Path))
}

func TestClean(t *testing.T) {
	cfg, out := setupTestEnv(t)

	t.Run("clean non-existent database", func(t *testing.T) {
		assert.Equal(t, 0, HandleCommand([]string{"clean"}))
		assert.Contains(t, out.String(), "Database is already clean")
	})

	t.Run("clean existing database - cancelled", func(t *testing.T) {
		require.Equal(t, 0, HandleCommand([]string{"init"}))
		out.Reset()
		answer("n\n")

		HandleCommand([]string{"clean"})
		assert.Contains(t, out.String(), "Operation cancelled")
		assert.DirExists(t, cfg.Badger.Path)
	})

	t.Run("clean existing database - confirmed", func(t *testing.T) {
		out.Reset()
		answer("y\n")

		assert.Equal(t, 0, HandleCommand([]string{"clean"}))
		assert.Contains(t, out.String(), "Database cleaned successfully")
		assert.NoDirExists(t, cfg.Badger.Path)
	})
}

func TestBackupAndRestore(t *testing.T) {
	cfg, out := setupTestEnv(t)

	t.Run("backup non-existent database", func(t *testing.T) {
		assert.Equal(t, 1, HandleCommand([]string{"backup"}))
		assert.Contains(t, out.String(), "No database exists to backup")
	})

	var backupFile string
	t.Run("backup existing database", func(t *testing.T) {
		store, err := repositories.OpenBadger(cfg.Badger.Path, nil)
		require.NoError(t, err)
		_, err = store.Posts().Insert(context.Background(), &models.Post{Title: "keep me", Content: "c", Author: "a"})
		require.NoError(t, err)
		require.NoError(t, store.Close())

		out.Reset()
		assert.Equal(t, 0, HandleCommand([]string{"backup"}))
		assert.Contains(t, out.String(), "Database backed up successfully")

		files, err := filepath.Glob(filepath.Join(cfg.BackupDir, "backup_*.db"))
		require.NoError(t, err)
		require.Len(t, files, 1)
		backupFile = files[0]
	})

	t.Run("restore non-existent backup", func(t *testing.T) {
		out.Reset()
		assert.Equal(t, 1, HandleCommand([]string{"restore", "nonexistent.db"}))
		assert.Contains(t, out.String(), "Backup file does not exist")
	})

	t.Run("restore empty backup", func(t *testing.T) {
		empty := filepath.Join(t.TempDir(), "empty.db")
		require.NoError(t, os.WriteFile(empty, nil, 0644))

		out.Reset()
		assert.Equal(t, 1, HandleCommand([]string{"restore", empty}))
		assert.Contains(t, out.String(), "Backup file is empty")
	})

	t.Run("restore with existing database - cancelled", func(t *testing.T) {
		out.Reset()
		answer("n\n")
		assert.Equal(t, 1, HandleCommand([]string{"restore", backupFile}))
		assert.Contains(t, out.String(), "Operation cancelled")
	})

	t.Run("restore with existing database - confirmed", func(t *testing.T) {
		require.NoError(t, os.RemoveAll(cfg.Badger.Path))
		require.Equal(t, 0, HandleCommand([]string{"init"}))
		assert.Equal(t, 0, countPosts(t, cfg.Badger.Path))

		out.Reset()
		answer("y\n")
		assert.Equal(t, 0, HandleCommand([]string{"restore", backupFile}))
		assert.Contains(t, out.String(), "Database restored successfully")
		assert.Equal(t, 1, countPosts(t, cfg.Badger.Path))
	})
}

func TestPostgresOnlyCommands(t *testing.T) {
	cfg, out := setupTestEnv(t)
	cfg.Store = config.StorePostgres

	assert.Equal(t, 1, HandleCommand([]string{"backup"}))
	assert.Contains(t, out.String(), "use pg_dump")

	out.Reset()
	assert.Equal(t, 1, HandleCommand([]string{"restore", "some.db"}))
	assert.Contains(t, out.String(), "use pg_restore")
}
