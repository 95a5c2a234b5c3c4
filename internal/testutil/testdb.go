package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// One Postgres container serves every test in the binary. Each test gets its
// own database inside it, so tests stay isolated without paying a container
// start each. The testcontainers reaper removes the container on exit.
var (
	serverOnce sync.Once
	serverDSN  *url.URL
	serverErr  error
	adminDB    *sql.DB
	dbSeq      atomic.Int64
)

func startServer() {
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("meethere_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		serverErr = fmt.Errorf("start postgres container: %w", err)
		return
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		serverErr = fmt.Errorf("get connection string: %w", err)
		return
	}
	if serverDSN, err = url.Parse(connStr); err != nil {
		serverErr = fmt.Errorf("parse connection string: %w", err)
		return
	}
	if adminDB, err = sql.Open("postgres", connStr); err != nil {
		serverErr = fmt.Errorf("open admin db: %w", err)
	}
}

// SetupTestDSN creates an empty database with the schema applied and returns
// its connection string. The database is dropped when the test ends.
// It is skipped under -short so unit runs do not need Docker.
func SetupTestDSN(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	serverOnce.Do(startServer)
	if serverErr != nil {
		t.Fatalf("%v", serverErr)
	}

	name := fmt.Sprintf("meethere_t%d", dbSeq.Add(1))
	if _, err := adminDB.Exec("CREATE DATABASE " + name); err != nil {
		t.Fatalf("create database %s: %v", name, err)
	}
	t.Cleanup(func() {
		if _, err := adminDB.Exec("DROP DATABASE IF EXISTS " + name + " WITH (FORCE)"); err != nil {
			t.Logf("drop database %s: %v", name, err)
		}
	})

	dsn := *serverDSN
	dsn.Path = "/" + name
	return dsn.String()
}

// SetupTestDB opens a fresh migrated database for the test.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := SetupTestDSN(t)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := runMigrations(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	return db
}

func runMigrations(db *sql.DB) error {
	migrationsDir := findMigrationsDir()

	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	var upFiles []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			upFiles = append(upFiles, e.Name())
		}
	}
	sort.Strings(upFiles)

	for _, f := range upFiles {
		content, err := os.ReadFile(filepath.Join(migrationsDir, f))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", f, err)
		}
		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("execute migration %s: %w", f, err)
		}
	}

	return nil
}

// findMigrationsDir walks up from the package directory go test runs in.
func findMigrationsDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "migrations"
	}
	for range 10 {
		candidate := filepath.Join(dir, "migrations")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
		dir = filepath.Dir(dir)
	}
	return "migrations"
}
