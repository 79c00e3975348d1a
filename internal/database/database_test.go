package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testDSN string

func mustStartPostgresContainer() (func(context.Context) error, error) {
	var (
		dbName = "notepool"
		dbPwd  = "password"
		dbUser = "postgres"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:16-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		return nil, err
	}
	teardown := func(ctx context.Context) error {
		return dbContainer.Terminate(ctx)
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return teardown, err
	}
	dbPort, err := dbContainer.MappedPort(context.Background(), "5432/tcp")
	if err != nil {
		return teardown, err
	}

	testDSN = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPwd, dbHost, dbPort.Port(), dbName)

	return teardown, nil
}

func TestMain(m *testing.M) {
	teardown, err := mustStartPostgresContainer()
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	code := m.Run()

	if teardown != nil {
		if err := teardown(context.Background()); err != nil {
			log.Fatalf("could not teardown postgres container: %v", err)
		}
	}
	os.Exit(code)
}

func TestNew(t *testing.T) {
	srv, err := New(testDSN)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	defer srv.Close()
	if srv == nil {
		t.Fatal("New() returned nil")
	}
}

func TestMigrate(t *testing.T) {
	srv, err := New(testDSN)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	defer srv.Close()

	if err := srv.Migrate(); err != nil {
		t.Fatalf("Migrate() returned error: %v", err)
	}
	// applying twice is a no-op
	if err := srv.Migrate(); err != nil {
		t.Fatalf("second Migrate() returned error: %v", err)
	}

	for _, table := range []string{"users", "notes", "images"} {
		var name string
		err := srv.DB().QueryRow("SELECT tablename FROM pg_tables WHERE tablename = $1", table).Scan(&name)
		if err != nil {
			t.Fatalf("expected table %s: %v", table, err)
		}
	}
}

func TestHealth(t *testing.T) {
	srv, err := New(testDSN)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	defer srv.Close()

	stats := srv.Health()
	if stats["status"] != "up" {
		t.Fatalf("expected status up, got %s", stats["status"])
	}
	if _, ok := stats["error"]; ok {
		t.Fatalf("expected no error, got %s", stats["error"])
	}
}

func TestClose(t *testing.T) {
	srv, err := New(testDSN)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	if err := srv.Close(); err != nil {
		t.Fatalf("Close() returned error: %v", err)
	}
}
