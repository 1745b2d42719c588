// Package testhelpers provides shared fixtures for tests: a controllable
// clock and a containerized PostgreSQL for integration tests.
//
// The PostgreSQL helper uses testcontainers-go, so the only requirement is
// a reachable Docker daemon.
package testhelpers

import (
	"context"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresImage is the image integration tests run against.
const PostgresImage = "postgres:16-alpine"

// PostgresContainer is a running PostgreSQL instance for one test.
//
// Example usage:
//
//	func TestWithPostgres(t *testing.T) {
//	    pg := testhelpers.SetupPostgres(t)
//	    db, err := postgres.Open(ctx, postgres.Config{DSN: pg.DSN})
//	    // ... test code ...
//	}
type PostgresContainer struct {
	// DSN is a lib/pq connection URL for the database.
	DSN string

	// Host and Port are the mapped address on the Docker host.
	Host string
	Port int

	Container testcontainers.Container
}

// SetupPostgres starts PostgreSQL and registers its termination with
// t.Cleanup. The test is skipped in -short mode or when Docker is not
// available.
func SetupPostgres(t *testing.T) *PostgresContainer {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping container-based test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	const (
		user     = "todo"
		password = "todo"
		database = "todo"
	)

	req := testcontainers.ContainerRequest{
		Image:        PostgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     user,
			"POSTGRES_PASSWORD": password,
			"POSTGRES_DB":       database,
		},
		// The server logs readiness twice: once for the init pass, once for real.
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		).WithDeadline(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("PostgreSQL container unavailable (is Docker running?): %v", err)
	}

	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate postgres container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get postgres host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("Failed to get postgres port: %v", err)
	}

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, password),
		Host:     fmt.Sprintf("%s:%d", host, port.Int()),
		Path:     database,
		RawQuery: "sslmode=disable",
	}

	t.Logf("PostgreSQL started: %s:%d", host, port.Int())
	return &PostgresContainer{
		DSN:       dsn.String(),
		Host:      host,
		Port:      port.Int(),
		Container: container,
	}
}
