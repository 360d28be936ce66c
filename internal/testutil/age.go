package testutil

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/openshift-hyperfleet/kartograph-sub001/internal/config"
	"github.com/openshift-hyperfleet/kartograph-sub001/internal/database"
	"github.com/openshift-hyperfleet/kartograph-sub001/internal/migrate"
)

// AGEImage is the container started when TEST_DATABASE_URL is not set.
const AGEImage = "apache/age:release_PG16_1.5.0"

var (
	containerOnce sync.Once
	containerDSN  string
	containerErr  error
)

// AGEDatabase is a migrated PostgreSQL + AGE database for integration tests.
type AGEDatabase struct {
	Pool *pgxpool.Pool
	DB   *bun.DB
	DSN  string
}

// SetupAGE connects to TEST_DATABASE_URL, or to a shared apache/age container
// when unset, and applies the migrations. It skips the test under -short or
// when no database can be reached.
func SetupAGE(t testing.TB) *AGEDatabase {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		containerOnce.Do(func() {
			containerDSN, containerErr = startAGEContainer(context.Background())
		})
		if containerErr != nil {
			t.Skipf("no AGE database available: %v", containerErr)
		}
		dsn = containerDSN
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, dsn, config.DatabaseConfig{MaxOpenConns: 8})
	if err != nil {
		t.Skipf("AGE database unreachable: %v", err)
	}

	sqldb := stdlib.OpenDBFromPool(pool)
	if err := migrate.RunWithDB(ctx, sqldb); err != nil {
		pool.Close()
		t.Fatalf("migrate: %v", err)
	}
	db := bun.NewDB(sqldb, pgdialect.New())

	t.Cleanup(func() {
		_ = db.Close()
		pool.Close()
	})

	return &AGEDatabase{Pool: pool, DB: db, DSN: dsn}
}

// UniqueGraph returns a fresh graph name and drops the graph when the test ends.
func (a *AGEDatabase) UniqueGraph(t testing.TB) string {
	t.Helper()
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		t.Fatalf("graph name: %v", err)
	}
	name := "test_" + hex.EncodeToString(buf)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_, _ = a.Pool.Exec(ctx,
			"SELECT ag_catalog.drop_graph(name, true) FROM ag_catalog.ag_graph WHERE name = $1", name)
	})
	return name
}

func startAGEContainer(ctx context.Context) (string, error) {
	req := testcontainers.ContainerRequest{
		Image:        AGEImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "kartograph",
			"POSTGRES_PASSWORD": "kartograph",
			"POSTGRES_DB":       "kartograph",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(2 * time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return "", fmt.Errorf("container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		_ = container.Terminate(ctx)
		return "", fmt.Errorf("container port: %w", err)
	}

	return fmt.Sprintf("postgres://kartograph:kartograph@%s:%s/kartograph?sslmode=disable", host, port.Port()), nil
}
