// Package pgtest provides a migrated PostgreSQL database for repository tests.
package pgtest

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/minimalapi/fornecedor/internal/database"
)

var (
	containerOnce sync.Once
	containerDSN  string
	containerErr  error
)

// New returns a pool whose search_path points at a fresh, migrated schema
// that is dropped when the test ends.
//
// TEST_DATABASE_URL wins when set. Otherwise a postgres:16-alpine container is
// started once per test binary and reused; the test is skipped when Docker is
// not available.
func New(t *testing.T) *pgxpool.Pool {
	t.Helper()

	ctx := context.Background()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		testcontainers.SkipIfProviderIsNotHealthy(t)
		dsn = startContainer(ctx)
		if containerErr != nil {
			t.Skipf("skipping: cannot start postgres container: %v", containerErr)
		}
	}

	admin, err := pgx.Connect(ctx, dsn)
	if err != nil {
		t.Skipf("skipping: cannot connect to test database: %v", err)
	}
	defer admin.Close(ctx)

	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	_, err = admin.Exec(ctx, "CREATE SCHEMA "+schema)
	require.NoError(t, err)
	t.Cleanup(func() {
		conn, err := pgx.Connect(context.Background(), dsn)
		if err != nil {
			return
		}
		defer conn.Close(context.Background())
		_, _ = conn.Exec(context.Background(), "DROP SCHEMA "+schema+" CASCADE")
	})

	cfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	cfg.ConnConfig.RuntimeParams["search_path"] = schema

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err, fmt.Sprintf("connecting to schema %s", schema))
	t.Cleanup(pool.Close)

	require.NoError(t, database.Migrate(ctx, pool))

	return pool
}

func startContainer(ctx context.Context) string {
	containerOnce.Do(func() {
		ctr, err := postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("fornecedor_test"),
			postgres.WithUsername("fornecedor"),
			postgres.WithPassword("fornecedor"),
			postgres.BasicWaitStrategies(),
		)
		if err != nil {
			containerErr = err
			return
		}
		containerDSN, containerErr = ctr.ConnectionString(ctx, "sslmode=disable")
	})
	return containerDSN
}
