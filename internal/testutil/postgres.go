//go:build integration

package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/yigit/uniadmin/internal/app/migrations"
	"github.com/yigit/uniadmin/internal/db"
	schema "github.com/yigit/uniadmin/migrations"
)

// TestDB is a migrated Postgres running in a disposable container
type TestDB struct {
	Pool *pgxpool.Pool
}

// NewTestDB starts Postgres, applies the embedded migrations and registers
// cleanup with t.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("uniadmin_test"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := db.Connect(ctx, connStr, nil)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = migrations.NewMigrator(pool).MigrateFS(ctx, schema.FS)
	require.NoError(t, err)

	return &TestDB{Pool: pool}
}

// Truncate empties the given tables between tests
func (d *TestDB) Truncate(t *testing.T, tables ...string) {
	t.Helper()
	if len(tables) == 0 {
		return
	}
	_, err := d.Pool.Exec(context.Background(), fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(tables, ", ")))
	require.NoError(t, err)
}

// CreateUser inserts a user row and returns its id
func (d *TestDB) CreateUser(t *testing.T, email string, staff bool) int64 {
	t.Helper()
	var id int64
	err := d.Pool.QueryRow(context.Background(),
		`INSERT INTO users (email, password_hash, first_name, last_name, is_active, is_staff)
		 VALUES ($1, 'x', 'Test', 'User', TRUE, $2) RETURNING id`, email, staff).Scan(&id)
	require.NoError(t, err)
	return id
}
