package seed_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/uniadmin/internal/app/models"
	"github.com/yigit/uniadmin/internal/app/services"
	"github.com/yigit/uniadmin/internal/pkg/auth"
	"github.com/yigit/uniadmin/internal/seed"
	"github.com/yigit/uniadmin/internal/testutil"
)

func TestEnsureSuperuser(t *testing.T) {
	ctx := context.Background()
	users := testutil.NewMemoryUsers()

	created, err := seed.EnsureSuperuser(ctx, users, "admin@university.edu", "s3cret!pass", zerolog.Nop())
	require.NoError(t, err)
	assert.True(t, created)

	u, err := users.GetByEmail(ctx, "admin@university.edu")
	require.NoError(t, err)
	assert.True(t, u.IsStaff)
	assert.True(t, u.IsSuperuser)
	assert.True(t, u.IsActive)
	assert.True(t, auth.CheckPassword(u.Password, "s3cret!pass"))

	created, err = seed.EnsureSuperuser(ctx, users, "admin@university.edu", "s3cret!pass", zerolog.Nop())
	require.NoError(t, err)
	assert.False(t, created)
}

func TestEnsureSuperuser_Skips(t *testing.T) {
	ctx := context.Background()
	users := testutil.NewMemoryUsers()

	created, err := seed.EnsureSuperuser(ctx, users, "", "", zerolog.Nop())
	require.NoError(t, err)
	assert.False(t, created)

	_, err = seed.EnsureSuperuser(ctx, users, "admin@university.edu", "short", zerolog.Nop())
	assert.Error(t, err)
}

func TestSeedDepartments(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewMemoryDepartments()
	svc := services.NewDepartmentService(repo, zerolog.Nop())
	actor := &models.Actor{UserID: 1, IsStaff: true}

	n, err := seed.SeedDepartments(ctx, svc, actor, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, len(seed.DefaultDepartments), n)

	d, err := svc.Get(ctx, "101", actor)
	require.NoError(t, err)
	assert.Equal(t, "Computer Science", d.Name)

	n, err = seed.SeedDepartments(ctx, svc, actor, zerolog.Nop())
	require.NoError(t, err)
	assert.Zero(t, n)
}
