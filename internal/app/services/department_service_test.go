package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/uniadmin/internal/app/models"
	"github.com/yigit/uniadmin/internal/app/models/dto"
	"github.com/yigit/uniadmin/internal/pkg/apperrors"
	"github.com/yigit/uniadmin/internal/testutil"
)

var (
	staff   = &models.Actor{UserID: 1, IsStaff: true}
	regular = &models.Actor{UserID: 2}
)

func newDepartmentService(t *testing.T) (*DepartmentService, *testutil.MemoryDepartments) {
	t.Helper()
	repo := testutil.NewMemoryDepartments()
	svc := NewDepartmentService(repo, zerolog.Nop())
	svc.now = newTestClock().Now
	return svc, repo
}

func TestDepartmentService_CreateAllocatesSequentialIDs(t *testing.T) {
	svc, _ := newDepartmentService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, &dto.DepartmentRequest{Name: "Computer Science", Faculty: models.FacultyIC}, staff)
	require.NoError(t, err)
	assert.Equal(t, "101", first.ID)
	assert.Equal(t, int64(1), *first.CreatedBy)
	assert.Equal(t, first.CreatedAt, first.UpdatedAt)

	second, err := svc.Create(ctx, &dto.DepartmentRequest{Name: "Physics", Faculty: models.FacultySC}, staff)
	require.NoError(t, err)
	assert.Equal(t, "102", second.ID)
}

func TestDepartmentService_ConcurrentCreate(t *testing.T) {
	svc, _ := newDepartmentService(t)
	ctx := context.Background()

	const n = 25
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids []string
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("Department %c", 'A'+i)
			d, err := svc.Create(ctx, &dto.DepartmentRequest{Name: name, Faculty: models.FacultyET}, staff)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			ids = append(ids, d.ID)
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	want := make([]string, 0, n)
	for i := 0; i < n; i++ {
		want = append(want, fmt.Sprintf("%d", 101+i))
	}
	sort.Strings(ids)
	assert.Equal(t, want, ids)
}

func TestDepartmentService_CapacityExceeded(t *testing.T) {
	svc, repo := newDepartmentService(t)
	ctx := context.Background()
	repo.Seed(models.Department{ID: "999", Name: "Last", Faculty: models.FacultyMS})

	_, err := svc.Create(ctx, &dto.DepartmentRequest{Name: "Overflow", Faculty: models.FacultyMS}, staff)
	assert.ErrorIs(t, err, apperrors.ErrCapacityExceeded)

	all, err := svc.List(ctx, dto.DepartmentFilter{}, staff)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDepartmentService_PresetIDRejected(t *testing.T) {
	_, repo := newDepartmentService(t)

	err := repo.Create(context.Background(), &models.Department{ID: "555", Name: "Preset", Faculty: models.FacultyLS})
	assert.ErrorIs(t, err, apperrors.ErrPolicyViolation)
}

func TestDepartmentService_Validation(t *testing.T) {
	svc, _ := newDepartmentService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     dto.DepartmentRequest
		actor   *models.Actor
		wantErr error
	}{
		{name: "digits in name", req: dto.DepartmentRequest{Name: "CS 101", Faculty: models.FacultyIC}, actor: staff, wantErr: apperrors.ErrValidationFailed},
		{name: "unknown faculty", req: dto.DepartmentRequest{Name: "Chemistry", Faculty: "XYZ"}, actor: staff, wantErr: apperrors.ErrValidationFailed},
		{name: "anonymous", req: dto.DepartmentRequest{Name: "Chemistry", Faculty: models.FacultySC}, actor: nil, wantErr: apperrors.ErrAuthenticationRequired},
		{name: "ampersand allowed", req: dto.DepartmentRequest{Name: "Media & Arts", Faculty: models.FacultyLAMS}, actor: staff},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, &tt.req, tt.actor)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDepartmentService_SoftDeleteVisibility(t *testing.T) {
	svc, _ := newDepartmentService(t)
	ctx := context.Background()

	d, err := svc.Create(ctx, &dto.DepartmentRequest{Name: "Biology", Faculty: models.FacultyLS}, staff)
	require.NoError(t, err)
	_, err = svc.Create(ctx, &dto.DepartmentRequest{Name: "Genetics", Faculty: models.FacultyLS}, staff)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, d.ID, staff))

	_, err = svc.Get(ctx, d.ID, regular)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	got, err := svc.Get(ctx, d.ID, staff)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)
	assert.Equal(t, "Biology", got.Name)
	assert.Equal(t, d.CreatedAt, got.CreatedAt)

	visible, err := svc.List(ctx, dto.DepartmentFilter{}, regular)
	require.NoError(t, err)
	assert.Len(t, visible, 1)

	deleted := true
	onlyDeleted, err := svc.List(ctx, dto.DepartmentFilter{IsDeleted: &deleted}, staff)
	require.NoError(t, err)
	require.Len(t, onlyDeleted, 1)
	assert.Equal(t, d.ID, onlyDeleted[0].ID)
}

func TestDepartmentService_ListByFacultyLabel(t *testing.T) {
	svc, _ := newDepartmentService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &dto.DepartmentRequest{Name: "Computer Science", Faculty: models.FacultyIC}, staff)
	require.NoError(t, err)
	_, err = svc.Create(ctx, &dto.DepartmentRequest{Name: "Physics", Faculty: models.FacultySC}, staff)
	require.NoError(t, err)

	got, err := svc.List(ctx, dto.DepartmentFilter{Faculty: "information & computing"}, regular)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Computer Science", got[0].Name)

	_, err = svc.List(ctx, dto.DepartmentFilter{Faculty: "Astrology"}, regular)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestDepartmentService_UpdateKeepsID(t *testing.T) {
	svc, _ := newDepartmentService(t)
	ctx := context.Background()

	d, err := svc.Create(ctx, &dto.DepartmentRequest{Name: "Maths", Faculty: models.FacultySC}, staff)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, d.ID, &dto.DepartmentRequest{Name: "Mathematics", Faculty: models.FacultySC}, &models.Actor{UserID: 7, IsStaff: true})
	require.NoError(t, err)
	assert.Equal(t, d.ID, updated.ID)
	assert.Equal(t, "Mathematics", updated.Name)
	assert.Equal(t, int64(1), *updated.CreatedBy)
	assert.Equal(t, int64(7), *updated.UpdatedBy)
}
