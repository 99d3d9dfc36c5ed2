package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/uniadmin/internal/app/models"
	"github.com/yigit/uniadmin/internal/app/models/dto"
	"github.com/yigit/uniadmin/internal/pkg/apperrors"
	"github.com/yigit/uniadmin/internal/pkg/helpers"
	"github.com/yigit/uniadmin/internal/testutil"
)

type syllabusFixture struct {
	svc     *SyllabusService
	courses *testutil.MemoryCourses
	storage *testutil.MemoryStorage
}

func newSyllabusFixture(t *testing.T) *syllabusFixture {
	t.Helper()
	courses := testutil.NewMemoryCourses()
	ctx := context.Background()
	require.NoError(t, courses.Create(ctx, &models.Course{Code: "CS101", Name: "Programming", DisciplineID: "101"}))
	require.NoError(t, courses.Create(ctx, &models.Course{Code: "CS999", Name: "Retired", DisciplineID: "101", Audit: models.Audit{IsDeleted: true}}))

	storage := testutil.NewMemoryStorage()
	svc := NewSyllabusService(testutil.NewMemorySyllabi(), courses, storage, zerolog.Nop())
	svc.now = newTestClock().Now
	return &syllabusFixture{svc: svc, courses: courses, storage: storage}
}

func pdfUpload() *Upload {
	return &Upload{Filename: "outline.PDF", Content: testutil.MinimalPDF(2)}
}

func TestSyllabusService_Create(t *testing.T) {
	tests := []struct {
		name    string
		form    dto.SyllabusForm
		file    *Upload
		wantErr error
	}{
		{name: "valid upload", form: dto.SyllabusForm{Course: "CS101", Description: "Autumn"}, file: pdfUpload()},
		{name: "missing file", form: dto.SyllabusForm{Course: "CS101"}, wantErr: apperrors.ErrValidationFailed},
		{name: "unknown course", form: dto.SyllabusForm{Course: "XX1"}, file: pdfUpload(), wantErr: apperrors.ErrValidationFailed},
		{name: "deleted course", form: dto.SyllabusForm{Course: "CS999"}, file: pdfUpload(), wantErr: apperrors.ErrValidationFailed},
		{name: "version too long", form: dto.SyllabusForm{Course: "CS101", Version: "2025-autumn-v2"}, file: pdfUpload(), wantErr: apperrors.ErrValidationFailed},
		{
			name:    "not a pdf",
			form:    dto.SyllabusForm{Course: "CS101"},
			file:    &Upload{Filename: "outline.pdf", Content: []byte("plain text")},
			wantErr: apperrors.ErrValidationFailed,
		},
		{
			name:    "wrong extension",
			form:    dto.SyllabusForm{Course: "CS101"},
			file:    &Upload{Filename: "outline.docx", Content: testutil.MinimalPDF(1)},
			wantErr: apperrors.ErrValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSyllabusFixture(t)
			s, err := f.svc.Create(context.Background(), &tt.form, tt.file, staff)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, f.storage.Files)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.DefaultSyllabusVersion, s.Version)
			assert.Equal(t, "Programming", s.CourseName)
			assert.Equal(t, int64(1), *s.CreatedBy)
			assert.Contains(t, s.File, "syllabi/2025/01/31/")
			assert.Equal(t, "/media/"+s.File, s.FileURL)
			assert.True(t, f.storage.Has(s.File))
		})
	}
}

func TestSyllabusService_DuplicateVersionDiscardsFile(t *testing.T) {
	f := newSyllabusFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, &dto.SyllabusForm{Course: "CS101", Version: "2.0"}, pdfUpload(), staff)
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, &dto.SyllabusForm{Course: "CS101", Version: "2.0"}, pdfUpload(), staff)
	assert.ErrorIs(t, err, apperrors.ErrResourceAlreadyExists)
	assert.Len(t, f.storage.Files, 1)
}

func TestSyllabusService_StorageFailure(t *testing.T) {
	f := newSyllabusFixture(t)
	f.storage.SaveErr = errors.New("bucket unavailable")

	_, err := f.svc.Create(context.Background(), &dto.SyllabusForm{Course: "CS101"}, pdfUpload(), staff)
	assert.ErrorIs(t, err, apperrors.ErrStorage)
}

func TestSyllabusService_ListOrder(t *testing.T) {
	f := newSyllabusFixture(t)
	ctx := context.Background()
	require.NoError(t, f.courses.Create(ctx, &models.Course{Code: "CS050", Name: "Foundations", DisciplineID: "101"}))

	for _, form := range []dto.SyllabusForm{
		{Course: "CS101", Version: "2.0"},
		{Course: "CS050", Version: "1.0"},
		{Course: "CS101", Version: "1.0"},
	} {
		form := form
		_, err := f.svc.Create(ctx, &form, pdfUpload(), staff)
		require.NoError(t, err)
	}

	page, err := f.svc.List(ctx, dto.SyllabusFilter{}, helpers.NewPage(1, 5, helpers.SyllabusPageSize), nil)
	require.NoError(t, err)
	items := page.Items.([]*models.Syllabus)
	require.Len(t, items, 3)
	var got []string
	for _, s := range items {
		got = append(got, s.CourseCode+"@"+s.Version)
	}
	assert.Equal(t, []string{"CS050@1.0", "CS101@1.0", "CS101@2.0"}, got)
}

func TestSyllabusService_SaveResyncsCourseName(t *testing.T) {
	f := newSyllabusFixture(t)
	ctx := context.Background()

	s, err := f.svc.Create(ctx, &dto.SyllabusForm{Course: "CS101"}, pdfUpload(), staff)
	require.NoError(t, err)
	require.Equal(t, "Programming", s.CourseName)

	course, err := f.courses.GetByCode(ctx, "CS101", false)
	require.NoError(t, err)
	course.Name = "Programming in Go"
	require.NoError(t, f.courses.Update(ctx, course))

	// the copy is only refreshed when the syllabus itself is saved
	stale, err := f.svc.Get(ctx, s.ID, regular)
	require.NoError(t, err)
	assert.Equal(t, "Programming", stale.CourseName)

	updated, err := f.svc.Update(ctx, s.ID, &dto.SyllabusForm{Course: "CS101", Version: s.Version}, nil, regular)
	require.NoError(t, err)
	assert.Equal(t, "Programming in Go", updated.CourseName)
	assert.Equal(t, s.File, updated.File)
	assert.Equal(t, int64(1), *updated.CreatedBy)
	assert.Equal(t, int64(2), *updated.UpdatedBy)
}

func TestSyllabusService_UpdateReplacesFile(t *testing.T) {
	f := newSyllabusFixture(t)
	ctx := context.Background()

	s, err := f.svc.Create(ctx, &dto.SyllabusForm{Course: "CS101"}, pdfUpload(), staff)
	require.NoError(t, err)
	oldFile := s.File

	updated, err := f.svc.Update(ctx, s.ID, &dto.SyllabusForm{Course: "CS101"}, pdfUpload(), staff)
	require.NoError(t, err)
	assert.NotEqual(t, oldFile, updated.File)
	assert.False(t, f.storage.Has(oldFile))
	assert.True(t, f.storage.Has(updated.File))
}

func TestSyllabusService_DeleteKeepsFile(t *testing.T) {
	f := newSyllabusFixture(t)
	ctx := context.Background()

	s, err := f.svc.Create(ctx, &dto.SyllabusForm{Course: "CS101"}, pdfUpload(), staff)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, s.ID, staff))
	assert.True(t, f.storage.Has(s.File))

	_, err = f.svc.Get(ctx, s.ID, regular)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	page := helpers.NewPage(1, 0, helpers.SyllabusPageSize)
	resp, err := f.svc.List(ctx, dto.SyllabusFilter{}, page, staff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Pagination.TotalItems)
	assert.Equal(t, 5, resp.Pagination.PageSize)
}
