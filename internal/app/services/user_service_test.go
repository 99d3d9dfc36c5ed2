package services

import (
	"bytes"
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

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newUserFixture(t *testing.T) (UserService, *testutil.MemoryUsers, *testutil.MemoryStorage, *models.User) {
	t.Helper()
	users := testutil.NewMemoryUsers()
	storage := testutil.NewMemoryStorage()
	user := &models.User{Email: "jane@university.edu", FirstName: "Jane", LastName: "Doe", IsActive: true}
	require.NoError(t, users.Create(context.Background(), user))
	return NewUserService(users, storage, zerolog.Nop()), users, storage, user
}

func TestUserService_UpdateMe(t *testing.T) {
	tests := []struct {
		name      string
		req       dto.UpdateProfileRequest
		wantFirst string
		wantErr   error
	}{
		{name: "names are title-cased", req: dto.UpdateProfileRequest{FirstName: "  mary ann ", LastName: "smith"}, wantFirst: "Mary Ann"},
		{name: "valid mobile", req: dto.UpdateProfileRequest{FirstName: "jane", LastName: "doe", MobileNumber: strPtr("9876543210")}, wantFirst: "Jane"},
		{name: "invalid mobile", req: dto.UpdateProfileRequest{FirstName: "jane", LastName: "doe", MobileNumber: strPtr("1234567890")}, wantErr: apperrors.ErrValidationFailed},
		{name: "blank first name", req: dto.UpdateProfileRequest{FirstName: "   ", LastName: "doe"}, wantErr: apperrors.ErrValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _, user := newUserFixture(t)
			resp, err := svc.UpdateMe(context.Background(), user.ID, &tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFirst, resp.FirstName)
			assert.Equal(t, "jane@university.edu", resp.Email)
		})
	}
}

func TestUserService_UploadProfilePicture(t *testing.T) {
	svc, _, storage, user := newUserFixture(t)
	ctx := context.Background()

	first, err := svc.UploadProfilePicture(ctx, user.ID, &Upload{Filename: "me.png", Content: pngHeader})
	require.NoError(t, err)
	assert.Contains(t, first.ProfilePictureURL, "/media/profile_pictures/")
	assert.Len(t, storage.Files, 1)

	second, err := svc.UploadProfilePicture(ctx, user.ID, &Upload{Filename: "me2.png", Content: pngHeader})
	require.NoError(t, err)
	assert.NotEqual(t, first.ProfilePictureURL, second.ProfilePictureURL)
	assert.Len(t, storage.Files, 1)

	_, err = svc.UploadProfilePicture(ctx, user.ID, &Upload{Filename: "me.gif", Content: []byte("GIF89a")})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	big := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, models.MaxProfilePictureFileSize)...)
	_, err = svc.UploadProfilePicture(ctx, user.ID, &Upload{Filename: "big.png", Content: big})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Len(t, storage.Files, 1)
}

func TestUserService_UploadProfilePictureStorageFailure(t *testing.T) {
	svc, users, storage, user := newUserFixture(t)
	storage.SaveErr = errors.New("disk full")

	_, err := svc.UploadProfilePicture(context.Background(), user.ID, &Upload{Filename: "me.png", Content: pngHeader})
	assert.ErrorIs(t, err, apperrors.ErrStorage)

	stored, err := users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ProfilePicture)
}

func TestUserService_List(t *testing.T) {
	svc, users, _, _ := newUserFixture(t)
	ctx := context.Background()
	require.NoError(t, users.Create(ctx, &models.User{Email: "bob@university.edu", FirstName: "Bob", LastName: "Roe"}))

	resp, err := svc.List(ctx, helpers.NewPage(1, 1, helpers.UserPageSize))
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Pagination.TotalItems)
	assert.Equal(t, 2, resp.Pagination.TotalPages)
	items, ok := resp.Items.([]*dto.UserResponse)
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, "jane@university.edu", items[0].Email)
}
