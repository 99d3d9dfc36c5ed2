package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/uniadmin/internal/pkg/apperrors"
	"github.com/yigit/uniadmin/internal/pkg/auth"
)

func newJWTService(now func() time.Time) *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "secret",
		AccessTokenExp:  15 * time.Minute,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "uniadmin",
		Now:             now,
	})
}

func TestJWTService_TokenPair(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	now := start
	svc := newJWTService(func() time.Time { return now })

	pair, err := svc.GenerateTokenPair(42)
	require.NoError(t, err)
	assert.Equal(t, start.Add(15*time.Minute), pair.AccessExpiresAt)
	assert.Equal(t, start.Add(24*time.Hour), pair.RefreshExpiresAt)

	access, err := svc.ValidateToken(pair.AccessToken, auth.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, int64(42), access.UserID)
	assert.Equal(t, pair.RefreshID, access.SessionID)

	refresh, err := svc.ValidateToken(pair.RefreshToken, auth.TokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshID, refresh.ID)
	assert.Equal(t, pair.RefreshExpiresAt, refresh.ExpiresAtTime())

	_, err = svc.ValidateToken(pair.AccessToken, auth.TokenTypeRefresh)
	assert.ErrorIs(t, err, auth.ErrWrongType)

	now = start.Add(16 * time.Minute)
	_, err = svc.ValidateToken(pair.AccessToken, auth.TokenTypeAccess)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
	_, err = svc.ValidateToken(pair.RefreshToken, auth.TokenTypeRefresh)
	assert.NoError(t, err)
}

func TestJWTService_RejectsForeignTokens(t *testing.T) {
	svc := newJWTService(nil)
	other := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "another-secret",
		AccessTokenExp:  time.Minute,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "uniadmin",
	})
	pair, err := other.GenerateTokenPair(1)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "empty", token: "", wantErr: auth.ErrInvalidFormat},
		{name: "garbage", token: "abc.def.ghi", wantErr: auth.ErrInvalidToken},
		{name: "wrong signature", token: pair.AccessToken, wantErr: auth.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tt.token, auth.TokenTypeAccess)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{header: "Bearer abc", want: "abc"},
		{header: "bearer   abc ", want: "abc"},
		{header: "Basic abc", wantErr: true},
		{header: "Bearer", wantErr: true},
		{header: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, err := auth.ExtractBearerToken(tt.header)
			if tt.wantErr {
				assert.ErrorIs(t, err, auth.ErrInvalidFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPasswords(t *testing.T) {
	auth.BcryptCost = bcrypt.MinCost

	hash, err := auth.HashPassword("s3cret!pass")
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(hash, "s3cret!pass"))
	assert.False(t, auth.CheckPassword(hash, "s3cret!pasS"))

	assert.ErrorIs(t, auth.ValidatePasswordLength("short"), apperrors.ErrValidationFailed)
	assert.NoError(t, auth.ValidatePasswordLength("longenough"))

	for _, p := range []string{"short1!", "nodigits!!", "nosymbol11"} {
		assert.ErrorIs(t, auth.ValidatePasswordPolicy(p), apperrors.ErrValidationFailed, p)
	}
	assert.NoError(t, auth.ValidatePasswordPolicy("g00d#pass"))
}

func TestCookieManager(t *testing.T) {
	m := &auth.CookieManager{Secure: true, AccessTTL: 15 * time.Minute, RefreshTTL: 24 * time.Hour}

	rec := httptest.NewRecorder()
	m.SetTokens(rec, "access", "refresh")
	cookies := cookiesByName(rec.Result().Cookies())

	require.Contains(t, cookies, auth.AccessTokenCookie)
	require.Contains(t, cookies, auth.RefreshTokenCookie)
	access := cookies[auth.AccessTokenCookie]
	assert.Equal(t, "access", access.Value)
	assert.True(t, access.HttpOnly)
	assert.True(t, access.Secure)
	assert.Equal(t, http.SameSiteStrictMode, access.SameSite)
	assert.Equal(t, 900, access.MaxAge)
	assert.Equal(t, 86400, cookies[auth.RefreshTokenCookie].MaxAge)

	rec = httptest.NewRecorder()
	m.Clear(rec)
	for _, c := range rec.Result().Cookies() {
		assert.Empty(t, c.Value)
		assert.Less(t, c.MaxAge, 0)
	}
}

func cookiesByName(cookies []*http.Cookie) map[string]*http.Cookie {
	out := make(map[string]*http.Cookie, len(cookies))
	for _, c := range cookies {
		out[c.Name] = c
	}
	return out
}
