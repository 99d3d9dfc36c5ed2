package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/uniadmin/internal/app/controllers"
	"github.com/yigit/uniadmin/internal/app/models"
	"github.com/yigit/uniadmin/internal/app/models/dto"
	"github.com/yigit/uniadmin/internal/app/routes"
	"github.com/yigit/uniadmin/internal/app/services"
	"github.com/yigit/uniadmin/internal/middleware"
	"github.com/yigit/uniadmin/internal/pkg/auth"
	"github.com/yigit/uniadmin/internal/pkg/metrics"
	"github.com/yigit/uniadmin/internal/pkg/spreadsheet"
	"github.com/yigit/uniadmin/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
	auth.BcryptCost = bcrypt.MinCost
	if err := middleware.RegisterValidators(); err != nil {
		panic(err)
	}
}

const testPassword = "Secret123!"

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type testApp struct {
	router    *gin.Engine
	users     *testutil.MemoryUsers
	depts     *testutil.MemoryDepartments
	courses   *testutil.MemoryCourses
	blacklist *testutil.MemoryBlacklist
	storage   *testutil.MemoryStorage
}

func newTestApp(t *testing.T, fallback bool, pinger controllers.Pinger) *testApp {
	t.Helper()

	app := &testApp{
		users:     testutil.NewMemoryUsers(),
		depts:     testutil.NewMemoryDepartments(),
		courses:   testutil.NewMemoryCourses(),
		blacklist: testutil.NewMemoryBlacklist(),
		storage:   testutil.NewMemoryStorage(),
	}
	syllabi := testutil.NewMemorySyllabi()
	log := zerolog.Nop()

	jwtSvc := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "controller-test-secret",
		AccessTokenExp:  15 * time.Minute,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "uniadmin-test",
	})
	authSvc := services.NewAuthService(app.users, app.blacklist, jwtSvc,
		services.AuthConfig{RotateRefreshTokens: true}, metrics.NewRegistry(), log)
	userSvc := services.NewUserService(app.users, app.storage, log)
	deptSvc := services.NewDepartmentService(app.depts, log)
	courseSvc := services.NewCourseService(app.courses, app.depts, log)
	syllabusSvc := services.NewSyllabusService(syllabi, app.courses, app.storage, log)
	sheetSvc := services.NewSpreadsheetService(app.depts, app.courses, syllabi, app.storage, log)

	cookies := &auth.CookieManager{AccessTTL: 15 * time.Minute, RefreshTTL: 24 * time.Hour}
	if pinger == nil {
		pinger = stubPinger{}
	}

	app.router = gin.New()
	routes.SetupRouter(app.router, routes.Controllers{
		Auth:       controllers.NewAuthController(authSvc, userSvc, cookies, fallback, log),
		User:       controllers.NewUserController(userSvc, log),
		Department: controllers.NewDepartmentController(deptSvc),
		Course:     controllers.NewCourseController(courseSvc),
		Syllabus:   controllers.NewSyllabusController(syllabusSvc),
		Admin:      controllers.NewAdminController(sheetSvc, log),
		Health:     controllers.NewHealthController(pinger),
	}, middleware.NewAuthMiddleware(authSvc, fallback, log))

	return app
}

// addUser stores a user with testPassword
func (a *testApp) addUser(t *testing.T, email string, staff bool) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)
	u := &models.User{
		Email:      email,
		Password:   hash,
		FirstName:  "Test",
		LastName:   "User",
		IsActive:   true,
		IsStaff:    staff,
		DateJoined: time.Now(),
	}
	require.NoError(t, a.users.Create(context.Background(), u))
	return u
}

func (a *testApp) do(req *http.Request, cookies []*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) json(method, path string, body interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return a.do(req, cookies)
}

// login returns the session cookies for email
func (a *testApp) login(t *testing.T, email string) []*http.Cookie {
	t.Helper()
	rec := a.json(http.MethodPost, "/auth/login/", map[string]string{"email": email, "password": testPassword}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return rec.Result().Cookies()
}

func cookieNamed(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func multipartBody(t *testing.T, fields map[string]string, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		fw, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestRegister_SetsCookies(t *testing.T) {
	app := newTestApp(t, false, nil)

	rec := app.json(http.MethodPost, "/auth/register/", map[string]string{
		"email":     "New.Student@University.edu",
		"password":  "longenough",
		"firstName": "  ada ",
		"lastName":  "lovelace",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	cookies := rec.Result().Cookies()
	access := cookieNamed(cookies, auth.AccessTokenCookie)
	refresh := cookieNamed(cookies, auth.RefreshTokenCookie)
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	assert.True(t, access.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, access.SameSite)
	assert.Equal(t, 900, access.MaxAge)
	assert.Equal(t, 86400, refresh.MaxAge)

	var data struct {
		Message string `json:"message"`
		Token   struct {
			AccessToken string `json:"accessToken"`
			ExpiresIn   int64  `json:"expiresIn"`
		} `json:"token"`
		User struct {
			Email     string `json:"email"`
			FirstName string `json:"firstName"`
			IsStaff   bool   `json:"isStaff"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &data))
	assert.Equal(t, "Registration successful", data.Message)
	assert.Empty(t, data.Token.AccessToken, "raw tokens stay in cookies without header fallback")
	assert.InDelta(t, 900, data.Token.ExpiresIn, 1)
	assert.Equal(t, "new.student@university.edu", data.User.Email)
	assert.Equal(t, "Ada", data.User.FirstName)
	assert.False(t, data.User.IsStaff)

	rec = app.json(http.MethodPost, "/auth/register/", map[string]string{
		"email": "new.student@university.edu", "password": "longenough", "firstName": "A", "lastName": "B",
	}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegister_BindingErrors(t *testing.T) {
	app := newTestApp(t, false, nil)

	rec := app.json(http.MethodPost, "/auth/register/", map[string]string{
		"email": "not-an-email", "password": "short", "firstName": "A", "lastName": "B",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VAL_001", decode(t, rec).Error.Code)
}

func TestLogin(t *testing.T) {
	app := newTestApp(t, false, nil)
	app.addUser(t, "jane@university.edu", false)

	rec := app.json(http.MethodPost, "/auth/login/", map[string]string{"email": "jane@university.edu", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "AUTH_001", decode(t, rec).Error.Code)

	cookies := app.login(t, "JANE@university.edu")
	rec = app.json(http.MethodGet, "/auth/me/", nil, cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"jane@university.edu"`)

	rec = app.json(http.MethodGet, "/auth/me/", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshAndLogout(t *testing.T) {
	app := newTestApp(t, false, nil)
	app.addUser(t, "jane@university.edu", false)
	cookies := app.login(t, "jane@university.edu")
	refresh := cookieNamed(cookies, auth.RefreshTokenCookie)

	rec := app.json(http.MethodPost, "/auth/token/refresh/", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.json(http.MethodPost, "/auth/token/refresh/", nil, []*http.Cookie{refresh})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rotated := rec.Result().Cookies()
	require.NotNil(t, cookieNamed(rotated, auth.AccessTokenCookie))
	require.NotNil(t, cookieNamed(rotated, auth.RefreshTokenCookie))

	rec = app.json(http.MethodPost, "/auth/logout/", nil, cookies)
	require.Equal(t, http.StatusNoContent, rec.Code)
	cleared := cookieNamed(rec.Result().Cookies(), auth.AccessTokenCookie)
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)
	assert.Equal(t, 1, app.blacklist.Len())

	rec = app.json(http.MethodPost, "/auth/token/refresh/", nil, []*http.Cookie{refresh})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHeaderFallback(t *testing.T) {
	app := newTestApp(t, true, nil)
	app.addUser(t, "jane@university.edu", false)

	rec := app.json(http.MethodPost, "/auth/login/", map[string]string{"email": "jane@university.edu", "password": testPassword}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		Token struct {
			AccessToken  string `json:"accessToken"`
			RefreshToken string `json:"refreshToken"`
		} `json:"token"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &data))
	require.NotEmpty(t, data.Token.AccessToken)
	require.NotEmpty(t, data.Token.RefreshToken)

	req := httptest.NewRequest(http.MethodGet, "/auth/me/", nil)
	req.Header.Set("Authorization", "Bearer "+data.Token.AccessToken)
	assert.Equal(t, http.StatusOK, app.do(req, nil).Code)

	rec = app.json(http.MethodPost, "/auth/token/refresh/", map[string]string{"refreshToken": data.Token.RefreshToken}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChangePassword_EndsSession(t *testing.T) {
	app := newTestApp(t, false, nil)
	app.addUser(t, "jane@university.edu", false)
	cookies := app.login(t, "jane@university.edu")

	rec := app.json(http.MethodPost, "/auth/password/change/", map[string]string{
		"oldPassword": testPassword, "newPassword": "nodigits!",
	}, cookies)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.json(http.MethodPost, "/auth/password/change/", map[string]string{
		"oldPassword": testPassword, "newPassword": "Better123!",
	}, cookies)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Less(t, cookieNamed(rec.Result().Cookies(), auth.RefreshTokenCookie).MaxAge, 0)

	rec = app.json(http.MethodPost, "/auth/token/refresh/", nil, []*http.Cookie{cookieNamed(cookies, auth.RefreshTokenCookie)})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDepartmentLifecycle(t *testing.T) {
	app := newTestApp(t, false, nil)
	app.addUser(t, "staff@university.edu", true)
	app.addUser(t, "user@university.edu", false)
	staff := app.login(t, "staff@university.edu")
	user := app.login(t, "user@university.edu")

	body := map[string]string{"name": "Computer Science", "faculty": "I&C"}
	rec := app.json(http.MethodPost, "/academic/departments/", body, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.json(http.MethodPost, "/academic/departments/", body, user)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, string(decode(t, rec).Data), `"id":"101"`)

	rec = app.json(http.MethodPost, "/academic/departments/", map[string]string{"name": "Physics", "faculty": "NOPE"}, user)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.json(http.MethodPost, "/academic/departments/", body, user)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = app.json(http.MethodDelete, "/academic/departments/101/", nil, user)
	require.Equal(t, http.StatusNoContent, rec.Code)

	assert.Equal(t, http.StatusNotFound, app.json(http.MethodGet, "/academic/departments/101/", nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, app.json(http.MethodGet, "/academic/departments/101/", nil, user).Code)
	assert.Equal(t, http.StatusOK, app.json(http.MethodGet, "/academic/departments/101/", nil, staff).Code)

	rec = app.json(http.MethodGet, "/academic/departments/?is_deleted=true", nil, staff)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"isDeleted":true`)
}

func TestCourseListPagination(t *testing.T) {
	app := newTestApp(t, false, nil)
	app.depts.Seed(models.Department{ID: "101", Name: "Computer Science", Faculty: models.FacultyIC})
	app.addUser(t, "user@university.edu", false)
	user := app.login(t, "user@university.edu")

	for _, code := range []string{"CS101", "CS102", "CS103"} {
		rec := app.json(http.MethodPost, "/courses/courses/", map[string]interface{}{
			"code": code, "name": "Course " + code, "courseCategory": "COMPULSORY", "type": "THEORY",
			"cbcsCategory": "CORE", "maximumCredit": 4, "disciplineId": "101",
		}, user)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := app.json(http.MethodGet, "/courses/courses/?page=2&limit=2", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Items      []map[string]interface{} `json:"items"`
		Pagination struct {
			CurrentPage int   `json:"currentPage"`
			PageSize    int   `json:"pageSize"`
			TotalItems  int64 `json:"totalItems"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &page))
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 2, page.Pagination.CurrentPage)
	assert.EqualValues(t, 3, page.Pagination.TotalItems)

	rec = app.json(http.MethodGet, "/courses/courses/?limit=5000&page=abc", nil, nil)
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &page))
	assert.Equal(t, 100, page.Pagination.PageSize)
	assert.Equal(t, 1, page.Pagination.CurrentPage)

	rec = app.json(http.MethodGet, "/courses/courses/?page=1000000000000000000&limit=10", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &page))
	assert.Equal(t, 1, page.Pagination.CurrentPage)
	assert.Len(t, page.Items, 3)

	rec = app.json(http.MethodPost, "/courses/courses/", map[string]interface{}{
		"code": "CS999", "name": "Orphan", "courseCategory": "COMPULSORY", "type": "THEORY",
		"cbcsCategory": "CORE", "maximumCredit": 4, "disciplineId": "999",
	}, user)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSyllabusUpload(t *testing.T) {
	app := newTestApp(t, false, nil)
	app.depts.Seed(models.Department{ID: "101", Name: "Computer Science", Faculty: models.FacultyIC})
	require.NoError(t, app.courses.Create(context.Background(), &models.Course{
		Code: "CS101", Name: "Programming", CourseCategory: models.CourseCategory("COMPULSORY"),
		Type: models.CourseType("THEORY"), CBCSCategory: models.CBCSCategory("CORE"), MaximumCredit: 4, DisciplineID: "101",
	}))
	app.addUser(t, "user@university.edu", false)
	user := app.login(t, "user@university.edu")

	body, contentType := multipartBody(t, map[string]string{"course": "CS101", "version": "2.0"}, "syllabus.pdf", testutil.MinimalPDF(1))
	req := httptest.NewRequest(http.MethodPost, "/courses/syllabi/", body)
	req.Header.Set("Content-Type", contentType)
	rec := app.do(req, user)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"courseName":"Programming"`)
	assert.Len(t, app.storage.Files, 1)

	body, contentType = multipartBody(t, map[string]string{"course": "CS101"}, "syllabus.pdf", []byte("not a pdf"))
	req = httptest.NewRequest(http.MethodPost, "/courses/syllabi/", body)
	req.Header.Set("Content-Type", contentType)
	assert.Equal(t, http.StatusBadRequest, app.do(req, user).Code)

	body, contentType = multipartBody(t, map[string]string{"course": "CS101"}, "", nil)
	req = httptest.NewRequest(http.MethodPost, "/courses/syllabi/", body)
	req.Header.Set("Content-Type", contentType)
	assert.Equal(t, http.StatusBadRequest, app.do(req, user).Code)

	assert.Equal(t, http.StatusNotFound, app.json(http.MethodGet, "/courses/syllabi/abc/", nil, nil).Code)
}

func TestAdminEndpoints(t *testing.T) {
	app := newTestApp(t, false, nil)
	app.addUser(t, "staff@university.edu", true)
	app.addUser(t, "user@university.edu", false)
	staff := app.login(t, "staff@university.edu")
	user := app.login(t, "user@university.edu")

	assert.Equal(t, http.StatusUnauthorized, app.json(http.MethodGet, "/admin/departments/export/", nil, nil).Code)
	assert.Equal(t, http.StatusForbidden, app.json(http.MethodGet, "/admin/departments/export/", nil, user).Code)
	assert.Equal(t, http.StatusForbidden, app.json(http.MethodGet, "/auth/users/", nil, user).Code)
	assert.Equal(t, http.StatusOK, app.json(http.MethodGet, "/auth/users/", nil, staff).Code)

	csv := "id,name,faculty\n,Computer Science,I&C\n,Physics,Sciences\n"
	body, contentType := multipartBody(t, nil, "departments.csv", []byte(csv))
	req := httptest.NewRequest(http.MethodPost, "/admin/departments/import/", body)
	req.Header.Set("Content-Type", contentType)
	rec := app.do(req, staff)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"created":2`)

	rec = app.json(http.MethodGet, "/admin/departments/export/?format=csv", nil, staff)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "departments.csv")
	assert.True(t, strings.Contains(rec.Body.String(), "101,Computer Science"))

	assert.Equal(t, http.StatusBadRequest, app.json(http.MethodGet, "/admin/courses/export/?format=pdf", nil, staff).Code)

	body, contentType = multipartBody(t, nil, "courses.txt", []byte("code\n"))
	req = httptest.NewRequest(http.MethodPost, "/admin/courses/import/", body)
	req.Header.Set("Content-Type", contentType)
	assert.Equal(t, http.StatusBadRequest, app.do(req, staff).Code)
}

func TestImport_RejectsOversizeFile(t *testing.T) {
	app := newTestApp(t, false, nil)
	app.addUser(t, "staff@university.edu", true)
	staff := app.login(t, "staff@university.edu")

	row := ",Physics,Sciences\n"
	csv := "id,name,faculty\n" + strings.Repeat(row, spreadsheet.MaxFileSize/len(row)+1)
	require.Greater(t, len(csv), spreadsheet.MaxFileSize)

	body, contentType := multipartBody(t, nil, "departments.csv", []byte(csv))
	req := httptest.NewRequest(http.MethodPost, "/admin/departments/import/", body)
	req.Header.Set("Content-Type", contentType)
	rec := app.do(req, staff)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, string(dto.ErrorCodeValidationFailed), env.Error.Code)
	assert.Contains(t, env.Error.Message, "10 MB")

	_, err := app.depts.GetByID(context.Background(), "101", true)
	assert.Error(t, err, "no row of a rejected file may be imported")
}

func TestChoicesAndHealth(t *testing.T) {
	app := newTestApp(t, false, nil)

	for _, path := range []string{
		"/academic/faculty-choices/",
		"/courses/course-category-choices/",
		"/courses/course-type-choices/",
		"/courses/cbcs-category-choices/",
	} {
		rec := app.json(http.MethodGet, path, nil, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		var choices []models.Choice
		require.NoError(t, json.Unmarshal(decode(t, rec).Data, &choices))
		assert.NotEmpty(t, choices, path)
	}

	assert.Equal(t, http.StatusOK, app.json(http.MethodGet, "/health", nil, nil).Code)

	down := newTestApp(t, false, stubPinger{err: errors.New("connection refused")})
	assert.Equal(t, http.StatusServiceUnavailable, down.json(http.MethodGet, "/health", nil, nil).Code)
}
