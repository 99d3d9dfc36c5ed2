package testutil

import (
	"context"
	"fmt"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/yigit/uniadmin/internal/app/models"
	"github.com/yigit/uniadmin/internal/app/repositories"
	"github.com/yigit/uniadmin/internal/pkg/apperrors"
	"github.com/yigit/uniadmin/internal/pkg/helpers"
)

func paginate[T any](items []T, page helpers.Page) []T {
	start := int(page.Offset())
	if start >= len(items) {
		return []T{}
	}
	end := start + page.Size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func visible(isDeleted bool, includeDeleted bool, filter *bool) bool {
	if isDeleted && !includeDeleted {
		return false
	}
	return filter == nil || *filter == isDeleted
}

// MemoryUsers is an in-memory IUserRepository
type MemoryUsers struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]models.User
}

// NewMemoryUsers creates an empty user store
func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{users: make(map[int64]models.User)}
}

func (m *MemoryUsers) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == user.Email {
			return apperrors.ErrEmailAlreadyExists
		}
		if user.MobileNumber != nil && u.MobileNumber != nil && *u.MobileNumber == *user.MobileNumber {
			return apperrors.NewConflictError("mobile number is already in use")
		}
	}
	m.nextID++
	user.ID = m.nextID
	m.users[user.ID] = *user
	return nil
}

func (m *MemoryUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return &u, nil
}

func (m *MemoryUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (m *MemoryUsers) List(_ context.Context, page helpers.Page) ([]*models.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := make([]*models.User, 0, len(m.users))
	for _, u := range m.users {
		u := u
		all = append(all, &u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, page), int64(len(all)), nil
}

func (m *MemoryUsers) put(user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.ID]; !ok {
		return apperrors.ErrUserNotFound
	}
	m.users[user.ID] = *user
	return nil
}

func (m *MemoryUsers) UpdateProfile(_ context.Context, user *models.User) error {
	return m.put(user)
}

func (m *MemoryUsers) UpdateProfilePicture(_ context.Context, user *models.User) error {
	return m.put(user)
}

func (m *MemoryUsers) UpdatePassword(_ context.Context, user *models.User) error {
	return m.put(user)
}

// SetActive flips the active flag of a stored user
func (m *MemoryUsers) SetActive(id int64, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := m.users[id]
	u.IsActive = active
	m.users[id] = u
}

// MemoryDepartments is an in-memory IDepartmentRepository. Create is
// serialized by a mutex the way the table lock serializes it in Postgres.
type MemoryDepartments struct {
	mu          sync.Mutex
	departments map[string]models.Department
}

// NewMemoryDepartments creates an empty department store
func NewMemoryDepartments() *MemoryDepartments {
	return &MemoryDepartments{departments: make(map[string]models.Department)}
}

func (m *MemoryDepartments) List(_ context.Context, q repositories.DepartmentQuery) ([]*models.Department, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*models.Department, 0)
	for _, d := range m.departments {
		if !visible(d.IsDeleted, q.IncludeDeleted, q.IsDeleted) {
			continue
		}
		if q.Faculty != "" && string(d.Faculty) != q.Faculty {
			continue
		}
		d := d
		out = append(out, &d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryDepartments) GetByID(_ context.Context, id string, includeDeleted bool) (*models.Department, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.departments[id]
	if !ok || (d.IsDeleted && !includeDeleted) {
		return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("department %s not found", id))
	}
	return &d, nil
}

func (m *MemoryDepartments) Create(_ context.Context, department *models.Department) error {
	if department.ID != "" {
		return apperrors.ErrPolicyViolation
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	currentMax := ""
	for id, d := range m.departments {
		if id > currentMax {
			currentMax = id
		}
		if d.Name == department.Name && d.Faculty == department.Faculty {
			return apperrors.NewConflictError("department with this name already exists in the faculty")
		}
	}

	next, err := models.NextDepartmentID(currentMax)
	if err != nil {
		return err
	}
	department.ID = next
	m.departments[next] = *department
	return nil
}

func (m *MemoryDepartments) Update(_ context.Context, department *models.Department) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.departments[department.ID]; !ok {
		return apperrors.NewResourceNotFoundError("department not found")
	}
	for id, d := range m.departments {
		if id != department.ID && d.Name == department.Name && d.Faculty == department.Faculty {
			return apperrors.NewConflictError("department with this name already exists in the faculty")
		}
	}
	m.departments[department.ID] = *department
	return nil
}

func (m *MemoryDepartments) SoftDelete(_ context.Context, department *models.Department) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.departments[department.ID]
	if !ok {
		return apperrors.NewResourceNotFoundError("department not found")
	}
	d.IsDeleted = true
	d.UpdatedBy = department.UpdatedBy
	d.UpdatedAt = department.UpdatedAt
	m.departments[department.ID] = d
	return nil
}

// Seed stores a department with a fixed id, bypassing the allocator
func (m *MemoryDepartments) Seed(d models.Department) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.departments[d.ID] = d
}

// MemoryCourses is an in-memory ICourseRepository
type MemoryCourses struct {
	mu      sync.Mutex
	courses map[string]models.Course
}

// NewMemoryCourses creates an empty course store
func NewMemoryCourses() *MemoryCourses {
	return &MemoryCourses{courses: make(map[string]models.Course)}
}

func (m *MemoryCourses) ListAll(_ context.Context, q repositories.CourseQuery) ([]*models.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*models.Course, 0)
	for _, c := range m.courses {
		if !visible(c.IsDeleted, q.IncludeDeleted, q.IsDeleted) {
			continue
		}
		if (q.Discipline != "" && c.DisciplineID != q.Discipline) ||
			(q.CourseCategory != "" && string(c.CourseCategory) != q.CourseCategory) ||
			(q.Type != "" && string(c.Type) != q.Type) ||
			(q.CBCSCategory != "" && string(c.CBCSCategory) != q.CBCSCategory) {
			continue
		}
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *MemoryCourses) List(ctx context.Context, q repositories.CourseQuery, page helpers.Page) ([]*models.Course, int64, error) {
	all, err := m.ListAll(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return paginate(all, page), int64(len(all)), nil
}

func (m *MemoryCourses) GetByCode(_ context.Context, code string, includeDeleted bool) (*models.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.courses[code]
	if !ok || (c.IsDeleted && !includeDeleted) {
		return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("course %s not found", code))
	}
	return &c, nil
}

func (m *MemoryCourses) Create(_ context.Context, course *models.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.courses[course.Code]; ok {
		return apperrors.NewConflictError(fmt.Sprintf("course with code %s already exists", course.Code))
	}
	m.courses[course.Code] = *course
	return nil
}

func (m *MemoryCourses) Update(_ context.Context, course *models.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.courses[course.Code]
	if !ok {
		return apperrors.NewResourceNotFoundError("course not found")
	}
	updated := *course
	updated.CreatedBy = old.CreatedBy
	updated.CreatedAt = old.CreatedAt
	updated.IsDeleted = old.IsDeleted
	m.courses[course.Code] = updated
	return nil
}

func (m *MemoryCourses) SoftDelete(_ context.Context, course *models.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.courses[course.Code]
	if !ok {
		return apperrors.NewResourceNotFoundError("course not found")
	}
	c.IsDeleted = true
	c.UpdatedBy = course.UpdatedBy
	c.UpdatedAt = course.UpdatedAt
	m.courses[course.Code] = c
	return nil
}

// MemorySyllabi is an in-memory ISyllabusRepository
type MemorySyllabi struct {
	mu      sync.Mutex
	nextID  int64
	syllabi map[int64]models.Syllabus
}

// NewMemorySyllabi creates an empty syllabus store
func NewMemorySyllabi() *MemorySyllabi {
	return &MemorySyllabi{syllabi: make(map[int64]models.Syllabus)}
}

func (m *MemorySyllabi) ListAll(_ context.Context, q repositories.SyllabusQuery) ([]*models.Syllabus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*models.Syllabus, 0)
	for _, s := range m.syllabi {
		if !visible(s.IsDeleted, q.IncludeDeleted, q.IsDeleted) {
			continue
		}
		if (q.Course != "" && s.CourseCode != q.Course) || (q.Version != "" && s.Version != q.Version) {
			continue
		}
		s := s
		out = append(out, &s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemorySyllabi) List(ctx context.Context, q repositories.SyllabusQuery, page helpers.Page) ([]*models.Syllabus, int64, error) {
	all, err := m.ListAll(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].CourseCode != all[j].CourseCode {
			return all[i].CourseCode < all[j].CourseCode
		}
		return all[i].Version < all[j].Version
	})
	return paginate(all, page), int64(len(all)), nil
}

func (m *MemorySyllabi) GetByID(_ context.Context, id int64, includeDeleted bool) (*models.Syllabus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.syllabi[id]
	if !ok || (s.IsDeleted && !includeDeleted) {
		return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("syllabus %d not found", id))
	}
	return &s, nil
}

func (m *MemorySyllabi) duplicate(s *models.Syllabus) bool {
	for id, other := range m.syllabi {
		if id != s.ID && other.CourseCode == s.CourseCode && other.Version == s.Version {
			return true
		}
	}
	return false
}

func (m *MemorySyllabi) Create(_ context.Context, syllabus *models.Syllabus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.duplicate(syllabus) {
		return apperrors.NewConflictError("syllabus version already exists for course")
	}
	m.nextID++
	syllabus.ID = m.nextID
	m.syllabi[syllabus.ID] = *syllabus
	return nil
}

func (m *MemorySyllabi) Update(_ context.Context, syllabus *models.Syllabus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.syllabi[syllabus.ID]
	if !ok {
		return apperrors.NewResourceNotFoundError("syllabus not found")
	}
	if m.duplicate(syllabus) {
		return apperrors.NewConflictError("syllabus version already exists for course")
	}
	updated := *syllabus
	updated.CreatedBy = old.CreatedBy
	updated.CreatedAt = old.CreatedAt
	updated.IsDeleted = old.IsDeleted
	m.syllabi[syllabus.ID] = updated
	return nil
}

func (m *MemorySyllabi) SoftDelete(_ context.Context, syllabus *models.Syllabus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.syllabi[syllabus.ID]
	if !ok {
		return apperrors.NewResourceNotFoundError("syllabus not found")
	}
	s.IsDeleted = true
	s.UpdatedBy = syllabus.UpdatedBy
	s.UpdatedAt = syllabus.UpdatedAt
	m.syllabi[syllabus.ID] = s
	return nil
}

// MemoryBlacklist is an in-memory auth.Blacklist
type MemoryBlacklist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	// Err, when set, is returned by every call
	Err error
}

// NewMemoryBlacklist creates an empty blacklist
func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{revoked: make(map[string]time.Time)}
}

func (b *MemoryBlacklist) Revoke(_ context.Context, jti string, _ int64, expiresAt time.Time) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.Err != nil {
		return false, b.Err
	}
	if _, ok := b.revoked[jti]; ok {
		return false, nil
	}
	b.revoked[jti] = expiresAt
	return true, nil
}

func (b *MemoryBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.Err != nil {
		return false, b.Err
	}
	_, ok := b.revoked[jti]
	return ok, nil
}

// Len returns the number of revoked ids
func (b *MemoryBlacklist) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.revoked)
}

// MemoryStorage is an in-memory filestorage.FileStorage
type MemoryStorage struct {
	mu    sync.Mutex
	seq   int
	Files map[string][]byte

	// SaveErr, when set, is returned by every Save
	SaveErr error
}

// NewMemoryStorage creates an empty storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{Files: make(map[string][]byte)}
}

func (s *MemoryStorage) Save(_ context.Context, dir, originalName string, data []byte, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SaveErr != nil {
		return "", s.SaveErr
	}
	s.seq++
	key := path.Join(dir, fmt.Sprintf("%d%s", s.seq, path.Ext(originalName)))
	s.Files[key] = data
	return key, nil
}

func (s *MemoryStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Files, key)
	return nil
}

func (s *MemoryStorage) URL(key string) string {
	return "/media/" + key
}

// Has reports whether key is stored
func (s *MemoryStorage) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Files[key]
	return ok
}
