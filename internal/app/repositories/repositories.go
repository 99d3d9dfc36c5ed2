package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/uniadmin/internal/pkg/metrics"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository           *UserRepository
	DepartmentRepository     *DepartmentRepository
	CourseRepository         *CourseRepository
	SyllabusRepository       *SyllabusRepository
	TokenBlacklistRepository *TokenBlacklistRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool, m *metrics.Registry) *Repositories {
	return &Repositories{
		UserRepository:           NewUserRepository(db),
		DepartmentRepository:     NewDepartmentRepository(db, m),
		CourseRepository:         NewCourseRepository(db),
		SyllabusRepository:       NewSyllabusRepository(db),
		TokenBlacklistRepository: NewTokenBlacklistRepository(db),
	}
}
