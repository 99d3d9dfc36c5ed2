package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/uniadmin/internal/app/controllers"
	appMigrations "github.com/yigit/uniadmin/internal/app/migrations"
	appRepos "github.com/yigit/uniadmin/internal/app/repositories"
	appRoutes "github.com/yigit/uniadmin/internal/app/routes"
	appServices "github.com/yigit/uniadmin/internal/app/services"
	"github.com/yigit/uniadmin/internal/config"
	"github.com/yigit/uniadmin/internal/db"
	appMiddleware "github.com/yigit/uniadmin/internal/middleware"
	pkgAuth "github.com/yigit/uniadmin/internal/pkg/auth"
	"github.com/yigit/uniadmin/internal/pkg/cache"
	"github.com/yigit/uniadmin/internal/pkg/filestorage"
	"github.com/yigit/uniadmin/internal/pkg/helpers"
	"github.com/yigit/uniadmin/internal/pkg/logger"
	"github.com/yigit/uniadmin/internal/pkg/metrics"
	schema "github.com/yigit/uniadmin/migrations"
)

// DefaultConfigPath is read when no other path is given
const DefaultConfigPath = "configs/config.yaml"

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos              *appRepos.Repositories
	Metrics            *metrics.Registry
	JWTService         *pkgAuth.JWTService
	Blacklist          pkgAuth.Blacklist
	FileStorage        filestorage.FileStorage
	AuthService        *appServices.AuthService
	UserService        appServices.UserService
	DepartmentService  *appServices.DepartmentService
	CourseService      *appServices.CourseService
	SyllabusService    *appServices.SyllabusService
	SpreadsheetService *appServices.SpreadsheetService
	AuthMiddleware     *appMiddleware.AuthMiddleware
	Controllers        appRoutes.Controllers
	Logger             zerolog.Logger

	// mediaDir is set for the local storage backend only
	mediaDir string
	redis    *redis.Client
}

// Close releases connections owned by the dependencies. The database pool
// is owned by the caller.
func (d *Dependencies) Close() {
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			d.Logger.Warn().Err(err).Msg("Failed to close redis client")
		}
	}
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logger.Configure(logger.ConfigFromStrings(cfg.Logging.Level, cfg.Logging.Format))

	lgr := logger.Get()
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	if err := RunMigrations(ctx, cfg, database.Pool, lgr); err != nil {
		database.Close()
		return nil, err
	}
	return database.Pool, nil
}

// RunMigrations applies the embedded schema, or the files in
// database.migrations_dir when it is set.
func RunMigrations(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, lgr zerolog.Logger) error {
	migrator := appMigrations.NewMigrator(pool)

	var (
		n   int
		err error
	)
	if dir := cfg.Database.MigrationsDir; dir != "" {
		lgr.Info().Str("path", dir).Msg("Running database migrations from directory...")
		n, err = migrator.MigrateFromDirectory(ctx, dir)
	} else {
		lgr.Info().Msg("Running embedded database migrations...")
		n, err = migrator.MigrateFS(ctx, schema.FS)
	}
	if err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}

	lgr.Info().Int("files", n).Msg("Database migrations successfully applied.")
	return nil
}

// JWTConfig builds the token settings from the configuration
func JWTConfig(cfg *config.Config) pkgAuth.JWTConfig {
	return pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 15*time.Minute),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 24*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	}
}

// newBlacklist selects the revocation store
func newBlacklist(ctx context.Context, cfg *config.Config, deps *Dependencies) (pkgAuth.Blacklist, error) {
	switch cfg.Blacklist.Backend {
	case config.BlacklistBackendRedis:
		client, err := cache.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		deps.redis = client
		deps.Logger.Info().Msg("Using redis token blacklist")
		return cache.NewRedisBlacklist(client), nil
	default:
		deps.Logger.Info().Msg("Using postgres token blacklist")
		return deps.Repos.TokenBlacklistRepository, nil
	}
}

// newFileStorage selects the upload backend
func newFileStorage(cfg *config.Config, deps *Dependencies) (filestorage.FileStorage, error) {
	switch cfg.Storage.Backend {
	case config.StorageBackendS3:
		s3Cfg := cfg.Storage.S3
		storage, err := filestorage.NewS3Storage(filestorage.S3Config{
			Bucket:    s3Cfg.Bucket,
			Region:    s3Cfg.Region,
			Endpoint:  s3Cfg.Endpoint,
			AccessKey: s3Cfg.AccessKey,
			SecretKey: s3Cfg.SecretKey,
			PublicURL: s3Cfg.PublicURL,
		})
		if err != nil {
			return nil, err
		}
		deps.Logger.Info().Str("bucket", s3Cfg.Bucket).Msg("Using s3 file storage")
		return storage, nil
	default:
		storage, err := filestorage.NewLocalStorage(cfg.Storage.LocalPath, cfg.Storage.BaseURL)
		if err != nil {
			return nil, err
		}
		deps.mediaDir = storage.BasePath()
		deps.Logger.Info().Str("path", deps.mediaDir).Msg("Using local file storage")
		return storage, nil
	}
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(ctx context.Context, cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Metrics = metrics.NewRegistry()
	deps.Repos = appRepos.NewRepositories(dbPool, deps.Metrics)

	var err error
	if deps.Blacklist, err = newBlacklist(ctx, cfg, deps); err != nil {
		return nil, err
	}
	if deps.FileStorage, err = newFileStorage(cfg, deps); err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(JWTConfig(cfg))

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.Blacklist,
		deps.JWTService,
		appServices.AuthConfig{
			RotateRefreshTokens:    cfg.JWT.RotateRefreshTokens,
			BlacklistAfterRotation: cfg.JWT.BlacklistAfterRotation,
		},
		deps.Metrics,
		lgr.With().Str("component", "auth").Logger(),
	)
	deps.UserService = appServices.NewUserService(deps.Repos.UserRepository, deps.FileStorage, lgr)
	deps.DepartmentService = appServices.NewDepartmentService(deps.Repos.DepartmentRepository, lgr)
	deps.CourseService = appServices.NewCourseService(deps.Repos.CourseRepository, deps.Repos.DepartmentRepository, lgr)
	deps.SyllabusService = appServices.NewSyllabusService(
		deps.Repos.SyllabusRepository,
		deps.Repos.CourseRepository,
		deps.FileStorage,
		lgr,
	)
	deps.SpreadsheetService = appServices.NewSpreadsheetService(
		deps.Repos.DepartmentRepository,
		deps.Repos.CourseRepository,
		deps.Repos.SyllabusRepository,
		deps.FileStorage,
		lgr,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.AuthService, cfg.JWT.AllowHeaderFallback, lgr)

	jwtCfg := JWTConfig(cfg)
	cookies := &pkgAuth.CookieManager{
		Secure:     !cfg.IsDebug(),
		AccessTTL:  jwtCfg.AccessTokenExp,
		RefreshTTL: jwtCfg.RefreshTokenExp,
	}

	deps.Controllers = appRoutes.Controllers{
		Auth:       appControllers.NewAuthController(deps.AuthService, deps.UserService, cookies, cfg.JWT.AllowHeaderFallback, lgr),
		User:       appControllers.NewUserController(deps.UserService, lgr),
		Department: appControllers.NewDepartmentController(deps.DepartmentService),
		Course:     appControllers.NewCourseController(deps.CourseService),
		Syllabus:   appControllers.NewSyllabusController(deps.SyllabusService),
		Admin:      appControllers.NewAdminController(deps.SpreadsheetService, lgr),
		Health:     appControllers.NewHealthController(dbPool),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if strings.EqualFold(cfg.Server.Mode, "production") || strings.EqualFold(cfg.Server.Mode, "release") {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	if err := appMiddleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	router := gin.New()
	router.MaxMultipartMemory = 8 << 20
	router.Use(
		appMiddleware.Recovery(lgr),
		appMiddleware.RequestID(),
		appMiddleware.RequestLogger(lgr),
		appMiddleware.Metrics(deps.Metrics),
		appMiddleware.CORS(cfg.AllowedOrigins()),
	)

	appRoutes.SetupSwagger(router)
	appRoutes.SetupMetrics(router, deps.Metrics.Handler())
	appRoutes.SetupMedia(router, cfg.Storage.BaseURL, deps.mediaDir)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	return router, nil
}
