package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/smartsecretaria/secretaria/internal/api"
	appControllers "github.com/smartsecretaria/secretaria/internal/app/controllers"
	appRepos "github.com/smartsecretaria/secretaria/internal/app/repositories"
	appRoutes "github.com/smartsecretaria/secretaria/internal/app/routes"
	appServices "github.com/smartsecretaria/secretaria/internal/app/services"
	"github.com/smartsecretaria/secretaria/internal/config"
	appMiddleware "github.com/smartsecretaria/secretaria/internal/middleware"
	"github.com/smartsecretaria/secretaria/internal/navigation"
	pkgAuth "github.com/smartsecretaria/secretaria/internal/pkg/auth"
	"github.com/smartsecretaria/secretaria/internal/pkg/filestorage"
	"github.com/smartsecretaria/secretaria/internal/pkg/helpers"
	"github.com/smartsecretaria/secretaria/internal/pkg/logger"
	"github.com/smartsecretaria/secretaria/internal/seed"
	"github.com/smartsecretaria/secretaria/internal/session"
)

// DefaultConfigPath is where LoadConfigAndSetupLogger looks when no path is given
var DefaultConfigPath = filepath.Join("configs", "config.yaml")

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	cfg, err := config.LoadConfig(configPath, ".env")
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr.Debug().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// Frontend holds the client-side dependencies
type Frontend struct {
	Config  *config.Config
	Session *session.Store
	Client  *api.Client
	History *navigation.History
	Logger  zerolog.Logger

	closers []func() error
}

// Close releases the session backend
func (f *Frontend) Close() error {
	var firstErr error
	for _, c := range f.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// BuildFrontend opens the configured session backend and creates the API client
func BuildFrontend(ctx context.Context, cfg *config.Config, lgr zerolog.Logger, opts ...api.Option) (*Frontend, error) {
	f := &Frontend{Config: cfg, Logger: lgr}

	backend, err := openSessionBackend(ctx, cfg, f)
	if err != nil {
		lgr.Error().Err(err).Str("driver", cfg.Storage.Driver).Msg("Failed to open session storage")
		return nil, err
	}

	f.Session = session.NewStore(backend, session.Keys{
		AccessToken:   cfg.Storage.AccessTokenKey,
		RefreshToken:  cfg.Storage.RefreshTokenKey,
		Authenticated: cfg.Storage.AuthenticatedKey,
	})

	f.History = navigation.NewHistory(navigation.DashboardPath)

	opts = append([]api.Option{api.WithLogger(lgr.With().Str("component", "api").Logger())}, opts...)
	f.Client = api.New(api.Config{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.APITimeout(),
		LoginPath: cfg.API.LoginPath,
	}, f.Session, f.History, opts...)

	lgr.Debug().Str("baseURL", cfg.API.BaseURL).Str("storage", cfg.Storage.Driver).Msg("Frontend ready")
	return f, nil
}

func openSessionBackend(ctx context.Context, cfg *config.Config, f *Frontend) (session.Backend, error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		return session.NewMemoryBackend(), nil
	case config.StorageRedis:
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		client, err := session.DialRedis(dialCtx, cfg.Storage.RedisAddr, cfg.Storage.RedisPassword, cfg.Storage.RedisDB)
		if err != nil {
			return nil, err
		}
		f.closers = append(f.closers, client.Close)
		return session.NewRedisBackend(client, cfg.Storage.Prefix), nil
	case config.StorageFile:
		return session.NewFileBackend(cfg.Storage.Path)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// Dependencies holds all the development API dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	Services       *appServices.Services
	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	JWTService     *pkgAuth.JWTService
	FileStorage    *filestorage.LocalStorage
	Logger         zerolog.Logger
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories()

	// Media URLs must match the static file serving path of SetupRouter
	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.MockAPI.MediaPath, cfg.MockAPIPublicURL()+"/media")
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.MockAPI.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.MockAPI.JWT.AccessTokenExpiration, 5*time.Minute),
		RefreshTokenExp: helpers.ParseDuration(cfg.MockAPI.JWT.RefreshTokenExpiration, 24*time.Hour),
		TokenIssuer:     cfg.MockAPI.JWT.Issuer,
	})

	deps.Services = appServices.NewServices(deps.Repos, deps.JWTService, deps.FileStorage, appServices.Options{
		Policy:        cfg.MockAPIPolicy(),
		RotateRefresh: cfg.MockAPI.RotateRefresh,
	}, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.Controllers = appRoutes.Controllers{
		Auth:      appControllers.NewAuthController(deps.Services.Auth, lgr),
		Students:  appControllers.NewStudentController(deps.Services.Students, lgr),
		Teachers:  appControllers.NewTeacherController(deps.Services.Teachers, lgr),
		Classes:   appControllers.NewClassController(deps.Services.Classes, lgr),
		Subjects:  appControllers.NewSubjectController(deps.Services.Subjects, lgr),
		Dashboard: appControllers.NewDashboardController(deps.Services.Dashboard),
	}

	return deps, nil
}

// SeedData creates the configured account and the default school
func SeedData(ctx context.Context, cfg *config.Config, deps *Dependencies) error {
	return seed.CreateDefaultData(ctx, deps.Services, deps.Repos, seed.Admin{
		Username: cfg.MockAPI.Username,
		Password: cfg.MockAPI.Password,
	}, cfg.MockAPI.Seed, deps.Logger)
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.MockAPI.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestID(), appMiddleware.Logger(lgr))
	router.MaxMultipartMemory = appControllers.MaxMultipartMemory

	appRoutes.SetupRouter(router, cfg.MockAPI.PathPrefix, deps.Controllers, deps.AuthMiddleware)

	// Uploaded photos
	router.Static("/media", cfg.MockAPI.MediaPath)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
