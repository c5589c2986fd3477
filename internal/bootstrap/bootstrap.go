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

	appAuth "github.com/placementcell/pipeline/internal/app/auth"
	appControllers "github.com/placementcell/pipeline/internal/app/controllers"
	appMigrations "github.com/placementcell/pipeline/internal/app/migrations"
	appRepos "github.com/placementcell/pipeline/internal/app/repositories"
	appRoutes "github.com/placementcell/pipeline/internal/app/routes"
	appServices "github.com/placementcell/pipeline/internal/app/services"
	"github.com/placementcell/pipeline/internal/config"
	"github.com/placementcell/pipeline/internal/db"
	appMiddleware "github.com/placementcell/pipeline/internal/middleware"
	pkgAuth "github.com/placementcell/pipeline/internal/pkg/auth"
	"github.com/placementcell/pipeline/internal/pkg/cache"
	"github.com/placementcell/pipeline/internal/pkg/logger"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Services          *appServices.Services
	JobController     *appControllers.JobController
	CollegeController *appControllers.CollegeController
	RoundController   *appControllers.RoundController
	StudentController *appControllers.StudentController
	OfferController   *appControllers.OfferController
	AuthMiddleware    *appMiddleware.AuthMiddleware
	Repos             *appRepos.Repositories
	JWTService        *pkgAuth.JWTService
	AuthzService      *appAuth.AuthorizationService
	Cache             *cache.Cache
	Logger            zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and applies pending migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	if err := appMigrations.NewMigrator(database.Pool, lgr).Migrate(ctx); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return database, nil
}

// SetupCache picks the response cache backend. Without Redis every read goes to Postgres.
func SetupCache(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*cache.Cache, *cache.RedisStore, error) {
	ttl := config.Duration(cfg.Cache.TTL, 10*time.Minute)
	if !cfg.Redis.Enabled {
		lgr.Info().Msg("Redis disabled, response cache is a no-op")
		return cache.New(cache.NopStore{}, ttl, lgr), nil, nil
	}

	store, err := cache.NewRedisStore(ctx, cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		lgr.Error().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to redis")
		return nil, nil, err
	}
	lgr.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", ttl).Msg("Redis response cache enabled")
	return cache.New(store, ttl, lgr), store, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, responseCache *cache.Cache, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{Logger: lgr, Cache: responseCache}

	deps.Repos = appRepos.NewRepositories(database)
	deps.AuthzService = appAuth.NewAuthorizationService(deps.Repos.ActorRepository, deps.Repos.JobRepository)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: config.Duration(cfg.JWT.AccessTokenExpiration, time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.Services = appServices.NewServices(deps.Repos, responseCache, deps.AuthzService, lgr)

	deps.JobController = appControllers.NewJobController(deps.Services.JobService, deps.Services.LinkageService)
	deps.CollegeController = appControllers.NewCollegeController(deps.Services.LinkageService)
	deps.RoundController = appControllers.NewRoundController(deps.Services.RoundService)
	deps.StudentController = appControllers.NewStudentController(deps.Services.JobService)
	deps.OfferController = appControllers.NewOfferController(deps.Services.OfferService)

	return deps
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, database *db.PostgresDB, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger(logger.Component("http")))
	router.Use(appMiddleware.CORS(cfg.Origins()))
	if cfg.RateLimit.Enabled {
		limiter := appMiddleware.NewClientLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
		router.Use(limiter.Middleware())
	}

	appRoutes.SetupRouter(router,
		deps.JobController,
		deps.CollegeController,
		deps.RoundController,
		deps.StudentController,
		deps.OfferController,
		deps.AuthMiddleware,
	)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	router.GET("/api/v1/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := database.Pool.Ping(ctx); err != nil {
			lgr.Warn().Err(err).Msg("Health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
	})

	return router
}
