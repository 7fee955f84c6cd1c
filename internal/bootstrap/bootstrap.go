package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/skillswap/internal/app/auth"
	appControllers "github.com/yigit/skillswap/internal/app/controllers"
	appMigrations "github.com/yigit/skillswap/internal/app/migrations"
	appRepos "github.com/yigit/skillswap/internal/app/repositories"
	appRoutes "github.com/yigit/skillswap/internal/app/routes"
	appServices "github.com/yigit/skillswap/internal/app/services"
	"github.com/yigit/skillswap/internal/config"
	"github.com/yigit/skillswap/internal/db"
	"github.com/yigit/skillswap/internal/domain"
	appMiddleware "github.com/yigit/skillswap/internal/middleware"
	pkgAuth "github.com/yigit/skillswap/internal/pkg/auth"
	"github.com/yigit/skillswap/internal/pkg/helpers"
	"github.com/yigit/skillswap/internal/pkg/livequery"
	"github.com/yigit/skillswap/internal/pkg/logger"
	"github.com/yigit/skillswap/internal/pkg/telemetry"
	"github.com/yigit/skillswap/internal/pkg/websocket"
	"github.com/yigit/skillswap/internal/seed"
)

// limiterCleanupInterval is how often idle rate limiters are swept.
const limiterCleanupInterval = time.Minute

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService         *appServices.AuthService
	ProfileService      appServices.ProfileService
	DiscoveryService    appServices.DiscoveryService
	ExchangeService     appServices.ExchangeService
	ThreadService       appServices.ThreadService
	CommunityService    appServices.CommunityService
	ResourceService     appServices.ResourceService
	NotificationService appServices.NotificationService

	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	Limiters       appRoutes.Limiters

	Repos        *appRepos.Repositories
	JWTService   *pkgAuth.JWTService
	AuthzService *appAuth.AuthorizationService
	Broker       *livequery.Broker
	Hub          *websocket.Hub
	Logger       zerolog.Logger
}

// Close stops the background workers owned by the dependencies.
func (d *Dependencies) Close() {
	d.Hub.Close()
	d.Broker.Close()
	d.Limiters.Auth.Stop()
	d.Limiters.Write.Stop()
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.ConfigFrom(cfg.Logging.Level, cfg.Logging.Format))
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupTelemetry installs the tracer provider. Without an endpoint tracing stays a no-op.
func SetupTelemetry(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (telemetry.ShutdownFunc, error) {
	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry.OTLPEndpoint, cfg.Telemetry.ServiceName)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to set up tracing")
		return nil, err
	}
	if cfg.Telemetry.OTLPEndpoint != "" {
		lgr.Info().Str("endpoint", cfg.Telemetry.OTLPEndpoint).Msg("Tracing enabled")
	}
	return shutdown, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool, appMigrations.Files(), logger.Component(lgr, "migrations"))
	if err := migrator.Up(ctx); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		dbPool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return dbPool, nil
}

// SetupMessageStore connects MongoDB when it is the configured thread backend.
// It returns a nil store and client for the PostgreSQL backend.
func SetupMessageStore(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (appRepos.MessageStore, *db.MongoClient, error) {
	if cfg.Storage.MessageBackend != config.MessageBackendMongo {
		return nil, nil, nil
	}

	lgr.Info().Str("database", cfg.Mongo.Database).Msg("Connecting to MongoDB message store...")
	client, err := db.NewMongoClient(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to MongoDB")
		return nil, nil, err
	}
	if err := client.CreateIndexes(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to create MongoDB indexes")
		_ = client.Close(context.Background())
		return nil, nil, err
	}
	return appRepos.NewMongoMessageRepository(client.MessagesCollection()), client, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, messages appRepos.MessageStore, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool, messages)
	deps.Broker = livequery.NewBroker(logger.Component(lgr, "livequery"))
	deps.Hub = websocket.NewHub(logger.Component(lgr, "websocket"))

	deps.AuthzService = appAuth.NewAuthorizationService(
		deps.Repos.ExchangeRepository,
		deps.Repos.PostRepository,
		deps.Repos.ResourceRepository,
		deps.Repos.NotificationRepository,
	)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	window := domain.JoinWindow{
		LeadTime: helpers.ParseDuration(cfg.Meeting.JoinLeadTime, domain.DefaultJoinWindow.LeadTime),
		Grace:    helpers.ParseDuration(cfg.Meeting.JoinGrace, domain.DefaultJoinWindow.Grace),
	}
	clock := appServices.Clock(time.Now)

	deps.AuthService = appServices.NewAuthService(deps.Repos.UserRepository, deps.Repos.TokenRepository, deps.JWTService, logger.Component(lgr, "auth"))
	deps.ProfileService = appServices.NewProfileService(deps.Repos.UserRepository, logger.Component(lgr, "profile"))
	deps.DiscoveryService = appServices.NewDiscoveryService(deps.Repos.UserRepository, logger.Component(lgr, "discovery"))
	deps.NotificationService = appServices.NewNotificationService(
		deps.Repos.NotificationRepository,
		deps.AuthzService,
		deps.Broker,
		logger.Component(lgr, "notifications"),
	)
	deps.ExchangeService = appServices.NewExchangeService(
		deps.Repos.ExchangeRepository,
		deps.Repos.MessageRepository,
		deps.Repos.UserRepository,
		deps.AuthzService,
		deps.NotificationService,
		deps.Broker,
		appServices.ExchangeOptions{
			Links:      domain.NewMeetingLinkGenerator(cfg.Meeting.LinkTemplate),
			JoinWindow: window,
			Clock:      clock,
		},
		logger.Component(lgr, "exchanges"),
	)
	deps.ThreadService = appServices.NewThreadService(
		deps.Repos.MessageRepository,
		deps.AuthzService,
		deps.Broker,
		window,
		clock,
		logger.Component(lgr, "threads"),
	)
	deps.CommunityService = appServices.NewCommunityService(
		deps.Repos.PostRepository,
		deps.Repos.UserRepository,
		deps.AuthzService,
		deps.Broker,
		clock,
		logger.Component(lgr, "community"),
	)
	deps.ResourceService = appServices.NewResourceService(
		deps.Repos.ResourceRepository,
		deps.Repos.UserRepository,
		deps.AuthzService,
		deps.Broker,
		logger.Component(lgr, "resources"),
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	deps.Limiters = appRoutes.Limiters{
		Auth:  appMiddleware.NewLimiterStore(cfg.RateLimit.AuthPerMinute, cfg.RateLimit.Burst, limiterCleanupInterval),
		Write: appMiddleware.NewLimiterStore(cfg.RateLimit.WritePerMinute, cfg.RateLimit.Burst, limiterCleanupInterval),
	}

	wsHandler := websocket.NewHandler(deps.Hub, deps.Broker, logger.Component(lgr, "websocket"))
	deps.Controllers = appRoutes.Controllers{
		Auth:         appControllers.NewAuthController(deps.AuthService, lgr),
		User:         appControllers.NewUserController(deps.ProfileService, deps.DiscoveryService, lgr),
		Exchange:     appControllers.NewExchangeController(deps.ExchangeService, lgr),
		Thread:       appControllers.NewThreadController(deps.ThreadService, lgr),
		Community:    appControllers.NewCommunityController(deps.CommunityService, lgr),
		Resource:     appControllers.NewResourceController(deps.ResourceService, lgr),
		Notification: appControllers.NewNotificationController(deps.NotificationService, lgr),
		Live: appControllers.NewLiveController(
			wsHandler,
			deps.ExchangeService,
			deps.ThreadService,
			deps.CommunityService,
			deps.ResourceService,
			deps.NotificationService,
			deps.Limiters.Write,
			lgr,
		),
	}

	return deps, nil
}

// PruneTokens removes expired and revoked refresh tokens left by earlier runs.
func PruneTokens(ctx context.Context, deps *Dependencies, lgr zerolog.Logger) {
	removed, err := deps.AuthService.CleanupExpiredTokens(ctx)
	if err != nil {
		lgr.Warn().Err(err).Msg("Failed to prune refresh tokens")
		return
	}
	lgr.Info().Int64("removed", removed).Msg("Refresh tokens pruned")
}

// SeedData creates demo content when enabled. Failures are logged, not fatal.
func SeedData(ctx context.Context, cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) {
	if !cfg.Database.SeedDemoData {
		return
	}
	seeder := seed.NewSeeder(seed.Services{
		Auth:      deps.AuthService,
		Profiles:  deps.ProfileService,
		Exchanges: deps.ExchangeService,
		Threads:   deps.ThreadService,
		Community: deps.CommunityService,
		Resources: deps.ResourceService,
	}, lgr)
	if err := seeder.Run(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to create demo data, proceeding anyway...")
	}
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		appMiddleware.Tracing(),
		appMiddleware.RequestLogger(logger.Component(lgr, "http")),
	)

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, deps.Limiters)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
