package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"dfchat/internal/api"
	"dfchat/internal/checks"
	"dfchat/internal/config"
	"dfchat/internal/config_handler"
	"dfchat/internal/constants"
	"dfchat/internal/deduplication"
	"dfchat/internal/diagnostics"
	"dfchat/internal/finalizers"
	"dfchat/internal/grabber"
	"dfchat/internal/logger"
	"dfchat/internal/message"
	"dfchat/internal/pipeline"
	"dfchat/internal/sound"
	"dfchat/internal/state"
	"dfchat/internal/streamer"
	"dfchat/internal/version"
	"dfchat/pkg/bootstrap"
	"dfchat/pkg/health"
	"dfchat/pkg/metrics"
	"dfchat/pkg/middleware"
	"dfchat/pkg/migrations"
	"dfchat/pkg/ratelimit"
	"dfchat/pkg/tracing"
)

type App struct {
	*bootstrap.Base
	dbConnector *bootstrap.DatabaseConnector

	redisClient *redis.Client
	db          *sql.DB
	mongoClient *mongo.Client

	tracker     *state.Tracker
	classifier  *message.Classifier
	persister   *state.Persister
	policy      *streamer.Policy
	customRules *finalizers.CustomRules
	ruleStore   finalizers.RuleStore
	archive     diagnostics.Archive
	service     *pipeline.Service
	chatHandler *pipeline.Handler
	cfgHandler  *config_handler.Handler
	dedup       *deduplication.Service

	router         *gin.Engine
	server         *http.Server
	tracerProvider *tracing.TracerProvider
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	return &App{
		Base:        bootstrap.NewBase(cfg, log),
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if a.Config.Tracing.Enabled {
		tp, err := tracing.Init(a.Config.Tracing, constants.ServiceName)
		if err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
		a.tracerProvider = tp
	}

	metrics.RegisterChatMetrics()
	metrics.RegisterBrokerMetrics()
	metrics.RegisterCircuitBreakerMetrics()
	metrics.RegisterAPIMetrics()

	if err := a.initDatabases(ctx); err != nil {
		return fmt.Errorf("failed to initialize databases: %w", err)
	}

	if err := a.initPipeline(ctx); err != nil {
		return fmt.Errorf("failed to initialize pipeline: %w", err)
	}

	if err := a.InitBroker(constants.ServiceName, instanceID()); err != nil {
		return fmt.Errorf("failed to initialize broker: %w", err)
	}

	a.chatHandler = pipeline.NewHandler(
		a.service,
		a.Producer,
		a.Config.Broker.Kafka.OutputTopic,
		a.Config.Pipeline.ForwardSuppressed,
		a.Logger,
	)
	if a.Config.Deduplication.Enabled && a.redisClient != nil {
		repo := deduplication.NewCircuitBreakerSeenStore(deduplication.NewRedisSeenStore(a.redisClient), a.Config.CircuitBreaker)
		a.dedup = deduplication.NewService(repo, a.Config.Deduplication, a.Logger)
		a.chatHandler.WithDeduplicator(a.dedup)
		a.Logger.InfowCtx(ctx, "Redelivery guard enabled", "ttl_seconds", a.Config.Deduplication.TTLSeconds)
	}

	a.cfgHandler = config_handler.NewHandler(a.Logger).
		WithReloader(a.customRules).
		WithUpdater(a.policy)

	a.initRouter(ctx)
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  a.Config.Server.ReadTimeoutSeconds,
		WriteTimeout: a.Config.Server.WriteTimeoutSeconds,
	}

	return nil
}

// initDatabases connects the optional stores. Each one only backs a
// feature, so a store that is configured but unreachable fails startup
// while an unconfigured one is skipped.
func (a *App) initDatabases(ctx context.Context) error {
	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rdb, err := a.dbConnector.InitRedis(initCtx)
	if err != nil {
		return err
	}
	a.redisClient = rdb

	db, err := a.dbConnector.InitPostgreSQL(initCtx)
	if err != nil {
		return err
	}
	a.db = db

	mongoClient, err := a.dbConnector.InitMongoDB(initCtx)
	if err != nil {
		a.Logger.WarnwCtx(initCtx, "MongoDB connection failed, continuing without diagnostics archive", "error", err)
		return nil
	}
	a.mongoClient = mongoClient
	return nil
}

func (a *App) initPipeline(ctx context.Context) error {
	a.tracker = state.NewTracker(state.Initial())
	sidebar := &state.StaticScoreboard{}
	a.tracker.SetScoreboard(sidebar)
	if err := a.initStatePersistence(ctx); err != nil {
		return err
	}

	classifier, err := message.NewClassifier(a.Logger, checks.Default(a.tracker)...)
	if err != nil {
		return err
	}
	a.classifier = classifier

	settings := streamer.SettingsFromConfig(a.Config.Streamer)
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid streamer settings: %w", err)
	}
	a.policy = streamer.NewPolicy(settings)

	var repo finalizers.RuleRepository
	switch {
	case a.Config.Rules.Source == constants.RuleSourcePostgres && a.db != nil:
		pgRepo := finalizers.NewPostgresRepository(a.db)
		repo = pgRepo
		a.ruleStore = pgRepo
	case a.Config.Rules.Source == constants.RuleSourcePostgres:
		return fmt.Errorf("rules.source is %q but PostgreSQL is not configured", constants.RuleSourcePostgres)
	default:
		repo = finalizers.NewStaticRepository(a.Config.Rules.Static)
	}

	customRules, err := finalizers.NewCustomRules(repo, a.Config.Rules, a.Logger)
	if err != nil {
		return err
	}
	a.customRules = customRules

	chain := message.NewChain(a.Logger,
		finalizers.NewStreamerMode(a.policy),
		a.customRules,
	)

	if err := a.initArchive(ctx); err != nil {
		return err
	}

	a.service = pipeline.NewService(
		classifier,
		chain,
		grabber.New(),
		sound.NewGate(),
		diagnostics.NewEmitter(a.Logger, a.archive),
		a.Config.Pipeline.DebugMode,
		a.Logger,
	).WithSidebar(sidebar)

	a.Logger.InfowCtx(ctx, "Pipeline initialized",
		"checks", len(classifier.Checks()),
		"finalizers", chain.Names(),
		"rule_source", a.Config.Rules.Source,
	)
	return nil
}

func (a *App) initStatePersistence(ctx context.Context) error {
	if !a.Config.State.Persist {
		return nil
	}
	if a.redisClient == nil {
		a.Logger.WarnwCtx(ctx, "State persistence requested but Redis is not configured")
		return nil
	}

	store := state.NewCircuitBreakerStore(state.NewRedisStore(a.redisClient, a.Config.State.Key), a.Config.CircuitBreaker)

	a.persister = state.NewPersister(
		a.tracker,
		store,
		time.Duration(a.Config.State.SnapshotIntervalSeconds)*time.Second,
		a.Logger,
	)
	if err := a.persister.Restore(ctx); err != nil {
		a.Logger.WarnwCtx(ctx, "Failed to restore state snapshot, starting fresh", "error", err)
	}
	return nil
}

func (a *App) initArchive(ctx context.Context) error {
	if !a.Config.Diagnostics.Archive || a.mongoClient == nil {
		return nil
	}

	db := a.dbConnector.MongoDatabase(a.mongoClient)
	if err := migrations.EnsureDiagnosticsCollection(ctx, db, a.Config.Diagnostics.Collection); err != nil {
		return fmt.Errorf("failed to prepare diagnostics collection: %w", err)
	}
	a.archive = diagnostics.NewMongoArchive(db, a.Config.Diagnostics.Collection, a.Config.CircuitBreaker)
	return nil
}

func (a *App) initRouter(ctx context.Context) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if a.Config.Tracing.Enabled {
		router.Use(tracing.GinMiddleware(constants.ServiceName, []string{"/health", "/metrics", "/swagger/"}))
	}

	router.Use(middleware.RecoveryMiddleware(a.Logger))
	router.Use(middleware.LoggerMiddleware(a.Logger))
	router.Use(middleware.RequestIDMiddleware())

	if a.Config.Management.RateLimit.Enabled {
		rateLimitConfig := ratelimit.FromConfig(a.Config.Management.RateLimit)
		router.Use(ratelimit.RateLimitMiddleware(ctx, rateLimitConfig))
		a.Logger.InfowCtx(ctx, "Rate limiting enabled", "rps", rateLimitConfig.RPS, "burst", rateLimitConfig.Burst)
	}

	opts := []api.Option{
		api.WithConfigEvents(api.NewConfigEventProducer(a.Producer, a.Config.Broker.Kafka.ConfigUpdateTopic)),
	}
	if a.ruleStore != nil {
		opts = append(opts, api.WithRuleStore(a.ruleStore))
	}
	if a.archive != nil {
		opts = append(opts, api.WithArchive(a.archive))
	}
	if a.Config.Version.Enabled {
		opts = append(opts, api.WithVersionChecker(version.NewChecker(a.Config.Version, a.Config.CircuitBreaker, a.Logger)))
	}

	handler := api.NewHandler(
		a.classifier.Checks(),
		a.tracker,
		a.policy,
		a.customRules,
		a.service,
		a.Logger,
		opts...,
	)
	handler.RegisterRoutes(router)

	healthRegistry := health.NewCheckerRegistry()
	if a.db != nil {
		healthRegistry.Register(health.NewPostgreSQLChecker(a.db))
	}
	if a.redisClient != nil {
		healthRegistry.RegisterOptional(health.NewRedisChecker(a.redisClient))
	}
	if a.mongoClient != nil {
		healthRegistry.RegisterOptional(health.NewMongoDBChecker(a.mongoClient))
	}

	router.GET("/health", func(c *gin.Context) {
		h := healthRegistry.Check(c.Request.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, h)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	a.router = router
}

// Run starts every loop and blocks until ctx ends or one of them fails.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return ignoreCanceled(a.Consumer.Consume(gctx, a.Config.Broker.Kafka.InputTopic, a.chatHandler.HandleChatEvent))
	})

	if a.ConfigConsumer != nil {
		g.Go(func() error {
			return ignoreCanceled(a.ConfigConsumer.Consume(gctx, a.Config.Broker.Kafka.ConfigUpdateTopic, a.cfgHandler.HandleConfigUpdateEvent))
		})
	}

	g.Go(func() error {
		return ignoreCanceled(a.customRules.StartReloader(gctx))
	})

	if a.persister != nil {
		g.Go(func() error {
			return a.persister.Run(gctx)
		})
	}

	if a.dedup != nil {
		g.Go(func() error {
			return a.dedup.RunCacheMetrics(gctx)
		})
	}

	g.Go(func() error {
		a.Logger.InfowCtx(gctx, "Server listening", "port", a.Config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	runErr := g.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()
	if err := a.Shutdown(shutdownCtx, a.shutdownResources); err != nil {
		if runErr == nil {
			runErr = err
		}
		a.Logger.ErrorwCtx(shutdownCtx, "Shutdown failed", "error", err)
	}
	return runErr
}

func (a *App) shutdownResources(ctx context.Context) []error {
	var errs []error

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
		}
	}

	errs = append(errs, a.dbConnector.ShutdownDatabases(ctx, a.redisClient, a.db, a.mongoClient)...)
	return errs
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// instanceID names this process in the per-instance config consumer group.
func instanceID() string {
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return uuid.NewString()
}
