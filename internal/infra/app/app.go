package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/allahbobax/boolean-api/internal/core/port"
	"github.com/allahbobax/boolean-api/internal/infra/config"
	"github.com/allahbobax/boolean-api/internal/infra/database"
	kafkainfra "github.com/allahbobax/boolean-api/internal/infra/kafka"
	"github.com/allahbobax/boolean-api/internal/infra/logger"
	"github.com/allahbobax/boolean-api/internal/infra/oauth"
	redisinfra "github.com/allahbobax/boolean-api/internal/infra/redis"
	"github.com/allahbobax/boolean-api/internal/infra/security"
	"github.com/allahbobax/boolean-api/internal/infra/telemetry"
	localrepo "github.com/allahbobax/boolean-api/internal/repository/local"
	postgresrepo "github.com/allahbobax/boolean-api/internal/repository/postgres"
	redisrepo "github.com/allahbobax/boolean-api/internal/repository/redis"
	"github.com/allahbobax/boolean-api/internal/transport/http/middleware"
	"github.com/allahbobax/boolean-api/internal/transport/http/routes"
	"github.com/allahbobax/boolean-api/internal/usecase"
)

const localCounterSweepInterval = time.Minute

type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	producer *kafkainfra.Producer
	sweeper  func(ctx context.Context)
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	metricsProvider, err := telemetry.Attach(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	sessionSigner, err := security.NewSessionSigner(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TokenTTL)
	if err != nil {
		_ = redisClient.Close()
		pool.Close()
		return nil, fmt.Errorf("init session signer: %w", err)
	}

	stateSigner, err := security.NewStateSigner(cfg.OAuth.StateSecret)
	if err != nil {
		_ = redisClient.Close()
		pool.Close()
		return nil, fmt.Errorf("init state signer: %w", err)
	}

	users := postgresrepo.NewUserRepository(pool)
	sharedCounters := redisrepo.NewCounterStore(redisClient.Client(), cfg.Redis.KeyPrefix)
	localCounters := localrepo.NewCounterStore()

	var producer *kafkainfra.Producer
	var eventPublisher port.EventPublisher
	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("Failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("Kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("Kafka disabled, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	lockoutPolicy := usecase.NewLockoutPolicy(cfg.Lockout)
	rateLimiter := usecase.NewRateLimiter(cfg.RateLimit, sharedCounters, localCounters, log).
		WithMetrics(metricsProvider.RateLimitRejections())

	authService := usecase.NewAuthService(users, lockoutPolicy, sessionSigner, eventPublisher, log).
		WithMetrics(metricsProvider.LoginFailures(), metricsProvider.Lockouts())
	registrationService := usecase.NewRegistrationService(users, security.NewPasswordPolicy(), sessionSigner, eventPublisher, log)
	csrfService := usecase.NewCsrfService(sharedCounters, cfg.CSRF.TokenTTL, log)
	deviceService := usecase.NewDeviceService(users, eventPublisher, log)
	oauthService := usecase.NewOAuthService(
		oauth.NewRegistry(cfg.OAuth), users, stateSigner, sessionSigner, eventPublisher, log)

	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		_ = redisClient.Close()
		pool.Close()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	engine := routes.Register(routes.Dependencies{
		Config:  cfg,
		Logger:  log,
		Pool:    pool,
		Redis:   redisClient,
		Metrics: httpMetrics,
		Services: routes.ServiceSet{
			Auth:         authService,
			Registration: registrationService,
			Csrf:         csrfService,
			Devices:      deviceService,
			OAuth:        oauthService,
			RateLimiter:  rateLimiter,
		},
	})

	return &Application{
		cfg:      cfg,
		engine:   engine,
		logger:   log,
		pool:     pool,
		redis:    redisClient,
		producer: producer,
		sweeper: func(ctx context.Context) {
			localCounters.StartSweeper(ctx, localCounterSweepInterval)
		},
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.producer != nil {
			_ = a.producer.Close()
		}
	}()

	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	if a.sweeper != nil {
		go a.sweeper(sweepCtx)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting boolean API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
