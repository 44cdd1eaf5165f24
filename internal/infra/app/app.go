package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shriya-199/Prolance/internal/core/port"
	"github.com/shriya-199/Prolance/internal/infra/captcha"
	"github.com/shriya-199/Prolance/internal/infra/config"
	kafkainfra "github.com/shriya-199/Prolance/internal/infra/kafka"
	"github.com/shriya-199/Prolance/internal/infra/logger"
	"github.com/shriya-199/Prolance/internal/infra/mail"
	redisinfra "github.com/shriya-199/Prolance/internal/infra/redis"
	"github.com/shriya-199/Prolance/internal/repository/memory"
	postgresrepo "github.com/shriya-199/Prolance/internal/repository/postgres"
	redisrepo "github.com/shriya-199/Prolance/internal/repository/redis"
	"github.com/shriya-199/Prolance/internal/transport/http/middleware"
	"github.com/shriya-199/Prolance/internal/transport/http/routes"
	"github.com/shriya-199/Prolance/internal/usecase"
)

type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	store    *postgresrepo.Store
	redis    *redisinfra.Client
	producer *kafkainfra.Producer
	captcha  *usecase.CaptchaService
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	store, err := postgresrepo.NewStore(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	var (
		redisClient    *redisinfra.Client
		challengeStore port.ChallengeStore
		rateLimiter    *middleware.RateLimiter
		cacheChecker   routes.CacheChecker
	)
	if cfg.Redis.Enabled {
		redisClient, err = redisinfra.NewClient(cfg.Redis, log)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("init redis: %w", err)
		}

		challengeTTL := cfg.Captcha.TTL
		if challengeTTL <= 0 {
			challengeTTL = 10 * time.Minute
		}
		challengeStore = redisrepo.NewChallengeStore(redisClient.Client(), cfg.Redis.ChallengePrefix, challengeTTL)

		rateLimitWindow := cfg.RateLimit.WindowDuration
		if rateLimitWindow <= 0 {
			rateLimitWindow = time.Minute
		}
		rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
			KeyPrefix: cfg.Redis.RateLimitPrefix,
			TTL:       rateLimitWindow * 2,
		})
		rateLimiter = middleware.NewRateLimiter(rateLimitStore, log)
		cacheChecker = redisClient
	} else {
		log.Info("redis disabled, keeping challenge sessions in memory")
		challengeStore = memory.NewChallengeStore()
	}

	var producer *kafkainfra.Producer
	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	codeTTL := cfg.OTP.CodeTTL
	if codeTTL <= 0 {
		codeTTL = 10 * time.Minute
	}

	mailer := mail.NewMailer(cfg.SMTP, int(codeTTL.Minutes()), log)
	users := postgresrepo.NewUserRepository(store.Pool())

	resetService := usecase.NewPasswordResetService(cfg, users, mailer, eventPublisher, nil, log)
	resetService.WithCodeTTL(codeTTL)

	captchaService := usecase.NewCaptchaService(challengeStore, captcha.NewGenerator(cfg.Captcha), log)
	captchaService.WithTTL(cfg.Captcha.TTL)
	captchaService.WithSweepInterval(cfg.Captcha.SweepInterval)

	var metrics *middleware.HTTPMetrics
	if cfg.Telemetry.MetricsEnabled {
		metrics, err = middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
		if err != nil {
			return nil, fmt.Errorf("init http metrics: %w", err)
		}
	}

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: rateLimiter,
		Metrics:     metrics,
		Database:    store,
		Cache:       cacheChecker,
		Services: routes.ServiceSet{
			PasswordReset: resetService,
			Captcha:       captchaService,
		},
	})

	return &Application{
		cfg:      cfg,
		engine:   engine,
		logger:   log,
		store:    store,
		redis:    redisClient,
		producer: producer,
		captcha:  captchaService,
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.store != nil {
			a.store.Close()
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

	go a.captcha.RunSweeper(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting verification API",
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
