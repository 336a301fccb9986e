package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tiwac100/hydrogen/internal/accountapi"
	"github.com/tiwac100/hydrogen/internal/cache"
	"github.com/tiwac100/hydrogen/internal/config"
	"github.com/tiwac100/hydrogen/internal/event"
	handler "github.com/tiwac100/hydrogen/internal/handler/http"
	"github.com/tiwac100/hydrogen/internal/service"
	"github.com/tiwac100/hydrogen/internal/session"
	"github.com/tiwac100/hydrogen/pkg/database"
	"github.com/tiwac100/hydrogen/pkg/health"
	"github.com/tiwac100/hydrogen/pkg/httpclient"
	pkgkafka "github.com/tiwac100/hydrogen/pkg/kafka"
	"github.com/tiwac100/hydrogen/pkg/middleware"
	"github.com/tiwac100/hydrogen/pkg/tracing"
)

// ServiceName identifies this service in logs, metrics and traces.
const ServiceName = "storefront"

// App wires together all dependencies and runs the storefront account service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	redis          *redis.Client
	producer       *pkgkafka.Producer
	limiter        *middleware.RateLimiter
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    ServiceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	a := &App{
		cfg:            cfg,
		logger:         logger,
		tracerShutdown: tracerShutdown,
	}
	healthHandler := health.NewHandler()

	// Account service client with retries and a circuit breaker.
	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.AccountTimeout()
	httpCfg.MaxRetries = cfg.AccountMaxRetries

	cbCfg := httpclient.CircuitBreakerConfig{
		Name:         "account-service",
		MaxRequests:  cfg.CBMaxRequests,
		Interval:     time.Duration(cfg.CBInterval) * time.Second,
		Timeout:      time.Duration(cfg.CBTimeout) * time.Second,
		FailureRatio: cfg.CBFailureRatio,
		MinRequests:  cfg.CBMinRequests,
	}
	cbClient := httpclient.NewCircuitBreakerClient(httpclient.New(httpCfg), cbCfg, logger).
		WithFallback(accountapi.CircuitOpenFallback)
	accountClient := accountapi.NewClient(cbClient, cfg.AccountServiceURL, logger)
	logger.Info("account service client initialized",
		slog.String("base_url", cfg.AccountServiceURL),
		slog.String("breaker", cbCfg.Name),
		slog.Int("max_retries", httpCfg.MaxRetries),
	)
	healthHandler.RegisterCritical("account-service", accountClient.Ping)

	// Optional Redis address cache.
	var addressCache service.AddressCache
	if cfg.RedisEnabled {
		redisCfg := database.DefaultRedisConfig()
		redisCfg.Addr = cfg.RedisAddr
		redisCfg.Password = cfg.RedisPassword
		redisCfg.DB = cfg.RedisDB

		client, err := database.NewRedisClient(ctx, redisCfg)
		if err != nil {
			a.closeTracer()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.redis = client
		addressCache = cache.NewAddressCache(client, cfg.AddressCacheTTL())
		healthHandler.RegisterNonCritical("redis", database.RedisChecker(client))
		logger.Info("address cache enabled",
			slog.String("addr", cfg.RedisAddr),
			slog.Duration("ttl", cfg.AddressCacheTTL()),
		)
	}

	// Optional Kafka address events.
	var events service.EventPublisher
	if cfg.KafkaEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		events = event.NewProducer(a.producer, logger)
		healthHandler.RegisterNonCritical("kafka", a.producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	addressService := service.NewAddressService(accountClient, addressCache, events, logger)
	sessions := session.NewManager(cfg.SessionSecret, cfg.SessionCookieName, cfg.SessionCookieSecure)

	if cfg.RateLimitEnabled {
		a.limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.TrustedProxyCIDRs, logger)
	}

	router := handler.NewRouter(handler.RouterDeps{
		ServiceName:    ServiceName,
		AddressService: addressService,
		Sessions:       sessions,
		SessionTTL:     cfg.SessionTTL(),
		Health:         healthHandler,
		RateLimiter:    a.limiter,
		Logger:         logger,
	})

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return errors.Join(err, a.Shutdown())
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush pending spans from drained requests)
// 3. Kafka producer
// 4. Redis client
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// 1. Drain in-flight HTTP requests (5s budget).
	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}
	if a.limiter != nil {
		a.limiter.Close()
	}

	// 2. Flush pending spans after HTTP drain so in-flight request spans are captured.
	if err := a.closeTracer(); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 3. Close Kafka producer.
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	// 4. Close Redis.
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

func (a *App) closeTracer() error {
	if a.tracerShutdown == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return a.tracerShutdown(ctx)
}
