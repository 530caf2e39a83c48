package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"unlistedtube/internal/core/domain"
	"unlistedtube/internal/core/ports"
	"unlistedtube/internal/core/services"
	"unlistedtube/internal/infrastructure/monitoring"
	"unlistedtube/internal/infrastructure/reliability"
	"unlistedtube/internal/infrastructure/repositories"
	"unlistedtube/pkg/circuitbreaker"
	"unlistedtube/pkg/config"
	"unlistedtube/pkg/logger"
	"unlistedtube/pkg/tracing"
	"unlistedtube/pkg/utils"

	"github.com/prometheus/client_golang/prometheus"
)

var version = "dev"

func main() {
	cfg, err := config.Load(findConfigPath())
	if err != nil {
		// logger config is unknown yet
		logger.New("info", "json").Sugar().Fatalw("failed to load configuration", "error", err)
	}

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()
	log := zapLogger.Sugar()

	log.Infow("session credential configured", "email", utils.MaskSensitive(cfg.Auth.Email, 3))
	if cfg.UsesDefaultSecret() {
		log.Warn("JWT_SECRET not set, signing session tokens with the built-in fallback secret")
	}

	traceCfg := tracing.DefaultConfig()
	traceCfg.Enabled = cfg.Tracing.Enabled
	traceCfg.Version = version
	if cfg.Tracing.JaegerURL != "" {
		traceCfg.JaegerURL = cfg.Tracing.JaegerURL
	}
	if cfg.Tracing.Environment != "" {
		traceCfg.Environment = cfg.Tracing.Environment
	}
	traceCfg.SampleRate = cfg.Tracing.SampleRate
	tp, err := tracing.Init(traceCfg)
	if err != nil {
		log.Fatalw("failed to initialize tracing", "error", err)
	}

	connectCtx, connectCancel := context.WithTimeout(context.Background(), connectBudget(cfg))
	repoFactory, err := repositories.NewRepositoryFactory(connectCtx, cfg, log)
	connectCancel()
	if err != nil {
		log.Fatalw("failed to connect to video store", "error", err, "uri_scheme", schemeOf(cfg.Database.URI))
	}

	healthChecker := monitoring.NewHealthChecker()

	var videoRepo ports.VideoRepository = repoFactory.CreateVideoRepository()
	if cfg.CircuitBreaker.Enabled {
		wrapper := reliability.NewVideoRepositoryWrapper(videoRepo, circuitbreaker.Config{
			FailureThreshold: cfg.CircuitBreaker.FailureThreshold,
			SuccessThreshold: cfg.CircuitBreaker.SuccessThreshold,
			Timeout:          cfg.CircuitBreaker.Timeout,
		}, log)
		healthChecker.AddCircuitBreakerCheck("video_store_breaker", wrapper.State)
		videoRepo = wrapper
	}

	var metrics *monitoring.PrometheusCollector
	if cfg.Monitoring.PrometheusEnabled {
		metrics = monitoring.NewPrometheusCollector(prometheus.DefaultRegisterer)
		log.Info("Prometheus metrics enabled")
	}

	authOpts := []services.AuthOption{}
	videoMetrics := ports.Metrics(nil)
	if metrics != nil {
		authOpts = append(authOpts, services.WithMetrics(metrics))
		videoMetrics = metrics
	}
	credentials := domain.NewCredentialTable(domain.Credential{
		Email:    cfg.Auth.Email,
		Password: cfg.Auth.Password,
	})
	authService := services.NewAuthService(cfg.Auth.JWTSecret, credentials, authOpts...)
	videoService := services.NewVideoService(videoRepo, videoMetrics, cfg.Database.OperationTimeout)

	healthChecker.AddRepositoryCheck(videoRepo, 2*time.Second)

	router := newRouter(routerDeps{
		cfg:           cfg,
		log:           log,
		contextLogger: logger.NewContextLogger(zapLogger),
		authService:   authService,
		videoService:  videoService,
		healthChecker: healthChecker,
		metrics:       metrics,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infow("starting unlistedtube server",
			"address", cfg.Server.Address,
			"backend", repoFactory.Backend(),
			"version", version,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Errorw("server failed", "error", err)
	case sig := <-sigChan:
		log.Infow("received shutdown signal", "signal", sig)
	}

	log.Info("shutting down unlistedtube server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("error during server shutdown", "error", err)
		if closeErr := srv.Close(); closeErr != nil {
			log.Errorw("error force closing server", "error", closeErr)
		}
	} else {
		log.Info("server shutdown gracefully")
	}

	if err := repoFactory.Close(); err != nil {
		log.Errorw("error closing video store connection", "error", err)
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Errorw("error flushing traces", "error", err)
	}

	log.Info("unlistedtube server stopped")
}

func findConfigPath() string {
	configPaths := []string{
		os.Getenv("UNLISTED_CONFIG"),
		"configs/config.yaml",
		"./configs/config.yaml",
		"/etc/unlistedtube/config.yaml",
		"config.yaml",
	}
	for _, path := range configPaths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return "configs/config.yaml"
}

// connectBudget covers every connect attempt plus the backoff between them.
func connectBudget(cfg *config.Config) time.Duration {
	attempts := time.Duration(cfg.Database.ConnectRetry.MaxAttempts + 1)
	return attempts*cfg.Database.ConnectTimeout + attempts*cfg.Database.ConnectRetry.MaxDelay
}

// schemeOf keeps credentials in the URI out of the logs.
func schemeOf(uri string) string {
	scheme, _, found := strings.Cut(uri, "://")
	if !found {
		return ""
	}
	return scheme
}
