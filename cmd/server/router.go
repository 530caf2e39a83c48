package main

import (
	"context"
	"net/http"
	"time"

	"unlistedtube/internal/core/ports"
	"unlistedtube/internal/core/services"
	httphandlers "unlistedtube/internal/handlers/http"
	"unlistedtube/internal/infrastructure/middleware"
	"unlistedtube/internal/infrastructure/monitoring"
	"unlistedtube/pkg/config"
	"unlistedtube/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type routerDeps struct {
	cfg           *config.Config
	log           *zap.SugaredLogger
	contextLogger *logger.ContextLogger
	authService   services.AuthService
	videoService  ports.VideoService
	healthChecker *monitoring.HealthChecker
	metrics       *monitoring.PrometheusCollector
	// metricsHandler defaults to promhttp.Handler()
	metricsHandler http.Handler
}

var startTime = time.Now()

func newRouter(d routerDeps) *gin.Engine {
	if d.cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(
		middleware.RecoveryMiddleware(d.log),
		middleware.RequestIDMiddleware(),
		middleware.TracingMiddleware(),
		middleware.LoggingMiddleware(d.contextLogger),
	)
	if d.metrics != nil {
		router.Use(middleware.MetricsMiddleware(d.metrics))
	}
	router.Use(middleware.ErrorHandlerMiddleware(d.contextLogger))

	httphandlers.NewAuthHandler(d.authService, d.cfg.Auth.SecureCookie, d.log).SetupRoutes(router)
	httphandlers.NewVideoHandler(d.videoService).
		SetupRoutes(router, middleware.SessionCookieMiddleware(d.authService))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"uptime":    time.Since(startTime).String(),
		})
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		status := d.healthChecker.CheckAll(ctx)
		if status.Status != "healthy" {
			for name, err := range status.Errors {
				d.log.Warnw("readiness check failed", "check", name, "error", err)
			}
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
		c.JSON(http.StatusOK, status)
	})

	if d.cfg.Monitoring.PrometheusEnabled {
		h := d.metricsHandler
		if h == nil {
			h = promhttp.Handler()
		}
		router.GET("/metrics", gin.WrapH(h))
	}

	return router
}
