package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"unlistedtube/internal/core/domain"
	"unlistedtube/internal/core/services"
	"unlistedtube/internal/infrastructure/monitoring"
	"unlistedtube/internal/infrastructure/repositories/memory"
	"unlistedtube/pkg/config"
	"unlistedtube/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T, readiness func(ctx context.Context) error) *gin.Engine {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Database.URI = "memory://"
	cfg.Auth.Email = "owner@example.com"
	cfg.Auth.Password = "pw"

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewPrometheusCollector(reg)
	repo := memory.NewMemoryVideoRepository()

	health := monitoring.NewHealthChecker()
	if readiness != nil {
		health.AddCheck("video_store", readiness, time.Second)
	} else {
		health.AddRepositoryCheck(repo, time.Second)
	}

	creds := domain.NewCredentialTable(domain.Credential{Email: cfg.Auth.Email, Password: cfg.Auth.Password})
	log := zap.NewNop()

	return newRouter(routerDeps{
		cfg:            cfg,
		log:            log.Sugar(),
		contextLogger:  logger.NewContextLogger(log),
		authService:    services.NewAuthService(cfg.Auth.JWTSecret, creds, services.WithMetrics(metrics)),
		videoService:   services.NewVideoService(repo, metrics, time.Second),
		healthChecker:  health,
		metrics:        metrics,
		metricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_Health(t *testing.T) {
	w := serve(newTestRouter(t, nil), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
}

func TestRouter_Ready(t *testing.T) {
	w := serve(newTestRouter(t, nil), httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	down := newTestRouter(t, func(ctx context.Context) error { return errors.New("no reachable servers") })
	w = serve(down, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), "no reachable servers")
}

func TestRouter_EndToEndWithMetrics(t *testing.T) {
	router := newTestRouter(t, nil)

	login := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"owner@example.com","password":"pw"}`))
	login.Header.Set("Content-Type", "application/json")
	w := serve(router, login)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	add := httptest.NewRequest(http.MethodPost, "/videos",
		strings.NewReader(`{"youtubeId":"dQw4w9WgXcQ","title":"Sample"}`))
	add.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		add.AddCookie(c)
	}
	w = serve(router, add)
	require.Equal(t, http.StatusCreated, w.Code)

	w = serve(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `unlistedtube_logins_total{result="success"} 1`)
	assert.Contains(t, body, `unlistedtube_videos_added_total 1`)
	assert.Contains(t, body, `unlistedtube_http_requests_total{method="POST",route="/videos",status="201"} 1`)
}

func TestSchemeOf(t *testing.T) {
	assert.Equal(t, "mongodb+srv", schemeOf("mongodb+srv://user:pw@cluster/db"))
	assert.Equal(t, "redis", schemeOf("redis://localhost:6379"))
	assert.Equal(t, "", schemeOf("localhost"))
}
