package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"unlistedtube/internal/core/domain"
	"unlistedtube/internal/core/services"
	apperrors "unlistedtube/pkg/errors"
	"unlistedtube/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSecret = "test-secret"

func newTestAuthService(now func() time.Time) services.AuthService {
	creds := domain.NewCredentialTable(domain.Credential{Email: "owner@example.com", Password: "pw"})
	return services.NewAuthService(testSecret, creds, services.WithClock(now))
}

func TestSessionCookieMiddleware(t *testing.T) {
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	now := issued
	auth := newTestAuthService(func() time.Time { return now })

	token, err := auth.Login(context.Background(), "owner@example.com", "pw")
	require.NoError(t, err)

	core, logs := observer.New(zap.DebugLevel)
	router := gin.New()
	router.Use(ErrorHandlerMiddleware(logger.NewContextLogger(zap.New(core))))
	router.GET("/private", SessionCookieMiddleware(auth), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(SessionEmailKey))
	})

	do := func(cookie *http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		if cookie != nil {
			req.AddCookie(cookie)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("valid cookie", func(t *testing.T) {
		w := do(&http.Cookie{Name: domain.SessionCookieName, Value: token})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "owner@example.com", w.Body.String())
	})

	t.Run("no cookie", func(t *testing.T) {
		w := do(nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
	})

	t.Run("garbage cookie", func(t *testing.T) {
		w := do(&http.Cookie{Name: domain.SessionCookieName, Value: "not.a.jwt"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired cookie", func(t *testing.T) {
		now = issued.Add(domain.SessionTTL + time.Second)
		defer func() { now = issued }()

		w := do(&http.Cookie{Name: domain.SessionCookieName, Value: token})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
	})

	rejected := logs.FilterMessage("session rejected").All()
	require.Len(t, rejected, 3)
	assert.Equal(t, "AUTH_REJECTED", rejected[0].ContextMap()["code"])
	assert.Equal(t, domain.ErrMissingToken.Error(), rejected[0].ContextMap()["reason"])
	assert.Equal(t, domain.ErrExpiredToken.Error(), rejected[2].ContextMap()["reason"])
}

type failingAuthService struct {
	services.AuthService
	err error
}

func (f failingAuthService) Validate(context.Context, string) (*services.Claims, error) {
	return nil, f.err
}

func TestSessionCookieMiddleware_UnexpectedErrorIsServerError(t *testing.T) {
	router := gin.New()
	router.Use(ErrorHandlerMiddleware(logger.NewContextLogger(zap.NewNop())))
	router.GET("/private", SessionCookieMiddleware(failingAuthService{err: errors.New("keystore offline")}),
		func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "keystore")
}

func TestErrorHandlerMiddleware_HidesCauses(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	router := gin.New()
	router.Use(RequestIDMiddleware(), ErrorHandlerMiddleware(logger.NewContextLogger(zap.New(core))))
	router.GET("/infra", func(c *gin.Context) {
		_ = c.Error(apperrors.NewInfrastructureError(errors.New("mongo: auth failed for user admin"), "Internal Server Error"))
	})
	router.GET("/validation", func(c *gin.Context) {
		_ = c.Error(apperrors.NewValidationError("title is required"))
	})
	router.GET("/plain", func(c *gin.Context) {
		_ = c.Error(errors.New("secret detail"))
	})

	cases := []struct {
		path   string
		status int
		body   string
	}{
		{"/infra", http.StatusInternalServerError, `{"error":"Internal Server Error"}`},
		{"/validation", http.StatusBadRequest, `{"error":"title is required"}`},
		{"/plain", http.StatusInternalServerError, `{"error":"Internal Server Error"}`},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
			assert.Equal(t, tc.status, w.Code)
			assert.JSONEq(t, tc.body, w.Body.String())
		})
	}

	appErrors := logs.FilterMessage("application error").All()
	require.Len(t, appErrors, 1)
	assert.Contains(t, appErrors[0].ContextMap()["error"], "mongo: auth failed")
	assert.NotEmpty(t, appErrors[0].ContextMap()["request_id"])
	assert.Equal(t, 1, logs.FilterMessage("request rejected").Len())
	assert.Equal(t, 1, logs.FilterMessage("unhandled error").Len())
}

func TestErrorHandlerMiddleware_KeepsWrittenResponse(t *testing.T) {
	router := gin.New()
	router.Use(ErrorHandlerMiddleware(logger.NewContextLogger(zap.NewNop())))
	router.GET("/", func(c *gin.Context) {
		_ = c.Error(errors.New("late"))
		c.JSON(http.StatusTeapot, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	router := gin.New()
	router.Use(RecoveryMiddleware(zap.New(core).Sugar()))
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, w.Body.String())
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestRequestIDMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, logger.RequestIDFromContext(c.Request.Context()))
	})

	t.Run("generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		id := w.Header().Get(RequestIDHeader)
		assert.Contains(t, id, "req_")
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "abc-123", w.Body.String())
	})
}

func TestLoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	router := gin.New()
	router.Use(RequestIDMiddleware(), LoggingMiddleware(logger.NewContextLogger(zap.New(core))))
	router.GET("/videos", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/videos", nil))

	entries := logs.FilterMessage("http_request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/videos", fields["path"])
	assert.Equal(t, int64(http.StatusNoContent), fields["status_code"])
	assert.NotEmpty(t, fields["request_id"])
}

type recordedRequest struct {
	method, route string
	status        int
}

type fakeRecorder struct {
	requests []recordedRequest
}

func (f *fakeRecorder) RecordHTTPRequest(method, route string, status int, _ time.Duration) {
	f.requests = append(f.requests, recordedRequest{method, route, status})
}

func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	rec := &fakeRecorder{}
	router := gin.New()
	router.Use(MetricsMiddleware(rec))
	router.GET("/videos/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/videos/1", "/videos/2", "/nope"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.Len(t, rec.requests, 3)
	assert.Equal(t, recordedRequest{"GET", "/videos/:id", http.StatusOK}, rec.requests[0])
	assert.Equal(t, recordedRequest{"GET", "/videos/:id", http.StatusOK}, rec.requests[1])
	assert.Equal(t, recordedRequest{"GET", "unmatched", http.StatusNotFound}, rec.requests[2])
}
