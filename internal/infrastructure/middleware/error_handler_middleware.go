package middleware

import (
	"net/http"

	"unlistedtube/pkg/errors"
	"unlistedtube/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandlerMiddleware turns errors pushed with c.Error into responses.
// Causes are logged and never sent to the client.
func ErrorHandlerMiddleware(cl *logger.ContextLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		ctx := c.Request.Context()

		appErr := errors.GetAppError(err)
		if appErr == nil {
			cl.LogError(ctx, err, "unhandled error",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}

		fields := []zap.Field{
			zap.String("code", string(appErr.Code)),
			zap.Int("status", appErr.HTTPStatus),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Any("context", appErr.Context),
		}
		switch {
		case appErr.HTTPStatus >= http.StatusInternalServerError:
			cl.LogError(ctx, appErr.Cause, "application error", fields...)
		case errors.Is(err, errors.ErrCodeAuthRejected):
			// every anonymous page load lands here
			cl.WithContext(ctx).Debug("session rejected", append(fields, zap.NamedError("reason", appErr.Cause))...)
		default:
			cl.LogInfo(ctx, "request rejected", fields...)
		}

		c.JSON(appErr.HTTPStatus, gin.H{"error": appErr.Message})
	}
}

// RecoveryMiddleware recovers from panics and returns proper error responses
func RecoveryMiddleware(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Errorw("panic recovered",
					"error", err,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
					"request_id", logger.RequestIDFromContext(c.Request.Context()),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Internal Server Error",
				})
			}
		}()

		c.Next()
	}
}
