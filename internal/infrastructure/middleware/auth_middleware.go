package middleware

import (
	"unlistedtube/internal/core/domain"
	"unlistedtube/internal/core/services"
	apperrors "unlistedtube/pkg/errors"

	"github.com/gin-gonic/gin"
)

// SessionEmailKey holds the authenticated identifier in the gin context.
const SessionEmailKey = "session_email"

// SessionCookieMiddleware admits requests carrying a valid session cookie.
// Missing, malformed and expired tokens all end as the same 401 written by
// ErrorHandlerMiddleware; the kind is kept as the logged cause.
func SessionCookieMiddleware(authService services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(domain.SessionCookieName)

		claims, err := authService.Validate(c.Request.Context(), token)
		if err != nil {
			if domain.IsUnauthenticated(err) {
				_ = c.Error(apperrors.NewAuthRejectedError(err))
			} else {
				_ = c.Error(err)
			}
			c.Abort()
			return
		}

		c.Set(SessionEmailKey, claims.Email)
		c.Next()
	}
}
