package http

import (
	"errors"
	"net/http"

	"unlistedtube/internal/core/domain"
	"unlistedtube/internal/core/ports"
	"unlistedtube/internal/core/services"
	"unlistedtube/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var _ ports.AuthHTTPHandler = (*AuthHandler)(nil)

type AuthHandler struct {
	authService  services.AuthService
	secureCookie bool
	logger       *zap.SugaredLogger
}

func NewAuthHandler(authService services.AuthService, secureCookie bool, logger *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

func (h *AuthHandler) SetupRoutes(router gin.IRouter) {
	api := router.Group("/auth")
	{
		api.POST("/login", h.Login)
		api.GET("/check", h.Check)
		api.POST("/logout", h.Logout)
	}
}

// LoginRequest fields are decoded loosely: a non-string value is a failed
// match, not a malformed request.
type LoginRequest struct {
	Email    interface{} `json:"email"`
	Password interface{} `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false})
		return
	}

	email, _ := req.Email.(string)
	password, _ := req.Password.(string)

	token, err := h.authService.Login(c.Request.Context(), email, password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"message": "Invalid credentials",
		})
		return
	}
	if err != nil {
		h.logger.Errorw("failed to issue session token",
			"error", err,
			"request_id", logger.RequestIDFromContext(c.Request.Context()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}

	h.setSessionCookie(c, token, int(domain.SessionTTL.Seconds()))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AuthHandler) Check(c *gin.Context) {
	token, _ := c.Cookie(domain.SessionCookieName)
	if !h.authService.IsAuthenticated(c.Request.Context(), token) {
		c.JSON(http.StatusUnauthorized, gin.H{"isAuthenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"isAuthenticated": true})
}

// Logout only discards the cookie; an issued token stays valid until expiry.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(domain.SessionCookieName, value, maxAge, "/", "", h.secureCookie, true)
}
