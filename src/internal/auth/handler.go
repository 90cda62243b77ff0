package auth

import (
	"context"
	"letterdesk-admin-svc/src/internal/cache"
	"letterdesk-admin-svc/src/internal/config"
	"letterdesk-admin-svc/src/internal/identity"
	"letterdesk-admin-svc/src/internal/middleware"
	"letterdesk-admin-svc/src/internal/models"
	"letterdesk-admin-svc/src/internal/session"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handler interface {
	Login(c *gin.Context)
	Logout(c *gin.Context)
	Me(c *gin.Context)
}

type handler struct {
	config          *config.Configuration
	sessions        session.Service
	identityService identity.Service
	cacheService    cache.Service
	guard           *middleware.AuthMiddleware
}

func NewHandler(cfg *config.Configuration, sessions session.Service, identityService identity.Service, cacheService cache.Service, guard *middleware.AuthMiddleware) Handler {
	return &handler{
		config:          cfg,
		sessions:        sessions,
		identityService: identityService,
		cacheService:    cacheService,
		guard:           guard,
	}
}

// LoginRequest is the admin portal login payload.
type LoginRequest struct {
	Username  string `json:"username" binding:"required"`
	Password  string `json:"password" binding:"required"`
	PortalKey string `json:"portalKey" binding:"required"`
}

func (h *handler) Login(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(h.config.App.Timeout)*time.Second)
	defer cancel()

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "username, password and portalKey are required",
		})
		return
	}

	meta := models.RequestMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}

	locked, err := h.cacheService.IsLockedOut(ctx, req.Username, meta.IPAddress)
	if err != nil {
		// The gate degrades open; credentials still decide.
		logrus.WithError(err).Warn("Lockout check unavailable")
	}
	if locked {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error": "Too many failed login attempts - try again later",
		})
		return
	}

	verified, err := h.identityService.Verify(ctx, req.Username, req.Password, req.PortalKey)
	if err != nil {
		if err := h.cacheService.RegisterFailedLogin(ctx, req.Username, meta.IPAddress); err != nil {
			logrus.WithError(err).Warn("Failed to register failed login")
		}
		logrus.WithError(err).WithField("username", req.Username).Warn("Admin login rejected")
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid credentials",
		})
		return
	}

	cookie, sess, err := h.sessions.Issue(ctx, verified.UserID, verified.Email, meta)
	if err != nil {
		logrus.WithError(err).WithField("user_id", verified.UserID).Error("Failed to issue admin session")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Unable to start session",
		})
		return
	}

	if err := h.cacheService.ClearFailedLogins(ctx, req.Username, meta.IPAddress); err != nil {
		logrus.WithError(err).Warn("Failed to clear lockout counter")
	}

	h.guard.SetSessionCookie(c, cookie)

	c.JSON(http.StatusOK, gin.H{
		"userId":    sess.UserID,
		"email":     sess.Email,
		"role":      verified.Role,
		"subRole":   verified.SubRole,
		"expiresAt": sess.ExpiresAt,
	})
}

func (h *handler) Logout(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(h.config.App.Timeout)*time.Second)
	defer cancel()

	meta := models.RequestMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}

	if cookie, err := c.Cookie(h.config.Session.CookieName); err == nil {
		h.sessions.Terminate(ctx, cookie, meta)
	}

	// Fail-safe: clear the cookie even when no valid session matched.
	h.guard.ClearSessionCookie(c)

	c.JSON(http.StatusOK, gin.H{
		"status": "logged out",
	})
}

func (h *handler) Me(c *gin.Context) {
	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userId":       sess.UserID,
		"email":        sess.Email,
		"lastActivity": sess.LastActivity,
		"expiresAt":    sess.ExpiresAt,
	})
}
