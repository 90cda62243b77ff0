package middleware

import (
	"letterdesk-admin-svc/src/internal/config"
	"letterdesk-admin-svc/src/internal/identity"
	"letterdesk-admin-svc/src/internal/models"
	"letterdesk-admin-svc/src/internal/session"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AuthMiddleware gates the admin surface behind a validated session cookie.
type AuthMiddleware struct {
	sessions        session.Service
	identityService identity.Service
	cfg             *config.SessionSettings
	secureCookies   bool
}

// Gin context keys set on successful authentication
const (
	ContextSession   = "admin_session"
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
)

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(sessions session.Service, identityService identity.Service, cfg *config.Configuration) *AuthMiddleware {
	return &AuthMiddleware{
		sessions:        sessions,
		identityService: identityService,
		cfg:             &cfg.Session,
		secureCookies:   cfg.Server.Mode == "release",
	}
}

// RequireAdmin validates the session cookie and refreshes it on success.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(m.cfg.CookieName)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		meta := models.RequestMeta{
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}

		sess, refreshed, err := m.sessions.Validate(c.Request.Context(), cookie, meta)
		if err != nil {
			logrus.WithError(err).Debug("Session validation failed")
			m.ClearSessionCookie(c)
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Session expired - please login again",
			})
			c.Abort()
			return
		}

		m.SetSessionCookie(c, refreshed)

		c.Set(ContextSession, sess)
		c.Set(ContextUserID, sess.UserID)
		c.Set(ContextUserEmail, sess.Email)

		logrus.WithFields(logrus.Fields{
			"session_id": sess.SessionID,
			"user_id":    sess.UserID,
		}).Debug("Admin authenticated successfully")

		c.Next()
	}
}

// RequireSubRole checks the caller's portal sub-role against the identity
// store. The cookie carries no claims, so the role is always re-fetched.
// super_admin passes every gate.
func (m *AuthMiddleware) RequireSubRole(subRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(ContextUserID)
		if userID == "" {
			logrus.Error("User id not found in context - ensure RequireAdmin runs first")
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		user, err := m.identityService.ResolveRole(c.Request.Context(), userID)
		if err != nil {
			logrus.WithError(err).WithField("user_id", userID).Warn("Failed to resolve admin role")
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		if user.SubRole != identity.SubRoleSuperAdmin && user.SubRole != subRole {
			logrus.WithFields(logrus.Fields{
				"user_id":  userID,
				"sub_role": user.SubRole,
				"required": subRole,
			}).Warn("Admin attempted to access endpoint without required sub-role")
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Access forbidden - insufficient privileges",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// SetSessionCookie writes the signed session cookie. Max-Age mirrors the
// idle window but is only a client-side hint; server checks stay
// authoritative.
func (m *AuthMiddleware) SetSessionCookie(c *gin.Context, value string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cfg.CookieName, value, m.cfg.IdleTimeoutSeconds, "/", "", m.secureCookies, true)
}

// ClearSessionCookie expires the session cookie on the client.
func (m *AuthMiddleware) ClearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cfg.CookieName, "", -1, "/", "", m.secureCookies, true)
}

// SessionFromContext returns the validated session stored by RequireAdmin.
func SessionFromContext(c *gin.Context) (*models.AdminSession, bool) {
	value, exists := c.Get(ContextSession)
	if !exists {
		return nil, false
	}
	sess, ok := value.(*models.AdminSession)
	return sess, ok
}
