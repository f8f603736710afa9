package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/donorbase/internal/config"
	"github.com/mrlokans/donorbase/internal/entities"
)

// Context keys for the authenticated admin
const (
	ContextKeyAdminID  = "auth_admin_id"
	ContextKeyUsername = "auth_username"
	ContextKeyRole     = "auth_role"
	ContextKeyAuthType = "auth_type"
)

// AuthType indicates how the request was authenticated.
type AuthType string

const (
	AuthTypeNone    AuthType = "none"
	AuthTypeSession AuthType = "session"
	AuthTypeBearer  AuthType = "bearer"
)

// DefaultActorID is used when authentication is disabled.
const DefaultActorID = uint(0)

// Middleware handles authentication for HTTP requests.
type Middleware struct {
	service        *Service
	sessionManager *SessionManager
	config         config.Auth
	publicPaths    map[string]bool
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(service *Service, sessionManager *SessionManager, cfg config.Auth) *Middleware {
	publicPaths := map[string]bool{
		"/health":          true,
		"/ping":            true,
		"/api/auth/login":  true,
		"/api/auth/setup":  true,
		"/api/auth/status": true,
	}

	return &Middleware{
		service:        service,
		sessionManager: sessionManager,
		config:         cfg,
		publicPaths:    publicPaths,
	}
}

// Handler returns a Gin middleware that authenticates requests. The surface
// is JSON-only, so unauthenticated requests always get a 401 body rather
// than a redirect.
func (m *Middleware) Handler() gin.HandlerFunc {
	if m.config.Mode == config.AuthModeNone {
		return m.noAuthHandler()
	}
	return m.authHandler()
}

// noAuthHandler injects DefaultActorID for all requests when auth is disabled.
func (m *Middleware) noAuthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyAdminID, DefaultActorID)
		c.Set(ContextKeyAuthType, AuthTypeNone)
		c.Next()
	}
}

func (m *Middleware) authHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.publicPaths[c.Request.URL.Path] {
			c.Set(ContextKeyAdminID, DefaultActorID)
			c.Set(ContextKeyAuthType, AuthTypeNone)
			c.Next()
			return
		}

		// Bearer token first (API clients), then session cookie (dashboard)
		if admin := m.tryBearerAuth(c); admin != nil {
			m.setAdminContext(c, admin, AuthTypeBearer)
			c.Next()
			return
		}
		if admin := m.trySessionAuth(c); admin != nil {
			m.setAdminContext(c, admin, AuthTypeSession)
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "authentication required",
		})
	}
}

// tryBearerAuth attempts to authenticate using a Bearer token.
func (m *Middleware) tryBearerAuth(c *gin.Context) *entities.AdminUser {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil
	}

	admin, err := m.service.ValidateToken(parts[1])
	if err != nil {
		return nil
	}
	return admin
}

// trySessionAuth attempts to authenticate using the session cookie.
func (m *Middleware) trySessionAuth(c *gin.Context) *entities.AdminUser {
	if m.sessionManager == nil {
		return nil
	}

	adminID := m.sessionManager.GetAdminID(c.Request)
	if adminID == 0 {
		return nil
	}

	admin, err := m.service.GetAdminByID(adminID)
	if err != nil {
		return nil
	}
	return admin
}

func (m *Middleware) setAdminContext(c *gin.Context, admin *entities.AdminUser, authType AuthType) {
	c.Set(ContextKeyAdminID, admin.ID)
	c.Set(ContextKeyUsername, admin.Username)
	c.Set(ContextKeyRole, admin.Role)
	c.Set(ContextKeyAuthType, authType)
}

// RequireRole returns a middleware that requires one of the given roles.
// Mutating endpoints use this to keep viewers read-only.
func (m *Middleware) RequireRole(roles ...entities.AdminRole) gin.HandlerFunc {
	roleSet := make(map[entities.AdminRole]bool)
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		// Skip role check if auth is disabled
		if m.config.Mode == config.AuthModeNone {
			c.Next()
			return
		}

		if !roleSet[GetAdminRole(c)] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "insufficient permissions",
			})
			return
		}
		c.Next()
	}
}

// GetAdminID retrieves the authenticated admin's ID from the context.
// Returns DefaultActorID (0) if not authenticated or auth is disabled.
func GetAdminID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyAdminID); exists {
		if adminID, ok := id.(uint); ok {
			return adminID
		}
	}
	return DefaultActorID
}

// GetUsername retrieves the authenticated admin's username from the context.
func GetUsername(c *gin.Context) string {
	if name, exists := c.Get(ContextKeyUsername); exists {
		if username, ok := name.(string); ok {
			return username
		}
	}
	return ""
}

// GetAdminRole retrieves the authenticated admin's role from the context.
func GetAdminRole(c *gin.Context) entities.AdminRole {
	if r, exists := c.Get(ContextKeyRole); exists {
		if role, ok := r.(entities.AdminRole); ok {
			return role
		}
	}
	return ""
}

// GetAuthType retrieves the authentication method used.
func GetAuthType(c *gin.Context) AuthType {
	if t, exists := c.Get(ContextKeyAuthType); exists {
		if authType, ok := t.(AuthType); ok {
			return authType
		}
	}
	return AuthTypeNone
}
