package auth

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/donorbase/internal/audit"
	"github.com/mrlokans/donorbase/internal/config"
	"github.com/mrlokans/donorbase/internal/entities"
)

// setupMutex serializes setup requests so concurrent calls cannot both pass
// the HasAdmins check.
var setupMutex sync.Mutex

// Controller handles authentication HTTP endpoints. All endpoints speak JSON.
type Controller struct {
	service        *Service
	sessionManager *SessionManager
	auditService   *audit.Service
	config         config.Auth
}

// NewController creates a new authentication controller.
func NewController(service *Service, sessionManager *SessionManager, auditService *audit.Service, cfg config.Auth) *Controller {
	return &Controller{
		service:        service,
		sessionManager: sessionManager,
		auditService:   auditService,
		config:         cfg,
	}
}

// RegisterRoutes registers authentication routes on the router.
func (ac *Controller) RegisterRoutes(router *gin.Engine) {
	router.GET("/api/auth/status", ac.Status)
	router.POST("/api/auth/login", ac.Login)
	router.POST("/api/auth/logout", ac.Logout)
	router.POST("/api/auth/setup", ac.Setup)
	router.GET("/api/auth/me", ac.Me)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type setupRequest struct {
	Email    string `json:"email" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Status reports whether auth is enabled and whether initial setup is open.
func (ac *Controller) Status(c *gin.Context) {
	hasAdmins, err := ac.service.HasAdmins()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check setup state"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"auth_enabled": ac.service.IsAuthEnabled(),
		"setup_open":   !hasAdmins,
	})
}

// Login authenticates with email and password and starts a session.
func (ac *Controller) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	admin, err := ac.service.Authenticate(req.Email, req.Password)
	if err != nil {
		if ac.auditService != nil {
			ac.auditService.LogAuth(0, "Failed login for "+req.Email, false)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	if ac.sessionManager != nil {
		if err := ac.sessionManager.CreateSession(c.Request, admin); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
			return
		}
	}

	if ac.auditService != nil {
		ac.auditService.LogAuth(admin.ID, "Logged in", true)
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       admin.ID,
		"email":    admin.Email,
		"username": admin.Username,
		"role":     admin.Role,
	})
}

// Logout destroys the current session.
func (ac *Controller) Logout(c *gin.Context) {
	if ac.sessionManager != nil {
		_ = ac.sessionManager.DestroySession(c.Request)
	}
	if ac.auditService != nil {
		if id := GetAdminID(c); id != 0 {
			ac.auditService.LogAuth(id, "Logged out", true)
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Setup creates the first admin account. Closed as soon as any account
// exists; later accounts are created by an existing admin.
func (ac *Controller) Setup(c *gin.Context) {
	setupMutex.Lock()
	defer setupMutex.Unlock()

	hasAdmins, err := ac.service.HasAdmins()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check setup state"})
		return
	}
	if hasAdmins {
		c.JSON(http.StatusConflict, gin.H{"error": "setup already completed"})
		return
	}

	var req setupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email, username and password are required"})
		return
	}

	admin, token, err := ac.service.CreateAdmin(req.Email, req.Username, req.Password, entities.AdminRoleAdmin)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": setupErrorMessage(err)})
		return
	}

	if ac.sessionManager != nil {
		_ = ac.sessionManager.CreateSession(c.Request, admin)
	}
	if ac.auditService != nil {
		ac.auditService.LogAuth(admin.ID, "Initial admin account created", true)
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":       admin.ID,
		"email":    admin.Email,
		"username": admin.Username,
		"role":     admin.Role,
		"token":    token,
		"message":  "Store this token securely - it will not be shown again",
	})
}

// Me returns the authenticated admin's account details.
func (ac *Controller) Me(c *gin.Context) {
	adminID := GetAdminID(c)
	if adminID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	admin, err := ac.service.GetAdminByID(adminID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "admin not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":            admin.ID,
		"email":         admin.Email,
		"username":      admin.Username,
		"role":          admin.Role,
		"last_login_at": admin.LastLoginAt,
	})
}

func setupErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrPasswordTooShort):
		return "Password must be at least 12 characters"
	case errors.Is(err, ErrPasswordTooLong):
		return "Password exceeds maximum length of 72 characters"
	case errors.Is(err, ErrUsernameInvalid):
		return "Username must be 3-64 characters, alphanumeric with underscore/hyphen only"
	case errors.Is(err, ErrEmailInvalid):
		return "Invalid email format"
	case errors.Is(err, ErrAdminExists):
		return "Account already exists"
	default:
		return "Failed to create account"
	}
}
