package http

import (
	"github.com/mrlokans/donorbase/internal/audit"
	"github.com/mrlokans/donorbase/internal/auth"
	"github.com/mrlokans/donorbase/internal/config"
	"github.com/mrlokans/donorbase/internal/database"
	"github.com/mrlokans/donorbase/internal/database/donations"
	"github.com/mrlokans/donorbase/internal/database/donors"
	"github.com/mrlokans/donorbase/internal/database/imports"
	"github.com/mrlokans/donorbase/internal/importer"
	"github.com/mrlokans/donorbase/internal/tasks"
)

// RouterConfig contains all dependencies needed to create the HTTP router.
// A single struct instead of a long parameter list keeps wiring and tests
// manageable.
type RouterConfig struct {
	// Core dependencies
	Database     *database.Database
	Pipeline     *importer.Pipeline
	DonorRepo    *donors.Repository
	DonationRepo *donations.Repository
	RunRepo      *imports.Repository
	AuditService *audit.Service

	// Authentication
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware
	SessionManager *auth.SessionManager
	AuthConfig     config.Auth
	CSRFSecret     []byte

	// Task queue client (optional)
	TaskClient *tasks.Client

	// Retention for on-demand cleanup tasks
	AuditRetentionDays int

	// Import limits
	MaxFileSizeMB   int64
	DefaultCurrency string

	// Application info
	Version string
}
