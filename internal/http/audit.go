package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/donorbase/internal/audit"
	"github.com/mrlokans/donorbase/internal/entities"
)

// AuditController exposes the audit trail.
type AuditController struct {
	auditService *audit.Service
}

// NewAuditController creates a new audit controller.
func NewAuditController(auditService *audit.Service) *AuditController {
	return &AuditController{auditService: auditService}
}

// List returns audit events newest first, optionally filtered by actor and
// action.
func (ac *AuditController) List(c *gin.Context) {
	limit, offset := parsePagination(c)
	action := entities.AuditAction(c.Query("action"))

	var actorID uint
	if raw := c.Query("actor_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondBadRequest(c, "invalid actor_id")
			return
		}
		actorID = uint(parsed)
	}

	events, total, err := ac.auditService.GetEvents(actorID, action, limit, offset)
	if err != nil {
		respondInternalError(c, err, "list audit events")
		return
	}

	c.JSON(http.StatusOK, paginated(events, total, limit, offset))
}
