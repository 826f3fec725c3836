package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/staybook-backend/internal/apperror"
	"github.com/chachabrian/staybook-backend/internal/middleware"
	"github.com/chachabrian/staybook-backend/internal/models"
	"github.com/chachabrian/staybook-backend/internal/services"
)

// WebSocketHandler upgrades authenticated clients onto the booking event hub.
func WebSocketHandler(hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint(middleware.UserIDKey)
		role := models.Role(c.GetString(middleware.RoleKey))

		services.HandleWebSocket(hub, c.Writer, c.Request, userID, role)
	}
}

// AuditLog reads back recorded changes.
type AuditLog interface {
	History(ctx context.Context, resource string, id uint, limit int64) ([]services.AuditEntry, error)
}

const defaultAuditLimit = 50

// GetAuditHistory lists the latest audit entries of a house or booking.
func GetAuditHistory(audit AuditLog) gin.HandlerFunc {
	return func(c *gin.Context) {
		resource := c.Param("resource")
		if resource != "house" && resource != "booking" {
			respondError(c, apperror.Validation("Unknown resource %s", resource))
			return
		}
		id, err := paramID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}

		limit := int64(defaultAuditLimit)
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || n < 1 {
				respondError(c, apperror.Validation("limit must be a positive integer"))
				return
			}
			limit = n
		}

		entries, err := audit.History(c.Request.Context(), resource, id, limit)
		if err != nil {
			respondError(c, apperror.Storage(err))
			return
		}
		if entries == nil {
			entries = []services.AuditEntry{}
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "count": len(entries), "data": entries})
	}
}
