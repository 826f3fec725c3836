package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/staybook-backend/internal/apperror"
	"github.com/chachabrian/staybook-backend/internal/middleware"
	"github.com/chachabrian/staybook-backend/internal/models"
	"github.com/chachabrian/staybook-backend/internal/services"
	"github.com/chachabrian/staybook-backend/pkg/utils"
)

// respond writes the success envelope.
func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// respondList writes a list envelope. links may be nil for unpaged lists.
func respondList(c *gin.Context, data interface{}, count int, total int64, links *utils.PageLinks) {
	body := gin.H{
		"success": true,
		"count":   count,
		"total":   total,
		"data":    data,
	}
	if links != nil {
		body["pagination"] = links
	}
	c.JSON(http.StatusOK, body)
}

// respondError maps a classified error to its status. Server-side failures
// are attached to the context for the request logger and never shown.
func respondError(c *gin.Context, err error) {
	status := apperror.HTTPStatus(apperror.KindOf(err))
	if status >= http.StatusInternalServerError {
		c.Error(err)
	}
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": apperror.PublicMessage(err)})
}

func callerFrom(c *gin.Context) services.Caller {
	return services.Caller{
		ID:   c.GetUint(middleware.UserIDKey),
		Role: models.Role(c.GetString(middleware.RoleKey)),
	}
}

func paramID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.NotFound("Resource not found with id of %s", c.Param(name))
	}
	return uint(id), nil
}
