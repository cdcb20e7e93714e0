package handler

import (
	"net/http"

	"backend/internal/apperr"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondError maps a service failure to the transport envelope. Typed
// workflow errors carry their own status; anything else is internal.
func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	c.JSON(status, response.Error(status, err.Error()))
}

// actorID returns the authenticated member id set by the auth middleware
func actorID(c *gin.Context) (uuid.UUID, bool) {
	raw, _ := c.Get("userID")
	str, _ := raw.(string)
	id, err := uuid.Parse(str)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "invalid authenticated member id"))
		return uuid.Nil, false
	}
	return id, true
}

// pathID parses a uuid path parameter, responding with 400 on garbage
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid "+name+" parameter"))
		return uuid.Nil, false
	}
	return id, true
}
