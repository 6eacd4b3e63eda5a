package handler

import (
	"strconv"

	"github.com/avaluos-co/service-quote/internal/common/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// sessionID parses the :id path parameter, writing a 400 when it is malformed.
func sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid session ID")
		return uuid.Nil, false
	}
	return id, true
}

// pagination reads page and limit query parameters with defaults 1 and 20.
func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
