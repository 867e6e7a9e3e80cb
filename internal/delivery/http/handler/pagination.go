package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shipment-tracker/pkg/utils"
)

const (
	defaultLimit = 100
	maxLimit     = 500
)

// pagination reads skip and limit from the query string. It writes a 400
// and returns ok=false when either is malformed.
func pagination(c *gin.Context) (offset, limit int, ok bool) {
	offset, limit = 0, defaultLimit

	if raw := c.Query("skip"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			utils.ErrorResponse(c, http.StatusBadRequest, "skip must be a non-negative integer")
			return 0, 0, false
		}
		offset = v
	}

	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > maxLimit {
			utils.ErrorResponse(c, http.StatusBadRequest, "limit must be between 1 and 500")
			return 0, 0, false
		}
		limit = v
	}

	return offset, limit, true
}

func pathUUID(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}
