package utils

import (
	"github.com/gin-gonic/gin"
)

// ErrorResponse writes {"detail": message}.
func ErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"detail": message})
}

// SuccessResponse writes data as the whole body.
func SuccessResponse(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}
