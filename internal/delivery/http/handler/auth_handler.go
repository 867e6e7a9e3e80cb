package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shipment-tracker/internal/usecase/auth"
	"shipment-tracker/pkg/utils"
)

type AuthHandler struct {
	service *auth.Service
}

func NewAuthHandler(service *auth.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", h.Login)
	}
}

// Login accepts JSON or form-encoded credentials.
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest

	if err := c.ShouldBind(&req); err != nil {
		invalidBody(c)
		return
	}

	req.Username = utils.SanitizeString(req.Username)

	token, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, token)
}
