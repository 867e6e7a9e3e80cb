package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shipment-tracker/internal/middleware"
	"shipment-tracker/internal/usecase/user"
	"shipment-tracker/pkg/utils"
)

type UserHandler struct {
	service *user.Service
}

func NewUserHandler(service *user.Service) *UserHandler {
	return &UserHandler{service: service}
}

// RegisterRoutes mounts /users. requireUser must reject anonymous callers;
// optionalUser resolves a token only when one is sent.
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup, requireUser, optionalUser gin.HandlerFunc) {
	users := router.Group("/users")
	{
		users.POST("/register", optionalUser, h.Register)
		users.GET("/me", requireUser, h.Me)
		users.PATCH("/:id", requireUser, h.Update)

		admin := users.Group("", requireUser, middleware.AdminOnly())
		admin.GET("", h.List)
		admin.GET("/:id", h.Get)
		admin.DELETE("/:id", h.Delete)
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req user.RegisterRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	caller, _ := middleware.CurrentUser(c)
	created, err := h.service.Register(c.Request.Context(), caller, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, created)
}

func (h *UserHandler) Me(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, user.ToUserResponse(caller))
}

func (h *UserHandler) List(c *gin.Context) {
	offset, limit, ok := pagination(c)
	if !ok {
		return
	}

	users, err := h.service.List(c.Request.Context(), offset, limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, users)
}

func (h *UserHandler) Get(c *gin.Context) {
	userID, ok := pathUUID(c, "id", "user")
	if !ok {
		return
	}

	found, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, found)
}

func (h *UserHandler) Update(c *gin.Context) {
	userID, ok := pathUUID(c, "id", "user")
	if !ok {
		return
	}

	var req user.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	caller, _ := middleware.CurrentUser(c)
	updated, err := h.service.Update(c.Request.Context(), caller, userID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, updated)
}

func (h *UserHandler) Delete(c *gin.Context) {
	userID, ok := pathUUID(c, "id", "user")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
