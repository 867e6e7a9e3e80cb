package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainUser "shipment-tracker/internal/domain/user"
	"shipment-tracker/internal/middleware"
	"shipment-tracker/internal/usecase/shipment"
	"shipment-tracker/pkg/utils"
)

type ShipmentHandler struct {
	service *shipment.Service
}

func NewShipmentHandler(service *shipment.Service) *ShipmentHandler {
	return &ShipmentHandler{service: service}
}

// RegisterRoutes mounts /shipments. Every route needs an authenticated user.
func (h *ShipmentHandler) RegisterRoutes(router *gin.RouterGroup, requireUser gin.HandlerFunc) {
	shipments := router.Group("/shipments", requireUser)
	{
		shipments.POST("", middleware.CustomerOrAdmin(), h.Create)
		shipments.GET("/me", h.ListMine)
		shipments.GET("/me/latest", h.ListMineWithLatestValues)
		shipments.GET("/:id", h.Get)
		shipments.GET("/:id/latest", h.GetWithLatestValues)
	}

	admin := router.Group("/shipments", requireUser, middleware.AdminOnly())
	{
		admin.GET("", h.ListAll)
		admin.GET("/all", h.ListAllWithLatestValues)
		admin.PATCH("/:id", h.UpdateDriverAndStatus)
		admin.PATCH("/update-all/:id", h.UpdateAll)
		admin.DELETE("/:id", h.Delete)
	}
}

func (h *ShipmentHandler) Create(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req shipment.CreateShipmentRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	created, err := h.service.Create(c.Request.Context(), caller, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, created)
}

func (h *ShipmentHandler) ListAll(c *gin.Context) {
	offset, limit, ok := pagination(c)
	if !ok {
		return
	}

	shipments, err := h.service.ListAll(c.Request.Context(), offset, limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, shipments)
}

func (h *ShipmentHandler) ListAllWithLatestValues(c *gin.Context) {
	offset, limit, ok := pagination(c)
	if !ok {
		return
	}

	shipments, err := h.service.ListAllWithLatestValues(c.Request.Context(), offset, limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, shipments)
}

func (h *ShipmentHandler) ListMine(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	offset, limit, ok := pagination(c)
	if !ok {
		return
	}

	shipments, err := h.service.ListMine(c.Request.Context(), caller, offset, limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, shipments)
}

func (h *ShipmentHandler) ListMineWithLatestValues(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	offset, limit, ok := pagination(c)
	if !ok {
		return
	}

	shipments, err := h.service.ListMineWithLatestValues(c.Request.Context(), caller, offset, limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, shipments)
}

func (h *ShipmentHandler) Get(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	shipmentID, ok := pathUUID(c, "id", "shipment")
	if !ok {
		return
	}

	found, err := h.service.Get(c.Request.Context(), caller, shipmentID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, found)
}

func (h *ShipmentHandler) GetWithLatestValues(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	shipmentID, ok := pathUUID(c, "id", "shipment")
	if !ok {
		return
	}

	found, err := h.service.GetWithLatestValues(c.Request.Context(), caller, shipmentID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, found)
}

// UpdateDriverAndStatus takes driver_id and status from the query string.
// Either may be omitted.
func (h *ShipmentHandler) UpdateDriverAndStatus(c *gin.Context) {
	shipmentID, ok := pathUUID(c, "id", "shipment")
	if !ok {
		return
	}

	var driverID *uuid.UUID
	if raw := c.Query("driver_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid driver ID")
			return
		}
		driverID = &parsed
	}

	var status *string
	if raw := c.Query("status"); raw != "" {
		status = &raw
	}

	updated, err := h.service.UpdateDriverAndStatus(c.Request.Context(), shipmentID, driverID, status)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, updated)
}

func (h *ShipmentHandler) UpdateAll(c *gin.Context) {
	shipmentID, ok := pathUUID(c, "id", "shipment")
	if !ok {
		return
	}

	var req shipment.UpdateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	updated, err := h.service.UpdateAll(c.Request.Context(), shipmentID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, updated)
}

func (h *ShipmentHandler) Delete(c *gin.Context) {
	shipmentID, ok := pathUUID(c, "id", "shipment")
	if !ok {
		return
	}

	deleted, err := h.service.Delete(c.Request.Context(), shipmentID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, deleted)
}

func requireCaller(c *gin.Context) (*domainUser.User, bool) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Not authenticated")
		return nil, false
	}
	return caller, true
}
