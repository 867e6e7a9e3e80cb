package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shipment-tracker/internal/metrics"
	"shipment-tracker/internal/middleware"
	"shipment-tracker/internal/usecase/controlunit"
	"shipment-tracker/pkg/utils"
)

type ControlUnitHandler struct {
	service *controlunit.Service
}

func NewControlUnitHandler(service *controlunit.Service) *ControlUnitHandler {
	return &ControlUnitHandler{service: service}
}

// RegisterRoutes mounts /control-unit. Writes from devices need a
// control-unit token; reads and maintenance need a user token.
func (h *ControlUnitHandler) RegisterRoutes(router *gin.RouterGroup, requireUser, requireUnit gin.HandlerFunc) {
	units := router.Group("/control-unit")
	{
		units.POST("/single-reading", requireUnit, h.RecordSingle)
		units.POST("", requireUnit, h.RecordBatch)
		units.POST("/", requireUnit, h.RecordBatch)

		units.GET("", requireUser, h.List)
		units.GET("/", requireUser, h.List)
		units.GET("/:id", requireUser, h.Get)

		units.PUT("/:id", requireUser, middleware.AdminOnly(), h.Update)
		units.DELETE("/:id", requireUser, middleware.AdminOnly(), h.Delete)
	}
}

func (h *ControlUnitHandler) RecordSingle(c *gin.Context) {
	var req controlunit.SingleReadingRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	saved, err := h.service.RecordSingle(c.Request.Context(), middleware.ControlUnitID(c), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, saved)
}

// RecordBatch stores a grouped batch atomically and reports how many
// readings were saved.
func (h *ControlUnitHandler) RecordBatch(c *gin.Context) {
	var req controlunit.BatchRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	resp, err := h.service.RecordBatch(c.Request.Context(), middleware.ControlUnitID(c), &req, metrics.SourceHTTP)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, resp)
}

func (h *ControlUnitHandler) List(c *gin.Context) {
	offset, limit, ok := pagination(c)
	if !ok {
		return
	}

	readings, err := h.service.List(c.Request.Context(), offset, limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, readings)
}

func (h *ControlUnitHandler) Get(c *gin.Context) {
	readingID, ok := pathUUID(c, "id", "reading")
	if !ok {
		return
	}

	found, err := h.service.Get(c.Request.Context(), readingID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, found)
}

func (h *ControlUnitHandler) Update(c *gin.Context) {
	readingID, ok := pathUUID(c, "id", "reading")
	if !ok {
		return
	}

	var req controlunit.UpdateReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	updated, err := h.service.Update(c.Request.Context(), readingID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, updated)
}

func (h *ControlUnitHandler) Delete(c *gin.Context) {
	readingID, ok := pathUUID(c, "id", "reading")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), readingID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
