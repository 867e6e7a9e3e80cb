package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shipment-tracker/internal/domain/reading"
	domainShipment "shipment-tracker/internal/domain/shipment"
	domainUser "shipment-tracker/internal/domain/user"
	"shipment-tracker/internal/middleware"
	"shipment-tracker/internal/usecase/controlunit"
	appErrors "shipment-tracker/pkg/errors"
	"shipment-tracker/pkg/utils"
)

func respondWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, appErrors.ErrInvalidCredentials),
		errors.Is(err, appErrors.ErrUnauthorized):
		c.Header("WWW-Authenticate", "Bearer")
		utils.ErrorResponse(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, appErrors.ErrInsufficientPermissions),
		errors.Is(err, appErrors.ErrControlUnitMismatch):
		utils.ErrorResponse(c, http.StatusForbidden, err.Error())
	case errors.Is(err, domainUser.ErrUserNotFound),
		errors.Is(err, domainShipment.ErrShipmentNotFound),
		errors.Is(err, reading.ErrReadingNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domainUser.ErrUserAlreadyExists),
		errors.Is(err, domainShipment.ErrInvalidParty):
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domainShipment.ErrShipmentAlreadyExists),
		errors.Is(err, domainUser.ErrUserInUse):
		utils.ErrorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, controlunit.ErrBatchStorage):
		logInternal(c, err)
		utils.ErrorResponse(c, http.StatusInternalServerError, controlunit.ErrBatchStorage.Error())
	default:
		var appErr *appErrors.AppError
		if errors.As(err, &appErr) {
			message := appErr.Message
			if appErr.Code == appErrors.CodeValidation && appErr.Err != nil {
				message = message + ": " + utils.ValidationMessage(appErr.Err)
			}
			utils.ErrorResponse(c, http.StatusBadRequest, message)
			return
		}

		logInternal(c, err)
		utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
}

func logInternal(c *gin.Context, err error) {
	_ = c.Error(err)
	middleware.RequestLogger(c).Error("Internal server error",
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.Error(err),
	)
}

func invalidBody(c *gin.Context) {
	utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
}
