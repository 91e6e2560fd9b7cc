package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wristcare/alertband-backend/internal/audit"
	"github.com/wristcare/alertband-backend/internal/repository"
	"github.com/wristcare/alertband-backend/internal/service"
	"github.com/wristcare/alertband-backend/pkg/api"
	"go.uber.org/zap"
)

// DeviceHandler implements the serial transmission endpoints
type DeviceHandler struct {
	transmit *service.TransmitService
	audit    *audit.Logger
	logger   *zap.Logger
}

// NewDeviceHandler creates a new DeviceHandler
func NewDeviceHandler(transmit *service.TransmitService, auditLogger *audit.Logger, logger *zap.Logger) *DeviceHandler {
	return &DeviceHandler{
		transmit: transmit,
		audit:    auditLogger,
		logger:   logger,
	}
}

// ListPorts lists the serial ports available on the host
func (h *DeviceHandler) ListPorts(c *gin.Context) {
	ports, err := h.transmit.Ports()
	if err != nil {
		h.logger.Error("failed to list serial ports", zap.Error(err))
		c.JSON(http.StatusBadGateway, api.ErrorResponse{
			Code:    "TRANSPORT_ERROR",
			Message: "Failed to enumerate serial ports",
			Details: stringPtr(err.Error()),
		})
		return
	}

	if ports == nil {
		ports = []string{}
	}

	c.JSON(http.StatusOK, api.PortListResponse{Ports: ports})
}

// Send transmits a saved configuration's payload over the serial link.
// Transport failures are transient: the configuration and its payload remain
// usable and the caller may retry.
func (h *DeviceHandler) Send(c *gin.Context) {
	id := c.Param("id")

	var req api.SendRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Error("invalid request body", zap.Error(err))
			c.JSON(http.StatusBadRequest, api.ErrorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "Invalid request body",
				Details: stringPtr(err.Error()),
			})
			return
		}
	}

	result, err := h.transmit.Send(c.Request.Context(), id, req.Port, req.BaudRate)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondServiceError(c, err)
			return
		}
		h.logger.Error("failed to send configuration",
			zap.Error(err),
			zap.String("configuration_id", id),
		)
		c.JSON(http.StatusBadGateway, api.ErrorResponse{
			Code:    "TRANSPORT_ERROR",
			Message: "Failed to send configuration to device",
			Details: stringPtr(err.Error()),
		})
		return
	}

	h.audit.Log(c.Request.Context(), audit.Entry{
		OperationType: audit.OperationSend,
		ResourceType:  audit.ResourceTransmission,
		ResourceID:    id,
		IPAddress:     c.ClientIP(),
		UserAgent:     c.Request.UserAgent(),
	})

	c.JSON(http.StatusOK, api.SendResponse{
		Success:   true,
		Port:      result.Port,
		BytesSent: result.BytesSent,
		DeviceID:  result.DeviceID,
		ConfigID:  id,
	})
}
