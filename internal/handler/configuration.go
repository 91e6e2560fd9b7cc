package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wristcare/alertband-backend/internal/audit"
	"github.com/wristcare/alertband-backend/internal/service"
	"github.com/wristcare/alertband-backend/pkg/api"
	"go.uber.org/zap"
)

// ConfigurationHandler implements the configuration API endpoints
type ConfigurationHandler struct {
	service *service.ConfigurationService
	audit   *audit.Logger
	logger  *zap.Logger
}

// NewConfigurationHandler creates a new ConfigurationHandler
func NewConfigurationHandler(service *service.ConfigurationService, auditLogger *audit.Logger, logger *zap.Logger) *ConfigurationHandler {
	return &ConfigurationHandler{
		service: service,
		audit:   auditLogger,
		logger:  logger,
	}
}

// Encode validates a configuration and returns its device payload without
// persisting anything.
func (h *ConfigurationHandler) Encode(c *gin.Context) {
	var req api.EncodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Invalid request body",
			Details: stringPtr(err.Error()),
		})
		return
	}

	cfg, err := requestToConfiguration(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	text, err := h.service.Encode(cfg)
	if err != nil {
		h.logger.Error("failed to encode configuration", zap.Error(err))
		respondServiceError(c, err)
		return
	}

	h.logger.Info("configuration encoded",
		zap.Int("device_id", cfg.DeviceID),
		zap.Int("expanded_alerts", cfg.ExpandedCount()),
	)

	c.JSON(http.StatusOK, api.EncodeResponse{
		Success:         true,
		FormattedOutput: text,
	})
}

// Create validates, encodes and persists a configuration
func (h *ConfigurationHandler) Create(c *gin.Context) {
	var req api.EncodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Invalid request body",
			Details: stringPtr(err.Error()),
		})
		return
	}

	cfg, err := requestToConfiguration(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	saved, err := h.service.Create(c.Request.Context(), cfg)
	if err != nil {
		h.logger.Error("failed to create configuration", zap.Error(err))
		respondServiceError(c, err)
		return
	}

	h.audit.Log(c.Request.Context(), audit.Entry{
		OperationType: audit.OperationCreate,
		ResourceType:  audit.ResourceConfiguration,
		ResourceID:    saved.ID,
		IPAddress:     c.ClientIP(),
		UserAgent:     c.Request.UserAgent(),
	})

	c.JSON(http.StatusCreated, configurationToResponse(saved))
}

// List lists all saved configurations, most recent first
func (h *ConfigurationHandler) List(c *gin.Context) {
	configs, err := h.service.List(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list configurations", zap.Error(err))
		respondServiceError(c, err)
		return
	}

	response := make([]api.ConfigurationResponse, 0, len(configs))
	for i := range configs {
		response = append(response, configurationToResponse(&configs[i]))
	}

	c.JSON(http.StatusOK, response)
}

// Get retrieves one saved configuration
func (h *ConfigurationHandler) Get(c *gin.Context) {
	id := c.Param("id")

	cfg, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("failed to get configuration", zap.Error(err), zap.String("configuration_id", id))
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, configurationToResponse(cfg))
}

// Delete removes one saved configuration
func (h *ConfigurationHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("failed to delete configuration", zap.Error(err), zap.String("configuration_id", id))
		respondServiceError(c, err)
		return
	}

	h.audit.Log(c.Request.Context(), audit.Entry{
		OperationType: audit.OperationDelete,
		ResourceType:  audit.ResourceConfiguration,
		ResourceID:    id,
		IPAddress:     c.ClientIP(),
		UserAgent:     c.Request.UserAgent(),
	})

	c.Status(http.StatusNoContent)
}

// Clear removes every saved configuration
func (h *ConfigurationHandler) Clear(c *gin.Context) {
	if err := h.service.Clear(c.Request.Context()); err != nil {
		h.logger.Error("failed to clear configurations", zap.Error(err))
		respondServiceError(c, err)
		return
	}

	h.audit.Log(c.Request.Context(), audit.Entry{
		OperationType: audit.OperationClear,
		ResourceType:  audit.ResourceConfiguration,
		ResourceID:    "*",
		IPAddress:     c.ClientIP(),
		UserAgent:     c.Request.UserAgent(),
	})

	c.Status(http.StatusNoContent)
}
