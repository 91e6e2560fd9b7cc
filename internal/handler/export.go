package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wristcare/alertband-backend/internal/audit"
	"github.com/wristcare/alertband-backend/internal/service"
	"go.uber.org/zap"
)

// ExportHandler implements the configuration download endpoints
type ExportHandler struct {
	export *service.ExportService
	audit  *audit.Logger
	logger *zap.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(export *service.ExportService, auditLogger *audit.Logger, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{
		export: export,
		audit:  auditLogger,
		logger: logger,
	}
}

// Text downloads the raw device payload as a text file
func (h *ExportHandler) Text(c *gin.Context) {
	h.serve(c, h.export.Text)
}

// PDF downloads a printable schedule summary
func (h *ExportHandler) PDF(c *gin.Context) {
	h.serve(c, h.export.PDF)
}

func (h *ExportHandler) serve(c *gin.Context, produce func(ctx context.Context, id string) (*service.Artifact, error)) {
	id := c.Param("id")

	artifact, err := produce(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("failed to export configuration", zap.Error(err), zap.String("configuration_id", id))
		respondServiceError(c, err)
		return
	}

	h.audit.Log(c.Request.Context(), audit.Entry{
		OperationType: audit.OperationExport,
		ResourceType:  audit.ResourceConfiguration,
		ResourceID:    id,
		IPAddress:     c.ClientIP(),
		UserAgent:     c.Request.UserAgent(),
	})

	c.Header("Content-Disposition", `attachment; filename="`+artifact.Filename+`"`)
	c.Data(http.StatusOK, artifact.ContentType, artifact.Data)
}
