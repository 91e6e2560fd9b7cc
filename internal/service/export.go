package service

import (
	"context"
	"fmt"

	"github.com/wristcare/alertband-backend/internal/pdf"
	"go.uber.org/zap"
)

// Artifact is a downloadable export of a saved configuration.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService produces downloadable artifacts for saved configurations
type ExportService struct {
	source  ConfigurationSource
	summary *pdf.SummaryGenerator
	logger  *zap.Logger
}

// NewExportService creates a new ExportService
func NewExportService(source ConfigurationSource, summary *pdf.SummaryGenerator, logger *zap.Logger) *ExportService {
	return &ExportService{
		source:  source,
		summary: summary,
		logger:  logger,
	}
}

// Text returns the device payload as a text artifact named from the device id.
// The content is byte-for-byte the payload the encoder produced.
func (s *ExportService) Text(ctx context.Context, configID string) (*Artifact, error) {
	cfg, err := s.source.FindByID(ctx, configID)
	if err != nil {
		return nil, err
	}

	artifact := &Artifact{
		Filename:    fmt.Sprintf("alertband-device-%d.txt", cfg.DeviceID),
		ContentType: "text/plain; charset=utf-8",
		Data:        []byte(cfg.Payload),
	}

	s.logger.Info("text artifact exported",
		zap.String("configuration_id", configID),
		zap.String("filename", artifact.Filename),
		zap.Int("size_bytes", len(artifact.Data)),
	)

	return artifact, nil
}

// PDF returns a printable schedule summary for the configuration.
func (s *ExportService) PDF(ctx context.Context, configID string) (*Artifact, error) {
	cfg, err := s.source.FindByID(ctx, configID)
	if err != nil {
		return nil, err
	}

	data, err := s.summary.Generate(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to generate summary: %w", err)
	}

	return &Artifact{
		Filename:    fmt.Sprintf("alertband-device-%d-summary.pdf", cfg.DeviceID),
		ContentType: "application/pdf",
		Data:        data,
	}, nil
}
