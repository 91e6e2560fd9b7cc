package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wristcare/alertband-backend/internal/payload"
	"github.com/wristcare/alertband-backend/internal/repository"
	"github.com/wristcare/alertband-backend/pkg/model"
	"go.uber.org/zap"
)

// ConfigurationService handles configuration validation, encoding and persistence
type ConfigurationService struct {
	repo   *repository.ConfigurationRepository
	logger *zap.Logger
}

// NewConfigurationService creates a new ConfigurationService
func NewConfigurationService(repo *repository.ConfigurationRepository, logger *zap.Logger) *ConfigurationService {
	return &ConfigurationService{
		repo:   repo,
		logger: logger,
	}
}

// Encode validates a configuration and returns its serialized device payload
// without persisting anything.
func (s *ConfigurationService) Encode(cfg *model.DeviceConfiguration) (string, error) {
	if err := ValidateConfiguration(cfg); err != nil {
		return "", err
	}

	text, err := payload.Encode(cfg)
	if err != nil {
		// Validation already passed, so this is an internal fault.
		s.logger.Error("encoding failed after validation",
			zap.Error(err),
			zap.Int("device_id", cfg.DeviceID),
		)
		return "", fmt.Errorf("failed to encode configuration: %w", err)
	}

	return text, nil
}

// Create validates and encodes a configuration, then persists it. The saved
// instance carries the serialized payload and is never mutated afterwards.
func (s *ConfigurationService) Create(ctx context.Context, cfg *model.DeviceConfiguration) (*model.SavedConfiguration, error) {
	text, err := s.Encode(cfg)
	if err != nil {
		return nil, err
	}

	saved := &model.SavedConfiguration{
		ID:                  uuid.New().String(),
		CreatedAt:           time.Now(),
		DeviceConfiguration: *cfg,
		Payload:             text,
	}

	if err := s.repo.Create(ctx, saved); err != nil {
		s.logger.Error("failed to save configuration",
			zap.Error(err),
			zap.Int("device_id", cfg.DeviceID),
		)
		return nil, fmt.Errorf("failed to save configuration: %w", err)
	}

	s.logger.Info("configuration saved",
		zap.String("configuration_id", saved.ID),
		zap.Int("device_id", saved.DeviceID),
		zap.Int("expanded_alerts", saved.ExpandedCount()),
	)

	return saved, nil
}

// List retrieves all saved configurations, most recent first
func (s *ConfigurationService) List(ctx context.Context) ([]model.SavedConfiguration, error) {
	configs, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("failed to list configurations", zap.Error(err))
		return nil, fmt.Errorf("failed to list configurations: %w", err)
	}

	s.logger.Info("configurations listed", zap.Int("count", len(configs)))

	return configs, nil
}

// Get retrieves a saved configuration by ID
func (s *ConfigurationService) Get(ctx context.Context, id string) (*model.SavedConfiguration, error) {
	if id == "" {
		return nil, invalid("id", "configuration id is required")
	}

	return s.repo.FindByID(ctx, id)
}

// Delete removes a saved configuration
func (s *ConfigurationService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return invalid("id", "configuration id is required")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("configuration deleted", zap.String("configuration_id", id))

	return nil
}

// Clear removes every saved configuration
func (s *ConfigurationService) Clear(ctx context.Context) error {
	if err := s.repo.DeleteAll(ctx); err != nil {
		return err
	}

	s.logger.Info("all configurations cleared")

	return nil
}
