package service

import (
	"context"
	"fmt"

	"github.com/wristcare/alertband-backend/internal/serialport"
	"github.com/wristcare/alertband-backend/pkg/model"
	"go.uber.org/zap"
)

// ConfigurationSource is the read side of the configuration store needed by
// transmission and export.
type ConfigurationSource interface {
	FindByID(ctx context.Context, id string) (*model.SavedConfiguration, error)
}

// TransmitResult describes a completed best-effort transmission.
type TransmitResult struct {
	Port      string
	BytesSent int
	DeviceID  int
}

// TransmitService pushes saved configuration payloads over the serial link
type TransmitService struct {
	source      ConfigurationSource
	transport   serialport.Transport
	defaultPort string
	defaultBaud int
	logger      *zap.Logger
}

// NewTransmitService creates a new TransmitService
func NewTransmitService(source ConfigurationSource, transport serialport.Transport, defaultPort string, defaultBaud int, logger *zap.Logger) *TransmitService {
	return &TransmitService{
		source:      source,
		transport:   transport,
		defaultPort: defaultPort,
		defaultBaud: defaultBaud,
		logger:      logger,
	}
}

// Ports lists the serial ports currently available on the host
func (s *TransmitService) Ports() ([]string, error) {
	return s.transport.Ports()
}

// Send writes a saved configuration's payload to the serial port in a single
// best-effort write. There is no acknowledgement wait and no retry; the
// configuration stays usable after a failure and the caller may simply try
// again.
func (s *TransmitService) Send(ctx context.Context, configID, port string, baudRate int) (*TransmitResult, error) {
	cfg, err := s.source.FindByID(ctx, configID)
	if err != nil {
		return nil, err
	}

	if port == "" {
		port = s.defaultPort
	}
	if port == "" {
		return nil, fmt.Errorf("no serial port specified and no default configured")
	}
	if baudRate <= 0 {
		baudRate = s.defaultBaud
	}

	n, err := s.transport.Send(ctx, port, baudRate, []byte(cfg.Payload))
	if err != nil {
		s.logger.Error("transmission failed",
			zap.Error(err),
			zap.String("configuration_id", configID),
			zap.String("port", port),
		)
		return nil, fmt.Errorf("transmission failed: %w", err)
	}

	s.logger.Info("configuration transmitted",
		zap.String("configuration_id", configID),
		zap.String("port", port),
		zap.Int("baud_rate", baudRate),
		zap.Int("bytes_sent", n),
		zap.Int("device_id", cfg.DeviceID),
	)

	return &TransmitResult{
		Port:      port,
		BytesSent: n,
		DeviceID:  cfg.DeviceID,
	}, nil
}
