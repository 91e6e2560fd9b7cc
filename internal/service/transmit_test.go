package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wristcare/alertband-backend/internal/repository"
	"github.com/wristcare/alertband-backend/internal/serialport"
	"github.com/wristcare/alertband-backend/pkg/model"
	"go.uber.org/zap"
)

// stubConfigurationSource serves saved configurations from a map.
type stubConfigurationSource struct {
	configs map[string]*model.SavedConfiguration
}

func (s *stubConfigurationSource) FindByID(_ context.Context, id string) (*model.SavedConfiguration, error) {
	cfg, ok := s.configs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", repository.ErrNotFound, id)
	}
	return cfg, nil
}

func savedConfiguration(id string) *model.SavedConfiguration {
	return &model.SavedConfiguration{
		ID: id,
		DeviceConfiguration: model.DeviceConfiguration{
			Contact: model.ContactProfile{
				Name:  "John Doe",
				Phone: "555-0000",
				Email: "john@example.com",
			},
			MedicalInfo: "None",
			DeviceID:    7,
		},
		Payload: "1\nm,0,09,00,Take pill\nJohn Doe,555-0000,john@example.com\nNone\n7",
	}
}

func TestSend_WritesPayloadToPort(t *testing.T) {
	source := &stubConfigurationSource{
		configs: map[string]*model.SavedConfiguration{"cfg-1": savedConfiguration("cfg-1")},
	}
	transport := serialport.NewMockTransport(zap.NewNop(), "/dev/ttyUSB0")
	service := NewTransmitService(source, transport, "", 9600, zap.NewNop())

	result, err := service.Send(context.Background(), "cfg-1", "/dev/ttyUSB0", 115200)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyUSB0", result.Port)
	assert.Equal(t, 7, result.DeviceID)
	assert.Equal(t, len(savedConfiguration("cfg-1").Payload), result.BytesSent)

	require.Len(t, transport.Written["/dev/ttyUSB0"], 1)
	assert.Equal(t, []byte(savedConfiguration("cfg-1").Payload), transport.Written["/dev/ttyUSB0"][0])
}

func TestSend_FallsBackToDefaultPortAndBaud(t *testing.T) {
	source := &stubConfigurationSource{
		configs: map[string]*model.SavedConfiguration{"cfg-1": savedConfiguration("cfg-1")},
	}
	transport := serialport.NewMockTransport(zap.NewNop(), "/dev/ttyACM0")
	service := NewTransmitService(source, transport, "/dev/ttyACM0", 9600, zap.NewNop())

	result, err := service.Send(context.Background(), "cfg-1", "", 0)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyACM0", result.Port)
	require.Len(t, transport.Written["/dev/ttyACM0"], 1)
}

func TestSend_NoPortConfigured(t *testing.T) {
	source := &stubConfigurationSource{
		configs: map[string]*model.SavedConfiguration{"cfg-1": savedConfiguration("cfg-1")},
	}
	transport := serialport.NewMockTransport(zap.NewNop())
	service := NewTransmitService(source, transport, "", 9600, zap.NewNop())

	_, err := service.Send(context.Background(), "cfg-1", "", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no serial port specified")
	assert.Empty(t, transport.Written)
}

func TestSend_UnknownConfiguration(t *testing.T) {
	source := &stubConfigurationSource{configs: map[string]*model.SavedConfiguration{}}
	transport := serialport.NewMockTransport(zap.NewNop(), "/dev/ttyUSB0")
	service := NewTransmitService(source, transport, "/dev/ttyUSB0", 9600, zap.NewNop())

	_, err := service.Send(context.Background(), "missing", "", 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, repository.ErrNotFound))
	assert.Empty(t, transport.Written)
}

func TestSend_TransportFailureLeavesConfigurationUsable(t *testing.T) {
	source := &stubConfigurationSource{
		configs: map[string]*model.SavedConfiguration{"cfg-1": savedConfiguration("cfg-1")},
	}
	transport := serialport.NewMockTransport(zap.NewNop(), "/dev/ttyUSB0")
	transport.FailSend = errors.New("device unplugged")
	service := NewTransmitService(source, transport, "", 9600, zap.NewNop())

	_, err := service.Send(context.Background(), "cfg-1", "/dev/ttyUSB0", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transmission failed")

	// A failed write changes nothing; the next attempt goes through.
	transport.FailSend = nil
	result, err := service.Send(context.Background(), "cfg-1", "/dev/ttyUSB0", 0)
	require.NoError(t, err)
	assert.Equal(t, 7, result.DeviceID)
}

func TestPorts_ListsTransportPorts(t *testing.T) {
	transport := serialport.NewMockTransport(zap.NewNop(), "/dev/ttyUSB0", "/dev/ttyACM0")
	service := NewTransmitService(nil, transport, "", 9600, zap.NewNop())

	ports, err := service.Ports()
	require.NoError(t, err)
	assert.Equal(t, []string{"/dev/ttyUSB0", "/dev/ttyACM0"}, ports)
}
