package serialport

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// MockTransport is an in-memory implementation of Transport for testing.
// Writes are recorded per port name and can be inspected afterwards.
type MockTransport struct {
	PortNames []string
	Written   map[string][][]byte
	FailSend  error // when set, Send returns this error
	mu        sync.Mutex
	logger    *zap.Logger
}

// NewMockTransport creates a new mock serial transport
func NewMockTransport(logger *zap.Logger, portNames ...string) *MockTransport {
	return &MockTransport{
		PortNames: portNames,
		Written:   make(map[string][][]byte),
		logger:    logger,
	}
}

// Ports lists the mock's configured port names
func (m *MockTransport) Ports() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.PortNames...), nil
}

// Send records the payload against the port name
func (m *MockTransport) Send(ctx context.Context, portName string, baudRate int, payload []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailSend != nil {
		return 0, m.FailSend
	}

	known := false
	for _, name := range m.PortNames {
		if name == portName {
			known = true
			break
		}
	}
	if !known {
		return 0, fmt.Errorf("no such port: %s", portName)
	}

	data := append([]byte(nil), payload...)
	m.Written[portName] = append(m.Written[portName], data)

	if m.logger != nil {
		m.logger.Info("mock: payload sent",
			zap.String("port", portName),
			zap.Int("baud_rate", baudRate),
			zap.Int("bytes_sent", len(data)),
		)
	}

	return len(data), nil
}

// Ensure MockTransport implements Transport interface
var _ Transport = (*MockTransport)(nil)
