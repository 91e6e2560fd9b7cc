package serialport

import (
	"context"
	"fmt"

	"go.bug.st/serial"
	"go.uber.org/zap"
)

// Client is the real serial transport backed by the host's UART devices.
type Client struct {
	logger *zap.Logger
}

// NewClient creates a new serial transport client
func NewClient(logger *zap.Logger) *Client {
	return &Client{
		logger: logger,
	}
}

// Ports lists the serial ports currently present on the host
func (c *Client) Ports() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		c.logger.Error("failed to enumerate serial ports", zap.Error(err))
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}

	return ports, nil
}

// Send writes the payload to the named port in one shot. The port is opened
// 8N1 at the given baud rate, which is what the wearable's UART expects.
func (c *Client) Send(ctx context.Context, portName string, baudRate int, payload []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		c.logger.Error("failed to open serial port",
			zap.Error(err),
			zap.String("port", portName),
			zap.Int("baud_rate", baudRate),
		)
		return 0, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}
	defer port.Close()

	n, err := port.Write(payload)
	if err != nil {
		c.logger.Error("serial write failed",
			zap.Error(err),
			zap.String("port", portName),
			zap.Int("bytes_written", n),
		)
		return n, fmt.Errorf("serial write failed on %s: %w", portName, err)
	}

	if err := port.Drain(); err != nil {
		return n, fmt.Errorf("serial drain failed on %s: %w", portName, err)
	}

	c.logger.Info("payload sent over serial",
		zap.String("port", portName),
		zap.Int("baud_rate", baudRate),
		zap.Int("bytes_sent", n),
	)

	return n, nil
}
