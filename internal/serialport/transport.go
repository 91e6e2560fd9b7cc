// Package serialport wraps the UART link to the wearable. A transmission is
// a single best-effort write: open the port, write the payload, close. There
// is no acknowledgement protocol, no retry and no backpressure handling; a
// busy or disconnected device simply surfaces as an error.
package serialport

import "context"

// Transport defines the interface for the device serial link
// This interface allows for easier testing with mock implementations
type Transport interface {
	// Ports lists the serial ports currently present on the host.
	Ports() ([]string, error)

	// Send opens the named port at the given baud rate, writes the payload
	// and closes the port. It returns the number of bytes written.
	Send(ctx context.Context, portName string, baudRate int, payload []byte) (int, error)
}

// Ensure Client implements Transport interface
var _ Transport = (*Client)(nil)
