// send-config pushes an exported configuration payload file straight to the
// wearable's serial port, without going through the server. Useful when
// provisioning devices on a bench.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/wristcare/alertband-backend/internal/payload"
	"github.com/wristcare/alertband-backend/internal/serialport"
)

func main() {
	file := flag.String("file", "", "path to an exported payload file")
	port := flag.String("port", os.Getenv("SERIAL_PORT"), "serial port name (defaults to SERIAL_PORT)")
	baud := flag.Int("baud", 9600, "baud rate")
	list := flag.Bool("list", false, "list available serial ports and exit")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	transport := serialport.NewClient(logger)

	if *list {
		ports, err := transport.Ports()
		if err != nil {
			logger.Fatal("Failed to list serial ports", zap.Error(err))
		}
		if len(ports) == 0 {
			fmt.Println("No serial ports found")
			return
		}
		fmt.Println(strings.Join(ports, "\n"))
		return
	}

	if *file == "" {
		logger.Fatal("Missing -file argument")
	}
	if *port == "" {
		logger.Fatal("Missing serial port. Pass -port or set SERIAL_PORT")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		logger.Fatal("Failed to read payload file", zap.Error(err))
	}

	// Sanity-check the file before pushing it at the device.
	doc, err := payload.Parse(string(data))
	if err != nil {
		logger.Fatal("File is not a valid device payload", zap.Error(err))
	}

	logger.Info("Sending payload",
		zap.String("file", *file),
		zap.String("port", *port),
		zap.Int("device_id", doc.DeviceID),
		zap.Int("alerts", len(doc.Records)),
	)

	n, err := transport.Send(context.Background(), *port, *baud, data)
	if err != nil {
		logger.Fatal("Transmission failed", zap.Error(err))
	}

	logger.Info("Payload sent", zap.Int("bytes_sent", n))
}
