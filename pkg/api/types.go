// Package api defines the request and response types of the configurator
// HTTP surface. Field names on the encode boundary follow the wire contract
// the device companion app already speaks.
package api

import "time"

// AlertInput is one schedule row as submitted by the form. Hour, minute and
// the selected day codes arrive as strings; the service validates and
// normalizes them before encoding.
type AlertInput struct {
	Message      string   `json:"message"`
	Type         string   `json:"type"` // "Reminder" or "Medicine"
	IsEveryday   bool     `json:"isEveryday"`
	SelectedDays []string `json:"selectedDays"` // digit strings "0".."6"
	Hour         string   `json:"hour"`
	Minute       string   `json:"minute"`
}

// EncodeRequest carries a full device configuration for validation and
// encoding. The same body is accepted by the create endpoint, which persists
// the configuration on successful encode.
type EncodeRequest struct {
	Name        string       `json:"name"`
	Phone       string       `json:"phone"`
	Email       string       `json:"email"`
	MedicalInfo string       `json:"medicalInfo"`
	DeviceID    int          `json:"deviceId"`
	Alerts      []AlertInput `json:"alerts"`
}

// EncodeResponse is returned on successful encoding.
type EncodeResponse struct {
	Success         bool   `json:"success"`
	FormattedOutput string `json:"formattedOutput"`
}

// AlertResponse is one normalized schedule row of a saved configuration.
type AlertResponse struct {
	Message      string   `json:"message"`
	Type         string   `json:"type"`
	IsEveryday   bool     `json:"isEveryday"`
	SelectedDays []string `json:"selectedDays"`
	Hour         string   `json:"hour"`
	Minute       string   `json:"minute"`
}

// ConfigurationResponse is the persistence record of a saved configuration.
type ConfigurationResponse struct {
	ID              string          `json:"id"`
	CreatedAt       time.Time       `json:"createdAt"`
	Name            string          `json:"name"`
	Phone           string          `json:"phone"`
	Email           string          `json:"email"`
	MedicalInfo     string          `json:"medicalInfo"`
	DeviceID        int             `json:"deviceId"`
	Alerts          []AlertResponse `json:"alerts"`
	FormattedOutput string          `json:"formattedOutput"`
}

// SendRequest selects the serial port for a transmission. Both fields are
// optional; the server falls back to its configured defaults.
type SendRequest struct {
	Port     string `json:"port"`
	BaudRate int    `json:"baudRate"`
}

// SendResponse reports the outcome of a best-effort transmission.
type SendResponse struct {
	Success   bool   `json:"success"`
	Port      string `json:"port"`
	BytesSent int    `json:"bytesSent"`
	DeviceID  int    `json:"deviceId"`
	ConfigID  string `json:"configId"`
}

// PortListResponse lists serial ports the host currently exposes.
type PortListResponse struct {
	Ports []string `json:"ports"`
}

// ErrorResponse is the error envelope used by every endpoint.
type ErrorResponse struct {
	Code    string  `json:"code"`
	Message string  `json:"message"`
	Details *string `json:"details,omitempty"`
}
