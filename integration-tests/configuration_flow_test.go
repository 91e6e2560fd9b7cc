package integration_tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/wristcare/alertband-backend/internal/audit"
	"github.com/wristcare/alertband-backend/internal/handler"
	"github.com/wristcare/alertband-backend/internal/pdf"
	"github.com/wristcare/alertband-backend/internal/repository"
	"github.com/wristcare/alertband-backend/internal/serialport"
	"github.com/wristcare/alertband-backend/internal/service"
	"github.com/wristcare/alertband-backend/pkg/api"
	"go.uber.org/zap"
)

// setupTestDatabase starts a PostgreSQL testcontainer with the schema applied
func setupTestDatabase(t *testing.T, ctx context.Context) (*pgxpool.Pool, func()) {
	postgresContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("alertband_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connString, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connString)
	require.NoError(t, err)

	migrations := []string{
		`CREATE TABLE IF NOT EXISTS configurations (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			phone VARCHAR(100) NOT NULL,
			email VARCHAR(255) NOT NULL,
			medical_info TEXT NOT NULL,
			device_id INTEGER NOT NULL CHECK (device_id >= 1 AND device_id <= 100),
			alerts JSONB NOT NULL,
			payload TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_configurations_created_at ON configurations (created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id BIGSERIAL PRIMARY KEY,
			operation_type VARCHAR(50) NOT NULL,
			resource_type VARCHAR(100) NOT NULL,
			resource_id VARCHAR(100) NOT NULL,
			timestamp TIMESTAMP NOT NULL DEFAULT NOW(),
			ip_address VARCHAR(100),
			user_agent VARCHAR(500)
		)`,
	}
	for _, migration := range migrations {
		_, err := pool.Exec(ctx, migration)
		require.NoError(t, err, "migration failed: %s", migration)
	}

	cleanup := func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return pool, cleanup
}

// testApp bundles the wired router with the pieces tests need to inspect
type testApp struct {
	router    *gin.Engine
	transport *serialport.MockTransport
	audit     *audit.Logger
}

// setupTestApp wires the full HTTP surface against the test database and a
// mock serial transport
func setupTestApp(t *testing.T, pool *pgxpool.Pool) *testApp {
	logger := zap.NewNop()

	configRepo := repository.NewConfigurationRepository(pool, nil, logger)
	transport := serialport.NewMockTransport(logger, "/dev/ttyUSB0")

	configService := service.NewConfigurationService(configRepo, logger)
	transmitService := service.NewTransmitService(configRepo, transport, "/dev/ttyUSB0", 9600, logger)
	exportService := service.NewExportService(configRepo, pdf.NewSummaryGenerator(logger), logger)

	auditLogger := audit.NewLogger(pool, logger)

	configHandler := handler.NewConfigurationHandler(configService, auditLogger, logger)
	deviceHandler := handler.NewDeviceHandler(transmitService, auditLogger, logger)
	exportHandler := handler.NewExportHandler(exportService, auditLogger, logger)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	v1 := router.Group("/api/v1")
	v1.POST("/configurations/encode", configHandler.Encode)
	v1.POST("/configurations", configHandler.Create)
	v1.GET("/configurations", configHandler.List)
	v1.GET("/configurations/:id", configHandler.Get)
	v1.DELETE("/configurations/:id", configHandler.Delete)
	v1.DELETE("/configurations", configHandler.Clear)
	v1.GET("/configurations/:id/export", exportHandler.Text)
	v1.GET("/configurations/:id/export/pdf", exportHandler.PDF)
	v1.POST("/configurations/:id/send", deviceHandler.Send)
	v1.GET("/ports", deviceHandler.ListPorts)

	return &testApp{
		router:    router,
		transport: transport,
		audit:     auditLogger,
	}
}

func encodeRequestBody() api.EncodeRequest {
	return api.EncodeRequest{
		Name:        "John Doe",
		Phone:       "555-123-4567",
		Email:       "john@example.com",
		MedicalInfo: "Type 2 diabetes",
		DeviceID:    5,
		Alerts: []api.AlertInput{
			{
				Message:    "Take pill",
				Type:       "Medicine",
				IsEveryday: true,
				Hour:       "9",
				Minute:     "0",
			},
			{
				Message:      "Check blood sugar",
				Type:         "Reminder",
				IsEveryday:   false,
				SelectedDays: []string{"1", "3"},
				Hour:         "8",
				Minute:       "30",
			},
		},
	}
}

// TestConfigurationFlowIntegration exercises the full lifecycle: encode,
// save, list, fetch, export, transmit, delete.
func TestConfigurationFlowIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	pool, cleanup := setupTestDatabase(t, ctx)
	defer cleanup()

	app := setupTestApp(t, pool)

	t.Run("Encode without persisting", func(t *testing.T) {
		resp := doJSON(t, app.router, http.MethodPost, "/api/v1/configurations/encode", encodeRequestBody())
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

		var encoded api.EncodeResponse
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &encoded))
		assert.True(t, encoded.Success)

		lines := strings.Split(encoded.FormattedOutput, "\n")
		assert.Equal(t, "9", lines[0], "7 everyday records plus 2 day-selected records")
		assert.Equal(t, "5", lines[len(lines)-1])

		// Nothing was saved
		configs := listConfigurations(t, app.router)
		assert.Empty(t, configs)
	})

	var savedID string

	t.Run("Create configuration", func(t *testing.T) {
		resp := doJSON(t, app.router, http.MethodPost, "/api/v1/configurations", encodeRequestBody())
		require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

		var created api.ConfigurationResponse
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))

		require.NotEmpty(t, created.ID)
		savedID = created.ID

		assert.Equal(t, "John Doe", created.Name)
		assert.Equal(t, 5, created.DeviceID)
		assert.NotEmpty(t, created.FormattedOutput)
		require.Len(t, created.Alerts, 2)
		assert.Equal(t, "09", created.Alerts[0].Hour)
		assert.Equal(t, []string{"1", "3"}, created.Alerts[1].SelectedDays)
	})

	t.Run("List and fetch", func(t *testing.T) {
		configs := listConfigurations(t, app.router)
		require.Len(t, configs, 1)
		assert.Equal(t, savedID, configs[0].ID)

		resp := doJSON(t, app.router, http.MethodGet, "/api/v1/configurations/"+savedID, nil)
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

		var fetched api.ConfigurationResponse
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &fetched))
		assert.Equal(t, "Type 2 diabetes", fetched.MedicalInfo)
		assert.Equal(t, configs[0].FormattedOutput, fetched.FormattedOutput)
	})

	t.Run("Fetch unknown id", func(t *testing.T) {
		resp := doJSON(t, app.router, http.MethodGet, "/api/v1/configurations/00000000-0000-0000-0000-000000000000", nil)
		require.Equal(t, http.StatusNotFound, resp.Code)

		var errorResp api.ErrorResponse
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errorResp))
		assert.Equal(t, "NOT_FOUND", errorResp.Code)
	})

	t.Run("Export text artifact", func(t *testing.T) {
		resp := doJSON(t, app.router, http.MethodGet, "/api/v1/configurations/"+savedID+"/export", nil)
		require.Equal(t, http.StatusOK, resp.Code)

		assert.Equal(t, "text/plain; charset=utf-8", resp.Header().Get("Content-Type"))
		assert.Contains(t, resp.Header().Get("Content-Disposition"), "alertband-device-5.txt")

		lines := strings.Split(resp.Body.String(), "\n")
		assert.Equal(t, "9", lines[0])
		assert.Equal(t, "John Doe,555-123-4567,john@example.com", lines[10])
		assert.Equal(t, "5", lines[len(lines)-1])
	})

	t.Run("Export PDF summary", func(t *testing.T) {
		resp := doJSON(t, app.router, http.MethodGet, "/api/v1/configurations/"+savedID+"/export/pdf", nil)
		require.Equal(t, http.StatusOK, resp.Code)

		assert.Equal(t, "application/pdf", resp.Header().Get("Content-Type"))
		assert.Contains(t, resp.Header().Get("Content-Disposition"), "alertband-device-5-summary.pdf")
		require.Greater(t, resp.Body.Len(), 4)
		assert.Equal(t, "%PDF", resp.Body.String()[:4])
	})

	t.Run("List serial ports", func(t *testing.T) {
		resp := doJSON(t, app.router, http.MethodGet, "/api/v1/ports", nil)
		require.Equal(t, http.StatusOK, resp.Code)

		var ports api.PortListResponse
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &ports))
		assert.Equal(t, []string{"/dev/ttyUSB0"}, ports.Ports)
	})

	t.Run("Send over serial", func(t *testing.T) {
		resp := doJSON(t, app.router, http.MethodPost, "/api/v1/configurations/"+savedID+"/send", api.SendRequest{Port: "/dev/ttyUSB0"})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

		var sent api.SendResponse
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &sent))
		assert.True(t, sent.Success)
		assert.Equal(t, "/dev/ttyUSB0", sent.Port)
		assert.Equal(t, savedID, sent.ConfigID)
		assert.Equal(t, 5, sent.DeviceID)
		assert.Greater(t, sent.BytesSent, 0)

		// The mock transport saw exactly the stored payload
		require.Len(t, app.transport.Written["/dev/ttyUSB0"], 1)
		written := string(app.transport.Written["/dev/ttyUSB0"][0])
		assert.Equal(t, "9", strings.Split(written, "\n")[0])
		assert.Equal(t, sent.BytesSent, len(written))
	})

	t.Run("Send without body uses defaults", func(t *testing.T) {
		resp := doJSON(t, app.router, http.MethodPost, "/api/v1/configurations/"+savedID+"/send", nil)
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

		var sent api.SendResponse
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &sent))
		assert.Equal(t, "/dev/ttyUSB0", sent.Port)
	})

	t.Run("Send to unknown port", func(t *testing.T) {
		resp := doJSON(t, app.router, http.MethodPost, "/api/v1/configurations/"+savedID+"/send", api.SendRequest{Port: "/dev/ttyS9"})
		require.Equal(t, http.StatusBadGateway, resp.Code)

		var errorResp api.ErrorResponse
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errorResp))
		assert.Equal(t, "TRANSPORT_ERROR", errorResp.Code)

		// A failed transmission does not touch the saved configuration
		configs := listConfigurations(t, app.router)
		assert.Len(t, configs, 1)
	})

	t.Run("Audit trail recorded", func(t *testing.T) {
		entries, err := app.audit.Recent(ctx, 10)
		require.NoError(t, err)
		require.NotEmpty(t, entries)

		operations := make(map[audit.OperationType]bool)
		for _, entry := range entries {
			operations[entry.OperationType] = true
		}
		assert.True(t, operations[audit.OperationCreate], "create should be audited")
		assert.True(t, operations[audit.OperationSend], "send should be audited")
		assert.True(t, operations[audit.OperationExport], "export should be audited")
	})

	t.Run("Delete configuration", func(t *testing.T) {
		resp := doJSON(t, app.router, http.MethodDelete, "/api/v1/configurations/"+savedID, nil)
		require.Equal(t, http.StatusNoContent, resp.Code)

		resp = doJSON(t, app.router, http.MethodGet, "/api/v1/configurations/"+savedID, nil)
		assert.Equal(t, http.StatusNotFound, resp.Code)

		resp = doJSON(t, app.router, http.MethodDelete, "/api/v1/configurations/"+savedID, nil)
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("Clear configurations", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			resp := doJSON(t, app.router, http.MethodPost, "/api/v1/configurations", encodeRequestBody())
			require.Equal(t, http.StatusCreated, resp.Code)
		}
		require.Len(t, listConfigurations(t, app.router), 3)

		resp := doJSON(t, app.router, http.MethodDelete, "/api/v1/configurations", nil)
		require.Equal(t, http.StatusNoContent, resp.Code)

		assert.Empty(t, listConfigurations(t, app.router))
	})
}

// TestConfigurationValidationIntegration verifies rejected payloads never
// reach the store.
func TestConfigurationValidationIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	pool, cleanup := setupTestDatabase(t, ctx)
	defer cleanup()

	app := setupTestApp(t, pool)

	mutations := []struct {
		name   string
		mutate func(req *api.EncodeRequest)
	}{
		{
			name:   "device id out of range",
			mutate: func(req *api.EncodeRequest) { req.DeviceID = 0 },
		},
		{
			name:   "missing contact name",
			mutate: func(req *api.EncodeRequest) { req.Name = "" },
		},
		{
			name:   "no alerts",
			mutate: func(req *api.EncodeRequest) { req.Alerts = nil },
		},
		{
			name: "alert without days",
			mutate: func(req *api.EncodeRequest) {
				req.Alerts[1].SelectedDays = nil
			},
		},
		{
			name: "comma in message",
			mutate: func(req *api.EncodeRequest) {
				req.Alerts[0].Message = "pill, with water"
			},
		},
	}

	for _, tt := range mutations {
		t.Run(tt.name, func(t *testing.T) {
			req := encodeRequestBody()
			tt.mutate(&req)

			resp := doJSON(t, app.router, http.MethodPost, "/api/v1/configurations", req)
			require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())

			var errorResp api.ErrorResponse
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errorResp))
			assert.Equal(t, "VALIDATION_ERROR", errorResp.Code)
		})
	}

	assert.Empty(t, listConfigurations(t, app.router), "rejected payloads must not be persisted")
}

// doJSON performs a request with an optional JSON body
func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

// listConfigurations fetches the saved configuration list
func listConfigurations(t *testing.T, router *gin.Engine) []api.ConfigurationResponse {
	resp := doJSON(t, router, http.MethodGet, "/api/v1/configurations", nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var configs []api.ConfigurationResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &configs))

	return configs
}
