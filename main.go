package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wristcare/alertband-backend/internal/audit"
	"github.com/wristcare/alertband-backend/internal/config"
	"github.com/wristcare/alertband-backend/internal/handler"
	"github.com/wristcare/alertband-backend/internal/middleware"
	"github.com/wristcare/alertband-backend/internal/pdf"
	"github.com/wristcare/alertband-backend/internal/repository"
	"github.com/wristcare/alertband-backend/internal/security"
	"github.com/wristcare/alertband-backend/internal/serialport"
	"github.com/wristcare/alertband-backend/internal/service"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize Zap logger
	var logger *zap.Logger
	if cfg.Server.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("Configuration loaded successfully",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	// Initialize database connection pool with pgx
	pool, err := pgxpool.New(context.Background(), cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}
	logger.Info("Successfully connected to database")

	// Optional at-rest encryption of medical notes
	var encryptor *security.Encryptor
	if cfg.Security.EncryptionKey != "" {
		encryptor, err = security.NewEncryptorFromHex(cfg.Security.EncryptionKey)
		if err != nil {
			logger.Fatal("Failed to initialize encryptor", zap.Error(err))
		}
		logger.Info("Medical note encryption enabled")
	}

	// Initialize repositories
	configRepo := repository.NewConfigurationRepository(pool, encryptor, logger)

	// Initialize serial transport
	transport := serialport.NewClient(logger)

	// Initialize services
	configService := service.NewConfigurationService(configRepo, logger)
	transmitService := service.NewTransmitService(
		configRepo,
		transport,
		cfg.Serial.Port,
		cfg.Serial.BaudRate,
		logger,
	)
	exportService := service.NewExportService(
		configRepo,
		pdf.NewSummaryGenerator(logger),
		logger,
	)

	// Initialize audit logger
	auditLogger := audit.NewLogger(pool, logger)

	// Initialize handlers
	configHandler := handler.NewConfigurationHandler(configService, auditLogger, logger)
	deviceHandler := handler.NewDeviceHandler(transmitService, auditLogger, logger)
	exportHandler := handler.NewExportHandler(exportService, auditLogger, logger)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Gin router
	r := gin.New()

	// Add recovery middleware (must be first)
	r.Use(middleware.RecoveryMiddleware(logger))

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // Configure appropriately for production
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Add request ID middleware
	r.Use(middleware.RequestIDMiddleware())

	// Add request logging middleware
	r.Use(middleware.RequestLoggingMiddleware(logger))

	// Add error logging middleware
	r.Use(middleware.ErrorLoggingMiddleware(logger))

	// Register routes
	registerRoutes(r, configHandler, deviceHandler, exportHandler, pool, logger)

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	pool.Close()

	logger.Info("Server exited")
}

// registerRoutes wires the HTTP surface
func registerRoutes(
	r *gin.Engine,
	configHandler *handler.ConfigurationHandler,
	deviceHandler *handler.DeviceHandler,
	exportHandler *handler.ExportHandler,
	pool *pgxpool.Pool,
	logger *zap.Logger,
) {
	v1 := r.Group("/api/v1")

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

	r.GET("/health", func(c *gin.Context) {
		ctx := c.Request.Context()

		if err := pool.Ping(ctx); err != nil {
			logger.Error("health check failed: database unreachable", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "disconnected",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"database": "connected",
			"service":  "alertband-configurator",
			"version":  "1.0.0",
		})
	})
}
