package audit

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// OperationType represents the type of operation performed
type OperationType string

const (
	OperationCreate OperationType = "CREATE"
	OperationDelete OperationType = "DELETE"
	OperationClear  OperationType = "CLEAR"
	OperationSend   OperationType = "SEND"
	OperationExport OperationType = "EXPORT"
)

// ResourceType represents the type of resource being accessed
type ResourceType string

const (
	ResourceConfiguration ResourceType = "device_configuration"
	ResourceTransmission  ResourceType = "serial_transmission"
)

// Entry represents an audit log entry
type Entry struct {
	OperationType OperationType
	ResourceType  ResourceType
	ResourceID    string
	Timestamp     time.Time
	IPAddress     string
	UserAgent     string
}

// Logger handles audit logging
type Logger struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewLogger creates a new audit logger
func NewLogger(db *pgxpool.Pool, logger *zap.Logger) *Logger {
	return &Logger{
		db:     db,
		logger: logger,
	}
}

// Log creates an audit log entry. Failures are logged but never propagated:
// auditing must not break the operation it records.
func (l *Logger) Log(ctx context.Context, entry Entry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	l.logger.Info("Audit log entry",
		zap.String("operation", string(entry.OperationType)),
		zap.String("resource_type", string(entry.ResourceType)),
		zap.String("resource_id", entry.ResourceID),
		zap.Time("timestamp", entry.Timestamp),
		zap.String("ip_address", entry.IPAddress),
	)

	query := `
		INSERT INTO audit_logs (
			operation_type, resource_type, resource_id,
			timestamp, ip_address, user_agent
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := l.db.Exec(ctx, query,
		entry.OperationType,
		entry.ResourceType,
		entry.ResourceID,
		entry.Timestamp,
		entry.IPAddress,
		entry.UserAgent,
	)

	if err != nil {
		l.logger.Error("Failed to write audit log to database",
			zap.Error(err),
			zap.String("operation", string(entry.OperationType)),
			zap.String("resource_type", string(entry.ResourceType)),
		)
	}
}

// Recent retrieves the most recent audit log entries
func (l *Logger) Recent(ctx context.Context, limit int) ([]Entry, error) {
	query := `
		SELECT operation_type, resource_type, resource_id,
		       timestamp, ip_address, user_agent
		FROM audit_logs
		ORDER BY timestamp DESC
		LIMIT $1
	`

	rows, err := l.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		err := rows.Scan(
			&entry.OperationType,
			&entry.ResourceType,
			&entry.ResourceID,
			&entry.Timestamp,
			&entry.IPAddress,
			&entry.UserAgent,
		)
		if err != nil {
			l.logger.Error("Failed to scan audit log", zap.Error(err))
			continue
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
